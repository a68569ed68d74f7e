package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	s := New()
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.UserID())

	require.NoError(t, s.Bind(Binding{UserID: "u1", Username: "casey"}))
	b, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", b.UserID)
	assert.False(t, b.Since.IsZero())

	s.Clear()
	assert.False(t, s.Authenticated())
	s.Clear()

	require.NoError(t, s.Bind(Binding{UserID: "u2"}))
	s.Reset()
	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, s.Resets())

	s.Close()
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Bind(Binding{UserID: "u3"}), ErrClosed)
	assert.False(t, s.Authenticated())
}

func TestContextsAreIsolated(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Bind(Binding{UserID: "alice"}))
	assert.Equal(t, "alice", a.UserID())
	assert.Empty(t, b.UserID())
}

func TestConcurrentUse(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Bind(Binding{UserID: "u"})
		}()
		go func() {
			defer wg.Done()
			_ = s.UserID()
			s.Clear()
		}()
	}
	wg.Wait()
}

func TestRequestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	s := New()
	ctx := WithContext(context.Background(), s)
	assert.Same(t, s, FromContext(ctx))
}
