package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// mockProvider is a test Provider.
type mockProvider struct {
	name      string
	canHandle func(Credentials) bool
	result    *Result
	err       error
}

func (m *mockProvider) CanHandle(c Credentials) bool { return m.canHandle(c) }
func (m *mockProvider) Name() string                 { return m.name }
func (m *mockProvider) Authenticate(_ context.Context, _ Credentials) (*Result, error) {
	return m.result, m.err
}

func handles(v bool) func(Credentials) bool {
	return func(Credentials) bool { return v }
}

func TestAuthenticator_ProvidersTriedInOrder(t *testing.T) {
	var order []string
	mk := func(name string, handle bool) *mockProvider {
		return &mockProvider{
			name: name,
			canHandle: func(Credentials) bool {
				order = append(order, name)
				return handle
			},
			result: &Result{Provider: name},
		}
	}

	a := NewAuthenticator([]Provider{mk("first", false), mk("second", true), mk("third", true)})
	res, err := a.Authenticate(context.Background(), Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "second" {
		t.Errorf("Provider = %q, want second", res.Provider)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("CanHandle call order = %v, want [first second]", order)
	}
}

func TestAuthenticator_UnsupportedContinuesToNext(t *testing.T) {
	a := NewAuthenticator([]Provider{
		&mockProvider{name: "a", canHandle: handles(true), err: ErrUnsupportedMechanism},
		&mockProvider{name: "b", canHandle: handles(true), result: &Result{Provider: "b"}},
	})
	res, err := a.Authenticate(context.Background(), Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "b" {
		t.Errorf("Provider = %q, want b", res.Provider)
	}
}

func TestAuthenticator_NoProviderCanHandle(t *testing.T) {
	a := NewAuthenticator([]Provider{&mockProvider{name: "nope", canHandle: handles(false)}})
	if _, err := a.Authenticate(context.Background(), Credentials{}); !errors.Is(err, ErrUnsupportedMechanism) {
		t.Errorf("err = %v, want ErrUnsupportedMechanism", err)
	}
}

func TestAuthenticator_Providers(t *testing.T) {
	var nilAuth *Authenticator
	if nilAuth.Providers() != nil {
		t.Error("nil Authenticator.Providers() should return nil")
	}
	if NewAuthenticator(nil).Providers() != nil {
		t.Error("empty Authenticator.Providers() should return nil")
	}

	a := NewAuthenticator([]Provider{&mockProvider{name: "orig", canHandle: handles(false)}})
	providers := a.Providers()
	providers[0] = &mockProvider{name: "mutated"}
	if a.Providers()[0].Name() != "orig" {
		t.Error("mutating Providers() return value should not affect authenticator")
	}
}

type authEnv struct {
	store  *store.GORMStore
	auth   *Authenticator
	userID string
}

type principalStub struct {
	principal *models.Principal
}

func (p principalStub) Authenticate(_ context.Context, name, password string) (*models.Principal, error) {
	if p.principal == nil || name != p.principal.Name || password != "principal-secret" {
		return nil, models.ErrAuthenticationFailed
	}
	return p.principal, nil
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	hash, err := models.HashPasswordWithCost("casey-password", bcrypt.MinCost)
	require.NoError(t, err)
	userID, err := s.CreateUser(ctx, &models.User{Username: "casey", PasswordHash: hash, Enabled: true})
	require.NoError(t, err)

	stub := principalStub{principal: &models.Principal{ID: "p-1", Name: "cidz", UserID: userID, Enabled: true}}
	a := NewAuthenticator(
		[]Provider{NewUserProvider(s), NewPrincipalProvider(stub, s)},
		WithLastLogin(s),
	)
	return &authEnv{store: s, auth: a, userID: userID}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)

	sess := session.New()
	h, err := e.auth.Login(ctx, sess, "casey", "casey-password")
	require.NoError(t, err)
	assert.Equal(t, e.userID, h.UserID)
	assert.Equal(t, sess.ID(), h.SessionID)

	id, ok := CurrentUser(sess)
	assert.True(t, ok)
	assert.Equal(t, e.userID, id)

	u, err := e.store.GetUserByID(ctx, e.userID)
	require.NoError(t, err)
	assert.NotNil(t, u.LastLogin)
}

func TestLoginFailureIsUniform(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)

	_, errWrong := e.auth.Login(ctx, session.New(), "casey", "not-the-password")
	_, errUnknown := e.auth.Login(ctx, session.New(), "nobody", "casey-password")
	require.ErrorIs(t, errWrong, models.ErrAuthenticationFailed)
	require.ErrorIs(t, errUnknown, models.ErrAuthenticationFailed)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	require.NoError(t, e.store.SetUserEnabled(ctx, e.userID, false))
	_, errDisabled := e.auth.Login(ctx, session.New(), "casey", "casey-password")
	assert.ErrorIs(t, errDisabled, models.ErrAuthenticationFailed)
	assert.Equal(t, errWrong.Error(), errDisabled.Error())
}

func TestFailedLoginKeepsSession(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)
	sess := session.New()

	_, err := e.auth.Login(ctx, sess, "casey", "casey-password")
	require.NoError(t, err)
	_, err = e.auth.Login(ctx, sess, "casey", "wrong-password")
	require.Error(t, err)

	id, ok := CurrentUser(sess)
	assert.True(t, ok)
	assert.Equal(t, e.userID, id)
}

func TestLoginPrincipal(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)
	sess := session.New()

	h, err := e.auth.LoginPrincipal(ctx, sess, "cidz", "principal-secret")
	require.NoError(t, err)
	assert.Equal(t, "p-1", h.PrincipalID)
	assert.Equal(t, e.userID, h.UserID)

	b, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "cidz", b.PrincipalName)

	_, err = e.auth.LoginPrincipal(ctx, session.New(), "cidz", "casey-password")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	// A user password never opens a principal and vice versa.
	_, err = e.auth.Login(ctx, session.New(), "cidz", "principal-secret")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)
	sess := session.New()

	e.auth.Logout(ctx, sess)
	_, ok := CurrentUser(sess)
	assert.False(t, ok)

	_, err := e.auth.Login(ctx, sess, "casey", "casey-password")
	require.NoError(t, err)
	e.auth.Logout(ctx, sess)
	e.auth.Logout(ctx, sess)
	_, ok = CurrentUser(sess)
	assert.False(t, ok)

	_, ok = CurrentUser(nil)
	assert.False(t, ok)
}

func TestLoginOnClosedSession(t *testing.T) {
	e := newAuthEnv(t)
	sess := session.New()
	sess.Close()
	_, err := e.auth.Login(context.Background(), sess, "casey", "casey-password")
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestConcurrentLogins(t *testing.T) {
	ctx := context.Background()
	e := newAuthEnv(t)

	var wg sync.WaitGroup
	sessions := make([]*session.Context, 8)
	for i := range sessions {
		sessions[i] = session.New()
		wg.Add(1)
		go func(sess *session.Context) {
			defer wg.Done()
			_, err := e.auth.Login(ctx, sess, "casey", "casey-password")
			assert.NoError(t, err)
		}(sessions[i])
	}
	wg.Wait()

	for _, sess := range sessions {
		id, ok := CurrentUser(sess)
		assert.True(t, ok)
		assert.Equal(t, e.userID, id)
	}
}
