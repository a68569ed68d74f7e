package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "rowguard", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestNoopSpans(t *testing.T) {
	ctx, span := StartOperationSpan(context.Background(), "update", "records")
	defer span.End()

	SetAttributes(ctx, Identity("u1", "cidz")...)
	SetAttributes(ctx, Decision("deny", "reader cannot write")...)
	RecordError(ctx, errors.New("denied"))
	RecordError(ctx, nil)

	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestIdentityAttributes(t *testing.T) {
	assert.Len(t, Identity("u1", ""), 1)
	assert.Len(t, Identity("u1", "cidz"), 2)
	assert.Len(t, Decision("allow", ""), 1)
}

func TestProfiling(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, stop())
	assert.False(t, IsProfilingEnabled())

	_, err = InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "gpu"}})
	assert.Error(t, err)

	assert.True(t, ValidProfileType("inuse_space"))
	assert.False(t, ValidProfileType("heap"))
}
