package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects logger output to a buffer until the test ends.
func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.RLock()
	prevOut, prevColor := output, useColor
	mu.RUnlock()
	prevLevel := Level(currentLevel.Load())
	prevFormat, _ := currentFormat.Load().(string)

	InitWithWriter(buf, "DEBUG", format, false)

	t.Cleanup(func() {
		InitWithWriter(prevOut, prevLevel.String(), prevFormat, prevColor)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugShowsEverything", func(t *testing.T) {
		buf := capture(t, "text")
		Debug("d")
		Info("i")
		Warn("w")
		Error("e")
		assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
	})

	t.Run("WarnHidesDebugAndInfo", func(t *testing.T) {
		buf := capture(t, "text")
		SetLevel("WARN")
		Debug("hidden-debug")
		Info("hidden-info")
		Warn("shown-warn")
		Error("shown-error")

		out := buf.String()
		assert.NotContains(t, out, "hidden-debug")
		assert.NotContains(t, out, "hidden-info")
		assert.Contains(t, out, "shown-warn")
		assert.Contains(t, out, "shown-error")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		capture(t, "text")
		SetLevel("ERROR")
		SetLevel("chatty")
		assert.Equal(t, LevelError, Level(currentLevel.Load()))
	})
}

func TestTextFormat(t *testing.T) {
	buf := capture(t, "text")

	Info("grant changed", KeyProjectID, "p1", KeyLevel, "writer", KeyReason, "owner action")

	line := buf.String()
	assert.Contains(t, line, "[INFO] grant changed")
	assert.Contains(t, line, "project_id=p1")
	assert.Contains(t, line, "level=writer")
	assert.Contains(t, line, `reason="owner action"`)
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "json")

	Warn("login failed", Username("casey"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "login failed", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "casey", rec[KeyUsername])
}

func TestContextFields(t *testing.T) {
	buf := capture(t, "json")

	lc := NewLogContext("req-1", "10.0.0.1").WithIdentity("user-42", "cidz")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "record updated", KeyRows, 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec[KeyRequestID])
	assert.Equal(t, "10.0.0.1", rec[KeyClientIP])
	assert.Equal(t, "user-42", rec[KeyUserID])
	assert.Equal(t, "cidz", rec[KeyPrincipal])
	assert.EqualValues(t, 3, rec[KeyRows])
}

func TestContextWithoutLogContext(t *testing.T) {
	buf := capture(t, "text")
	DebugCtx(context.Background(), "plain")
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), KeyRequestID)
}

func TestLogContextCloneIsIndependent(t *testing.T) {
	orig := NewLogContext("r", "ip")
	c := orig.WithIdentity("u", "")
	assert.Empty(t, orig.UserID)
	assert.Equal(t, "u", c.UserID)

	var nilLC *LogContext
	assert.Nil(t, nilLC.Clone())
	assert.Zero(t, nilLC.DurationMs())
}

func TestErrAttr(t *testing.T) {
	assert.True(t, Err(nil).Equal(Err(nil)))
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
}

func TestGroupedAttrs(t *testing.T) {
	buf := capture(t, "text")
	With("component", "registry").WithGroup("grant").Info("set", "level", "owner")
	out := buf.String()
	assert.Contains(t, out, "component=registry")
	assert.Contains(t, out, "grant.level=owner")
}
