package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))

	ctx = ContextWithRunID(ctx, "run-123")
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestFromContextIncludesRunID(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	ctx := ContextWithRunID(context.Background(), "abc")
	WithFields(ctx, "table", "orders").Info("stage completed")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"table":"orders"`)
}
