package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_Default(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))

	ctx, enriched := With(ctx, "session_id", "abc")
	assert.Same(t, enriched, FromContext(ctx))

	FromContext(ctx).Info("Search started.")
	assert.Contains(t, buf.String(), "session_id=abc")
	assert.Contains(t, buf.String(), `msg="Search started."`)
}
