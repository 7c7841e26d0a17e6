package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestResearchContext(t *testing.T) {
	t.Run("stores and retrieves mode and depth", func(t *testing.T) {
		ctx := WithResearch(context.Background(), "llm", "deep")

		mode, depth := ResearchFromContext(ctx)
		assert.Equal(t, "llm", mode)
		assert.Equal(t, "deep", depth)
	})

	t.Run("returns empty strings when not set", func(t *testing.T) {
		mode, depth := ResearchFromContext(context.Background())
		assert.Equal(t, "", mode)
		assert.Equal(t, "", depth)
	})
}

func TestRequestContextFull(t *testing.T) {
	t.Run("stores and retrieves full request context", func(t *testing.T) {
		rc := RequestContext{RequestID: "req-123", Mode: "metadata", Depth: "quick"}

		ctx := WithRequestContextFull(context.Background(), rc)
		assert.Equal(t, rc, RequestContextFromContext(ctx))
	})

	t.Run("handles partial context", func(t *testing.T) {
		ctx := WithRequestContextFull(context.Background(), RequestContext{RequestID: "req-only"})
		result := RequestContextFromContext(ctx)

		assert.Equal(t, "req-only", result.RequestID)
		assert.Equal(t, "", result.Mode)
		assert.Equal(t, "", result.Depth)
	})

	t.Run("returns empty context when nothing set", func(t *testing.T) {
		assert.Equal(t, RequestContext{}, RequestContextFromContext(context.Background()))
	})
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithRequestContextFull(context.Background(), RequestContext{
		RequestID: "req-9",
		Mode:      "llm",
		Depth:     "standard",
	})

	logger := LoggerFromContext(ctx, zerolog.New(&buf))
	logger.Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "llm", entry["mode"])
	assert.Equal(t, "standard", entry["depth"])
}

func TestLoggerFromContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggerFromContext(context.Background(), zerolog.New(&buf))
	logger.Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "mode")
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()

	// Set initial values
	ctx = WithRequestID(ctx, "req-1")

	// Overwrite with new values
	ctx = WithRequestID(ctx, "req-2")

	// Should have new value
	assert.Equal(t, "req-2", RequestIDFromContext(ctx))
}
