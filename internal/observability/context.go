package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	modeKey      contextKey = "mode"
	depthKey     contextKey = "depth"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithResearch adds the research mode and depth to the context.
func WithResearch(ctx context.Context, mode, depth string) context.Context {
	ctx = context.WithValue(ctx, modeKey, mode)
	ctx = context.WithValue(ctx, depthKey, depth)
	return ctx
}

// ResearchFromContext retrieves the research mode and depth from context.
// Returns empty strings if not present.
func ResearchFromContext(ctx context.Context) (mode, depth string) {
	if v := ctx.Value(modeKey); v != nil {
		if s, ok := v.(string); ok {
			mode = s
		}
	}
	if v := ctx.Value(depthKey); v != nil {
		if s, ok := v.(string); ok {
			depth = s
		}
	}
	return mode, depth
}

// RequestContext contains the observability data carried by a research request.
type RequestContext struct {
	RequestID string
	Mode      string
	Depth     string
}

// WithRequestContextFull adds all request context to the context.
func WithRequestContextFull(ctx context.Context, rc RequestContext) context.Context {
	if rc.RequestID != "" {
		ctx = WithRequestID(ctx, rc.RequestID)
	}
	if rc.Mode != "" || rc.Depth != "" {
		ctx = WithResearch(ctx, rc.Mode, rc.Depth)
	}
	return ctx
}

// RequestContextFromContext extracts all request context from the context.
func RequestContextFromContext(ctx context.Context) RequestContext {
	mode, depth := ResearchFromContext(ctx)
	return RequestContext{
		RequestID: RequestIDFromContext(ctx),
		Mode:      mode,
		Depth:     depth,
	}
}

// LoggerFromContext enriches logger with every request field present in ctx.
func LoggerFromContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rc := RequestContextFromContext(ctx)
	if rc.RequestID != "" {
		logger = WithRequestContext(logger, rc.RequestID)
	}
	if rc.Mode != "" || rc.Depth != "" {
		logger = WithResearchContext(logger, rc.Mode, rc.Depth)
	}
	return logger
}
