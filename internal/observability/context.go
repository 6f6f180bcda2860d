package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	businessIDKey contextKey = "business_id"
	accountIDKey  contextKey = "account_id"
	sweepIDKey    contextKey = "sweep_id"
	traceIDKey    contextKey = "trace_id"
	spanIDKey     contextKey = "span_id"
	workflowIDKey contextKey = "workflow_id"
	runIDKey      contextKey = "workflow_run_id"
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

// WithBusiness adds business and account IDs to the context.
func WithBusiness(ctx context.Context, businessID, accountID string) context.Context {
	ctx = context.WithValue(ctx, businessIDKey, businessID)
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return ctx
}

// BusinessFromContext retrieves business and account IDs from context.
// Returns empty strings if not present.
func BusinessFromContext(ctx context.Context) (businessID, accountID string) {
	if v := ctx.Value(businessIDKey); v != nil {
		if id, ok := v.(string); ok {
			businessID = id
		}
	}
	if v := ctx.Value(accountIDKey); v != nil {
		if id, ok := v.(string); ok {
			accountID = id
		}
	}
	return businessID, accountID
}

// WithSweepID adds a sweep ID to the context.
func WithSweepID(ctx context.Context, sweepID string) context.Context {
	return context.WithValue(ctx, sweepIDKey, sweepID)
}

// SweepIDFromContext retrieves the sweep ID from context.
// Returns empty string if not present.
func SweepIDFromContext(ctx context.Context) string {
	if v := ctx.Value(sweepIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithTraceSpan adds trace and span IDs to the context.
func WithTraceSpan(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	ctx = context.WithValue(ctx, spanIDKey, spanID)
	return ctx
}

// TraceSpanFromContext retrieves trace and span IDs from context.
// Returns empty strings if not present.
func TraceSpanFromContext(ctx context.Context) (traceID, spanID string) {
	if v := ctx.Value(traceIDKey); v != nil {
		if id, ok := v.(string); ok {
			traceID = id
		}
	}
	if v := ctx.Value(spanIDKey); v != nil {
		if id, ok := v.(string); ok {
			spanID = id
		}
	}
	return traceID, spanID
}

// WithWorkflow adds workflow ID and run ID to the context.
func WithWorkflow(ctx context.Context, workflowID, runID string) context.Context {
	ctx = context.WithValue(ctx, workflowIDKey, workflowID)
	ctx = context.WithValue(ctx, runIDKey, runID)
	return ctx
}

// WorkflowFromContext retrieves workflow ID and run ID from context.
// Returns empty strings if not present.
func WorkflowFromContext(ctx context.Context) (workflowID, runID string) {
	if v := ctx.Value(workflowIDKey); v != nil {
		if id, ok := v.(string); ok {
			workflowID = id
		}
	}
	if v := ctx.Value(runIDKey); v != nil {
		if id, ok := v.(string); ok {
			runID = id
		}
	}
	return workflowID, runID
}

// SweepContext contains all the context data for a verification sweep.
type SweepContext struct {
	RequestID  string
	BusinessID string
	AccountID  string
	SweepID    string
	TraceID    string
	SpanID     string
	WorkflowID string
	RunID      string
}

// WithSweepContextFull adds all sweep context to the context.
func WithSweepContextFull(ctx context.Context, sc SweepContext) context.Context {
	if sc.RequestID != "" {
		ctx = WithRequestID(ctx, sc.RequestID)
	}
	if sc.BusinessID != "" || sc.AccountID != "" {
		ctx = WithBusiness(ctx, sc.BusinessID, sc.AccountID)
	}
	if sc.SweepID != "" {
		ctx = WithSweepID(ctx, sc.SweepID)
	}
	if sc.TraceID != "" || sc.SpanID != "" {
		ctx = WithTraceSpan(ctx, sc.TraceID, sc.SpanID)
	}
	if sc.WorkflowID != "" || sc.RunID != "" {
		ctx = WithWorkflow(ctx, sc.WorkflowID, sc.RunID)
	}
	return ctx
}

// SweepContextFromContext extracts all sweep context from the context.
func SweepContextFromContext(ctx context.Context) SweepContext {
	businessID, accountID := BusinessFromContext(ctx)
	traceID, spanID := TraceSpanFromContext(ctx)
	workflowID, runID := WorkflowFromContext(ctx)

	return SweepContext{
		RequestID:  RequestIDFromContext(ctx),
		BusinessID: businessID,
		AccountID:  accountID,
		SweepID:    SweepIDFromContext(ctx),
		TraceID:    traceID,
		SpanID:     spanID,
		WorkflowID: workflowID,
		RunID:      runID,
	}
}
