package logging

import (
	"context"
	"log/slog"

	"mikanto/internal/services"
)

// Standard structured logging keys.
const (
	FieldComponent    = "component"
	FieldRunID        = "run_id"
	FieldSubscription = "subscription"
	FieldStage        = "stage"
	FieldEventType    = "event_type"
	FieldErrorHint    = "error_hint"
	FieldError        = "error"
)

// ContextFields extracts the run ID, subscription, and stage carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if title, ok := services.SubscriptionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSubscription, title))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns logger augmented with the fields found in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
