// Package audit records authorization decisions as an append-only side
// channel. Recording never participates in the decision itself.
package audit

import (
	"context"
	"time"

	"sgc.org/internal/obs"
)

// Sink receives every authorization decision, granted or denied. Calls are
// fire-and-forget from the core's perspective.
type Sink interface {
	RecordGranted(ctx context.Context, user, action, kind, resource string)
	RecordDenied(ctx context.Context, user, action, kind, resource, reason string)
}

// LogSink writes decisions as JSON audit lines through the shared logger.
type LogSink struct{}

var _ Sink = LogSink{}

func (LogSink) RecordGranted(ctx context.Context, user, action, kind, resource string) {
	emit("access.granted", user, action, kind, resource, "")
}

func (LogSink) RecordDenied(ctx context.Context, user, action, kind, resource, reason string) {
	emit("access.denied", user, action, kind, resource, reason)
}

func emit(event, user, action, kind, resource, reason string) {
	entry := map[string]any{
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
		"type":     "audit",
		"event":    event,
		"user":     user,
		"action":   action,
		"kind":     kind,
		"resource": resource,
	}
	if reason != "" {
		entry["reason"] = reason
	}
	obs.Line(entry)
}

// NopSink discards every record. Useful in tests.
type NopSink struct{}

var _ Sink = NopSink{}

func (NopSink) RecordGranted(context.Context, string, string, string, string)        {}
func (NopSink) RecordDenied(context.Context, string, string, string, string, string) {}
