package workflow

import (
	"context"
	"time"

	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// TransitionEvent describes one committed status transition, emitted after
// the store accepted both the status change and its movement.
type TransitionEvent struct {
	SubprocessCode string
	ProcessCode    string
	ProcessType    process.ProcessType
	From           process.SubprocessStatus
	To             process.SubprocessStatus
	Actor          string
	Origin         *org.Unit
	Destination    *org.Unit
	At             time.Time
}

// Emitter receives committed transitions. Notification runs inline after
// persistence; implementations must not block.
type Emitter interface {
	TransitionCommitted(ctx context.Context, ev TransitionEvent)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, ev TransitionEvent)

func (f EmitterFunc) TransitionCommitted(ctx context.Context, ev TransitionEvent) { f(ctx, ev) }

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) TransitionCommitted(context.Context, TransitionEvent) {}
