package stream

import "context"

// Hook consumes one decoded stream event. Handle returns once the event is
// fully processed; the session dispatches messages strictly in arrival order
// and does not read the next frame until Handle returns. Both quick
// synchronous handlers and long-running ones satisfy the same contract.
//
// A non-nil error is unrecoverable for the session: the receive loop stops
// and Run returns the error.
type Hook interface {
	Handle(ctx context.Context, msg Message) error
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx context.Context, msg Message) error

// Handle implements Hook.
func (f HookFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
