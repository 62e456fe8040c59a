package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrHookNotFound is returned when an inbound event is a recognized
	// member of the connection's vocabulary but no hook was registered for
	// it. This is a configuration error on the caller's side, distinct from
	// a protocol violation.
	ErrHookNotFound = errors.New("no hook supplied for event")

	// ErrSubscriptionUnsupported is returned when a subscription message is
	// requested on the account stream, which has no subscription concept.
	ErrSubscriptionUnsupported = errors.New("subscriptions are only supported on the trade stream")

	// ErrSessionClosed is returned when the session's socket has been closed
	// and an operation requiring an open connection is attempted.
	ErrSessionClosed = errors.New("websocket session is not active")
)

// ProtocolError reports an inbound event type outside the connection kind's
// vocabulary entirely: protocol drift or unexpected server behavior. The
// offending frame is preserved for diagnostics.
type ProtocolError struct {
	Kind Kind
	Type string
	Raw  json.RawMessage
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("websocket api failed to handle %q event on %s stream: %s", e.Type, e.Kind, e.Raw)
}
