package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"

	"github.com/veiloq/valr-connector/pkg/logging"
	"github.com/veiloq/valr-connector/pkg/signing"
)

// DefaultBaseURL is the production VALR WebSocket endpoint.
const DefaultBaseURL = "wss://api.valr.com"

const defaultHandshakeTimeout = 10 * time.Second

// State is the session lifecycle state.
type State int32

const (
	// Disconnected: no socket open. The initial state, and the final state
	// after a caller-driven close.
	Disconnected State = iota

	// Connecting: handshake in progress.
	Connecting

	// Subscribing: socket open, subscription message being sent. Trade
	// stream only.
	Subscribing

	// Active: receive loop running.
	Active

	// Closed: the socket closed on an error, or a dispatch error stopped
	// the receive loop.
	Closed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribing:
		return "subscribing"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session owns one WebSocket connection lifecycle: it authenticates the
// handshake with signed headers, sends the subscription message on the trade
// stream, then runs a single receive loop dispatching each inbound event to
// its hook in arrival order.
//
// A session never reconnects on its own; when the socket closes or a
// dispatch error propagates, Run returns and reconnection policy is the
// caller's.
type Session struct {
	kind         Kind
	creds        signing.Credentials
	pairs        []string
	events       []TradeEvent
	tradeHooks   map[TradeEvent]Hook
	accountHooks map[AccountEvent]Hook

	baseURL      string
	dialer       *websocket.Dialer
	dialAttempts uint
	dialDelay    time.Duration
	logger       logging.Logger
	now          func() time.Time

	state          atomic.Int32
	closedByCaller atomic.Bool

	writeMu sync.Mutex
	connMu  sync.Mutex
	conn    *websocket.Conn
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBaseURL overrides the WebSocket host, primarily for tests.
func WithBaseURL(baseURL string) SessionOption {
	return func(s *Session) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger attaches a logger. The default discards output.
func WithLogger(logger logging.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithDialAttempts sets how many times the initial dial is attempted before
// Run gives up, with delay between attempts. This covers connection
// establishment only; an established connection that drops is never redialed
// by the session.
func WithDialAttempts(attempts uint, delay time.Duration) SessionOption {
	return func(s *Session) {
		s.dialAttempts = attempts
		s.dialDelay = delay
	}
}

// WithDialer substitutes the underlying websocket dialer.
func WithDialer(dialer *websocket.Dialer) SessionOption {
	return func(s *Session) {
		s.dialer = dialer
	}
}

func newSession(kind Kind, creds signing.Credentials, opts ...SessionOption) *Session {
	s := &Session{
		kind:    kind,
		creds:   creds,
		baseURL: DefaultBaseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		dialAttempts: 1,
		dialDelay:    time.Second,
		logger:       logging.NewNopLogger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logging.String("stream", kind.String()))
	return s
}

// NewTradeSession creates a session for the trade stream. On connect it
// subscribes each event in events for the full pair set; a nil events slice
// subscribes the whole trade vocabulary. Hooks are keyed by trade event; a
// subscribed event arriving without a hook fails the session with
// ErrHookNotFound.
func NewTradeSession(creds signing.Credentials, pairs []string, events []TradeEvent, hooks map[TradeEvent]Hook, opts ...SessionOption) *Session {
	if events == nil {
		events = TradeEvents()
	}
	s := newSession(KindTrade, creds, opts...)
	s.pairs = pairs
	s.events = events
	s.tradeHooks = hooks
	return s
}

// NewAccountSession creates a session for the account stream, which pushes
// all account events implicitly once connected. There is no subscription
// step and no pair set.
func NewAccountSession(creds signing.Credentials, hooks map[AccountEvent]Hook, opts ...SessionOption) *Session {
	s := newSession(KindAccount, creds, opts...)
	s.accountHooks = hooks
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Run connects, subscribes (trade stream only) and consumes the connection
// until the socket closes or a dispatch error occurs. It blocks for the
// lifetime of the connection.
//
// Run returns nil after a caller-driven Close or context cancellation;
// otherwise it returns the error that ended the session.
func (s *Session) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Disconnected), int32(Connecting)) {
		return fmt.Errorf("session is %s; a session runs one connection lifecycle", s.State())
	}

	conn, err := s.dial(ctx)
	if err != nil {
		s.setState(Disconnected)
		return err
	}
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	// Cancellation closes the socket, which unblocks the read loop.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-stop:
		}
	}()

	if s.kind == KindTrade {
		s.setState(Subscribing)
		if err := s.send(NewSubscribeMessage(s.pairs, s.events)); err != nil {
			s.setState(Closed)
			conn.Close()
			return fmt.Errorf("sending subscribe message: %w", err)
		}
		s.logger.Debug("subscribe message sent",
			logging.Int("events", len(s.events)),
			logging.Int("pairs", len(s.pairs)),
		)
	}

	// No acknowledgement wait: the connection is active as soon as the
	// handshake (and, on the trade stream, the subscribe send) completes.
	s.setState(Active)
	s.logger.Info("websocket session active")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if s.closedByCaller.Load() || ctx.Err() != nil {
				s.setState(Disconnected)
				s.logger.Info("websocket session closed")
				return nil
			}
			s.setState(Closed)
			return fmt.Errorf("websocket connection closed: %w", err)
		}
		if err := s.dispatch(ctx, frame); err != nil {
			s.setState(Closed)
			conn.Close()
			return err
		}
	}
}

// dial opens the socket with the three signed handshake headers. The
// signature covers method GET, the stream route, an empty body and no
// subaccount, and is recomputed on every attempt so retries carry a fresh
// timestamp.
func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	// Missing credentials fail before any network traffic.
	if _, err := signing.Headers(s.creds, s.now().UnixMilli(), http.MethodGet, s.kind.Route(), "", ""); err != nil {
		return nil, err
	}

	url := s.baseURL + s.kind.Route()
	var conn *websocket.Conn

	err := retry.Do(
		func() error {
			headers, err := signing.Headers(s.creds, s.now().UnixMilli(), http.MethodGet, s.kind.Route(), "", "")
			if err != nil {
				return retry.Unrecoverable(err)
			}
			c, _, err := s.dialer.DialContext(ctx, url, headers)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Attempts(s.dialAttempts),
		retry.Delay(s.dialDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("connection attempt failed",
				logging.Int("attempt", int(n+1)),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return conn, nil
}

// dispatch decodes one frame and routes it to its hook. Internal protocol
// acknowledgements are discarded silently. Events are looked up in the
// vocabulary for this connection kind only: the trade and account
// vocabularies are disjoint namespaces.
func (s *Session) dispatch(ctx context.Context, frame []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return &ProtocolError{Kind: s.kind, Raw: frame}
	}

	switch probe.Type {
	case feedSubscribed, feedAuthenticated, feedPong:
		s.logger.Debug("discarding protocol acknowledgement", logging.String("type", probe.Type))
		return nil
	}

	msg := Message{Type: probe.Type, Raw: frame}
	if s.kind == KindTrade {
		event := TradeEvent(probe.Type)
		if !event.Valid() {
			return &ProtocolError{Kind: s.kind, Type: probe.Type, Raw: frame}
		}
		hook, ok := s.tradeHooks[event]
		if !ok {
			return fmt.Errorf("%w: %s", ErrHookNotFound, probe.Type)
		}
		if err := hook.Handle(ctx, msg); err != nil {
			return fmt.Errorf("%s hook: %w", probe.Type, err)
		}
		return nil
	}

	event := AccountEvent(probe.Type)
	if !event.Valid() {
		return &ProtocolError{Kind: s.kind, Type: probe.Type, Raw: frame}
	}
	hook, ok := s.accountHooks[event]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHookNotFound, probe.Type)
	}
	if err := hook.Handle(ctx, msg); err != nil {
		return fmt.Errorf("%s hook: %w", probe.Type, err)
	}
	return nil
}

// Subscribe sends a fresh subscription message on an active trade session.
// The message carries the full pair set per event; sending a smaller pair
// set than currently subscribed unsubscribes the removed pairs, and an empty
// set unsubscribes the event. The account stream has no subscription concept
// and rejects this call.
func (s *Session) Subscribe(events []TradeEvent, pairs []string) error {
	if s.kind != KindTrade {
		return ErrSubscriptionUnsupported
	}
	if state := s.State(); state != Active && state != Subscribing {
		return ErrSessionClosed
	}
	return s.send(NewSubscribeMessage(pairs, events))
}

// Ping sends an application-level keepalive message. The server answers with
// a PONG event, which the receive loop discards.
func (s *Session) Ping() error {
	if s.State() != Active {
		return ErrSessionClosed
	}
	return s.send(map[string]string{"type": feedPing})
}

func (s *Session) send(v interface{}) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return ErrSessionClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// Close closes the underlying socket. It is the caller's cancellation
// mechanism: an in-progress hook invocation is not interrupted, but no
// further frames are read and Run returns nil.
func (s *Session) Close() error {
	if s.closedByCaller.Swap(true) {
		return nil
	}

	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		s.setState(Disconnected)
		return nil
	}

	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed connection"),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()

	if err := conn.Close(); err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
		return err
	}
	return nil
}
