package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/valr-connector/pkg/signing"
)

var testCreds = signing.Credentials{
	Key:    "api-key",
	Secret: "superdupersecret",
}

// recordingHook captures every message it receives, in order.
type recordingHook struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (h *recordingHook) Handle(_ context.Context, msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return h.err
}

func (h *recordingHook) received() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	messages := make([]Message, len(h.messages))
	copy(messages, h.messages)
	return messages
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func runSession(t *testing.T, s *Session) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background())
	}()
	t.Cleanup(func() {
		s.Close()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
		}
	})
	return done
}

func TestTradeSessionHandshakeIsSigned(t *testing.T) {
	server := setupMockServer(t)

	session := NewTradeSession(testCreds, []string{"BTCZAR"}, []TradeEvent{NewTrade}, map[TradeEvent]Hook{
		NewTrade: &recordingHook{},
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	handshakes := server.Handshakes()
	require.Len(t, handshakes, 1)
	req := handshakes[0]

	assert.Equal(t, "/ws/trade", req.URL.Path)
	assert.Equal(t, "api-key", req.Header.Get(signing.HeaderAPIKey))
	assert.Empty(t, req.Header.Get(signing.HeaderSubaccount))

	timestamp := req.Header.Get(signing.HeaderTimestamp)
	require.NotEmpty(t, timestamp)

	// The signature covers GET over the route with an empty body.
	var ts int64
	_, err := fmt.Sscanf(timestamp, "%d", &ts)
	require.NoError(t, err)
	expected := signing.Sign(testCreds.Secret, ts, "GET", "/ws/trade", "", "")
	assert.Equal(t, expected, req.Header.Get(signing.HeaderSignature))
}

func TestTradeSessionSendsSubscribeMessage(t *testing.T) {
	server := setupMockServer(t)

	session := NewTradeSession(testCreds, []string{"BTCZAR", "ETHZAR"}, []TradeEvent{NewTrade, MarketSummaryUpdate}, map[TradeEvent]Hook{
		NewTrade:            &recordingHook{},
		MarketSummaryUpdate: &recordingHook{},
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return len(server.Messages()) == 1 })

	assert.JSONEq(t, `{
		"type": "SUBSCRIBE",
		"subscriptions": [
			{"event": "NEW_TRADE", "pairs": ["BTCZAR", "ETHZAR"]},
			{"event": "MARKET_SUMMARY_UPDATE", "pairs": ["BTCZAR", "ETHZAR"]}
		]
	}`, string(server.Messages()[0]))
	assert.Equal(t, Active, session.State())
}

func TestAccountSessionSendsNoSubscribeMessage(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(testCreds, map[AccountEvent]Hook{
		BalanceUpdate: &recordingHook{},
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })
	waitFor(t, func() bool { return session.State() == Active })

	require.Len(t, server.Handshakes(), 1)
	assert.Equal(t, "/ws/account", server.Handshakes()[0].URL.Path)
	assert.Empty(t, server.Messages())
}

func TestSessionDiscardsProtocolAcknowledgements(t *testing.T) {
	server := setupMockServer(t)

	hook := &recordingHook{}
	session := NewTradeSession(testCreds, []string{"BTCZAR"}, []TradeEvent{NewTrade}, map[TradeEvent]Hook{
		NewTrade: hook,
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	server.Broadcast([]byte(`{"type":"SUBSCRIBED"}`))
	server.Broadcast([]byte(`{"type":"AUTHENTICATED"}`))
	server.Broadcast([]byte(`{"type":"NEW_TRADE","data":{"price":"10000"}}`))

	waitFor(t, func() bool { return len(hook.received()) == 1 })
	assert.Equal(t, "NEW_TRADE", hook.received()[0].Type)
	assert.Equal(t, Active, session.State())
}

func TestSessionPingPong(t *testing.T) {
	server := setupMockServer(t)

	hook := &recordingHook{}
	session := NewAccountSession(testCreds, map[AccountEvent]Hook{
		BalanceUpdate: hook,
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return session.State() == Active })

	require.NoError(t, session.Ping())
	waitFor(t, func() bool { return len(server.Messages()) == 1 })
	assert.JSONEq(t, `{"type":"PING"}`, string(server.Messages()[0]))

	// The PONG answer is protocol plumbing, never dispatched.
	server.Broadcast([]byte(`{"type":"PONG"}`))
	server.Broadcast([]byte(`{"type":"BALANCE_UPDATE","data":{}}`))

	waitFor(t, func() bool { return len(hook.received()) == 1 })
	assert.Equal(t, "BALANCE_UPDATE", hook.received()[0].Type)
}

func TestSessionDispatchesInArrivalOrder(t *testing.T) {
	server := setupMockServer(t)

	hook := &recordingHook{}
	session := NewTradeSession(testCreds, []string{"BTCZAR"}, []TradeEvent{NewTrade}, map[TradeEvent]Hook{
		NewTrade: hook,
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	for i := 0; i < 5; i++ {
		server.Broadcast([]byte(fmt.Sprintf(`{"type":"NEW_TRADE","data":{"sequence":%d}}`, i)))
	}

	waitFor(t, func() bool { return len(hook.received()) == 5 })
	for i, msg := range hook.received() {
		var payload struct {
			Data struct {
				Sequence int `json:"sequence"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Raw, &payload))
		assert.Equal(t, i, payload.Data.Sequence)
	}
}

func TestSessionFailsOnMissingHook(t *testing.T) {
	server := setupMockServer(t)

	// NEW_TRADE is subscribed but only MARKET_SUMMARY_UPDATE has a hook.
	session := NewTradeSession(testCreds, []string{"BTCZAR"}, []TradeEvent{NewTrade, MarketSummaryUpdate}, map[TradeEvent]Hook{
		MarketSummaryUpdate: &recordingHook{},
	}, WithBaseURL(server.URL()))

	done := runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	server.Broadcast([]byte(`{"type":"NEW_TRADE","data":{}}`))

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHookNotFound)
	assert.Equal(t, Closed, session.State())
}

func TestSessionFailsOnUnknownEventType(t *testing.T) {
	server := setupMockServer(t)

	session := NewTradeSession(testCreds, []string{"BTCZAR"}, nil, map[TradeEvent]Hook{
		NewTrade: &recordingHook{},
	}, WithBaseURL(server.URL()))

	done := runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	// An account event on the trade stream is outside the vocabulary.
	server.Broadcast([]byte(`{"type":"BALANCE_UPDATE","data":{}}`))

	err := <-done
	require.Error(t, err)
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, "BALANCE_UPDATE", protocolErr.Type)
	assert.Equal(t, KindTrade, protocolErr.Kind)
	assert.Equal(t, Closed, session.State())
}

func TestSessionFailsOnHookError(t *testing.T) {
	server := setupMockServer(t)

	hookErr := errors.New("persistence unavailable")
	session := NewAccountSession(testCreds, map[AccountEvent]Hook{
		BalanceUpdate: &recordingHook{err: hookErr},
	}, WithBaseURL(server.URL()))

	done := runSession(t, session)
	waitFor(t, func() bool { return server.ConnectionCount() == 1 })

	server.Broadcast([]byte(`{"type":"BALANCE_UPDATE","data":{}}`))

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
	assert.Equal(t, Closed, session.State())
}

func TestSessionCloseReturnsNil(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(testCreds, nil, WithBaseURL(server.URL()))

	done := runSession(t, session)
	waitFor(t, func() bool { return session.State() == Active })

	require.NoError(t, session.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Equal(t, Disconnected, session.State())
}

func TestSessionContextCancellationReturnsNil(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(testCreds, nil, WithBaseURL(server.URL()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx)
	}()
	waitFor(t, func() bool { return session.State() == Active })

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestSessionDoesNotReconnectAfterDrop(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(testCreds, nil,
		WithBaseURL(server.URL()),
		WithDialAttempts(3, 10*time.Millisecond),
	)

	done := runSession(t, session)
	waitFor(t, func() bool { return session.State() == Active })

	server.DropAll()

	err := <-done
	require.Error(t, err)
	assert.Equal(t, Closed, session.State())

	// Dial retries cover connection establishment only; the dropped
	// connection is never redialed.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, server.Handshakes(), 1)
}

func TestSessionRequiresCredentials(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(signing.Credentials{}, nil, WithBaseURL(server.URL()))

	err := session.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, signing.ErrRequiresAuthentication)
	assert.Equal(t, Disconnected, session.State())
	assert.Empty(t, server.Handshakes())
}

func TestSessionDialRetries(t *testing.T) {
	server := setupMockServer(t)
	server.SetRejectConnections(true)

	session := NewAccountSession(testCreds, nil,
		WithBaseURL(server.URL()),
		WithDialAttempts(3, time.Millisecond),
	)

	err := session.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, server.Handshakes(), 3)
	assert.Equal(t, Disconnected, session.State())
}

func TestSubscribeRejectedOnAccountStream(t *testing.T) {
	session := NewAccountSession(testCreds, nil)
	err := session.Subscribe([]TradeEvent{NewTrade}, []string{"BTCZAR"})
	assert.ErrorIs(t, err, ErrSubscriptionUnsupported)
}

func TestSubscribeRejectedBeforeRun(t *testing.T) {
	session := NewTradeSession(testCreds, []string{"BTCZAR"}, nil, nil)
	err := session.Subscribe([]TradeEvent{NewTrade}, []string{"BTCZAR"})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSubscribeSendsFullPairSet(t *testing.T) {
	server := setupMockServer(t)

	session := NewTradeSession(testCreds, []string{"BTCZAR"}, []TradeEvent{NewTrade}, map[TradeEvent]Hook{
		NewTrade: &recordingHook{},
	}, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return len(server.Messages()) == 1 })

	// An empty pair set unsubscribes the event.
	require.NoError(t, session.Subscribe([]TradeEvent{NewTrade}, nil))
	waitFor(t, func() bool { return len(server.Messages()) == 2 })

	assert.JSONEq(t, `{
		"type": "SUBSCRIBE",
		"subscriptions": [{"event": "NEW_TRADE", "pairs": []}]
	}`, string(server.Messages()[1]))
}

func TestSessionRunsOnce(t *testing.T) {
	server := setupMockServer(t)

	session := NewAccountSession(testCreds, nil, WithBaseURL(server.URL()))

	runSession(t, session)
	waitFor(t, func() bool { return session.State() == Active })

	err := session.Run(context.Background())
	require.Error(t, err)
}
