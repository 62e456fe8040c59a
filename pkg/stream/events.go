// Package stream implements the VALR WebSocket API: the signed connection
// handshake, the trade-stream subscription model, and a single ordered
// receive loop that dispatches decoded events to caller-supplied hooks.
//
// VALR exposes two connection kinds off one WebSocket endpoint. The account
// stream (/ws/account) pushes every account event implicitly once connected.
// The trade stream (/ws/trade) pushes nothing until the client sends a
// SUBSCRIBE message naming events and currency pairs. The two kinds carry
// disjoint event vocabularies.
package stream

import "encoding/json"

// Kind selects one of the two WebSocket connection kinds.
type Kind int

const (
	// KindAccount receives all account events implicitly on connect.
	KindAccount Kind = iota

	// KindTrade receives market data events, per explicit subscription.
	KindTrade
)

// Route returns the connection's path off the WebSocket host. It is also the
// path signed into the handshake headers.
func (k Kind) Route() string {
	if k == KindTrade {
		return "/ws/trade"
	}
	return "/ws/account"
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindTrade {
		return "trade"
	}
	return "account"
}

// Internal message feed types. These are protocol plumbing, never dispatched
// to hooks.
const (
	feedSubscribe     = "SUBSCRIBE"
	feedSubscribed    = "SUBSCRIBED"
	feedAuthenticated = "AUTHENTICATED"
	feedPing          = "PING"
	feedPong          = "PONG"
)

// TradeEvent is one event in the trade-stream vocabulary.
type TradeEvent string

const (
	AggregatedOrderbookUpdate TradeEvent = "AGGREGATED_ORDERBOOK_UPDATE"
	MarketSummaryUpdate       TradeEvent = "MARKET_SUMMARY_UPDATE"
	NewTradeBucket            TradeEvent = "NEW_TRADE_BUCKET"
	NewTrade                  TradeEvent = "NEW_TRADE"
)

// TradeEvents returns the full trade-stream vocabulary in a stable order.
func TradeEvents() []TradeEvent {
	return []TradeEvent{AggregatedOrderbookUpdate, MarketSummaryUpdate, NewTradeBucket, NewTrade}
}

// Valid reports whether e is a recognized trade event.
func (e TradeEvent) Valid() bool {
	switch e {
	case AggregatedOrderbookUpdate, MarketSummaryUpdate, NewTradeBucket, NewTrade:
		return true
	}
	return false
}

// AccountEvent is one event in the account-stream vocabulary.
type AccountEvent string

const (
	NewAccountHistoryRecord AccountEvent = "NEW_ACCOUNT_HISTORY_RECORD"
	BalanceUpdate           AccountEvent = "BALANCE_UPDATE"
	NewAccountTrade         AccountEvent = "NEW_ACCOUNT_TRADE"
	InstantOrderCompleted   AccountEvent = "INSTANT_ORDER_COMPLETED"
	OpenOrdersUpdate        AccountEvent = "OPEN_ORDERS_UPDATE"
	OrderProcessed          AccountEvent = "ORDER_PROCESSED"
	OrderStatusUpdate       AccountEvent = "ORDER_STATUS_UPDATE"
	FailedCancelOrder       AccountEvent = "FAILED_CANCEL_ORDER"
	NewPendingReceive       AccountEvent = "NEW_PENDING_RECEIVE"
	SendStatusUpdate        AccountEvent = "SEND_STATUS_UPDATE"
)

// AccountEvents returns the full account-stream vocabulary in a stable order.
func AccountEvents() []AccountEvent {
	return []AccountEvent{
		NewAccountHistoryRecord, BalanceUpdate, NewAccountTrade,
		InstantOrderCompleted, OpenOrdersUpdate, OrderProcessed,
		OrderStatusUpdate, FailedCancelOrder, NewPendingReceive,
		SendStatusUpdate,
	}
}

// Valid reports whether e is a recognized account event.
func (e AccountEvent) Valid() bool {
	switch e {
	case NewAccountHistoryRecord, BalanceUpdate, NewAccountTrade,
		InstantOrderCompleted, OpenOrdersUpdate, OrderProcessed,
		OrderStatusUpdate, FailedCancelOrder, NewPendingReceive,
		SendStatusUpdate:
		return true
	}
	return false
}

// Message is one decoded inbound frame handed to a hook. Raw holds the whole
// frame, including the "type" discriminator and the "data" payload.
type Message struct {
	Type string
	Raw  json.RawMessage
}
