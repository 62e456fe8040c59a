package stream

// Subscription pairs one trade event with the currency pairs it should cover.
type Subscription struct {
	Event TradeEvent `json:"event"`
	Pairs []string   `json:"pairs"`
}

// SubscribeMessage is the trade-stream subscription payload. Each entry
// carries the full current pair set for its event, not a delta: re-sending
// the message with a smaller pair set for an event unsubscribes the removed
// pairs, and an empty pair set unsubscribes the event entirely.
type SubscribeMessage struct {
	Type          string         `json:"type"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// NewSubscribeMessage builds a subscription message with one entry per event,
// each carrying the full pair set. Only meaningful on the trade stream.
func NewSubscribeMessage(pairs []string, events []TradeEvent) SubscribeMessage {
	if pairs == nil {
		pairs = []string{}
	}
	subscriptions := make([]Subscription, 0, len(events))
	for _, event := range events {
		subscriptions = append(subscriptions, Subscription{Event: event, Pairs: pairs})
	}
	return SubscribeMessage{
		Type:          feedSubscribe,
		Subscriptions: subscriptions,
	}
}
