package rest

import (
	"github.com/shopspring/decimal"
)

// Side is an order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TimeInForce controls how long a limit order stays on the book.
type TimeInForce string

const (
	GoodTillCancelled TimeInForce = "GTC"
	FillOrKill        TimeInForce = "FOK"
	ImmediateOrCancel TimeInForce = "IOC"
)

// Currency describes one currency supported by the exchange.
type Currency struct {
	Symbol    string `json:"symbol"`
	IsActive  bool   `json:"isActive"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}

// CurrencyPair describes one tradable market.
type CurrencyPair struct {
	Symbol         string          `json:"symbol"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	ShortName      string          `json:"shortName"`
	Active         bool            `json:"active"`
	MinBaseAmount  decimal.Decimal `json:"minBaseAmount"`
	MaxBaseAmount  decimal.Decimal `json:"maxBaseAmount"`
	MinQuoteAmount decimal.Decimal `json:"minQuoteAmount"`
	MaxQuoteAmount decimal.Decimal `json:"maxQuoteAmount"`
}

// MarketSummary is the 24h market summary for one pair.
type MarketSummary struct {
	CurrencyPair       string          `json:"currencyPair"`
	AskPrice           decimal.Decimal `json:"askPrice"`
	BidPrice           decimal.Decimal `json:"bidPrice"`
	LastTradedPrice    decimal.Decimal `json:"lastTradedPrice"`
	PreviousClosePrice decimal.Decimal `json:"previousClosePrice"`
	BaseVolume         decimal.Decimal `json:"baseVolume"`
	HighPrice          decimal.Decimal `json:"highPrice"`
	LowPrice           decimal.Decimal `json:"lowPrice"`
	Created            string          `json:"created"`
	ChangeFromPrevious decimal.Decimal `json:"changeFromPrevious"`
}

// OrderBookEntry is one aggregated price level.
type OrderBookEntry struct {
	Side         string          `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	CurrencyPair string          `json:"currencyPair"`
	OrderCount   int             `json:"orderCount"`
}

// OrderBook holds the bids and asks for one pair. Asks sort by price
// ascending, bids by price descending.
type OrderBook struct {
	Asks       []OrderBookEntry `json:"Asks"`
	Bids       []OrderBookEntry `json:"Bids"`
	LastChange string           `json:"LastChange"`
}

// PublicTrade is one executed trade from the public history.
type PublicTrade struct {
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrencyPair string          `json:"currencyPair"`
	TradedAt     string          `json:"tradedAt"`
	TakerSide    string          `json:"takerSide"`
	SequenceID   int64           `json:"sequenceId"`
	ID           string          `json:"id"`
}

// ServerTime is the exchange clock reading.
type ServerTime struct {
	EpochTime int64  `json:"epochTime"`
	Time      string `json:"time"`
}

// ExchangeStatus reports whether the exchange is fully online or read-only.
type ExchangeStatus struct {
	Status string `json:"status"`
}

// Balance is one currency balance on an account.
type Balance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
	Total     decimal.Decimal `json:"total"`
}

// Subaccount is one sub-ledger under a primary account.
type Subaccount struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// LimitOrderRequest places a new limit order. Price and quantity serialize as
// JSON strings to preserve precision across the wire.
type LimitOrderRequest struct {
	Side            Side            `json:"side"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Pair            string          `json:"pair"`
	PostOnly        bool            `json:"postOnly,omitempty"`
	CustomerOrderID string          `json:"customerOrderId,omitempty"`
	TimeInForce     TimeInForce     `json:"timeInForce,omitempty"`
}

// MarketOrderRequest places a new market order. Exactly one of BaseAmount
// (SELL, in the base currency) or QuoteAmount (BUY, in the quote currency)
// must be set.
type MarketOrderRequest struct {
	Side            Side             `json:"side"`
	Pair            string           `json:"pair"`
	BaseAmount      *decimal.Decimal `json:"baseAmount,omitempty"`
	QuoteAmount     *decimal.Decimal `json:"quoteAmount,omitempty"`
	CustomerOrderID string           `json:"customerOrderId,omitempty"`
}

// StopLimitType selects the stop order trigger semantics.
type StopLimitType string

const (
	TakeProfitLimit StopLimitType = "TAKE_PROFIT_LIMIT"
	StopLossLimit   StopLimitType = "STOP_LOSS_LIMIT"
)

// StopLimitOrderRequest places a stop loss or take profit limit order. The
// stop price arms the limit order and cannot equal the last traded price.
type StopLimitOrderRequest struct {
	Side            Side            `json:"side"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Pair            string          `json:"pair"`
	TimeInForce     TimeInForce     `json:"timeInForce"`
	StopPrice       decimal.Decimal `json:"stopPrice"`
	Type            StopLimitType   `json:"type"`
	CustomerOrderID string          `json:"customerOrderId,omitempty"`
}

// Batch order entry types.
const (
	BatchPlaceMarket    = "PLACE_MARKET"
	BatchPlaceLimit     = "PLACE_LIMIT"
	BatchPlaceStopLimit = "PLACE_STOP_LIMIT"
	BatchCancelOrder    = "CANCEL_ORDER"
)

// BatchOrderEntry is one instruction in a batch request. Data carries the
// request matching Type: LimitOrderRequest for PLACE_LIMIT,
// MarketOrderRequest for PLACE_MARKET, StopLimitOrderRequest for
// PLACE_STOP_LIMIT, or the orderId/customerOrderId and pair fields for
// CANCEL_ORDER.
type BatchOrderEntry struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SimpleOrderRequest quotes or places an instant buy or sell. PayInCurrency
// is the currency being spent: buying BTC on BTCZAR pays in ZAR, selling pays
// in BTC.
type SimpleOrderRequest struct {
	PayInCurrency string          `json:"payInCurrency"`
	PayAmount     decimal.Decimal `json:"payAmount"`
	Side          Side            `json:"side"`
}

// OrderPlaced is the response to placing or cancelling an order. Incomplete
// mirrors Response.Incomplete: the order id is known, but the exchange has
// only accepted the request for processing.
type OrderPlaced struct {
	ID         string `json:"id"`
	Incomplete bool   `json:"-"`
}

// OrderStatus is the current status of one order.
type OrderStatus struct {
	OrderID           string          `json:"orderId"`
	OrderStatusType   string          `json:"orderStatusType"`
	CurrencyPair      string          `json:"currencyPair"`
	OriginalPrice     decimal.Decimal `json:"originalPrice"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	OriginalQuantity  decimal.Decimal `json:"originalQuantity"`
	OrderSide         string          `json:"orderSide"`
	OrderType         string          `json:"orderType"`
	FailedReason      string          `json:"failedReason"`
	CustomerOrderID   string          `json:"customerOrderId"`
	OrderUpdatedAt    string          `json:"orderUpdatedAt"`
	OrderCreatedAt    string          `json:"orderCreatedAt"`
}

// OpenOrder is one entry from the open-orders listing.
type OpenOrder struct {
	OrderID           string          `json:"orderId"`
	Side              string          `json:"side"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	Price             decimal.Decimal `json:"price"`
	CurrencyPair      string          `json:"currencyPair"`
	CreatedAt         string          `json:"createdAt"`
	OriginalQuantity  decimal.Decimal `json:"originalQuantity"`
	FilledPercentage  decimal.Decimal `json:"filledPercentage"`
	CustomerOrderID   string          `json:"customerOrderId"`
	Status            string          `json:"status"`
	Type              string          `json:"type"`
	TimeInForce       string          `json:"timeInForce"`
}

// TransactionInfo is one account ledger entry.
type TransactionInfo struct {
	TransactionType struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"transactionType"`
	DebitCurrency  string          `json:"debitCurrency"`
	DebitValue     decimal.Decimal `json:"debitValue"`
	CreditCurrency string          `json:"creditCurrency"`
	CreditValue    decimal.Decimal `json:"creditValue"`
	EventAt        string          `json:"eventAt"`
}

// AccountTrade is one executed trade on the caller's account.
type AccountTrade struct {
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrencyPair string          `json:"currencyPair"`
	TradedAt     string          `json:"tradedAt"`
	Side         string          `json:"side"`
	OrderID      string          `json:"orderId"`
	ID           int64           `json:"id"`
}
