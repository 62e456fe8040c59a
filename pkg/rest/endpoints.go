package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// The endpoint catalog: thin formatters over Do. Each method only assembles
// the path, query and body for one VALR route.

// GetOrderBookPublic returns the top 20 bids and asks for a pair from the
// public (unauthenticated) route. More constrained rate limits apply than on
// the authenticated market data route.
func (c *Client) GetOrderBookPublic(ctx context.Context, pair string) (*OrderBook, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: fmt.Sprintf("/v1/public/%s/orderbook", pair)})
	if err != nil {
		return nil, err
	}
	var book OrderBook
	if err := res.Decode(&book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetOrderBookFullPublic returns every order in the book, unaggregated.
func (c *Client) GetOrderBookFullPublic(ctx context.Context, pair string) (*OrderBook, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: fmt.Sprintf("/v1/public/%s/orderbook/full", pair)})
	if err != nil {
		return nil, err
	}
	var book OrderBook
	if err := res.Decode(&book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetCurrencies lists the currencies supported by the exchange.
func (c *Client) GetCurrencies(ctx context.Context) ([]Currency, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/public/currencies"})
	if err != nil {
		return nil, err
	}
	var currencies []Currency
	if err := res.Decode(&currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

// GetCurrencyPairs lists all supported markets.
func (c *Client) GetCurrencyPairs(ctx context.Context) ([]CurrencyPair, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/public/pairs"})
	if err != nil {
		return nil, err
	}
	var pairs []CurrencyPair
	if err := res.Decode(&pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// GetOrderTypes returns the order types supported for a pair, or for all
// pairs when pair is empty.
func (c *Client) GetOrderTypes(ctx context.Context, pair string) (*Response, error) {
	path := "/v1/public/ordertypes"
	if pair != "" {
		path = fmt.Sprintf("/v1/public/%s/ordertypes", pair)
	}
	return c.Do(ctx, Request{Method: "GET", Path: path})
}

// GetMarketSummary returns the market summary for every pair.
func (c *Client) GetMarketSummary(ctx context.Context) ([]MarketSummary, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/public/marketsummary"})
	if err != nil {
		return nil, err
	}
	var summaries []MarketSummary
	if err := res.Decode(&summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetMarketSummaryForPair returns the market summary for one pair.
func (c *Client) GetMarketSummaryForPair(ctx context.Context, pair string) (*MarketSummary, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: fmt.Sprintf("/v1/public/%s/marketsummary", pair)})
	if err != nil {
		return nil, err
	}
	var summary MarketSummary
	if err := res.Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// TradeHistoryQuery narrows a public trade history listing. Zero fields are
// omitted from the query.
type TradeHistoryQuery struct {
	Skip      int
	Limit     int
	StartTime int64
	EndTime   int64
	BeforeID  int64
}

func (q TradeHistoryQuery) values() url.Values {
	v := url.Values{}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.StartTime > 0 {
		v.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	}
	if q.EndTime > 0 {
		v.Set("endTime", strconv.FormatInt(q.EndTime, 10))
	}
	if q.BeforeID > 0 {
		v.Set("beforeId", strconv.FormatInt(q.BeforeID, 10))
	}
	return v
}

// GetTradeHistoryPublic returns recent public trades for a pair.
func (c *Client) GetTradeHistoryPublic(ctx context.Context, pair string, query TradeHistoryQuery) ([]PublicTrade, error) {
	res, err := c.Do(ctx, Request{
		Method: "GET",
		Path:   fmt.Sprintf("/v1/public/%s/trades", pair),
		Query:  query.values(),
	})
	if err != nil {
		return nil, err
	}
	var trades []PublicTrade
	if err := res.Decode(&trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetServerTime returns the exchange clock. The epoch value is in seconds.
func (c *Client) GetServerTime(ctx context.Context) (*ServerTime, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/public/time"})
	if err != nil {
		return nil, err
	}
	var st ServerTime
	if err := res.Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetExchangeStatus reports "online" or "read-only". In read-only mode all
// non-GET requests answer 503.
func (c *Client) GetExchangeStatus(ctx context.Context) (*ExchangeStatus, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/public/status"})
	if err != nil {
		return nil, err
	}
	var status ExchangeStatus
	if err := res.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Account APIs.

// GetCurrentAPIKeyInfo returns the calling key's label and permissions.
func (c *Client) GetCurrentAPIKeyInfo(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Request{Method: "GET", Path: "/v1/account/api-keys/current", Authenticated: true})
}

// GetSubaccounts lists the subaccounts under the primary account. Primary
// account keys only.
func (c *Client) GetSubaccounts(ctx context.Context) ([]Subaccount, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/account/subaccounts", Authenticated: true})
	if err != nil {
		return nil, err
	}
	var subaccounts []Subaccount
	if err := res.Decode(&subaccounts); err != nil {
		return nil, err
	}
	return subaccounts, nil
}

// RegisterSubaccount creates a new subaccount and returns its id.
func (c *Client) RegisterSubaccount(ctx context.Context, label string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          "/v1/account/subaccount",
		Body:          map[string]string{"label": label},
		Authenticated: true,
	})
}

// GetBalances returns the balances for the addressed account.
func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/account/balances", Authenticated: true})
	if err != nil {
		return nil, err
	}
	var balances []Balance
	if err := res.Decode(&balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// GetNonzeroBalances returns the whole portfolio's non-zero balances grouped
// by account. Primary account keys only.
func (c *Client) GetNonzeroBalances(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Request{Method: "GET", Path: "/v1/account/balances/all", Authenticated: true})
}

// pageQuery builds skip/limit paging parameters, omitting zero values.
func pageQuery(skip, limit int) url.Values {
	v := url.Values{}
	if skip > 0 {
		v.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// GetTransactionHistory pages through the account ledger.
func (c *Client) GetTransactionHistory(ctx context.Context, skip, limit int) ([]TransactionInfo, error) {
	res, err := c.Do(ctx, Request{
		Method:        "GET",
		Path:          "/v1/account/transactionhistory",
		Query:         pageQuery(skip, limit),
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	var transactions []TransactionInfo
	if err := res.Decode(&transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// GetAccountTradeHistory returns the caller's recent trades for a pair.
func (c *Client) GetAccountTradeHistory(ctx context.Context, pair string, limit int) ([]AccountTrade, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	res, err := c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/account/%s/tradehistory", pair),
		Query:         query,
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	var trades []AccountTrade
	if err := res.Decode(&trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// Order APIs.

// PostLimitOrder places a limit order. A 202 response sets
// OrderPlaced.Incomplete: the id is assigned but the order may still fail;
// observe final state via GetOrderStatus or the account stream.
func (c *Client) PostLimitOrder(ctx context.Context, order LimitOrderRequest) (*OrderPlaced, error) {
	res, err := c.Do(ctx, Request{
		Method:        "POST",
		Path:          "/v1/orders/limit",
		Body:          order,
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrderPlaced(res)
}

// PostMarketOrder places a market order. Exactly one of BaseAmount or
// QuoteAmount must be set on the request.
func (c *Client) PostMarketOrder(ctx context.Context, order MarketOrderRequest) (*OrderPlaced, error) {
	if (order.BaseAmount == nil) == (order.QuoteAmount == nil) {
		return nil, fmt.Errorf("market order: %w", errEitherBaseOrQuote)
	}
	res, err := c.Do(ctx, Request{
		Method:        "POST",
		Path:          "/v1/orders/market",
		Body:          order,
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrderPlaced(res)
}

// PostStopLimitOrder places a stop loss or take profit limit order. The limit
// order goes on the book only once the stop price triggers; acceptance is
// still asynchronous. An empty TimeInForce defaults to GTC.
func (c *Client) PostStopLimitOrder(ctx context.Context, order StopLimitOrderRequest) (*OrderPlaced, error) {
	if order.TimeInForce == "" {
		order.TimeInForce = GoodTillCancelled
	}
	res, err := c.Do(ctx, Request{
		Method:        "POST",
		Path:          "/v1/orders/stop/limit",
		Body:          order,
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrderPlaced(res)
}

// PostBatchOrders submits up to 20 place or cancel instructions in one
// request. The response body carries one outcome per entry in submission
// order; a 200 means the batch was accepted, not that every entry executed.
func (c *Client) PostBatchOrders(ctx context.Context, entries []BatchOrderEntry) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          "/v1/batch/orders",
		Body:          map[string]interface{}{"requests": entries},
		Authenticated: true,
	})
}

// GetOrderStatus returns the status of one order, identified by exactly one
// of orderID or customerOrderID.
func (c *Client) GetOrderStatus(ctx context.Context, pair, orderID, customerOrderID string) (*OrderStatus, error) {
	path, err := orderLookupPath(fmt.Sprintf("/v1/orders/%s", pair), orderID, customerOrderID)
	if err != nil {
		return nil, err
	}
	res, err := c.Do(ctx, Request{Method: "GET", Path: path, Authenticated: true})
	if err != nil {
		return nil, err
	}
	var status OrderStatus
	if err := res.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetOpenOrders lists all open orders on the account.
func (c *Client) GetOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	res, err := c.Do(ctx, Request{Method: "GET", Path: "/v1/orders/open", Authenticated: true})
	if err != nil {
		return nil, err
	}
	var orders []OpenOrder
	if err := res.Decode(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderHistory pages through historical orders.
func (c *Client) GetOrderHistory(ctx context.Context, skip, limit int) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          "/v1/orders/history",
		Query:         pageQuery(skip, limit),
		Authenticated: true,
	})
}

// GetOrderHistorySummary returns the summary for a completed order, one whose
// status has reached Filled, Cancelled or Failed. The order is identified by
// exactly one of orderID or customerOrderID.
func (c *Client) GetOrderHistorySummary(ctx context.Context, orderID, customerOrderID string) (*Response, error) {
	path, err := orderLookupPath("/v1/orders/history/summary", orderID, customerOrderID)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: "GET", Path: path, Authenticated: true})
}

// GetOrderHistoryDetail returns every status an order has moved through,
// newest first, identified by exactly one of orderID or customerOrderID.
func (c *Client) GetOrderHistoryDetail(ctx context.Context, orderID, customerOrderID string) ([]OrderStatus, error) {
	path, err := orderLookupPath("/v1/orders/history/detail", orderID, customerOrderID)
	if err != nil {
		return nil, err
	}
	res, err := c.Do(ctx, Request{Method: "GET", Path: path, Authenticated: true})
	if err != nil {
		return nil, err
	}
	var statuses []OrderStatus
	if err := res.Decode(&statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// DeleteOrder cancels an open order, identified by exactly one of orderID or
// customerOrderID. Cancellation is itself asynchronous: a 202 means the
// cancel request was accepted, not that the order is gone.
func (c *Client) DeleteOrder(ctx context.Context, pair, orderID, customerOrderID string) (*Response, error) {
	if (orderID == "") == (customerOrderID == "") {
		return nil, ErrAmbiguousOrderID
	}
	body := map[string]string{"pair": pair}
	if orderID != "" {
		body["orderId"] = orderID
	} else {
		body["customerOrderId"] = customerOrderID
	}
	return c.Do(ctx, Request{
		Method:        "DELETE",
		Path:          "/v1/orders/order",
		Body:          body,
		Authenticated: true,
	})
}

// Simple buy/sell APIs: instant execution against a firm quote.

// PostSimpleQuote returns a firm quote for an instant buy or sell without
// placing an order.
func (c *Client) PostSimpleQuote(ctx context.Context, pair string, order SimpleOrderRequest) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          fmt.Sprintf("/v1/simple/%s/quote", pair),
		Body:          order,
		Authenticated: true,
	})
}

// PostSimpleOrder executes an instant buy or sell.
func (c *Client) PostSimpleOrder(ctx context.Context, pair string, order SimpleOrderRequest) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          fmt.Sprintf("/v1/simple/%s/order", pair),
		Body:          order,
		Authenticated: true,
	})
}

// GetSimpleOrderStatus returns the status of a simple buy/sell order.
func (c *Client) GetSimpleOrderStatus(ctx context.Context, pair, orderID string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/simple/%s/order/%s", pair, orderID),
		Authenticated: true,
	})
}

var errEitherBaseOrQuote = fmt.Errorf("either a base amount or a quote amount must be provided, but not both")

func orderLookupPath(prefix, orderID, customerOrderID string) (string, error) {
	if (orderID == "") == (customerOrderID == "") {
		return "", ErrAmbiguousOrderID
	}
	if orderID != "" {
		return fmt.Sprintf("%s/orderid/%s", prefix, orderID), nil
	}
	return fmt.Sprintf("%s/customerorderid/%s", prefix, customerOrderID), nil
}

func decodeOrderPlaced(res *Response) (*OrderPlaced, error) {
	var placed OrderPlaced
	if err := res.Decode(&placed); err != nil {
		return nil, err
	}
	placed.Incomplete = res.Incomplete
	return &placed, nil
}
