// Package valrconnector is a Go client for the VALR cryptocurrency
// exchange, covering both the REST API and the real-time WebSocket streams.
//
// The library is split into focused packages:
//
//   - pkg/rest: the REST client. Public market data, account queries and
//     order placement, with request signing, rate limiting and optional
//     429 backoff handling built in.
//
//   - pkg/stream: the WebSocket layer. Signed connection handshakes, the
//     trade-stream subscription model and an ordered dispatch loop that
//     routes each inbound event to a caller-supplied hook.
//
//   - pkg/signing: the request signature scheme shared by both transports.
//     Every authenticated request carries an HMAC-SHA512 signature over the
//     timestamp, method, path, body and subaccount identifier.
//
//   - pkg/logging and pkg/ratelimit: structured logging (zap-backed) and
//     token-bucket rate limiting used throughout.
//
// # Error handling
//
// The REST client distinguishes three failure shapes:
//
//   - APIError: the exchange returned its structured error envelope, a JSON
//     object carrying "code" and "message". The envelope can arrive under
//     any HTTP status, including 200 OK, and always wins over the status
//     line.
//
//   - HTTPError: a non-2xx status without the envelope. The raw response
//     body is preserved.
//
//   - RESTAPIError: the client could not make sense of the exchange's
//     behavior, for example a success status carrying a non-JSON body or a
//     rate-limit response without a usable Retry-After header.
//
// Operations requiring authentication fail fast with
// ErrRequiresAuthentication before any network traffic when no credentials
// are configured.
//
// # REST example
//
//	client := rest.NewClient(
//	    signing.Credentials{Key: os.Getenv("VALR_API_KEY"), Secret: os.Getenv("VALR_API_SECRET")},
//	    rest.WithRateLimit(ratelimit.Rate{Limit: 10, Interval: time.Second}),
//	)
//
//	summary, err := client.GetMarketSummaryForPair(ctx, "BTCZAR")
//	if err != nil {
//	    var apiErr *rest.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Fatalf("exchange rejected the request: %s (%s)", apiErr.Message, apiErr.Code)
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Printf("BTCZAR last traded at %s\n", summary.LastTradedPrice)
//
// Placing an order:
//
//	placed, err := client.PostLimitOrder(ctx, rest.LimitOrderRequest{
//	    Side:     rest.SideBuy,
//	    Pair:     "BTCZAR",
//	    Quantity: decimal.RequireFromString("0.001"),
//	    Price:    decimal.RequireFromString("800000"),
//	})
//
// Order placement is asynchronous on the exchange side: a returned order ID
// means the order was accepted for processing, not that it succeeded. Poll
// GetOrderStatus, or consume ORDER_STATUS_UPDATE on the account stream.
//
// # WebSocket example
//
//	session := stream.NewTradeSession(creds,
//	    []string{"BTCZAR"},
//	    []stream.TradeEvent{stream.NewTrade},
//	    map[stream.TradeEvent]stream.Hook{
//	        stream.NewTrade: stream.HookFunc(func(ctx context.Context, msg stream.Message) error {
//	            fmt.Printf("trade: %s\n", msg.Raw)
//	            return nil
//	        }),
//	    },
//	)
//	if err := session.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks for the lifetime of the connection and never reconnects on its
// own; when the socket drops, the caller decides whether to build a fresh
// session.
package valrconnector
