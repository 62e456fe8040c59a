package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/veiloq/valr-connector/pkg/logging"
	"github.com/veiloq/valr-connector/pkg/ratelimit"
	"github.com/veiloq/valr-connector/pkg/rest"
	"github.com/veiloq/valr-connector/pkg/signing"
	"github.com/veiloq/valr-connector/pkg/stream"
)

func main() {
	// Credentials come from the environment; a local .env file is optional.
	_ = godotenv.Load()

	logger := logging.NewZapLogger(logging.WithDevelopmentMode())

	creds := signing.Credentials{
		Key:    os.Getenv("VALR_API_KEY"),
		Secret: os.Getenv("VALR_API_SECRET"),
	}

	client := rest.NewClient(creds,
		rest.WithLogger(logger),
		rest.WithTimeout(15*time.Second),
		rest.WithRateLimit(ratelimit.Rate{Limit: 10, Interval: time.Second}),
		rest.WithRateLimitBackoff(),
		rest.WithIncompleteOrderHandler(func(notice rest.IncompleteOrder) {
			logger.Warn("order accepted but not completed",
				logging.String("path", notice.Path),
			)
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Public market data needs no credentials.
	logger.Info("fetching market summary")
	summary, err := client.GetMarketSummaryForPair(ctx, "BTCZAR")
	if err != nil {
		logger.Error("failed to get market summary", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("market summary",
		logging.String("pair", summary.CurrencyPair),
		logging.String("last_traded_price", summary.LastTradedPrice.String()),
		logging.String("base_volume", summary.BaseVolume.String()),
	)

	logger.Info("fetching order book")
	book, err := client.GetOrderBookPublic(ctx, "BTCZAR")
	if err != nil {
		logger.Error("failed to get order book", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("order book snapshot",
		logging.Int("bid_levels", len(book.Bids)),
		logging.Int("ask_levels", len(book.Asks)),
	)

	// Everything below requires credentials.
	if creds.IsZero() {
		logger.Info("no credentials configured; skipping account and stream examples")
		return
	}

	logger.Info("fetching balances")
	balances, err := client.GetBalances(ctx)
	if err != nil {
		logger.Error("failed to get balances", logging.Error(err))
		os.Exit(1)
	}
	for _, balance := range balances {
		logger.Info("balance",
			logging.String("currency", balance.Currency),
			logging.String("available", balance.Available.String()),
		)
	}

	// Order placement mutates the account, so it stays behind an explicit
	// opt-in. Acceptance is asynchronous: the returned id only means the
	// exchange took the order for processing.
	if os.Getenv("VALR_PLACE_EXAMPLE_ORDER") == "true" {
		placed, err := client.PostLimitOrder(ctx, rest.LimitOrderRequest{
			Side:     rest.SideBuy,
			Pair:     "BTCZAR",
			Quantity: decimal.RequireFromString("0.0001"),
			Price:    decimal.RequireFromString("100000"),
			PostOnly: true,
		})
		if err != nil {
			logger.Error("failed to place order", logging.Error(err))
			os.Exit(1)
		}
		logger.Info("order accepted",
			logging.String("order_id", placed.ID),
			logging.Bool("incomplete", placed.Incomplete),
		)

		status, err := client.GetOrderStatus(ctx, "BTCZAR", placed.ID, "")
		if err != nil {
			logger.Error("failed to get order status", logging.Error(err))
		} else {
			logger.Info("order status", logging.String("status", status.OrderStatusType))
		}
	}

	// Stream live trades and market summaries for BTCZAR. The session never
	// reconnects by itself; this example simply exits when the socket drops.
	session := stream.NewTradeSession(creds,
		[]string{"BTCZAR"},
		[]stream.TradeEvent{stream.NewTrade, stream.MarketSummaryUpdate},
		map[stream.TradeEvent]stream.Hook{
			stream.NewTrade: stream.HookFunc(func(ctx context.Context, msg stream.Message) error {
				logger.Info("trade", logging.String("payload", string(msg.Raw)))
				return nil
			}),
			stream.MarketSummaryUpdate: stream.HookFunc(func(ctx context.Context, msg stream.Message) error {
				logger.Info("market summary update", logging.String("payload", string(msg.Raw)))
				return nil
			}),
		},
		stream.WithLogger(logger),
		stream.WithDialAttempts(3, 2*time.Second),
	)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("streaming... press Ctrl+C to exit")
	select {
	case <-sigChan:
		logger.Info("shutting down")
		session.Close()
		<-done
	case err := <-done:
		if err != nil {
			logger.Error("stream ended", logging.Error(err))
			os.Exit(1)
		}
	}
}
