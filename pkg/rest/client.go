// Package rest implements the authenticated VALR REST pipeline: request
// construction and signing, error classification, the opt-in HTTP 429
// Retry-After back-off, and the HTTP 202 incomplete-order notice. A catalog
// of thin per-endpoint methods sits on top in endpoints.go.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/veiloq/valr-connector/pkg/logging"
	"github.com/veiloq/valr-connector/pkg/ratelimit"
	"github.com/veiloq/valr-connector/pkg/signing"
)

// DefaultBaseURL is the production VALR REST endpoint.
const DefaultBaseURL = "https://api.valr.com"

const defaultTimeout = 10 * time.Second

// IncompleteOrder is the HTTP 202 success-path notice: the exchange accepted
// the request but the order is not yet finalized. The body usually carries
// the order id the caller needs; final state must be observed via the order
// status endpoint or the account stream.
type IncompleteOrder struct {
	Path string
	Body json.RawMessage
}

// Response is the decoded result of one successful API call.
type Response struct {
	Status int
	Body   json.RawMessage

	// Incomplete is set on HTTP 202: accepted for processing, not yet
	// fully applied.
	Incomplete bool
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Client executes VALR REST API calls. Calls are synchronous; a single client
// is safe for sequential reuse, but simultaneous calls should use external
// synchronization or independent clients.
type Client struct {
	baseURL    string
	creds      signing.Credentials
	httpClient *http.Client
	limiter    ratelimit.RateLimiter
	logger     logging.Logger
	subaccount string

	// rateLimitBackoff opts in to honouring 429 Retry-After cool-downs.
	rateLimitBackoff bool
	onIncomplete     func(IncompleteOrder)

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger attaches a logger. The default discards output.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit enables client-side pacing of outbound requests.
func WithRateLimit(rate ratelimit.Rate) Option {
	return func(c *Client) {
		c.limiter = ratelimit.NewTokenBucketLimiter(rate)
	}
}

// WithRateLimitBackoff opts in to honouring HTTP 429 Retry-After cool-downs.
// While enabled, a rate-limited request sleeps for the server-specified
// duration and is rebuilt and re-signed, indefinitely, until it is accepted
// or the context is cancelled. When disabled (the default) a 429 surfaces as
// a raw *HTTPError with the body left unparsed.
func WithRateLimitBackoff() Option {
	return func(c *Client) {
		c.rateLimitBackoff = true
	}
}

// WithIncompleteOrderHandler registers a callback invoked whenever a call
// returns HTTP 202. The response is still returned to the caller with
// Response.Incomplete set; the callback is for centralized observation.
func WithIncompleteOrderHandler(fn func(IncompleteOrder)) Option {
	return func(c *Client) {
		c.onIncomplete = fn
	}
}

// WithSubaccount addresses all authenticated calls to a subaccount unless a
// request overrides it.
func WithSubaccount(id string) Option {
	return func(c *Client) {
		c.subaccount = id
	}
}

// NewClient creates a VALR REST client. Zero credentials are accepted; only
// authenticated endpoints require them.
func NewClient(creds signing.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    ratelimit.NewUnlimited(),
		logger:     logging.NewNopLogger(),
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes one API call and classifies the response.
//
// The VALR error envelope (a JSON object with "code" and "message") is
// checked before the HTTP status, because the exchange reports some errors
// inside 200 OK bodies. HTTP 429 is the only condition that triggers an
// automatic retry, and only when enabled via WithRateLimitBackoff.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	for {
		httpReq, err := c.build(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if res.StatusCode == http.StatusTooManyRequests {
			retry, err := c.handleTooManyRequests(ctx, req, res, body)
			if err != nil {
				return nil, err
			}
			if retry {
				continue
			}
		}

		return c.classify(req, res.StatusCode, body)
	}
}

// handleTooManyRequests applies the Retry-After cool-down when back-off is
// enabled. The 429 body is HTML and is never parsed as JSON.
func (c *Client) handleTooManyRequests(ctx context.Context, req Request, res *http.Response, body []byte) (bool, error) {
	if !c.rateLimitBackoff {
		return false, &HTTPError{Status: res.StatusCode, Body: body}
	}
	header := res.Header.Get("Retry-After")
	seconds, err := strconv.ParseFloat(header, 64)
	if header == "" || err != nil || seconds < 0 {
		return false, &RESTAPIError{
			Status:  res.StatusCode,
			Message: fmt.Sprintf("HTTP 429 processing failed: missing or malformed Retry-After header %q", header),
		}
	}
	delay := time.Duration(seconds * float64(time.Second))
	c.logger.Warn("rate limited, applying Retry-After back-off",
		logging.String("path", req.Path),
		logging.Duration("retry_after", delay),
	)
	if err := c.sleep(ctx, delay); err != nil {
		return false, err
	}
	return true, nil
}

// classify maps a non-429 response onto a result or a typed error.
func (c *Client) classify(req Request, status int, body []byte) (*Response, error) {
	decodable := len(body) > 0 && json.Valid(body)

	// Error envelope beats HTTP status: errors can arrive inside 200 OK.
	if decodable {
		if apiErr := apiErrorFromBody(body); apiErr != nil {
			return nil, apiErr
		}
	}

	if status >= 400 {
		return nil, &HTTPError{Status: status, Body: body}
	}

	if len(body) > 0 && !decodable {
		return nil, &RESTAPIError{Status: status, Message: "unknown API error: response body is not JSON"}
	}

	resp := &Response{Status: status, Body: body}
	if status == http.StatusAccepted {
		resp.Incomplete = true
		c.logger.Warn("order processing incomplete",
			logging.String("path", req.Path),
			logging.Int("status", status),
		)
		if c.onIncomplete != nil {
			c.onIncomplete(IncompleteOrder{Path: req.Path, Body: body})
		}
	}
	return resp, nil
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
