package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veiloq/valr-connector/pkg/signing"
)

// ErrRequiresAuthentication is returned when an authenticated endpoint is
// called without a complete key pair. No request is sent.
var ErrRequiresAuthentication = signing.ErrRequiresAuthentication

// ErrAmbiguousOrderID is returned when an order lookup or cancellation is
// given both an exchange order id and a customer order id, or neither.
// Exactly one must identify the order.
var ErrAmbiguousOrderID = errors.New("either an order id or a customer order id must be provided, but not both")

// APIError is a business-logic error reported by the exchange itself: any
// JSON response body carrying both "code" and "message" fields, regardless of
// HTTP status. VALR reports some errors inside 200 OK bodies, so this is
// checked before the status code.
type APIError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("valr api error %s: %s", e.Code, e.Message)
}

// RESTAPIError is an unknown or transport-level failure the exchange did not
// annotate: a non-JSON body on a successful status, or a malformed 429.
type RESTAPIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RESTAPIError) Error() string {
	return fmt.Sprintf("valr rest error (HTTP %d): %s", e.Status, e.Message)
}

// HTTPError is a raw HTTP error response that carried no VALR error envelope.
// The body is preserved unparsed; VALR's 429 responses in particular have an
// HTML body that must not be fed to a JSON decoder.
type HTTPError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d error response", e.Status)
}

// apiErrorFromBody returns the error envelope in body, or nil when body is
// not a JSON object carrying both "code" and "message".
func apiErrorFromBody(body []byte) *APIError {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	code, okCode := envelope["code"]
	message, okMessage := envelope["message"]
	if !okCode || !okMessage {
		return nil
	}
	return &APIError{
		Code:    rawToString(code),
		Message: rawToString(message),
	}
}

// rawToString renders a JSON scalar as a plain string. VALR emits numeric and
// string error codes depending on the endpoint.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
