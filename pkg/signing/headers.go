package signing

import (
	"errors"
	"net/http"
	"strconv"
)

// Header names required on every authenticated VALR request.
const (
	HeaderAPIKey     = "X-VALR-API-KEY"
	HeaderSignature  = "X-VALR-SIGNATURE"
	HeaderTimestamp  = "X-VALR-TIMESTAMP"
	HeaderSubaccount = "X-VALR-SUB-ACCOUNT-ID"
)

// ErrRequiresAuthentication is returned when an authenticated request is
// attempted without a complete API key/secret pair. It is raised before any
// network activity.
var ErrRequiresAuthentication = errors.New("cannot generate private request without API key/secret")

// Credentials holds one VALR API key pair. The zero value is an
// unauthenticated client.
type Credentials struct {
	Key    string
	Secret string
}

// IsZero reports whether either half of the key pair is missing.
func (c Credentials) IsZero() bool {
	return c.Key == "" || c.Secret == ""
}

// Headers builds the three authentication headers for a request, plus the
// subaccount header when a subaccount is addressed. Building the headers
// twice with identical inputs yields identical results.
func Headers(creds Credentials, timestamp int64, method, path, body, subaccount string) (http.Header, error) {
	if creds.IsZero() {
		return nil, ErrRequiresAuthentication
	}
	h := http.Header{}
	h.Set(HeaderAPIKey, creds.Key)
	h.Set(HeaderSignature, Sign(creds.Secret, timestamp, method, path, body, subaccount))
	h.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	if subaccount != "" {
		h.Set(HeaderSubaccount, subaccount)
	}
	return h, nil
}
