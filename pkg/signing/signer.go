// Package signing implements VALR API request authentication: an HMAC-SHA512
// signature over the canonical request string, and the X-VALR-* header set
// that carries it.
//
// The signature input is the exact concatenation
//
//	timestamp + METHOD + path + body + subaccount
//
// where the timestamp is milliseconds since epoch, the method is upper-cased,
// the path excludes the host but includes the query string when present, the
// body is the exact serialized payload (empty string for bodiless requests)
// and the subaccount defaults to the empty string. The same format signs REST
// calls and WebSocket handshakes.
package signing

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
)

// Sign computes the lowercase hex HMAC-SHA512 signature for one request.
// It is a pure function and safe for concurrent use.
//
// An empty subaccount contributes no bytes, so a signature with the
// subaccount omitted equals one with the empty string.
func Sign(secret string, timestamp int64, method, path, body, subaccount string) string {
	var payload strings.Builder
	payload.WriteString(strconv.FormatInt(timestamp, 10))
	payload.WriteString(strings.ToUpper(method))
	payload.WriteString(path)
	payload.WriteString(body)
	payload.WriteString(subaccount)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
