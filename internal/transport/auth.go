package transport

import (
	"net/http"
	"strings"
)

// Authenticator sets credentials on an outgoing request.
type Authenticator func(req *http.Request)

// AuthenticatorFor sends apiKey as a bearer token, or as the value of
// header when one is named (hosted gateways often expect x-api-key).
// Without a key it sends nothing.
func AuthenticatorFor(apiKey, header string) Authenticator {
	switch {
	case apiKey == "":
		return func(*http.Request) {}
	case header == "" || strings.EqualFold(header, "Authorization"):
		return func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
	default:
		return func(req *http.Request) {
			req.Header.Set(header, apiKey)
		}
	}
}
