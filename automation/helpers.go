package automation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/marcelsud/automation-connect/automation/signature"
)

// Redacted replaces sensitive values in sanitized maps
const Redacted = "[REDACTED]"

var sensitiveKeys = []string{"password", "token", "secret", "key", "auth"}

// Sanitize returns a copy of m with values under sensitive-looking keys redacted, recursively
func Sanitize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isSensitive(k) {
			out[k] = Redacted
			continue
		}
		switch t := v.(type) {
		case map[string]any:
			out[k] = Sanitize(t)
		case Config:
			out[k] = Sanitize(t)
		default:
			out[k] = v
		}
	}
	return out
}

// SanitizeHeaders flattens h into one value per name with sensitive headers redacted
func SanitizeHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitive(k) || strings.EqualFold(k, "Cookie") {
			out[k] = Redacted
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// WebhookURL builds the public inbound URL for a service, e.g.
// https://example.com/webhooks/slack/events
func WebhookURL(baseURL, prefix, service, event string) string {
	parts := []string{strings.TrimRight(baseURL, "/"), strings.Trim(prefix, "/"), url.PathEscape(service)}
	if event != "" {
		parts = append(parts, url.PathEscape(event))
	}
	return strings.Join(parts, "/")
}

// HMACVerifier is the default verification strategy: hex HMAC of the raw body read from Header
type HMACVerifier struct {
	Secret    string
	Header    string
	Algorithm string
}

// Verify implements the shared algorithm; an empty secret passes and a missing header fails
func (v HMACVerifier) Verify(req *Request) bool {
	if v.Secret == "" {
		return true
	}
	header := v.Header
	if header == "" {
		header = signature.DefaultHeader
	}
	provided := req.HeaderValue(header)
	if provided == "" {
		return false
	}
	algo, err := signature.ParseAlgorithm(v.Algorithm)
	if err != nil {
		return false
	}
	return signature.VerifyHMAC(algo, v.Secret, req.Body, provided)
}
