package automation

import (
	"bytes"
	"encoding/json"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Request is the transport-neutral view of an inbound webhook
type Request struct {
	Service    string
	Event      string
	Method     string
	Header     http.Header
	Query      url.Values
	Body       []byte
	IP         string
	UserAgent  string
	ReceivedAt time.Time
}

// NewRequest captures an *http.Request whose body has already been read
func NewRequest(r *http.Request, service, event string, body []byte) *Request {
	return &Request{
		Service:    service,
		Event:      event,
		Method:     r.Method,
		Header:     r.Header.Clone(),
		Query:      r.URL.Query(),
		Body:       body,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		ReceivedAt: time.Now(),
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware may already have replaced RemoteAddr with a bare IP
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// HeaderValue is a nil-safe header lookup
func (r *Request) HeaderValue(name string) string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get(name)
}

// Payload returns the structured input: a JSON object body, a form body, or
// {"raw": body} for anything else. Query parameters fill keys the body does not set.
func (r *Request) Payload() map[string]any {
	out := map[string]any{}
	body := bytes.TrimSpace(r.Body)
	switch {
	case len(body) == 0:
	case r.isForm():
		if vals, err := url.ParseQuery(string(body)); err == nil {
			for k, v := range vals {
				out[k] = first(v)
			}
		}
	default:
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err == nil && obj != nil {
			out = obj
		} else {
			var value any
			if json.Unmarshal(body, &value) == nil {
				out["_json"] = value
			} else {
				out["raw"] = string(r.Body)
			}
		}
	}
	for k, v := range r.Query {
		if _, set := out[k]; !set {
			out[k] = first(v)
		}
	}
	return out
}

func (r *Request) isForm() bool {
	ct := r.HeaderValue("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/x-www-form-urlencoded"
}

func first(v []string) any {
	if len(v) == 1 {
		return v[0]
	}
	s := make([]any, len(v))
	for i := range v {
		s[i] = v[i]
	}
	return s
}
