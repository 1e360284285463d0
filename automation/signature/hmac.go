package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHeader is read when a driver does not name its own signature header
	DefaultHeader = "X-Signature"

	// DefaultTolerance bounds the replay window of timestamped schemes
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported hmac algorithm")
	ErrTimestampExpired     = errors.New("timestamp outside tolerance")
	ErrInvalidTimestamp     = errors.New("invalid timestamp")
)

// Algorithm names a keyed hash, as written in "{algorithm}={hex}" signatures
type Algorithm string

const (
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// ParseAlgorithm maps a configured name to an Algorithm, empty meaning SHA256
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case SHA1:
		return SHA1, nil
	case SHA512:
		return SHA512, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
}

func (a Algorithm) hash() (func() hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New, nil
	case SHA1:
		return sha1.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, a)
	}
}

// Compute returns the hex HMAC of body under secret
func Compute(algo Algorithm, secret string, body []byte) (string, error) {
	h, err := algo.hash()
	if err != nil {
		return "", err
	}
	mac := hmac.New(h, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Matches compares provided against the bare hex digest and the "{algo}={hex}" form,
// both in constant time
func Matches(algo Algorithm, expected, provided string) bool {
	if algo == "" {
		algo = SHA256
	}
	bare := subtle.ConstantTimeCompare([]byte(provided), []byte(expected))
	prefixed := subtle.ConstantTimeCompare([]byte(provided), []byte(string(algo)+"="+expected))
	return bare|prefixed == 1
}

// VerifyHMAC checks a body signature. An empty secret passes, an empty signature fails.
func VerifyHMAC(algo Algorithm, secret string, body []byte, provided string) bool {
	if secret == "" {
		return true
	}
	if provided == "" {
		return false
	}
	expected, err := Compute(algo, secret, body)
	if err != nil {
		return false
	}
	return Matches(algo, expected, provided)
}

// Timestamped describes a scheme whose digest covers "{version}:{timestamp}:{body}"
// and whose signature reads "{version}={hex}". Slack uses version v0.
type Timestamped struct {
	Version   string
	Algorithm Algorithm
	Tolerance time.Duration
}

// Slack is the v0 request signing scheme used by Slack
var Slack = Timestamped{Version: "v0", Algorithm: SHA256, Tolerance: DefaultTolerance}

func (t Timestamped) base(timestamp string, body []byte) []byte {
	b := make([]byte, 0, len(t.Version)+len(timestamp)+len(body)+2)
	b = append(b, t.Version...)
	b = append(b, ':')
	b = append(b, timestamp...)
	b = append(b, ':')
	return append(b, body...)
}

// Sign returns the "{version}={hex}" signature for a timestamp and body
func (t Timestamped) Sign(secret, timestamp string, body []byte) (string, error) {
	digest, err := Compute(t.Algorithm, secret, t.base(timestamp, body))
	if err != nil {
		return "", err
	}
	return t.Version + "=" + digest, nil
}

// Verify rejects stale timestamps before comparing digests; an empty secret passes
func (t Timestamped) Verify(secret, timestamp string, body []byte, provided string, now time.Time) error {
	if secret == "" {
		return nil
	}
	if provided == "" || timestamp == "" {
		return ErrMissingHeaders
	}
	ts, err := ParseUnixTimestamp(timestamp)
	if err != nil {
		return err
	}
	tolerance := t.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	if !WithinTolerance(ts, now, tolerance) {
		return ErrTimestampExpired
	}
	expected, err := t.Sign(secret, timestamp, body)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
		return ErrNoMatch
	}
	return nil
}

// ParseUnixTimestamp parses a decimal unix seconds header value
func ParseUnixTimestamp(value string) (time.Time, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, value)
	}
	return time.Unix(secs, 0), nil
}

// WithinTolerance reports whether |now - ts| <= tolerance
func WithinTolerance(ts, now time.Time, tolerance time.Duration) bool {
	d := now.Sub(ts)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
