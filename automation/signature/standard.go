package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

/* Standard Webhooks scheme (https://www.standardwebhooks.com)
 * Signed content is {webhook-id}.{webhook-timestamp}.{body}, HMAC-SHA256, base64
 * Secrets are whsec_ prefixed base64 strings
 */

const (
	SecretPrefix     = "whsec_"
	SignatureVersion = "v1"

	MinSecretBytes = 24
	MaxSecretBytes = 64

	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

var (
	ErrMissingHeaders = errors.New("missing webhook headers")
	ErrNoMatch        = errors.New("no matching signature found")
)

// Secret is a Standard Webhooks signing secret
type Secret struct {
	raw     []byte
	encoded string
}

// GenerateSecret creates a random secret of the given size in bytes
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}
	return Secret{raw: raw, encoded: SecretPrefix + base64.StdEncoding.EncodeToString(raw)}, nil
}

// ParseSecret decodes a whsec_ prefixed secret
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, SecretPrefix))
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}
	return Secret{raw: raw, encoded: encoded}, nil
}

func (s Secret) String() string {
	return s.encoded
}

func (s Secret) Bytes() []byte {
	return s.raw
}

// Signature is one "v1,<base64>" entry of the webhook-signature header
type Signature struct {
	Version   string
	Signature string
}

func (s Signature) String() string {
	return s.Version + "," + s.Signature
}

// ParseSignature parses a single "version,signature" entry
func ParseSignature(sig string) (Signature, error) {
	version, value, ok := strings.Cut(sig, ",")
	if !ok {
		return Signature{}, fmt.Errorf("invalid signature format, expected 'version,signature'")
	}
	return Signature{Version: version, Signature: value}, nil
}

// ParseSignatureHeader splits the space-delimited webhook-signature header
func ParseSignatureHeader(header string) ([]Signature, error) {
	if strings.TrimSpace(header) == "" {
		return nil, fmt.Errorf("signature header is empty")
	}
	var signatures []Signature
	for _, part := range strings.Fields(header) {
		sig, err := ParseSignature(part)
		if err != nil {
			return nil, fmt.Errorf("parsing signature '%s': %w", part, err)
		}
		signatures = append(signatures, sig)
	}
	return signatures, nil
}

// BuildSignatureHeader joins signatures into a webhook-signature header value
func BuildSignatureHeader(signatures []Signature) string {
	parts := make([]string, len(signatures))
	for i, sig := range signatures {
		parts[i] = sig.String()
	}
	return strings.Join(parts, " ")
}

// Sign signs a message with the Standard Webhooks content layout
func Sign(secret Secret, msgID string, timestamp time.Time, payload []byte) (Signature, error) {
	if strings.Contains(msgID, ".") {
		return Signature{}, fmt.Errorf("message ID must not contain '.'")
	}
	mac := hmac.New(sha256.New, secret.Bytes())
	mac.Write([]byte(msgID + "." + strconv.FormatInt(timestamp.Unix(), 10) + "."))
	mac.Write(payload)
	return Signature{
		Version:   SignatureVersion,
		Signature: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}, nil
}

// Verify checks one signature in constant time
func Verify(secret Secret, msgID string, timestamp time.Time, payload []byte, provided Signature) (bool, error) {
	if provided.Version != SignatureVersion {
		return false, fmt.Errorf("unsupported signature version: %s", provided.Version)
	}
	calculated, err := Sign(secret, msgID, timestamp, payload)
	if err != nil {
		return false, fmt.Errorf("calculating signature: %w", err)
	}
	got, err := base64.StdEncoding.DecodeString(provided.Signature)
	if err != nil {
		return false, fmt.Errorf("decoding provided signature: %w", err)
	}
	want, _ := base64.StdEncoding.DecodeString(calculated.Signature)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// VerifyMultiple accepts when any signature matches any secret (secret rotation)
func VerifyMultiple(secrets []Secret, msgID string, timestamp time.Time, payload []byte, signatures []Signature) (bool, error) {
	if len(secrets) == 0 || len(signatures) == 0 {
		return false, fmt.Errorf("must provide at least one secret and one signature")
	}
	for _, sig := range signatures {
		for _, secret := range secrets {
			// unknown versions are skipped, other entries may still match
			if ok, err := Verify(secret, msgID, timestamp, payload, sig); err == nil && ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// Headers builds the three Standard Webhooks headers for an outgoing message
func Headers(secret Secret, msgID string, timestamp time.Time, payload []byte) (http.Header, error) {
	sig, err := Sign(secret, msgID, timestamp, payload)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(timestamp.Unix(), 10))
	h.Set(HeaderSignature, sig.String())
	return h, nil
}

// VerifyHeaders validates an inbound Standard Webhooks request against its headers,
// rejecting timestamps outside tolerance of now
func VerifyHeaders(secrets []Secret, header http.Header, payload []byte, now time.Time, tolerance time.Duration) error {
	msgID := header.Get(HeaderID)
	rawTS := header.Get(HeaderTimestamp)
	rawSig := header.Get(HeaderSignature)
	if msgID == "" || rawTS == "" || rawSig == "" {
		return ErrMissingHeaders
	}
	ts, err := ParseUnixTimestamp(rawTS)
	if err != nil {
		return err
	}
	if !WithinTolerance(ts, now, tolerance) {
		return ErrTimestampExpired
	}
	signatures, err := ParseSignatureHeader(rawSig)
	if err != nil {
		return err
	}
	ok, err := VerifyMultiple(secrets, msgID, ts, payload, signatures)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoMatch
	}
	return nil
}
