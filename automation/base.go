package automation

import (
	"context"
	"errors"
	"time"
)

// Common config keys read by Base
const (
	KeyWebhookSecret      = "webhook_secret"
	KeySignatureHeader    = "signature_header"
	KeySignatureAlgorithm = "signature_algorithm"
)

var errNoExecutor = errors.New("no http executor configured")

/* Base is the composition most drivers start from: typed settings, static
 * capabilities, the toolkit, and the default verify/handle behavior.
 * Drivers embed *Base[T] and override what differs.
 */
type Base[T any] struct {
	*Settings[T]
	Capabilities
	Kit Toolkit

	kind string
}

// NewBase decodes cfg into T and tags the toolkit with kind
func NewBase[T any](kind string, cfg Config, kit Toolkit, caps Capabilities) (*Base[T], error) {
	s, err := NewSettings[T](cfg)
	if err != nil {
		return nil, err
	}
	return &Base[T]{Settings: s, Capabilities: caps, Kit: kit, kind: kind}, nil
}

func (b *Base[T]) Name() string { return b.kind }

// VerifyWebhook applies the shared HMAC check over webhook_secret
func (b *Base[T]) VerifyWebhook(req *Request) bool {
	cfg := b.Config()
	return HMACVerifier{
		Secret:    cfg.String(KeyWebhookSecret),
		Header:    cfg.String(KeySignatureHeader),
		Algorithm: cfg.String(KeySignatureAlgorithm),
	}.Verify(req)
}

// HandleWebhook acknowledges receipt
func (b *Base[T]) HandleWebhook(_ context.Context, req *Request) (any, error) {
	b.Kit.Logger.Info().Str("event", req.Event).Msg("webhook received")
	return map[string]any{"status": "received"}, nil
}

// Do runs a vendor call through the toolkit executor
func (b *Base[T]) Do(ctx context.Context, call HTTPCall) (any, error) {
	if b.Kit.HTTP == nil {
		return nil, errNoExecutor
	}
	return b.Kit.HTTP.Do(ctx, call)
}

// Now is the toolkit clock
func (b *Base[T]) Now() time.Time {
	if b.Kit.Now == nil {
		return time.Now()
	}
	return b.Kit.Now()
}
