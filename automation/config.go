package automation

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/zeebo/blake3"
)

// Config is the opaque key/value bag configured for one driver name
type Config map[string]any

// Clone returns a deep copy; nested maps and slices are copied so drivers never share them
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Config(t).Clone())
	case Config:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	default:
		return v
	}
}

// Merge returns a copy of c with partial written over it, last write wins per key
func (c Config) Merge(partial Config) Config {
	out := c.Clone()
	maps.Copy(out, partial.Clone())
	return out
}

// String returns the string value of key, or "" when absent or not a string
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Signature is a stable digest of the bag, used to key cached driver instances
func (c Config) Signature() string {
	// encoding/json sorts map keys, so equal bags encode identically
	data, err := json.Marshal(c)
	if err != nil {
		data = fmt.Appendf(nil, "%v", map[string]any(c))
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Decode fills a typed config struct from the bag. Keys are matched on mapstructure tags,
// strings are converted to numbers, bools and durations where the field asks for them.
func Decode(c Config, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("creating config decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(c)); err != nil {
		return fmt.Errorf("decoding driver config: %w", err)
	}
	return nil
}

// Settings holds a driver's merged bag and its decoded typed form T.
// Drivers embed it to satisfy Config and SetConfig.
type Settings[T any] struct {
	mu    sync.RWMutex
	raw   Config
	typed T
}

// NewSettings decodes cfg into T, failing construction when the bag is malformed
func NewSettings[T any](cfg Config) (*Settings[T], error) {
	raw := cfg.Clone()
	var typed T
	if err := Decode(raw, &typed); err != nil {
		return nil, err
	}
	return &Settings[T]{raw: raw, typed: typed}, nil
}

// Config returns a copy of the merged bag
func (s *Settings[T]) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Clone()
}

// SetConfig merges partial over the current bag and re-decodes it.
// The bag is left untouched when the merged result does not decode.
func (s *Settings[T]) SetConfig(partial Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.raw.Merge(partial)
	var typed T
	if err := Decode(merged, &typed); err != nil {
		return err
	}
	s.raw = merged
	s.typed = typed
	return nil
}

// Typed returns the decoded configuration
func (s *Settings[T]) Typed() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typed
}
