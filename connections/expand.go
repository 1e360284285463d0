package connections

import (
	"os"
	"regexp"
)

// envRef matches ${NAME}; a bare $ is literal
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandValue resolves ${VAR} references inside decoded string scalars.
// A value that is exactly one reference to an unset or empty variable becomes nil.
func expandValue(v any) any {
	switch t := v.(type) {
	case string:
		return expandString(t)
	case map[string]any:
		for k, val := range t {
			t[k] = expandValue(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = expandValue(val)
		}
		return t
	default:
		return v
	}
}

func expandString(s string) any {
	if m := envRef.FindStringSubmatch(s); m != nil && m[0] == s {
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		return nil
	}
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}
