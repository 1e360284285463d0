package connections

import (
	"fmt"
	"os"
	"slices"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/ratelimit"
	"gopkg.in/yaml.v3"
)

/* Loader reads the connections file (automation.yaml)
 * ${VAR} references in driver values and default are expanded after parsing,
 * so environment values are never read as YAML
 */

// File is the structure of the connections file
type File struct {
	Default      string                    `yaml:"default"`
	RateLimiting ratelimit.Policy          `yaml:"rate_limiting"`
	Drivers      map[string]map[string]any `yaml:"drivers"`
}

// Loader holds the loaded connections
type Loader struct {
	known       func(string) bool
	connections map[string]*Connection
	def         string
	policy      ratelimit.Policy
}

// NewLoader creates a loader that accepts only driver kinds known reports true for.
// A nil known accepts any kind.
func NewLoader(known func(string) bool) *Loader {
	return &Loader{known: known, connections: make(map[string]*Connection)}
}

// Load reads and parses a connections file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading connections file: %w", err)
	}
	return l.Parse(data)
}

// Parse loads connections from YAML content
func (l *Loader) Parse(data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing connections YAML: %w", err)
	}
	if def, ok := expandString(file.Default).(string); ok {
		file.Default = def
	} else {
		file.Default = ""
	}

	connections := make(map[string]*Connection, len(file.Drivers))
	for name, bag := range file.Drivers {
		if bag == nil {
			bag = map[string]any{}
		}
		c := newConnection(name, expandValue(bag).(map[string]any))
		if err := c.Validate(l.known); err != nil {
			return fmt.Errorf("validating connection: %w", err)
		}
		connections[name] = c
	}
	if err := file.RateLimiting.Validate(); err != nil {
		return fmt.Errorf("validating rate_limiting: %w", err)
	}
	if file.Default != "" {
		if _, ok := connections[file.Default]; !ok {
			return fmt.Errorf("default connection %s is not configured", file.Default)
		}
	}

	l.connections = connections
	l.def = file.Default
	l.policy = file.RateLimiting
	return nil
}

// Get retrieves a connection by name
func (l *Loader) Get(name string) (*Connection, error) {
	c, ok := l.connections[name]
	if !ok {
		return nil, fmt.Errorf("connection not found: %s", name)
	}
	return c, nil
}

// List returns all loaded connections sorted by name
func (l *Loader) List() []*Connection {
	out := make([]*Connection, 0, len(l.connections))
	for _, c := range l.connections {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Connection) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Exists checks if a connection name is configured
func (l *Loader) Exists(name string) bool {
	_, ok := l.connections[name]
	return ok
}

// Configs returns the bags keyed by connection name, as the driver manager takes them
func (l *Loader) Configs() map[string]automation.Config {
	out := make(map[string]automation.Config, len(l.connections))
	for name, c := range l.connections {
		out[name] = c.Config.Clone()
	}
	return out
}

// Default returns the file's default connection, else fallback
func (l *Loader) Default(fallback string) string {
	if l.def != "" {
		return l.def
	}
	return fallback
}

// Policy returns the rate limiting section
func (l *Loader) Policy() ratelimit.Policy {
	return l.policy
}
