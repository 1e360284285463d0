package connections

import (
	"fmt"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/signature"
)

/* Connection is one configured driver entry
 * Name is the lookup key, Driver the factory it is built with
 */
type Connection struct {
	Name   string
	Driver string
	Config automation.Config
}

func newConnection(name string, bag map[string]any) *Connection {
	cfg := automation.Config(bag).Clone()
	driver := cfg.String(automation.DriverKey)
	if _, set := cfg[automation.DriverKey]; !set {
		driver = name
	}
	return &Connection{Name: name, Driver: driver, Config: cfg}
}

// Validate checks the entry against the factory set known reports on
func (c *Connection) Validate(known func(string) bool) error {
	if c.Name == "" {
		return fmt.Errorf("connection name cannot be empty")
	}
	if c.Driver == "" {
		return fmt.Errorf("driver cannot be empty for connection %s", c.Name)
	}
	if known != nil && !known(c.Driver) {
		return fmt.Errorf("unknown driver %s for connection %s", c.Driver, c.Name)
	}
	for _, key := range []string{"webhook_url", "target_url", "base_url", "api_base_url"} {
		if v, set := c.Config[key]; set && v == "" {
			return fmt.Errorf("%s cannot be empty for driver %s", key, c.Name)
		}
	}
	if secret := c.Config.String("secret"); secret != "" && c.Driver == "standard" {
		if _, err := signature.ParseSecret(secret); err != nil {
			return fmt.Errorf("invalid secret for driver %s: %w", c.Name, err)
		}
	}
	return nil
}
