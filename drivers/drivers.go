// Package drivers registers the built-in driver factories
package drivers

import (
	"fmt"
	"slices"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/airtable"
	"github.com/marcelsud/automation-connect/drivers/discord"
	"github.com/marcelsud/automation-connect/drivers/google"
	"github.com/marcelsud/automation-connect/drivers/hook"
	"github.com/marcelsud/automation-connect/drivers/hubspot"
	"github.com/marcelsud/automation-connect/drivers/openai"
	"github.com/marcelsud/automation-connect/drivers/slack"
	"github.com/marcelsud/automation-connect/drivers/standard"
	"github.com/marcelsud/automation-connect/drivers/telegram"
	"github.com/marcelsud/automation-connect/drivers/whatsapp"
)

// Factories maps every built-in driver name to its constructor
var Factories = map[string]automation.Factory{
	slack.Name:    slack.New,
	discord.Name:  discord.New,
	telegram.Name: telegram.New,
	hook.Zapier:   hook.NewZapier,
	hook.Make:     hook.NewMake,
	hook.N8n:      hook.NewN8n,
	whatsapp.Name: whatsapp.New,
	openai.Name:   openai.New,
	hubspot.Name:  hubspot.New,
	airtable.Name: airtable.New,
	google.Sheets: google.NewSheets,
	google.Drive:  google.NewDrive,
	standard.Name: standard.New,
}

// Names lists the built-in driver names, sorted
func Names() []string {
	names := make([]string, 0, len(Factories))
	for name := range Factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Known reports whether name is a built-in factory
func Known(name string) bool {
	_, ok := Factories[name]
	return ok
}

// Register binds every built-in factory on m
func Register(m *automation.Manager) error {
	for _, name := range Names() {
		if err := m.Register(name, Factories[name]); err != nil {
			return fmt.Errorf("registering built-in drivers: %w", err)
		}
	}
	return nil
}
