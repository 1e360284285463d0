package main

import (
	"github.com/spf13/cobra"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List configured drivers and their capabilities",
	Args:  cobra.NoArgs,
	RunE:  runDrivers,
}

func init() {
	rootCmd.AddCommand(driversCmd)
}

func runDrivers(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	names := a.Manager.Drivers()
	if len(names) == 0 {
		cmd.Println("No drivers configured.")
		return nil
	}

	cmd.Printf("Default: %s\n\n", a.Manager.DefaultDriver())
	for _, name := range names {
		d, err := a.Manager.Describe(cmd.Context(), name)
		if err != nil {
			cmd.Printf("  %s\n    Error: %v\n\n", name, err)
			continue
		}
		cmd.Printf("  %s (%s)\n", d.Name, d.Driver)
		cmd.Printf("    Inbound:  %t\n", d.Inbound)
		cmd.Printf("    Outbound: %t\n", d.Outbound)
		for action, desc := range d.Actions {
			cmd.Printf("    Action:   %s - %s\n", action, desc)
		}
		if len(d.Events) > 0 {
			cmd.Printf("    Events:   %v\n", d.Events)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d drivers\n", len(names))
	return nil
}
