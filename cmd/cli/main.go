package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcelsud/automation-connect/config"
	"github.com/marcelsud/automation-connect/internal/app"
	"github.com/marcelsud/automation-connect/internal/logger"
	"github.com/spf13/cobra"
)

/* cli is the operator tool
 * drivers, send and stats build the same object graph as the API; sign works offline
 */

var rootCmd = &cobra.Command{
	Use:           "automation-connect",
	Short:         "Inspect drivers, send messages and compute webhook signatures",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// application is built on first use by commands that need configured drivers
var application *app.App

func loadApp(cmd *cobra.Command) (*app.App, error) {
	if application != nil {
		return application, nil
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New("automation-connect-cli", cfg.LogLevel, false)
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	application = a
	return a, nil
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if application != nil {
		application.Close(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
