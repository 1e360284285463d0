package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/marcelsud/automation-connect/config"
	"github.com/marcelsud/automation-connect/internal/app"
	"github.com/marcelsud/automation-connect/internal/logger"
)

/* worker replays queued sends from the Redis stream
 * Usage: QUEUE_ENABLED=true go run cmd/worker/main.go [worker-id]
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	log := logger.New("automation-connect-worker", cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	id := "worker-" + uuid.NewString()[:8]
	if len(os.Args) > 1 {
		id = os.Args[1]
	}
	w, err := a.NewWorker(id)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
