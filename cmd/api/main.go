package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/automation-connect/config"
	"github.com/marcelsud/automation-connect/internal/app"
	"github.com/marcelsud/automation-connect/internal/http/chi"
	"github.com/marcelsud/automation-connect/internal/logger"
)

const TIMEOUT = 30 * time.Second

/* api is the webhook ingestion server
 * All wiring happens in internal/app; main only owns the process lifecycle
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
	log := logger.New("automation-connect", cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	deps := chi.Deps{
		Pipeline:     a.Pipeline,
		Catalog:      a.Manager,
		Sender:       a.Client,
		Stats:        a.Collector,
		Logger:       logger.Component(log, "http"),
		Prefix:       cfg.WebhookPrefix,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Timeout:      TIMEOUT,
		Debug:        cfg.Debug,
	}
	if a.Exporter != nil {
		deps.Metrics = a.Exporter.ServeHTTP()
	}

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      chi.Handlers(deps),
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.StorageDriver).
		Strs("drivers", a.Manager.Drivers()).
		Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errShutdown
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
