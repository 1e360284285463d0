// Package app builds the shared object graph used by the binaries under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/config"
	"github.com/marcelsud/automation-connect/connections"
	"github.com/marcelsud/automation-connect/dispatch"
	"github.com/marcelsud/automation-connect/drivers"
	"github.com/marcelsud/automation-connect/events"
	"github.com/marcelsud/automation-connect/internal/logger"
	"github.com/marcelsud/automation-connect/metrics"
	"github.com/marcelsud/automation-connect/queue"
	redisqueue "github.com/marcelsud/automation-connect/queue/redis"
	"github.com/marcelsud/automation-connect/ratelimit"
	"github.com/marcelsud/automation-connect/webhook"
	"github.com/marcelsud/automation-connect/webhook/memory"
	"github.com/marcelsud/automation-connect/webhook/postgres"
	webhookredis "github.com/marcelsud/automation-connect/webhook/redis"
	"github.com/marcelsud/automation-connect/webhook/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds the long-lived components; Close releases them in reverse order
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Connections *connections.Loader
	Manager     *automation.Manager
	Logs        *webhook.Service
	Hub         *events.Hub
	Pipeline    *webhook.Pipeline
	Client      *dispatch.Client
	Queue       queue.Queue
	Collector   *metrics.StoreCollector
	Exporter    *metrics.OTelExporter

	redis   *redis.Client
	workers *redisqueue.Queue
	repo    webhook.Repository
}

// New wires every component from cfg
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Hub: events.NewHub()}

	a.Connections = connections.NewLoader(drivers.Known)
	if err := a.loadConnections(); err != nil {
		return nil, err
	}

	if cfg.UsesRedis() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.repo = repo
	a.Logs = webhook.NewService(repo)

	kit := automation.Toolkit{
		HTTP:   executor.New(cfg.HTTPClientTimeout, logger),
		Logger: logger,
	}
	a.Manager = automation.NewManager(a.Connections.Configs(), a.Connections.Default(cfg.DefaultDriver), kit)
	if err := drivers.Register(a.Manager); err != nil {
		a.Close(ctx)
		return nil, err
	}

	if cfg.QueueEnabled {
		a.workers = redisqueue.New(a.redis)
		a.Queue = a.workers
	}

	collectorOpts := []metrics.CollectorOption{}
	if a.Queue != nil {
		collectorOpts = append(collectorOpts, metrics.WithQueue(a.Queue), metrics.WithWorkers(a.workers))
	}
	a.Collector = metrics.NewStoreCollector(a.Logs, a.Manager.Drivers, collectorOpts...)
	if cfg.MetricsEnabled {
		a.Exporter, err = metrics.NewOTelExporter(a.Collector, logger)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	policy := a.Connections.Policy()
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if policy.Enabled {
		if cfg.RateLimitBackend == "redis" {
			limiter = ratelimit.NewRedis(a.redis, policy)
		} else {
			limiter = ratelimit.NewMemory(policy)
		}
	}

	a.Pipeline = webhook.NewPipeline(a.Manager, a.Logs, a.pipelineOptions(limiter)...)
	a.Client = dispatch.NewClient(a.Manager, a.clientOptions(limiter)...)
	return a, nil
}

func (a *App) loadConnections() error {
	file := a.Config.ConnectionsFile
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		a.Logger.Warn().Str("file", file).Msg("connections file not found, no drivers configured")
		return nil
	}
	if err := a.Connections.Load(file); err != nil {
		return fmt.Errorf("loading connections: %w", err)
	}
	return nil
}

func (a *App) openRepository(ctx context.Context) (webhook.Repository, error) {
	switch a.Config.StorageDriver {
	case config.StorageMemory:
		return memory.NewRepository(), nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, a.Config.DatabaseURL, a.Config.DBMaxConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(pool, a.Logger); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewRepository(pool), nil
	case config.StorageRedis:
		return webhookredis.NewRepositoryWithClient(a.redis), nil
	default:
		return sqlite.Open(ctx, a.Config.SQLitePath, a.Logger)
	}
}

func (a *App) pipelineOptions(limiter ratelimit.Limiter) []webhook.PipelineOption {
	var publisher events.Publisher = a.Hub
	if a.Config.EventsRedisEnabled {
		publisher = events.Fanout{a.Hub, events.NewRedisPublisher(a.redis, a.Config.EventsChannelPrefix)}
	}
	opts := []webhook.PipelineOption{
		webhook.WithPublisher(publisher),
		webhook.WithEventName(a.Config.EventsChannelPrefix + ".received"),
		webhook.WithLogger(logger.Component(a.Logger, "pipeline")),
		webhook.WithLogging(a.Config.WebhookLoggingEnabled),
		webhook.WithDebug(a.Config.Debug),
	}
	if a.Config.RateLimitInbound {
		opts = append(opts, webhook.WithLimiter(limiter))
	}
	if a.Exporter != nil {
		opts = append(opts, webhook.WithObserver(a.Exporter))
	}
	return opts
}

func (a *App) clientOptions(limiter ratelimit.Limiter) []dispatch.Option {
	opts := []dispatch.Option{dispatch.WithLogger(a.Logger)}
	if a.Config.RateLimitOutbound {
		opts = append(opts, dispatch.WithLimiter(limiter))
	}
	if a.Queue != nil {
		opts = append(opts, dispatch.WithQueue(a.Queue))
	}
	if a.Exporter != nil {
		opts = append(opts, dispatch.WithObserver(a.Exporter))
	}
	return opts
}

// NewWorker builds a queue worker that replays jobs through a synchronous client
func (a *App) NewWorker(id string) (*queue.Worker, error) {
	if a.Queue == nil {
		return nil, errors.New("queue is disabled, set QUEUE_ENABLED=true")
	}
	policy := a.Connections.Policy()
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if policy.Enabled && a.Config.RateLimitOutbound {
		limiter = ratelimit.NewRedis(a.redis, policy)
	}
	opts := []dispatch.Option{dispatch.WithLogger(a.Logger), dispatch.WithLimiter(limiter)}
	if a.Exporter != nil {
		opts = append(opts, dispatch.WithObserver(a.Exporter))
	}
	sender := dispatch.NewClient(a.Manager, opts...)
	return queue.NewWorker(id, a.Queue, sender,
		queue.WithMaxAttempts(a.Config.QueueMaxAttempts),
		queue.WithHeartbeat(a.workers, 0),
		queue.WithWorkerLogger(a.Logger),
	), nil
}

// Close releases storage, metrics and Redis
func (a *App) Close(ctx context.Context) {
	if a.Exporter != nil {
		if err := a.Exporter.Shutdown(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("shutting down metrics")
		}
	}
	// the redis log store shares the client closed below
	if a.repo != nil && a.Config.StorageDriver != config.StorageRedis {
		if err := a.repo.Close(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("closing log store")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing redis")
		}
	}
}
