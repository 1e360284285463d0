package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/marcelsud/automation-connect/internal/database"
	"github.com/marcelsud/automation-connect/webhook"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Repository stores webhook logs in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewPool parses databaseURL, opens a pool and pings it
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate applies the embedded schema through a database/sql view of the pool.
// The view and its connection are released afterwards; the pool stays open.
func Migrate(pool *pgxpool.Pool, logger zerolog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}
	defer driver.Close()
	return database.RunMigrations(migrations, "migrations", "pgx5", driver, logger)
}

func (r *Repository) Append(ctx context.Context, entry webhook.Log) (int64, error) {
	var headers *string
	if entry.Headers != nil {
		b, err := json.Marshal(entry.Headers)
		if err != nil {
			return 0, fmt.Errorf("marshaling headers: %w", err)
		}
		s := string(b)
		headers = &s
	}

	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO automation_webhook_logs
    (service, event, payload, headers, ip_address, user_agent, status, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6, $7, $8, $9)
RETURNING id`,
		entry.Service,
		nullable(entry.Event),
		string(entry.Payload),
		headers,
		nullable(entry.IPAddress),
		nullable(entry.UserAgent),
		webhook.Processing.String(),
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting webhook log: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, c webhook.Completion) error {
	var response *string
	if c.Response != nil {
		s := string(c.Response)
		response = &s
	}
	tag, err := r.pool.Exec(ctx, `UPDATE automation_webhook_logs
SET status = $2, error_message = $3, response = $4::jsonb, processing_time_ms = $5,
    processed_at = $6, updated_at = $6
WHERE id = $1 AND status = 'processing'`,
		id, c.Status.String(), nullable(c.ErrorMessage), response, c.ProcessingTimeMs, c.ProcessedAt)
	if err != nil {
		return fmt.Errorf("updating webhook log: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM automation_webhook_logs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking webhook log: %w", err)
	}
	if !exists {
		return webhook.ErrNotFound
	}
	return webhook.ErrNotProcessing
}

func (r *Repository) Get(ctx context.Context, id int64) (webhook.Log, error) {
	var (
		entry                                    webhook.Log
		event, ip, ua, errMsg, headers, response *string
		payload, status                          string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, service, event, payload::text, headers::text, ip_address, user_agent,
    status, error_message, response::text, processing_time_ms::float8, processed_at, created_at, updated_at
FROM automation_webhook_logs WHERE id = $1`, id).Scan(
		&entry.ID, &entry.Service, &event, &payload, &headers, &ip, &ua,
		&status, &errMsg, &response, &entry.ProcessingTimeMs, &entry.ProcessedAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return webhook.Log{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Log{}, fmt.Errorf("getting webhook log: %w", err)
	}

	entry.Event = deref(event)
	entry.Payload = json.RawMessage(payload)
	entry.IPAddress = deref(ip)
	entry.UserAgent = deref(ua)
	entry.Status = webhook.NewStatus(status)
	entry.ErrorMessage = deref(errMsg)
	if headers != nil {
		if err := json.Unmarshal([]byte(*headers), &entry.Headers); err != nil {
			return webhook.Log{}, fmt.Errorf("unmarshaling headers: %w", err)
		}
	}
	if response != nil {
		entry.Response = json.RawMessage(*response)
	}
	return entry, nil
}

func (r *Repository) Stats(ctx context.Context, service string) (webhook.Stats, error) {
	var st webhook.Stats
	err := r.pool.QueryRow(ctx, `SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE status = 'success'),
    COUNT(*) FILTER (WHERE status = 'failed'),
    COUNT(*) FILTER (WHERE status = 'processing'),
    COUNT(processing_time_ms),
    COALESCE(SUM(processing_time_ms), 0)::float8
FROM automation_webhook_logs WHERE ($1 = '' OR service = $1)`, service).Scan(
		&st.Total, &st.Successful, &st.Failed, &st.Processing, &st.Timed, &st.TotalProcessingMs,
	)
	if err != nil {
		return webhook.Stats{}, fmt.Errorf("getting webhook stats: %w", err)
	}
	return st, nil
}

// Close releases the pool
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
