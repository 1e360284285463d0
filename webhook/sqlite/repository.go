package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/marcelsud/automation-connect/internal/database"
	"github.com/marcelsud/automation-connect/webhook"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const timeLayout = time.RFC3339Nano

// Repository stores webhook logs in a local SQLite file
type Repository struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path and applies migrations
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; WAL lets readers proceed
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{"PRAGMA busy_timeout = 5000;", "PRAGMA journal_mode = WAL;"} {
		if _, err := db.ExecContext(pctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := Migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Migrate applies the embedded schema
func Migrate(db *sql.DB, logger zerolog.Logger) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	return database.RunMigrations(migrations, "migrations", "sqlite", driver, logger)
}

func (r *Repository) Append(ctx context.Context, entry webhook.Log) (int64, error) {
	headers, err := marshalNullable(entry.Headers)
	if err != nil {
		return 0, fmt.Errorf("marshaling headers: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO automation_webhook_logs
  (service, event, payload, headers, ip_address, user_agent, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Service,
		nullString(entry.Event),
		string(entry.Payload),
		headers,
		nullString(entry.IPAddress),
		nullString(entry.UserAgent),
		webhook.Processing.String(),
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting webhook log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading webhook log id: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, c webhook.Completion) error {
	var response any
	if c.Response != nil {
		response = string(c.Response)
	}
	at := c.ProcessedAt.UTC().Format(timeLayout)
	res, err := r.db.ExecContext(ctx, `UPDATE automation_webhook_logs
SET status = ?, error_message = ?, response = ?, processing_time_ms = ?, processed_at = ?, updated_at = ?
WHERE id = ? AND status = 'processing'`,
		c.Status.String(), nullString(c.ErrorMessage), response, c.ProcessingTimeMs, at, at, id)
	if err != nil {
		return fmt.Errorf("updating webhook log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating webhook log: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM automation_webhook_logs WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking webhook log: %w", err)
	}
	return webhook.ErrNotProcessing
}

func (r *Repository) Get(ctx context.Context, id int64) (webhook.Log, error) {
	var (
		entry                                    webhook.Log
		event, headers, ip, ua, errMsg, response sql.NullString
		ms                                       sql.NullFloat64
		processedAt                              sql.NullString
		status, payload, createdAt, updatedAt    string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, service, event, payload, headers, ip_address, user_agent, status,
  error_message, response, processing_time_ms, processed_at, created_at, updated_at
FROM automation_webhook_logs WHERE id = ?`, id).Scan(
		&entry.ID, &entry.Service, &event, &payload, &headers, &ip, &ua, &status,
		&errMsg, &response, &ms, &processedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Log{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Log{}, fmt.Errorf("getting webhook log: %w", err)
	}

	entry.Event = event.String
	entry.Payload = json.RawMessage(payload)
	entry.IPAddress = ip.String
	entry.UserAgent = ua.String
	entry.Status = webhook.NewStatus(status)
	entry.ErrorMessage = errMsg.String
	if headers.Valid {
		if err := json.Unmarshal([]byte(headers.String), &entry.Headers); err != nil {
			return webhook.Log{}, fmt.Errorf("unmarshaling headers: %w", err)
		}
	}
	if response.Valid {
		entry.Response = json.RawMessage(response.String)
	}
	if ms.Valid {
		v := ms.Float64
		entry.ProcessingTimeMs = &v
	}
	if processedAt.Valid {
		t, err := time.Parse(timeLayout, processedAt.String)
		if err != nil {
			return webhook.Log{}, fmt.Errorf("parsing processed_at: %w", err)
		}
		entry.ProcessedAt = &t
	}
	if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return webhook.Log{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return webhook.Log{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return entry, nil
}

func (r *Repository) Stats(ctx context.Context, service string) (webhook.Stats, error) {
	var st webhook.Stats
	err := r.db.QueryRowContext(ctx, `SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
  COUNT(processing_time_ms),
  COALESCE(SUM(processing_time_ms), 0)
FROM automation_webhook_logs WHERE (? = '' OR service = ?)`, service, service).Scan(
		&st.Total, &st.Successful, &st.Failed, &st.Processing, &st.Timed, &st.TotalProcessingMs,
	)
	if err != nil {
		return webhook.Stats{}, fmt.Errorf("getting webhook stats: %w", err)
	}
	return st, nil
}

func (r *Repository) Close(context.Context) error {
	return r.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalNullable(h map[string]string) (any, error) {
	if h == nil {
		return nil, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
