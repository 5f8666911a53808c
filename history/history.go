// Package history records finished task executions in PostgreSQL.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wudi/pdftask/notification"
	"github.com/wudi/pdftask/observability"
)

// DefaultTable receives the rows when Config.Table is empty.
const DefaultTable = "task_executions"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open connects to PostgreSQL and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Recorder is a notification.Listener writing one row per completed or failed execution.
type Recorder struct {
	db      execer
	table   string
	log     observability.Logger
	timeout time.Duration
}

func NewRecorder(db execer, table string, logger observability.Logger) *Recorder {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Recorder{db: db, table: pq.QuoteIdentifier(table), log: logger, timeout: 5 * time.Second}
}

func (r *Recorder) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+r.table+` (
		execution_id TEXT PRIMARY KEY,
		task         TEXT NOT NULL,
		status       TEXT NOT NULL,
		documents    INTEGER NOT NULL DEFAULT 0,
		bytes        BIGINT NOT NULL DEFAULT 0,
		elapsed_ms   BIGINT NOT NULL DEFAULT 0,
		error        TEXT,
		finished_at  TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}

// OnEvent stores Completed and Failed events; other kinds are ignored.
// A failing insert is logged, never propagated to the execution.
func (r *Recorder) OnEvent(e notification.Event) {
	if e.Kind != notification.Completed && e.Kind != notification.Failed {
		return
	}
	var errText sql.NullString
	if e.Err != nil {
		errText = sql.NullString{String: e.Err.Error(), Valid: true}
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO `+r.table+`
		(execution_id, task, status, documents, bytes, elapsed_ms, error, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (execution_id) DO NOTHING`,
		e.ExecutionID, e.Task, e.Kind.String(), e.Documents, e.Bytes, e.Elapsed.Milliseconds(), errText, e.Time,
	)
	if err != nil {
		r.log.Warn("history insert failed",
			observability.String("execution_id", e.ExecutionID),
			observability.Error("error", err),
		)
	}
}
