package core

// history.go records one row per checked table in the check_runs table.
// History is optional: a Service without a database skips it.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx used here.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DefaultHistoryLimit caps List when no limit is given.
const DefaultHistoryLimit = 50

// CheckRun is one recorded table check.
type CheckRun struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	FileName   string        `json:"fileName"`
	TableName  string        `json:"tableName"`
	SchemaHash string        `json:"schemaHash"`
	OK         bool          `json:"ok"`
	ErrorCount int           `json:"errorCount"`
	Cached     bool          `json:"cached"`
	FileError  string        `json:"fileError,omitempty"`
	Duration   time.Duration `json:"duration"`
	ClientIP   string        `json:"clientIp,omitempty"`
	UserAgent  string        `json:"userAgent,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS check_runs (
		id          uuid PRIMARY KEY,
		document_id text        NOT NULL,
		file_name   text        NOT NULL,
		table_name  text        NOT NULL,
		schema_hash text        NOT NULL,
		ok          boolean     NOT NULL,
		error_count integer     NOT NULL,
		cached      boolean     NOT NULL,
		file_error  text,
		duration_ms bigint      NOT NULL,
		client_ip   text,
		user_agent  text,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS check_runs_document_idx ON check_runs (document_id, created_at DESC)`,
}

// History stores check runs in Postgres.
type History struct {
	db DBTX
}

// NewHistory returns a History backed by db.
func NewHistory(db DBTX) *History {
	return &History{db: db}
}

// EnsureSchema creates the check_runs table if it does not exist.
func (h *History) EnsureSchema(ctx context.Context) error {
	for _, stmt := range historySchema {
		if _, err := h.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create history schema: %w", err)
		}
	}
	return nil
}

// Record inserts a run, assigning its ID and timestamp when unset.
func (h *History) Record(ctx context.Context, run *CheckRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := h.db.Exec(ctx, `
		INSERT INTO check_runs
			(id, document_id, file_name, table_name, schema_hash, ok, error_count, cached, file_error, duration_ms, client_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		toPgUUID(run.ID),
		run.DocumentID,
		run.FileName,
		run.TableName,
		run.SchemaHash,
		run.OK,
		run.ErrorCount,
		run.Cached,
		toPgText(run.FileError),
		run.Duration.Milliseconds(),
		toPgText(run.ClientIP),
		toPgText(run.UserAgent),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record check run: %w", err)
	}
	return nil
}

// List returns the most recent runs for a document, newest first.
func (h *History) List(ctx context.Context, documentID string, limit int) ([]CheckRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := h.db.Query(ctx, `
		SELECT id, document_id, file_name, table_name, schema_hash, ok, error_count, cached, file_error, duration_ms, client_ip, user_agent, created_at
		FROM check_runs
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list check runs: %w", err)
	}
	defer rows.Close()

	var runs []CheckRun
	for rows.Next() {
		var (
			run        CheckRun
			id         pgtype.UUID
			fileError  pgtype.Text
			clientIP   pgtype.Text
			userAgent  pgtype.Text
			durationMs int64
		)
		if err := rows.Scan(&id, &run.DocumentID, &run.FileName, &run.TableName, &run.SchemaHash,
			&run.OK, &run.ErrorCount, &run.Cached, &fileError, &durationMs, &clientIP, &userAgent, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan check run: %w", err)
		}
		run.ID = uuidToString(id)
		run.FileError = fileError.String
		run.ClientIP = clientIP.String
		run.UserAgent = userAgent.String
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list check runs: %w", err)
	}
	return runs, nil
}

// Prune deletes runs recorded before cutoff and returns how many went.
func (h *History) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := h.db.Exec(ctx, `DELETE FROM check_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune check runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toPgUUID(s string) pgtype.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
