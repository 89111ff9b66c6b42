// File: internal/trace/postgres.go
package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xkilldash9x/webtrail-cli/api/schemas"
	"go.uber.org/zap"
)

// PgxExecutor abstracts the pgxpool.Pool so the sink can be mocked in tests.
type PgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SQL statements used by the Postgres sink. One row per action record, keyed
// by (session_id, sequence_index); lifecycle events update the row in place.
const (
	sqlCreateRecordsTable = `
		CREATE TABLE IF NOT EXISTS action_records (
			session_id      TEXT        NOT NULL,
			sequence_index  INT         NOT NULL,
			action_type     TEXT        NOT NULL,
			target_selector TEXT,
			element_info    JSONB,
			started_at      TIMESTAMPTZ NOT NULL,
			completed_at    TIMESTAMPTZ,
			outcome         TEXT        NOT NULL DEFAULT 'pending',
			error_detail    TEXT,
			page_change     JSONB,
			incomplete      BOOLEAN     NOT NULL DEFAULT FALSE,
			PRIMARY KEY (session_id, sequence_index)
		);`

	sqlInsertRecord = `
		INSERT INTO action_records
			(session_id, sequence_index, action_type, target_selector, element_info, started_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`

	sqlFinalizeRecord = `
		UPDATE action_records
		SET completed_at = $3, outcome = $4, error_detail = $5, page_change = $6
		WHERE session_id = $1 AND sequence_index = $2;`

	sqlMarkIncomplete = `
		UPDATE action_records
		SET incomplete = TRUE
		WHERE session_id = $1 AND sequence_index = $2;`
)

// opTimeout bounds each individual statement; the sink is best-effort and must
// never stall the driver on a slow database.
const opTimeout = 5 * time.Second

// PostgresSink mirrors action records into a PostgreSQL table. It implements
// the same Sink contract as the file sinks: the recorder's pairing state
// machine never changes because a database sink is attached.
type PostgresSink struct {
	db        PgxExecutor
	log       *zap.Logger
	sessionID string
	// closeFn releases the underlying pool when the sink owns it.
	closeFn func()
}

// NewPostgresSink wraps an existing executor. The caller keeps ownership of
// the connection; Close will not release it.
func NewPostgresSink(db PgxExecutor, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{
		db:  db,
		log: logger.Named("pg_sink"),
	}
}

// NewPostgresSinkFromURL connects a dedicated pool and hands its ownership to
// the sink.
func NewPostgresSinkFromURL(ctx context.Context, url string, logger *zap.Logger) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect trace database: %w", err)
	}
	sink := NewPostgresSink(pool, logger)
	sink.closeFn = pool.Close
	return sink, nil
}

// Begin ensures the schema exists and pins the session ID for all later rows.
func (s *PostgresSink) Begin(header SessionHeader) error {
	s.sessionID = header.SessionID

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.Exec(ctx, sqlCreateRecordsTable); err != nil {
		return fmt.Errorf("failed to ensure action_records table: %w", err)
	}
	return nil
}

func (s *PostgresSink) RecordBefore(rec *schemas.ActionRecord) error {
	elementInfo, err := marshalNullable(rec.ElementInfo)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err = s.db.Exec(ctx, sqlInsertRecord,
		s.sessionID, rec.SequenceIndex, string(rec.ActionType),
		nullable(rec.TargetSelector), elementInfo,
		rec.StartedAt.UTC(), string(schemas.OutcomePending),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action record %d: %w", rec.SequenceIndex, err)
	}
	return nil
}

func (s *PostgresSink) RecordAfter(rec *schemas.ActionRecord) error {
	pageChange, err := marshalNullable(rec.PageChange)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err = s.db.Exec(ctx, sqlFinalizeRecord,
		s.sessionID, rec.SequenceIndex,
		rec.CompletedAt.UTC(), string(rec.Outcome),
		nullable(rec.ErrorDetail), pageChange,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize action record %d: %w", rec.SequenceIndex, err)
	}
	return nil
}

func (s *PostgresSink) RecordIncomplete(rec *schemas.ActionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.Exec(ctx, sqlMarkIncomplete, s.sessionID, rec.SequenceIndex)
	if err != nil {
		return fmt.Errorf("failed to mark record %d incomplete: %w", rec.SequenceIndex, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// marshalNullable encodes v as JSONB input, or nil for a SQL NULL when v is a
// nil pointer.
func marshalNullable(v any) (any, error) {
	switch t := v.(type) {
	case *schemas.ElementInfo:
		if t == nil {
			return nil, nil
		}
	case *schemas.PageChange:
		if t == nil {
			return nil, nil
		}
	}
	data, err := jsonCfg.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trace field: %w", err)
	}
	return data, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
