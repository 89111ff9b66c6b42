// File: internal/trace/postgres_test.go
package trace

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func TestPostgresSinkBegin(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateRecordsTable)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	sink := NewPostgresSink(mockPool, zap.NewNop())
	require.NoError(t, sink.Begin(SessionHeader{SessionID: "sess-pg", StartedAt: time.Now()}))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSinkRecordLifecycle(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateRecordsTable)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	started := time.Now()
	completed := started.Add(120 * time.Millisecond)
	rec := &schemas.ActionRecord{
		SequenceIndex:  0,
		ActionType:     schemas.ActionClick,
		TargetSelector: "#submit",
		ElementInfo:    &schemas.ElementInfo{TagName: "button", CSSSelector: "#submit"},
		StartedAt:      started,
	}

	mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRecord)).
		WithArgs(
			"sess-pg", 0, "click",
			"#submit", pgxmock.AnyArg(),
			started.UTC(), "pending",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mockPool.ExpectExec(flexibleSQLMatcher(sqlFinalizeRecord)).
		WithArgs(
			"sess-pg", 0,
			completed.UTC(), "success",
			nil, pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	sink := NewPostgresSink(mockPool, zap.NewNop())
	require.NoError(t, sink.Begin(SessionHeader{SessionID: "sess-pg", StartedAt: started}))
	require.NoError(t, sink.RecordBefore(rec))

	rec.CompletedAt = &completed
	rec.Outcome = schemas.OutcomeSuccess
	rec.PageChange = &schemas.PageChange{URLBefore: "a", URLAfter: "a"}
	require.NoError(t, sink.RecordAfter(rec))

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSinkRecordIncomplete(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateRecordsTable)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mockPool.ExpectExec(flexibleSQLMatcher(sqlMarkIncomplete)).
		WithArgs("sess-pg", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	sink := NewPostgresSink(mockPool, zap.NewNop())
	require.NoError(t, sink.Begin(SessionHeader{SessionID: "sess-pg", StartedAt: time.Now()}))
	require.NoError(t, sink.RecordIncomplete(&schemas.ActionRecord{SequenceIndex: 3, Incomplete: true}))

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSinkPropagatesExecErrors(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateRecordsTable)).
		WillReturnError(assert.AnError)

	sink := NewPostgresSink(mockPool, zap.NewNop())
	require.Error(t, sink.Begin(SessionHeader{SessionID: "sess-pg"}))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSinkCloseWithoutOwnedPool(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	sink := NewPostgresSink(mockPool, zap.NewNop())
	// The sink does not own the pool, so Close must be a no-op.
	require.NoError(t, sink.Close())
}
