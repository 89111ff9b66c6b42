// File: internal/trace/reader_test.go
package trace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

func TestReadTraceSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, JSONLogName)
	content := `{"sequence_index":0,"action_type":"navigate","started_at":"2026-08-29T10:00:00Z","outcome":"success"}

{"sequence_index":1,"action_type":"click","started_at":"2026-08-29T10:00:01Z","outcome":"error","error_detail":"timeout"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadTrace(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schemas.ActionNavigate, records[0].ActionType)
	assert.Equal(t, "timeout", records[1].ErrorDetail)
}

func TestReadTraceRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, JSONLogName)
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0o644))

	_, err := ReadTrace(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed trace line 1")
}

func TestReadTraceMissingFile(t *testing.T) {
	_, err := ReadTrace(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestSummarizeRecords(t *testing.T) {
	now := time.Now()
	later := now.Add(300 * time.Millisecond)
	records := []*schemas.ActionRecord{
		{
			SequenceIndex: 0,
			ActionType:    schemas.ActionNavigate,
			StartedAt:     now,
			CompletedAt:   &later,
			Outcome:       schemas.OutcomeSuccess,
			ElementInfo:   nil,
		},
		{
			SequenceIndex: 1,
			ActionType:    schemas.ActionClick,
			StartedAt:     now,
			CompletedAt:   &later,
			Outcome:       schemas.OutcomeError,
			ErrorDetail:   "no such element",
			ElementInfo:   &schemas.ElementInfo{TagName: "a"},
		},
		{
			SequenceIndex: 2,
			ActionType:    schemas.ActionClick,
			StartedAt:     now,
			Incomplete:    true,
		},
	}

	sum := SummarizeRecords("sess-sum", records)
	assert.Equal(t, "sess-sum", sum.SessionID)
	assert.Equal(t, 2, sum.Finalized)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, []int{2}, sum.IncompleteSeqs)
	assert.Equal(t, 600*time.Millisecond, sum.TotalElapsed)
	assert.Len(t, sum.PerAction, 2)
	assert.Len(t, sum.ElementsObserved, 1)
	assert.Equal(t, 1, sum.ByType[schemas.ActionNavigate])
	assert.Equal(t, 1, sum.ByType[schemas.ActionClick])
}

func TestSummarizeRecordsEmpty(t *testing.T) {
	sum := SummarizeRecords("sess-empty", nil)
	assert.Equal(t, 0, sum.Finalized)
	assert.Nil(t, sum.ByType)
	assert.Empty(t, sum.IncompleteSeqs)
}
