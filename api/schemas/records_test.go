// api/schemas/records_test.go
package schemas_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

func TestActionTypeValid(t *testing.T) {
	for _, valid := range []schemas.ActionType{
		schemas.ActionNavigate, schemas.ActionClick, schemas.ActionInputText,
		schemas.ActionSendKeys, schemas.ActionScroll, schemas.ActionExtractContent,
		schemas.ActionWait, schemas.ActionScreenshot,
	} {
		assert.True(t, valid.Valid(), "%s should be a known action type", valid)
	}

	assert.False(t, schemas.ActionType("").Valid())
	assert.False(t, schemas.ActionType("hover").Valid())
	assert.False(t, schemas.ActionType("CLICK").Valid(), "action types are case sensitive")
}

func TestActionRecordFinalized(t *testing.T) {
	rec := schemas.ActionRecord{Outcome: schemas.OutcomePending}
	assert.False(t, rec.Finalized())

	rec.Outcome = schemas.OutcomeSuccess
	assert.True(t, rec.Finalized())

	rec.Outcome = schemas.OutcomeError
	assert.True(t, rec.Finalized())

	// An incomplete record has its outcome unset and never counts as finalized.
	rec.Outcome = ""
	rec.Incomplete = true
	assert.False(t, rec.Finalized())
}

func TestActionRecordElapsed(t *testing.T) {
	start := time.Now()
	rec := schemas.ActionRecord{StartedAt: start}
	assert.Zero(t, rec.Elapsed(), "a pending record has no duration yet")

	done := start.Add(250 * time.Millisecond)
	rec.CompletedAt = &done
	assert.Equal(t, 250*time.Millisecond, rec.Elapsed())
}
