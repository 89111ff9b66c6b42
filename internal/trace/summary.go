// File: internal/trace/summary.go
package trace

import (
	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

// SummarizeRecords computes the session summary over an ordered record slice.
// Finalized records contribute to the outcome counts and timings; everything
// else (pending or explicitly incomplete) is listed in IncompleteSeqs only.
func SummarizeRecords(sessionID string, records []*schemas.ActionRecord) schemas.Summary {
	sum := schemas.Summary{
		SessionID: sessionID,
		ByType:    make(map[schemas.ActionType]int),
	}

	for _, rec := range records {
		if !rec.Finalized() {
			sum.IncompleteSeqs = append(sum.IncompleteSeqs, rec.SequenceIndex)
			continue
		}

		sum.Finalized++
		if rec.Outcome == schemas.OutcomeSuccess {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
		sum.ByType[rec.ActionType]++

		elapsed := rec.Elapsed()
		sum.TotalElapsed += elapsed
		sum.PerAction = append(sum.PerAction, schemas.ActionTiming{
			SequenceIndex: rec.SequenceIndex,
			ActionType:    rec.ActionType,
			Elapsed:       elapsed,
		})

		if rec.ElementInfo != nil {
			sum.ElementsObserved = append(sum.ElementsObserved, rec.ElementInfo)
		}
	}

	if len(sum.ByType) == 0 {
		sum.ByType = nil
	}
	return sum
}
