// api/schemas/records.go
package schemas

import "time"

// -- Trace Record Schemas --

// Outcome is the terminal state of a recorded action.
type Outcome string

const (
	// OutcomePending marks a record whose completion has not been observed yet.
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Position is an element's top-left corner in page coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an element's rendered dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementInfo captures the state of a target DOM element at recording time.
type ElementInfo struct {
	TagName     string            `json:"tag_name"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	TextContent string            `json:"text_content,omitempty"`
	CSSSelector string            `json:"css_selector,omitempty"`
	Visible     bool              `json:"visible"`
	Position    *Position         `json:"position,omitempty"`
	Size        *Size             `json:"size,omitempty"`
}

// PageChange summarizes the navigation effect of an action.
type PageChange struct {
	URLBefore string `json:"url_before,omitempty"`
	URLAfter  string `json:"url_after,omitempty"`
	Changed   bool   `json:"changed"`
}

// ActionRecord is one entry in the trace: the full before/after lifecycle of a
// single automation action. A record is created pending by the "before" event
// and finalized exactly once by the matching "after" event.
type ActionRecord struct {
	SequenceIndex  int          `json:"sequence_index"`
	ActionType     ActionType   `json:"action_type"`
	TargetSelector string       `json:"target_selector,omitempty"`
	ElementInfo    *ElementInfo `json:"element_info,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	Outcome        Outcome      `json:"outcome,omitempty"`
	ErrorDetail    string       `json:"error_detail,omitempty"`
	PageChange     *PageChange  `json:"page_change,omitempty"`
	// Incomplete is set only when a session ends while the record is still
	// pending. Such records carry no outcome.
	Incomplete bool `json:"incomplete,omitempty"`
}

// Finalized reports whether the record reached a terminal outcome.
func (r *ActionRecord) Finalized() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeError
}

// Elapsed returns the action's duration, or zero if it never completed.
// StartedAt and CompletedAt are taken from time.Now in the same process, so the
// subtraction uses Go's monotonic clock reading and is immune to wall-clock
// adjustments.
func (r *ActionRecord) Elapsed() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// -- Summary Schemas --

// ActionTiming is the per-record timing entry exposed by a summary.
type ActionTiming struct {
	SequenceIndex int           `json:"sequence_index"`
	ActionType    ActionType    `json:"action_type"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Summary aggregates the finalized records of a session. Records still pending
// when the summary is taken are listed separately and excluded from the counts.
type Summary struct {
	SessionID        string             `json:"session_id"`
	Finalized        int                `json:"finalized"`
	Succeeded        int                `json:"succeeded"`
	Failed           int                `json:"failed"`
	IncompleteSeqs   []int              `json:"incomplete_seqs,omitempty"`
	TotalElapsed     time.Duration      `json:"total_elapsed"`
	PerAction        []ActionTiming     `json:"per_action,omitempty"`
	ElementsObserved []*ElementInfo     `json:"elements_observed,omitempty"`
	ByType           map[ActionType]int `json:"by_type,omitempty"`
}
