// File: internal/trace/recorder.go
package trace

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/webtrail-cli/api/schemas"
	"go.uber.org/zap"
)

// Options configures a trace session.
type Options struct {
	// Dir is the session's log directory. Created (with ancestors) if missing.
	Dir string
	// SessionID labels the session. Empty means a generated UUID.
	SessionID string
	// Task is an opaque task description echoed into the session header.
	Task string
	// TextLog and JSONLog toggle the built-in file sinks.
	TextLog bool
	JSONLog bool
	// ExtraSinks are attached after the file sinks (e.g. the Postgres sink).
	ExtraSinks []Sink
	Logger     *zap.Logger
}

// Recorder tracks the before/after lifecycle of automation actions for one
// session and fans each event out to the configured sinks.
//
// Every record moves through a two-phase state machine, pending -> {success,
// error}, driven by exactly one RecordBefore and one later RecordAfter per
// sequence index. The split guarantees each action has a durable start line
// even if the driving process crashes before completion.
//
// The recorder is safe for concurrent use; when two finalize calls race on the
// same index only the first succeeds.
type Recorder struct {
	mu sync.Mutex

	sessionID string
	dir       string
	logger    *zap.Logger
	sinks     []Sink

	// records holds every record ever created, in sequence order.
	records []*schemas.ActionRecord
	// pending indexes the not-yet-finalized subset of records.
	pending map[int]*schemas.ActionRecord
	nextSeq int

	startedAt time.Time
	ended     bool

	// sinkDegraded tracks which sinks have already had a failure reported, so
	// a persistently broken sink produces one warning, not one per event.
	sinkDegraded map[Sink]bool
}

// NewRecorder begins a trace session: it creates the log directory, opens the
// configured sinks, and resets sequence numbering to zero. An I/O failure here
// is fatal to the session and no recording occurs.
func NewRecorder(opts Options) (*Recorder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory %s: %w", opts.Dir, err)
	}

	var sinks []Sink
	if opts.TextLog {
		sinks = append(sinks, newTextSink(opts.Dir))
	}
	if opts.JSONLog {
		sinks = append(sinks, newJSONLSink(opts.Dir))
	}
	sinks = append(sinks, opts.ExtraSinks...)

	r := &Recorder{
		sessionID:    sessionID,
		dir:          opts.Dir,
		logger:       logger.Named("recorder"),
		sinks:        sinks,
		pending:      make(map[int]*schemas.ActionRecord),
		startedAt:    time.Now(),
		sinkDegraded: make(map[Sink]bool),
	}

	header := SessionHeader{SessionID: sessionID, StartedAt: r.startedAt, Task: opts.Task}
	for i, s := range sinks {
		if err := s.Begin(header); err != nil {
			// Unwind the sinks opened so far; the session must not start.
			for _, opened := range sinks[:i] {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("failed to begin trace session %s: %w", sessionID, err)
		}
	}

	r.logger.Info("Trace session started",
		zap.String("session_id", sessionID),
		zap.String("dir", opts.Dir),
	)
	return r, nil
}

// SessionID returns the session label.
func (r *Recorder) SessionID() string { return r.sessionID }

// Dir returns the session's log directory.
func (r *Recorder) Dir() string { return r.dir }

// RecordBefore allocates the next sequence index and creates a pending record
// for an action that is about to execute. The returned index pairs the later
// RecordAfter call. The text trace line is written synchronously so partial
// sessions remain inspectable after a crash.
func (r *Recorder) RecordBefore(actionType schemas.ActionType, selector string, elem *schemas.ElementInfo) (int, error) {
	if actionType == "" {
		return 0, fmt.Errorf("action type must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return 0, ErrSessionEnded
	}

	rec := &schemas.ActionRecord{
		SequenceIndex:  r.nextSeq,
		ActionType:     actionType,
		TargetSelector: selector,
		ElementInfo:    elem,
		StartedAt:      time.Now(),
		Outcome:        schemas.OutcomePending,
	}
	r.nextSeq++
	r.records = append(r.records, rec)
	r.pending[rec.SequenceIndex] = rec

	r.emit(func(s Sink) error { return s.RecordBefore(rec) })
	return rec.SequenceIndex, nil
}

// RecordAfter finalizes the pending record identified by seq. It fails with
// ErrUnknownRecord if the index was never issued, or ErrAlreadyFinalized if a
// previous call already finalized it; in both cases the trace files are left
// untouched and the mismatch is reported as a warning. Other records are
// unaffected and the session continues.
func (r *Recorder) RecordAfter(seq int, outcome schemas.Outcome, errDetail string, pageChange *schemas.PageChange) error {
	if outcome != schemas.OutcomeSuccess && outcome != schemas.OutcomeError {
		return fmt.Errorf("outcome must be success or error, got %q", outcome)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return ErrSessionEnded
	}

	rec, ok := r.pending[seq]
	if !ok {
		err := ErrUnknownRecord
		if seq >= 0 && seq < r.nextSeq {
			err = ErrAlreadyFinalized
		}
		r.logger.Warn("Mismatched record_after call",
			zap.Int("sequence_index", seq),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		return fmt.Errorf("record_after(%d): %w", seq, err)
	}

	now := time.Now()
	rec.CompletedAt = &now
	rec.Outcome = outcome
	rec.ErrorDetail = errDetail
	rec.PageChange = pageChange
	delete(r.pending, seq)

	r.emit(func(s Sink) error { return s.RecordAfter(rec) })
	return nil
}

// Summarize aggregates all records finalized so far. It does not mutate state
// and may be called repeatedly, including after End; records still pending are
// reported separately in IncompleteSeqs and excluded from the outcome counts.
func (r *Recorder) Summarize() schemas.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SummarizeRecords(r.sessionID, r.records)
}

// End closes the session. Records still pending are written to the sinks with
// an explicit incomplete marker rather than silently dropped, then all sinks
// are flushed and closed. End is idempotent; the first call wins.
func (r *Recorder) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return nil
	}
	r.ended = true

	// Walk records in sequence order so incomplete lines come out ordered.
	for _, rec := range r.records {
		if _, stillPending := r.pending[rec.SequenceIndex]; !stillPending {
			continue
		}
		r.logger.Warn("Record incomplete at session end",
			zap.Int("sequence_index", rec.SequenceIndex),
			zap.String("action_type", string(rec.ActionType)),
		)
		rec.Incomplete = true
		// The outcome was never determined; unset it rather than fabricate one.
		rec.Outcome = ""
		r.emit(func(s Sink) error { return s.RecordIncomplete(rec) })
	}
	r.pending = make(map[int]*schemas.ActionRecord)

	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.Info("Trace session ended",
		zap.String("session_id", r.sessionID),
		zap.Int("records", len(r.records)),
	)
	return errors.Join(errs...)
}

// emit fans an event out to every sink. Trace writes are best-effort auxiliary
// infrastructure: a failing sink is reported once, then retried on the next
// event, and never aborts the caller's broader task.
func (r *Recorder) emit(fn func(Sink) error) {
	for _, s := range r.sinks {
		err := fn(s)
		switch {
		case err != nil && !r.sinkDegraded[s]:
			r.sinkDegraded[s] = true
			r.logger.Warn("Trace sink write failed; will keep retrying", zap.Error(err))
		case err == nil && r.sinkDegraded[s]:
			r.sinkDegraded[s] = false
			r.logger.Info("Trace sink recovered")
		}
	}
}
