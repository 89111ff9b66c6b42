// File: internal/trace/sink.go
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

// File names created inside the session directory.
const (
	TextLogName = "automation_log.log"
	JSONLogName = "automation_log.json"
)

// SessionHeader carries the session metadata sinks may record at begin time.
type SessionHeader struct {
	SessionID string
	StartedAt time.Time
	// Task is the opaque task description attached to the run, if any.
	Task string
}

// Sink persists action lifecycle events. Implementations must tolerate being
// called again after a failed write: the recorder reports a sink failure once
// and keeps retrying on subsequent events.
type Sink interface {
	// Begin is called exactly once, before any record event.
	Begin(header SessionHeader) error
	// RecordBefore observes a newly created pending record.
	RecordBefore(rec *schemas.ActionRecord) error
	// RecordAfter observes a record transitioning to success or error.
	RecordAfter(rec *schemas.ActionRecord) error
	// RecordIncomplete observes a record still pending at session end.
	RecordIncomplete(rec *schemas.ActionRecord) error
	// Close flushes and releases the sink's resources.
	Close() error
}

// -- Text Sink --

// textSink writes the human-readable trace: one newline-terminated event line
// per lifecycle event, in the order events arrive. Writes go straight to the
// file descriptor so a crashed run leaves an inspectable partial trace.
type textSink struct {
	path string
	file *os.File
}

func newTextSink(dir string) *textSink {
	return &textSink{path: filepath.Join(dir, TextLogName)}
}

func (s *textSink) Begin(header SessionHeader) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create text trace %s: %w", s.path, err)
	}
	s.file = f

	var b strings.Builder
	fmt.Fprintf(&b, "Webtrail Automation Trace - Session: %s\n", header.SessionID)
	fmt.Fprintf(&b, "Started at: %s\n", header.StartedAt.Format(time.RFC3339))
	if header.Task != "" {
		fmt.Fprintf(&b, "Task: %s\n", strings.ReplaceAll(header.Task, "\n", " "))
	}
	b.WriteString(strings.Repeat("-", 80) + "\n")
	_, err = f.WriteString(b.String())
	return err
}

func (s *textSink) RecordBefore(rec *schemas.ActionRecord) error {
	line := fmt.Sprintf("%s PRE  #%d %s%s\n",
		rec.StartedAt.Format(time.RFC3339Nano), rec.SequenceIndex, rec.ActionType,
		describeTarget(rec))
	return s.write(line)
}

func (s *textSink) RecordAfter(rec *schemas.ActionRecord) error {
	status := "SUCCESS"
	if rec.Outcome == schemas.OutcomeError {
		status = "ERROR"
	}
	line := fmt.Sprintf("%s POST #%d %s %s elapsed=%s",
		rec.CompletedAt.Format(time.RFC3339Nano), rec.SequenceIndex, rec.ActionType,
		status, rec.Elapsed().Round(time.Millisecond))
	if rec.ErrorDetail != "" {
		line += " error=" + strings.ReplaceAll(rec.ErrorDetail, "\n", " ")
	}
	if pc := rec.PageChange; pc != nil && pc.Changed {
		line += fmt.Sprintf(" url=%s -> %s", pc.URLBefore, pc.URLAfter)
	}
	return s.write(line + "\n")
}

func (s *textSink) RecordIncomplete(rec *schemas.ActionRecord) error {
	line := fmt.Sprintf("%s INCOMPLETE #%d %s (started %s, never finalized)\n",
		time.Now().Format(time.RFC3339Nano), rec.SequenceIndex, rec.ActionType,
		rec.StartedAt.Format(time.RFC3339Nano))
	return s.write(line)
}

func (s *textSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *textSink) write(line string) error {
	if s.file == nil {
		return fmt.Errorf("text trace %s is not open", s.path)
	}
	_, err := s.file.WriteString(line)
	return err
}

// describeTarget renders the selector and captured element, when present.
func describeTarget(rec *schemas.ActionRecord) string {
	var b strings.Builder
	if rec.TargetSelector != "" {
		fmt.Fprintf(&b, " selector=%s", rec.TargetSelector)
	}
	if el := rec.ElementInfo; el != nil {
		fmt.Fprintf(&b, " tag=%s", el.TagName)
		if el.CSSSelector != "" && el.CSSSelector != rec.TargetSelector {
			fmt.Fprintf(&b, " css=%s", el.CSSSelector)
		}
	}
	return b.String()
}

// -- JSONL Sink --

var jsonCfg = json.ConfigCompatibleWithStandardLibrary

// jsonlSink writes the machine-readable trace as line-delimited JSON, one
// record object per line. A record's line is appended when the record is
// finalized; records still pending at session end are appended with the
// incomplete flag and no outcome. Append-only keeps the file crash-consistent
// with the text trace, at the cost of pending records not being visible in it
// until the session ends.
type jsonlSink struct {
	path string
	file *os.File
}

func newJSONLSink(dir string) *jsonlSink {
	return &jsonlSink{path: filepath.Join(dir, JSONLogName)}
}

func (s *jsonlSink) Begin(header SessionHeader) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create json trace %s: %w", s.path, err)
	}
	s.file = f
	return nil
}

// RecordBefore stages nothing: the JSONL line is written at finalize time so
// every line is a complete record.
func (s *jsonlSink) RecordBefore(rec *schemas.ActionRecord) error { return nil }

func (s *jsonlSink) RecordAfter(rec *schemas.ActionRecord) error {
	return s.append(rec)
}

func (s *jsonlSink) RecordIncomplete(rec *schemas.ActionRecord) error {
	return s.append(rec)
}

func (s *jsonlSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *jsonlSink) append(rec *schemas.ActionRecord) error {
	if s.file == nil {
		return fmt.Errorf("json trace %s is not open", s.path)
	}
	data, err := jsonCfg.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode action record: %w", err)
	}
	_, err = s.file.Write(append(data, '\n'))
	return err
}
