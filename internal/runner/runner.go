// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
	"github.com/xkilldash9x/webtrail-cli/internal/trace"
)

// Browser is the surface of interactions the runner drives. *browser.Session
// satisfies it; tests substitute a fake.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	InputText(ctx context.Context, selector, text string) error
	SendKeys(ctx context.Context, keys string) error
	Scroll(ctx context.Context, direction string) error
	ExtractContent(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Wait(ctx context.Context, d time.Duration) error
	CurrentURL(ctx context.Context) (string, error)
	ElementInfo(ctx context.Context, selector string) (*schemas.ElementInfo, error)
}

// Runner executes a step script against a browser, wrapping every step in a
// before/after trace record. Trace failures never stop the run; step failures
// do, after the failing step has been recorded.
type Runner struct {
	browser  Browser
	recorder *trace.Recorder
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// New builds a runner. stepsPerSecond <= 0 disables pacing.
func New(b Browser, rec *trace.Recorder, stepsPerSecond float64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if stepsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(stepsPerSecond), 1)
	}
	return &Runner{
		browser:  b,
		recorder: rec,
		limiter:  limiter,
		logger:   logger.Named("runner"),
	}
}

// Run executes the script's steps in order. The first step error aborts the
// run; later steps are not attempted because scripted flows are ordered and a
// failed precondition would cascade.
func (r *Runner) Run(ctx context.Context, script *schemas.Script) error {
	r.logger.Info("Executing script",
		zap.String("name", script.Name),
		zap.Int("steps", len(script.Steps)),
	)

	for i, step := range script.Steps {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("run canceled while pacing: %w", err)
			}
		}
		if err := r.executeStep(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s) failed: %w", i, step.Action, err)
		}
	}

	r.logger.Info("Script completed", zap.Int("steps", len(script.Steps)))
	return nil
}

// executeStep records the step, runs it, then finalizes the record with the
// outcome and any URL change. Recorder failures are logged and the step still
// executes: the trace is auxiliary to the run, not a gate on it.
func (r *Runner) executeStep(ctx context.Context, step schemas.Step) error {
	target := step.Selector
	if step.Action == schemas.ActionNavigate {
		target = step.URL
	}

	var elem *schemas.ElementInfo
	if step.Selector != "" {
		info, err := r.browser.ElementInfo(ctx, step.Selector)
		if err != nil {
			r.logger.Debug("Element capture failed",
				zap.String("selector", step.Selector),
				zap.Error(err),
			)
		} else {
			elem = info
		}
	}

	urlBefore, _ := r.browser.CurrentURL(ctx)

	seq, recErr := r.recorder.RecordBefore(step.Action, target, elem)
	recorded := recErr == nil
	if recErr != nil {
		r.logger.Warn("Failed to record step start", zap.Error(recErr))
	}

	stepErr := r.dispatch(ctx, step, seq)

	if recorded {
		urlAfter, _ := r.browser.CurrentURL(ctx)
		pageChange := &schemas.PageChange{
			URLBefore: urlBefore,
			URLAfter:  urlAfter,
			Changed:   urlBefore != urlAfter,
		}

		outcome := schemas.OutcomeSuccess
		errDetail := ""
		if stepErr != nil {
			outcome = schemas.OutcomeError
			errDetail = stepErr.Error()
		}
		if err := r.recorder.RecordAfter(seq, outcome, errDetail, pageChange); err != nil {
			r.logger.Warn("Failed to record step completion",
				zap.Int("sequence_index", seq),
				zap.Error(err),
			)
		}
	}

	return stepErr
}

func (r *Runner) dispatch(ctx context.Context, step schemas.Step, seq int) error {
	switch step.Action {
	case schemas.ActionNavigate:
		return r.browser.Navigate(ctx, step.URL)
	case schemas.ActionClick:
		return r.browser.Click(ctx, step.Selector)
	case schemas.ActionInputText:
		return r.browser.InputText(ctx, step.Selector, step.Value)
	case schemas.ActionSendKeys:
		return r.browser.SendKeys(ctx, step.Value)
	case schemas.ActionScroll:
		return r.browser.Scroll(ctx, step.Direction)
	case schemas.ActionExtractContent:
		return r.extractContent(ctx, seq)
	case schemas.ActionWait:
		return r.browser.Wait(ctx, time.Duration(step.Milliseconds)*time.Millisecond)
	case schemas.ActionScreenshot:
		return r.screenshot(ctx, seq)
	default:
		return fmt.Errorf("unknown action type %q", step.Action)
	}
}

// extractContent pulls the page text and drops it next to the trace files so
// the extraction survives the run.
func (r *Runner) extractContent(ctx context.Context, seq int) error {
	content, err := r.browser.ExtractContent(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(r.recorder.Dir(), fmt.Sprintf("extracted_%04d.txt", seq))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to save extracted content: %w", err)
	}
	r.logger.Info("Extracted page content",
		zap.Int("bytes", len(content)),
		zap.String("path", path),
	)
	return nil
}

func (r *Runner) screenshot(ctx context.Context, seq int) error {
	buf, err := r.browser.Screenshot(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(r.recorder.Dir(), fmt.Sprintf("screenshot_%04d.png", seq))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	r.logger.Info("Captured screenshot", zap.String("path", path))
	return nil
}
