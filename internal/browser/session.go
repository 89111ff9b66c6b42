// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webtrail-cli/internal/config"
)

// Session owns one headless browser instance for the duration of a run. All
// interactions go through the session's chromedp context; closing the session
// tears the browser down.
type Session struct {
	ctx    context.Context
	logger *zap.Logger
	cfg    *config.Config

	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

const browserStartTimeout = 60 * time.Second

// NewSession launches the browser and waits for it to become responsive.
func NewSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", cfg.Browser.Headless),
		// Containers commonly need these for stability.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.Browser.DisableCache {
		allocOpts = append(allocOpts, chromedp.Flag("disable-application-cache", true))
	}
	if cfg.Browser.IgnoreTLSErrors {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if w, h := cfg.Browser.Viewport["width"], cfg.Browser.Viewport["height"]; w > 0 && h > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(w, h))
	}
	for _, arg := range cfg.Browser.Args {
		allocOpts = append(allocOpts, chromedp.Flag(arg, true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:           browserCtx,
		logger:        logger.Named("browser"),
		cfg:           cfg,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}

	// Run a no-op task so the browser process starts now, not at first action.
	startCtx, cancel := context.WithTimeout(browserCtx, browserStartTimeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.logger.Info("Browser session started", zap.Bool("headless", cfg.Browser.Headless))
	return s, nil
}

// Close shuts the browser down. Safe to call after a failed start.
func (s *Session) Close() {
	// chromedp.Cancel asks the browser to exit cleanly before the contexts
	// are torn down.
	if err := chromedp.Cancel(s.ctx); err != nil {
		s.logger.Debug("Graceful browser shutdown failed", zap.Error(err))
	}
	s.cancelBrowser()
	s.cancelAlloc()
}

// CurrentURL reports the page's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return url, nil
}

// run executes actions against the session's browser under the caller's
// context and a per-operation timeout.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	if timeout > 0 {
		var tcancel context.CancelFunc
		opCtx, tcancel = context.WithTimeout(opCtx, timeout)
		defer tcancel()
	}
	return chromedp.Run(opCtx, actions...)
}

// combineContext derives a context from the session context that is also
// canceled when the operational context is. chromedp requires its own context
// chain, so the caller's ctx cannot be passed to Run directly.
func combineContext(sessionCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(sessionCtx)
	stop := context.AfterFunc(opCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
