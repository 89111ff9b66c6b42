// internal/browser/interaction.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Navigate loads the specified URL and waits for the page to settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating to URL", zap.String("url", url))

	navTimeout := s.cfg.Network.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}

	if err := s.run(ctx, navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	// Give late resources and scripts a quiet period after load.
	if wait := s.cfg.Network.PostLoadWait; wait > 0 {
		if err := s.run(ctx, 0, chromedp.Sleep(wait)); err != nil {
			return err
		}
	}
	return nil
}

// Click interacts with the element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking element", zap.String("selector", selector))

	tasks := chromedp.Tasks{
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	}
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, tasks); err != nil {
		return fmt.Errorf("click failed for selector %q: %w", selector, err)
	}
	return nil
}

// InputText clears the element matching the selector and types the text.
func (s *Session) InputText(ctx context.Context, selector, text string) error {
	s.logger.Debug("Typing into element",
		zap.String("selector", selector),
		zap.Int("text_length", len(text)),
	)

	tasks := chromedp.Tasks{
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	}
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, tasks); err != nil {
		return fmt.Errorf("input_text failed for selector %q: %w", selector, err)
	}
	return nil
}

// SendKeys dispatches raw key input to the focused element. Used for control
// keys like Enter or Tab after an InputText.
func (s *Session) SendKeys(ctx context.Context, keys string) error {
	s.logger.Debug("Sending keys", zap.Int("count", len(keys)))

	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("send_keys failed: %w", err)
	}
	return nil
}

// Scroll moves the viewport in the given direction: up, down, top or bottom.
func (s *Session) Scroll(ctx context.Context, direction string) error {
	s.logger.Debug("Scrolling page", zap.String("direction", direction))

	var script string
	switch direction {
	case "down", "":
		script = `window.scrollBy({top: window.innerHeight * 0.8});`
	case "up":
		script = `window.scrollBy({top: -window.innerHeight * 0.8});`
	case "bottom":
		script = `window.scrollTo({top: document.body.scrollHeight});`
	case "top":
		script = `window.scrollTo({top: 0});`
	default:
		return fmt.Errorf("invalid scroll direction: %s (supported: up, down, top, bottom)", direction)
	}

	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// ExtractContent returns the visible text of the current page.
func (s *Session) ExtractContent(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extract_content failed: %w", err)
	}
	return ExtractText(html)
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// Wait pauses for the given duration, honoring context cancellation.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	return s.run(ctx, 0, chromedp.Sleep(d))
}
