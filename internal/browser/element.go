// internal/browser/element.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

// Captured text is truncated so one oversized element cannot bloat the trace.
const maxCapturedText = 200

// ElementInfo captures the state of the first element matching the selector:
// tag, attributes, text, geometry, and a derived CSS selector. Returns
// (nil, nil) when no element matches, so callers can record actions against
// targets that do not exist yet without failing the capture.
func (s *Session) ElementInfo(ctx context.Context, selector string) (*schemas.ElementInfo, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.cfg.Network.ActionTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("element lookup failed for selector %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	node := nodes[0]

	info := &schemas.ElementInfo{
		TagName:    strings.ToLower(node.NodeName),
		Attributes: attributeMap(node),
	}

	// Text content, best-effort.
	var text string
	textScript := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.textContent.trim() : ""; })()`,
		selector)
	if err := s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.Evaluate(textScript, &text)); err == nil {
		info.TextContent = truncate(text, maxCapturedText)
	}

	// Geometry from the box model. An element without one is not rendered.
	var box *dom.BoxModel
	err = s.run(ctx, s.cfg.Network.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var boxErr error
		box, boxErr = dom.GetBoxModel().WithNodeID(node.NodeID).Do(ctx)
		return boxErr
	}))
	if err == nil && box != nil && len(box.Content) >= 2 {
		info.Visible = true
		info.Position = &schemas.Position{X: box.Content[0], Y: box.Content[1]}
		info.Size = &schemas.Size{Width: float64(box.Width), Height: float64(box.Height)}
	}

	info.CSSSelector = DeriveCSSSelector(info.TagName, info.Attributes)
	return info, nil
}

// attributeMap flattens the node's attribute name/value pairs.
func attributeMap(node *cdp.Node) map[string]string {
	if len(node.Attributes) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(node.Attributes)/2)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		attrs[node.Attributes[i]] = node.Attributes[i+1]
	}
	return attrs
}

// DeriveCSSSelector generates a stable selector for an element from its tag
// and attributes. Preference order: id, first class, name, data-testid,
// aria-label. Returns "" when no distinguishing attribute exists.
func DeriveCSSSelector(tagName string, attrs map[string]string) string {
	if id := attrs["id"]; id != "" {
		return "#" + id
	}
	if class := attrs["class"]; class != "" {
		if fields := strings.Fields(class); len(fields) > 0 {
			return tagName + "." + fields[0]
		}
	}
	if name := attrs["name"]; name != "" {
		return fmt.Sprintf("%s[name='%s']", tagName, name)
	}
	if testID := attrs["data-testid"]; testID != "" {
		return fmt.Sprintf("%s[data-testid='%s']", tagName, testID)
	}
	if label := attrs["aria-label"]; label != "" {
		return fmt.Sprintf("%s[aria-label='%s']", tagName, label)
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
