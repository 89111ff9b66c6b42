// File: internal/browser/element_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCSSSelector(t *testing.T) {
	testCases := []struct {
		name  string
		tag   string
		attrs map[string]string
		want  string
	}{
		{
			name:  "id wins over everything",
			tag:   "button",
			attrs: map[string]string{"id": "submit", "class": "btn primary", "name": "go"},
			want:  "#submit",
		},
		{
			name:  "first class when no id",
			tag:   "button",
			attrs: map[string]string{"class": "btn primary"},
			want:  "button.btn",
		},
		{
			name:  "name attribute",
			tag:   "input",
			attrs: map[string]string{"name": "email"},
			want:  "input[name='email']",
		},
		{
			name:  "data-testid",
			tag:   "div",
			attrs: map[string]string{"data-testid": "cart-total"},
			want:  "div[data-testid='cart-total']",
		},
		{
			name:  "aria-label as last resort",
			tag:   "span",
			attrs: map[string]string{"aria-label": "Close"},
			want:  "span[aria-label='Close']",
		},
		{
			name:  "nothing distinguishing",
			tag:   "div",
			attrs: map[string]string{"style": "color:red"},
			want:  "",
		},
		{
			name:  "whitespace-only class falls through",
			tag:   "div",
			attrs: map[string]string{"class": "   ", "name": "panel"},
			want:  "div[name='panel']",
		},
		{
			name:  "no attributes",
			tag:   "p",
			attrs: map[string]string{},
			want:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCSSSelector(tc.tag, tc.attrs))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	long := truncate("this string is definitely too long", 10)
	assert.Len(t, long, 10)
	assert.Equal(t, "this st...", long)
}
