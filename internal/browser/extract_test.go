// File: internal/browser/extract_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	testCases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "drops script and style",
			html: `<html><head><style>p{color:red}</style></head><body><p>Visible</p><script>alert(1)</script></body></html>`,
			want: "Visible",
		},
		{
			name: "block elements break lines",
			html: `<div>First</div><div>Second</div>`,
			want: "First\nSecond",
		},
		{
			name: "inline text joined with spaces",
			html: `<p>Hello <b>bold</b> world</p>`,
			want: "Hello bold world",
		},
		{
			name: "list items on their own lines",
			html: `<ul><li>one</li><li>two</li></ul>`,
			want: "one\ntwo",
		},
		{
			name: "blank lines collapsed",
			html: `<div></div><div></div><div>only</div>`,
			want: "only",
		},
		{
			name: "empty document",
			html: ``,
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractText(tc.html)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractTextWhitespaceHandling(t *testing.T) {
	got, err := ExtractText("<p>  spaced   \n  out  </p>")
	require.NoError(t, err)
	assert.Equal(t, "spaced out", got)
}
