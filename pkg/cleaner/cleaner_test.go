package cleaner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autogmail/engine/pkg/cleaner"
)

func TestClean_QuotedReply(t *testing.T) {
	input := "Hello\n> quoted line\nOn Jan 1 wrote:\nhidden"
	assert.Equal(t, "Hello", cleaner.Clean(input))
}

func TestClean_ForwardedHeader(t *testing.T) {
	input := "Thanks for reaching out.\n\nFrom: someone@example.com\nOriginal message here"
	assert.Equal(t, "Thanks for reaching out.", cleaner.Clean(input))
}

func TestClean_HTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "block elements become newlines",
			input: "<div>Hello</div><div>World</div>",
			want:  "Hello\nWorld",
		},
		{
			name:  "script and style are dropped",
			input: "<p>Visible</p><script>alert(1)</script><style>p{}</style><p>Also visible</p>",
			want:  "Visible\nAlso visible",
		},
		{
			name:  "entities are decoded",
			input: "<p>Fish &amp; chips</p>",
			want:  "Fish & chips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleaner.Clean(tt.input))
		})
	}
}

func TestClean_CollapsesBlankLines(t *testing.T) {
	input := "First paragraph\n\n\n\nSecond paragraph"
	assert.Equal(t, "First paragraph\n\nSecond paragraph", cleaner.Clean(input))
}

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", cleaner.Clean(""))
}

func TestClean_OnlyQuotedLines(t *testing.T) {
	input := "> first\n> second\n> third"
	assert.Equal(t, "", cleaner.Clean(input))
}
