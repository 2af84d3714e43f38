package shellwords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain words",
			input: "grant_privileges Steve",
			want:  []string{"grant_privileges", "Steve"},
		},
		{
			name:  "quoted segment kept together",
			input: `say "good night everyone"`,
			want:  []string{"say", "good night everyone"},
		},
		{
			name:  "quoted segment with surrounding words",
			input: `command "/time set day" now`,
			want:  []string{"command", "/time set day", "now"},
		},
		{
			name:  "collapsed whitespace",
			input: "  playtime   Steve  ",
			want:  []string{"playtime", "Steve"},
		},
		{
			name:  "empty quotes produce empty argument",
			input: `say ""`,
			want:  []string{"say", ""},
		},
		{
			name:  "unterminated quote extends to end",
			input: `say "never closed`,
			want:  []string{"say", "never closed"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  nil,
		},
		{
			name:  "tabs and newlines separate",
			input: "a\tb\nc",
			want:  []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.input))
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "/list", want: "'/list'"},
		{name: "with spaces", input: "/say hello world", want: "'/say hello world'"},
		{name: "empty", input: "", want: "''"},
		{name: "embedded single quote", input: "it's", want: `'it'\''s'`},
		{name: "double quotes pass through", input: `say "hi"`, want: `'say "hi"'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.input))
		})
	}
}
