// Package shellwords splits chat command arguments and quotes strings for
// the remote shell.
//
// Split gives Discord users a way to pass multi-word arguments:
// `%mine say "good night"` must reach the say handler as one argument.
// Quote protects console commands relayed over SSH, where the whole
// command line is re-parsed by the remote shell.
package shellwords

import "strings"

// Split breaks s into whitespace-separated fields, keeping double-quoted
// segments together. Quotes are stripped from the result. An unterminated
// quote extends to the end of the input.
func Split(s string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}

	return args
}

// Quote wraps s in single quotes so the remote shell treats it as exactly
// one argument. Embedded single quotes are closed, escaped, and reopened
// ('\'' sequence), the only escape POSIX shells accept inside single quotes.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
