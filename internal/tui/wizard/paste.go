package wizard

import (
	"regexp"
	"strings"
)

// ansiEscapePattern matches CSI sequences such as colors and cursor moves.
var ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// newlinePattern matches one or more newline characters
var newlinePattern = regexp.MustCompile(`\n+`)

// SanitizePaste cleans pasted text before it reaches an input: ANSI escapes
// and control characters other than tab and newline are dropped, CRLF becomes
// LF and trailing whitespace is trimmed.
func SanitizePaste(content string) string {
	content = ansiEscapePattern.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case r < 32, r == 127:
			return -1
		}
		return r
	}, content)
	return strings.TrimRight(content, " \t\n")
}

// collapseNewlines folds newlines into single spaces for one-line inputs.
func collapseNewlines(content string) string {
	return newlinePattern.ReplaceAllString(content, " ")
}
