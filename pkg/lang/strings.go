// Package lang holds small string and concurrency helpers shared by the rest of
// the library.
package lang

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	lf   = "\n"
	crlf = "\r\n"
)

var (
	leadingEmptyLines = regexp.MustCompile(`^[\r\n]+`)
	leadingIndent     = regexp.MustCompile(`^[ \t]*`)
)

// TrimTrailingNewline removes a single trailing CRLF or LF. Other trailing
// whitespace is kept.
func TrimTrailingNewline(text string) string {
	if strings.HasSuffix(text, crlf) {
		return StripSuffix(text, crlf)
	}
	return StripSuffix(text, lf)
}

// StripPrefix removes prefix from text if text starts with it.
func StripPrefix(text, prefix string) string {
	return strings.TrimPrefix(text, prefix)
}

// StripSuffix removes suffix from text if text ends with it.
func StripSuffix(text, suffix string) string {
	return strings.TrimSuffix(text, suffix)
}

// TrimAndDedent drops leading blank lines, removes the first line's indentation
// from every line that carries it, and trims trailing whitespace.
//
//	TrimAndDedent(`
//	    service Foo {
//	      rpc Bar(BarRequest) returns (BarResponse);
//	    }
//	`)
func TrimAndDedent(text string) string {
	text = leadingEmptyLines.ReplaceAllString(text, "")

	indent := leadingIndent.FindString(text)
	if indent != "" {
		lines := strings.Split(text, lf)
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, indent)
		}
		text = strings.Join(lines, lf)
	}

	return strings.TrimRightFunc(text, unicode.IsSpace)
}
