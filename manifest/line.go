package manifest

import (
	"regexp"
	"strings"
)

var (
	// First ": " (or a trailing ":") separates the key from the value, so
	// values may contain colons ("image: nginx:1.27").
	separatorRe = regexp.MustCompile(`:(?:\s+|$)`)
	commentRe   = regexp.MustCompile(`\s+#.*$`)
)

// Line is one key/value line of a manifest.
type Line struct {
	Key string
	// Value is empty when the line opens a nested scope ("spec:") or the
	// field has no value.
	Value string
	// Indent is the column of the key. List item dashes count as indentation,
	// so "  - name: x" has an indent of 4.
	Indent int
	// Item is set when the line starts a list item.
	Item bool
}

// ParseLine parses a single manifest line. It reports false for blank lines,
// comments, document separators, and lines without a key.
func ParseLine(raw string) (Line, bool) {
	raw = strings.TrimRight(raw, "\r\n")

	content := strings.TrimLeft(raw, "- \t")
	if content == "" || strings.HasPrefix(content, "#") || strings.TrimSpace(raw) == "---" {
		return Line{}, false
	}

	loc := separatorRe.FindStringIndex(content)
	if loc == nil {
		return Line{}, false
	}

	key := strings.Trim(strings.TrimSpace(content[:loc[0]]), `"'`)
	if key == "" {
		return Line{}, false
	}

	return Line{
		Key:    key,
		Value:  parseValue(content[loc[1]:]),
		Indent: len(raw) - len(content),
		Item:   strings.HasPrefix(strings.TrimLeft(raw, " \t"), "-"),
	}, true
}

// parseValue strips trailing comments and surrounding quotes. Escape
// sequences inside double quotes are kept as written.
func parseValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}

	switch v[0] {
	case '"':
		if end := closingQuote(v); end > 0 {
			return v[1:end]
		}

		return strings.Trim(v, `"`)

	case '\'':
		if end := strings.LastIndexByte(v, '\''); end > 0 {
			return v[1:end]
		}
	}

	return strings.TrimSpace(commentRe.ReplaceAllString(v, ""))
}

// rawValue returns the value of raw as written, without a trailing comment.
func rawValue(raw string) string {
	content := strings.TrimLeft(raw, "- \t")

	loc := separatorRe.FindStringIndex(content)
	if loc == nil {
		return ""
	}

	return strings.TrimSpace(commentRe.ReplaceAllString(content[loc[1]:], ""))
}

// closingQuote returns the index of the first unescaped double quote after
// the opening one, or -1.
func closingQuote(v string) int {
	for i := 1; i < len(v); i++ {
		switch v[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}

	return -1
}

// contentColumn returns the column of the first character after any
// indentation and list item dashes.
func contentColumn(raw string) int {
	return len(raw) - len(strings.TrimLeft(raw, "- \t"))
}

// leadingSpaces returns the number of leading whitespace characters.
func leadingSpaces(raw string) int {
	return len(raw) - len(strings.TrimLeft(raw, " \t"))
}

// insignificant reports whether raw is blank or a comment.
func insignificant(raw string) bool {
	t := strings.TrimSpace(raw)

	return t == "" || strings.HasPrefix(t, "#")
}
