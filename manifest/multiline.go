package manifest

import (
	"log/slog"
	"strings"
)

// plainStart lists the first characters that do not start a plain scalar, or
// start one that is folded elsewhere.
const plainStart = `'"[{|>&*!%@` + "`"

// joinContinuations folds values written across several lines into one
// line: flow collections closed on a later line, double-quoted strings closed
// on a later line, and plain scalars continued on deeper lines.
func joinContinuations(lines []string) []string {
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		raw := lines[i]

		l, ok := ParseLine(raw)
		prefix, full := splitValue(raw)
		rv := rawValue(raw)

		if !ok || rv == "" {
			out = append(out, raw)

			continue
		}

		var (
			end   = i + 1
			value string
		)

		switch {
		case rv[0] == '[' || rv[0] == '{':
			end, value = joinFlow(lines, i, rv)
		case rv[0] == '"':
			end, value = joinQuoted(lines, i, full)
		case !strings.ContainsRune(plainStart, rune(rv[0])):
			end, value = joinPlain(lines, i, l)
		}

		if end == i+1 {
			out = append(out, raw)

			continue
		}

		out = append(out, prefix+" "+value)

		slog.Debug("joined multi-line value",
			slog.String("key", l.Key),
			slog.Int("lines", end-i),
		)

		i = end - 1
	}

	return out
}

// splitValue splits raw after the key separator. The value keeps any
// trailing comment.
func splitValue(raw string) (string, string) {
	start := contentColumn(raw)

	loc := separatorRe.FindStringIndex(raw[start:])
	if loc == nil {
		return raw, ""
	}

	return raw[:start+loc[0]+1], strings.TrimSpace(raw[start+loc[1]:])
}

// joinFlow joins a flow sequence or mapping until its brackets balance. An
// unterminated collection is left as written.
func joinFlow(lines []string, i int, rv string) (int, string) {
	depth := bracketDepth(rv, 0)
	if depth <= 0 {
		return i + 1, ""
	}

	joined := rv

	for j := i + 1; j < len(lines); j++ {
		if insignificant(lines[j]) {
			continue
		}

		piece := strings.TrimSpace(commentRe.ReplaceAllString(lines[j], ""))

		if !strings.HasSuffix(joined, "[") && !strings.HasSuffix(joined, "{") &&
			!strings.HasPrefix(piece, "]") && !strings.HasPrefix(piece, "}") {
			joined += " "
		}

		joined += piece

		depth = bracketDepth(piece, depth)
		if depth <= 0 {
			return j + 1, joined
		}
	}

	return i + 1, ""
}

// bracketDepth adds the net bracket nesting of s to depth. Brackets inside
// quotes are ignored.
func bracketDepth(s string, depth int) int {
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		}
	}

	return depth
}

// joinQuoted joins a double-quoted string until its closing quote. Line
// breaks fold into spaces. Text after the closing quote is dropped.
func joinQuoted(lines []string, i int, rv string) (int, string) {
	if closingQuote(rv) > 0 {
		return i + 1, ""
	}

	joined := rv

	for j := i + 1; j < len(lines); j++ {
		piece := strings.TrimSpace(lines[j])
		if piece == "" {
			continue
		}

		joined += " " + piece

		if end := closingQuote(joined); end > 0 {
			return j + 1, joined[:end+1]
		}
	}

	return i + 1, ""
}

// joinPlain joins the continuation lines of a plain scalar. A continuation is
// indented deeper than the key and is neither a key, a list item nor a
// comment.
func joinPlain(lines []string, i int, l Line) (int, string) {
	words := []string{l.Value}
	end := i + 1

	for j := i + 1; j < len(lines); j++ {
		raw := lines[j]
		if insignificant(raw) || leadingSpaces(raw) <= l.Indent || isItem(raw) {
			break
		}

		if _, ok := ParseLine(raw); ok {
			break
		}

		words = append(words, strings.TrimSpace(raw))
		end = j + 1
	}

	if end == i+1 {
		return end, ""
	}

	return end, quote(strings.Join(words, " "))
}
