package manifest

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

// DefaultFields are the fields whose lists of maps are split into one block
// per item.
var DefaultFields = []string{"env"}

// blockScalarRe matches a block scalar indicator such as "|", ">-" or "|2+".
var blockScalarRe = regexp.MustCompile(`^([|>])([1-9]?)([-+]?)([1-9]?)$`)

// Options configures [Normalize].
type Options struct {
	// Fields lists the keys whose list-of-maps values are rewritten into
	// repeated blocks. Nil means [DefaultFields].
	Fields []string
}

// Normalize rewrites manifest lines into a shape that translates line by
// line. The result is returned as a new slice; lines is not modified.
//
// Four rewrites are applied in order:
//
//  1. Block scalars ("key: |" plus indented text) fold into one quoted value.
//  2. Values spread over several lines join into one: flow collections and
//     double-quoted strings closed on a later line, and plain scalars
//     continued on deeper lines.
//  3. Lists of plain scalars fold into a flow sequence, so "args:" followed by
//     "- a" and "- b" becomes `args: ["a", "b"]`.
//  4. For every key in [Options.Fields], a list of maps is split into one
//     block per item. The first item stays under the original key, and each
//     further item gets a repeated key at the same indentation. Item lines are
//     dedented to remove the list syntax.
//
// Normalize is idempotent.
func Normalize(lines []string, opts Options) []string {
	fields := opts.Fields
	if fields == nil {
		fields = DefaultFields
	}

	out := foldBlockScalars(lines)
	out = joinContinuations(out)
	out = foldScalarLists(out)

	return splitItems(out, fields)
}

// section returns the index one past the last line nested under the key line
// at index i, whose key starts at column base. Trailing blank and comment
// lines are not part of the section.
func section(lines []string, i, base int) int {
	end := i + 1

	for j := i + 1; j < len(lines); j++ {
		if insignificant(lines[j]) {
			continue
		}

		if contentColumn(lines[j]) <= base {
			break
		}

		end = j + 1
	}

	return end
}

// firstSignificant returns the index of the first significant line in
// lines[from:to], or -1.
func firstSignificant(lines []string, from, to int) int {
	for j := from; j < to; j++ {
		if !insignificant(lines[j]) {
			return j
		}
	}

	return -1
}

func foldBlockScalars(lines []string) []string {
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		raw := lines[i]

		l, ok := ParseLine(raw)
		if !ok {
			out = append(out, raw)

			continue
		}

		rv := rawValue(raw)

		m := blockScalarRe.FindStringSubmatch(rv)
		if m == nil {
			out = append(out, raw)

			continue
		}

		// The body is indented further than the key.
		end := i + 1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) != "" && leadingSpaces(lines[j]) <= l.Indent {
				break
			}

			end = j + 1
		}

		value := foldBody(lines[i+1:end], m[1] == ">", m[3]+m[2]+m[4])
		prefix := raw[:strings.LastIndex(raw, rv)]
		out = append(out, strings.TrimRight(prefix, " ")+" "+quote(value))

		slog.Debug("folded block scalar", slog.String("key", l.Key))

		i = end - 1
	}

	return out
}

// foldBody joins a block scalar body. Literal bodies keep line breaks; folded
// bodies join lines with spaces. The chomping indicator in mods decides the
// trailing newline.
func foldBody(body []string, folded bool, mods string) string {
	indent := -1

	for _, b := range body {
		if strings.TrimSpace(b) == "" {
			continue
		}

		if n := leadingSpaces(b); indent < 0 || n < indent {
			indent = n
		}
	}

	text := make([]string, 0, len(body))

	for _, b := range body {
		if strings.TrimSpace(b) == "" {
			text = append(text, "")

			continue
		}

		text = append(text, strings.TrimRight(b[indent:], "\r"))
	}

	// Trailing blank lines only matter with the keep indicator.
	content := len(text)
	for content > 0 && text[content-1] == "" {
		content--
	}

	sep := "\n"
	if folded {
		sep = " "
	}

	value := strings.Join(text[:content], sep)

	switch {
	case strings.Contains(mods, "-"):
	case strings.Contains(mods, "+"):
		value += strings.Repeat("\n", len(text)-content+1)
	case content > 0:
		value += "\n"
	}

	return value
}

func foldScalarLists(lines []string) []string {
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		out = append(out, raw)

		l, ok := ParseLine(raw)
		if !ok || l.Value != "" {
			continue
		}

		end := section(lines, i, l.Indent)

		items, ok := scalarItems(lines[i+1 : end])
		if !ok {
			continue
		}

		quoted := make([]string, 0, len(items))
		for _, item := range items {
			quoted = append(quoted, quote(item))
		}

		out[len(out)-1] = strings.TrimRight(raw, " \r") + " [" + strings.Join(quoted, ", ") + "]"

		slog.Debug("folded scalar list",
			slog.String("key", l.Key),
			slog.Int("items", len(items)),
		)

		i = end - 1
	}

	return out
}

// scalarItems returns the values of a list of plain scalars. It reports false
// when any significant line is not a scalar list item at the first item's
// indentation.
func scalarItems(body []string) ([]string, bool) {
	var (
		items []string
		lead  = -1
	)

	for _, b := range body {
		if insignificant(b) {
			continue
		}

		t := strings.TrimSpace(b)
		if !strings.HasPrefix(t, "- ") && t != "-" {
			return nil, false
		}

		if lead < 0 {
			lead = leadingSpaces(b)
		} else if leadingSpaces(b) != lead {
			return nil, false
		}

		v := strings.TrimSpace(strings.TrimPrefix(t, "-"))
		if separatorRe.MatchString(v) && !strings.HasPrefix(v, `"`) && !strings.HasPrefix(v, "'") {
			// "- key: value" is a map item.
			return nil, false
		}

		if strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{") || strings.HasPrefix(v, "|") || strings.HasPrefix(v, ">") {
			return nil, false
		}

		items = append(items, parseValue(v))
	}

	return items, len(items) > 0
}

func splitItems(lines []string, fields []string) []string {
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		out = append(out, raw)

		l, ok := ParseLine(raw)
		if !ok || l.Value != "" || !slices.Contains(fields, l.Key) {
			continue
		}

		end := section(lines, i, l.Indent)

		first := firstSignificant(lines, i+1, end)
		if first < 0 || !isMapItem(lines[first]) {
			// Already normalized, or not a list of maps.
			continue
		}

		out = append(out, rewriteItems(lines[i+1:end], l.Key, l.Indent)...)

		slog.Debug("split list items", slog.String("key", l.Key))

		i = end - 1
	}

	return out
}

// rewriteItems turns the list items under key into one block per item. keyCol
// is the column of the key.
func rewriteItems(body []string, key string, keyCol int) []string {
	var (
		out      []string
		itemLead = -1
		dedent   int
		items    int
	)

	for _, b := range body {
		if insignificant(b) {
			continue
		}

		lead := leadingSpaces(b)
		if itemLead < 0 {
			itemLead = lead
		}

		if lead == itemLead && isItem(b) {
			items++
			dedent = contentColumn(b) - (keyCol + 2)

			if items > 1 {
				out = append(out, strings.Repeat(" ", keyCol)+key+":")
			}

			out = append(out, strings.Repeat(" ", keyCol+2)+strings.TrimLeft(b, "- \t"))

			continue
		}

		out = append(out, strings.Repeat(" ", max(lead-dedent, 0))+strings.TrimLeft(b, " \t"))
	}

	return out
}

func isItem(raw string) bool {
	t := strings.TrimLeft(raw, " \t")

	return strings.HasPrefix(t, "- ") || t == "-"
}

func isMapItem(raw string) bool {
	if !isItem(raw) {
		return false
	}

	_, ok := ParseLine(raw)

	return ok
}

// quote returns v as a double-quoted string that is valid in both YAML and
// HCL. Embedded double quotes become single quotes.
func quote(v string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `'`,
		"\n", `\n`,
		"\t", `\t`,
		"${", "$${",
		"%{", "%%{",
	)

	return `"` + r.Replace(v) + `"`
}
