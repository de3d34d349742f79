package tfdoc

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	// ### `name` or ### `a` / `b`.
	headerRe = regexp.MustCompile("(###\\s)(.*`.*`)")
	// * `name` - description.
	bulletRe = regexp.MustCompile("(\\*\\s`)(.*?)(`)")
	// prefix, separator, suffix of a multi-block header.
	multiBlockRe = regexp.MustCompile(`([a-zA-Z_ ]*)([^a-zA-Z_]*)([a-zA-Z _]*)`)

	followingRe = regexp.MustCompile(`[tT]he following.*:`)
	argRefRe    = regexp.MustCompile(`[aA]rgument [Rr]eference`)

	primitiveRe = regexp.MustCompile(`(is\san*)(\s+[A-Za-z]*\s*)([sS]tring|[iI]nt|[Nn]umber|[nN]ame)+`)
	nameOfRe    = regexp.MustCompile(`[nN]ame of|[nN]umber of`)
	redirectRe  = regexp.MustCompile(`see .* for reference`)
)

// scanState tracks the "the following attributes" idiom, which restates
// attributes documented elsewhere and must not be extracted twice.
type scanState int

const (
	stateNormal scanState = iota
	stateSkippingIdiomHeader
	stateSkippingIdiomBody
)

// Forest is the unlinked output of [Extract]: one entry per documentation
// section, in document order. The first entry is the root.
type Forest struct {
	nodes   []Node
	entries []NodeID
}

// Entries returns the top-level entries in document order.
func (f *Forest) Entries() []NodeID {
	return f.entries
}

// Node returns a copy of the node with the given id.
func (f *Forest) Node(id NodeID) Node {
	return f.nodes[id]
}

// Root returns the root entry.
func (f *Forest) Root() NodeID {
	return f.entries[0]
}

// Lookup returns the first entry with the given name.
func (f *Forest) Lookup(name string) (NodeID, bool) {
	for _, e := range f.entries {
		if f.nodes[e].Name == name {
			return e, true
		}
	}

	return NoNode, false
}

func (f *Forest) add(n Node) NodeID {
	f.nodes = append(f.nodes, n)

	return NodeID(len(f.nodes) - 1)
}

func (f *Forest) addEntry(name string) NodeID {
	id := f.add(Node{
		Name:            name,
		State:           Mapping,
		Parent:          NoNode,
		CanHaveChildren: true,
	})
	f.entries = append(f.entries, id)

	return id
}

// extractor holds the scan state of a single [Extract] call.
type extractor struct {
	forest *Forest
	// open holds the entries that receive new bullets. It has two entries
	// while a multi-block section is active.
	open       []NodeID
	state      scanState
	prevArgRef bool
	// fenced is set when the skipped body is a code block rather than a list.
	fenced bool
}

// Extract parses provider documentation into a [Forest]. The root entry is
// named rootName and receives every bullet that appears before the first
// section header.
//
// Two idioms get special handling. A header whose name splits into
// prefix/separator/suffix (for example "### `limits` / `requests`") opens two
// sibling entries that both receive the following bullets; only the first two
// parts are honored. A "the following ...:" sentence that does not directly
// follow an "Argument Reference" heading introduces a restatement of
// attributes documented elsewhere; its list or code block is skipped.
func Extract(rootName, text string) *Forest {
	f := &Forest{}
	root := f.addEntry(rootName)
	f.nodes[root].HasParent = true

	x := &extractor{
		forest: f,
		open:   []NodeID{root},
	}

	for _, line := range strings.Split(text, "\n") {
		x.line(strings.TrimRight(line, "\r"))
	}

	return f
}

func (x *extractor) line(line string) {
	blank := strings.TrimSpace(line) == ""

	switch x.state {
	case stateNormal:
		if followingRe.MatchString(line) && !x.prevArgRef {
			x.state = stateSkippingIdiomHeader
			slog.Debug("skipping restated attribute list", slog.String("line", line))
		}

	case stateSkippingIdiomHeader:
		switch {
		case isFence(line):
			x.state, x.fenced = stateSkippingIdiomBody, true
		case isBullet(line):
			x.state, x.fenced = stateSkippingIdiomBody, false
		case isHeading(line):
			// The sentence introduced nothing.
			x.state = stateNormal
		}

	case stateSkippingIdiomBody:
		switch {
		case x.fenced && isFence(line):
			// The closing fence belongs to the body.
			x.state = stateNormal
			x.prevArgRef = false

			return
		case !x.fenced && blank:
			x.state = stateNormal
		}
	}

	if !blank {
		x.prevArgRef = argRefRe.MatchString(line)
	}

	if x.state != stateNormal {
		return
	}

	if m := headerRe.FindStringSubmatch(line); m != nil {
		x.openSection(m[2])
	}

	if m := bulletRe.FindStringSubmatch(line); m != nil {
		x.addChild(m[2], line)
	}
}

func isBullet(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "*")
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

func isFence(line string) bool {
	return strings.Contains(line, "```")
}

func (x *extractor) openSection(raw string) {
	m := multiBlockRe.FindStringSubmatch(strings.ReplaceAll(raw, "`", ""))
	if m == nil || m[3] == "" {
		name := strings.ReplaceAll(strings.Trim(raw, "'\" "), "`", "")
		x.open = []NodeID{x.forest.addEntry(name)}

		return
	}

	first, second := strings.TrimSpace(m[1]), strings.TrimSpace(m[3])
	if first == "" {
		x.open = []NodeID{x.forest.addEntry(second)}

		return
	}

	x.open = []NodeID{
		x.forest.addEntry(first),
		x.forest.addEntry(second),
	}
}

func (x *extractor) addChild(name, line string) {
	canHaveChildren := !primitiveRe.MatchString(line) &&
		!nameOfRe.MatchString(line) &&
		!redirectRe.MatchString(line)

	// Selector queries are written as maps.
	state := Unresolved
	if strings.Contains(line, "query") {
		state = Mapping
	}

	for _, parent := range x.open {
		id := x.forest.add(Node{
			Name:            name,
			State:           state,
			Parent:          parent,
			HasParent:       true,
			CanHaveChildren: canHaveChildren,
		})
		x.forest.nodes[parent].setChild(name, id)
	}
}
