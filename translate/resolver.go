package translate

import (
	"log/slog"
	"regexp"
	"strings"

	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/tfdoc"
)

// Scores for a candidate attribute that contains the key, or is contained by
// it. The closeness bonus shrinks by one per character of length difference,
// which prefers "name" over "namespace" for the key "name".
const (
	containsScore  = 20
	closenessBonus = 30
)

// templateRe matches HCL template sequences that are not already escaped.
var templateRe = regexp.MustCompile(`(^|[^$%])([$%])\{`)

// Resolver maps manifest keys onto the attributes of a schema tree.
type Resolver struct {
	tree *tfdoc.Tree
}

// NewResolver creates a [Resolver] for tree.
func NewResolver(tree *tfdoc.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Resolution is the result of resolving one manifest line.
type Resolution struct {
	// Name is the matched attribute, or empty when nothing matched.
	Name string
	// Text is the output line without indentation.
	Text string
	// Pushed is set when the line was recorded on the [Navigation] because
	// it may open a block.
	Pushed bool
}

// Resolve finds the attribute for l among the children of the schema node
// at nav and formats the output line. Lines that may open a block are pushed
// onto nav.
//
// Candidates are scored against the snake-cased key: a candidate containing
// the key, and a candidate contained in the key, each score 20 plus 30 less
// their length difference. The first candidate with the highest positive
// score wins. Below a placeholder no candidates are scored, because custom
// blocks have no schema.
func (r *Resolver) Resolve(l manifest.Line, nav *Navigation) Resolution {
	key := SnakeCase(l.Key)
	pos, ok := r.position(nav)

	var (
		best      string
		bestID    tfdoc.NodeID
		bestScore int
	)

	if ok {
		for _, c := range r.tree.Node(pos).Children {
			s := score(c.Name, key)
			if s > bestScore {
				best, bestID, bestScore = c.Name, c.ID, s
			}
		}
	}

	if best == "" {
		slog.Debug("no schema match",
			slog.String("key", l.Key),
			slog.String("path", nav.String()),
		)

		if l.Value == "" {
			nav.PushPlaceholder()

			return Resolution{Text: key + " = ", Pushed: true}
		}

		return Resolution{Text: assign(key, l.Value)}
	}

	res := Resolution{Name: best}

	switch {
	case r.tree.Node(bestID).State != tfdoc.Leaf:
		res.Text = best
		res.Pushed = true

		nav.Push(best)

	case l.Value == "":
		// Undocumented maps such as labels.
		res.Text = best + " = "
		res.Pushed = true

		nav.Push(best)

	default:
		res.Text = assign(best, l.Value)
	}

	return res
}

// position walks nav from the root. It reports false when nav passes through
// a placeholder or leaves the schema.
func (r *Resolver) position(nav *Navigation) (tfdoc.NodeID, bool) {
	id := r.tree.Root()

	for _, e := range nav.entries {
		if e.custom {
			return tfdoc.NoNode, false
		}

		if r.tree.Node(id).State == tfdoc.Leaf {
			break
		}

		child, ok := r.tree.Child(id, e.name)
		if !ok {
			return tfdoc.NoNode, false
		}

		id = child
	}

	return id, true
}

func score(candidate, key string) int {
	s := 0

	if strings.Contains(candidate, key) {
		s += containsScore + closenessBonus - (len(candidate) - len(key))
	}

	if strings.Contains(key, candidate) {
		s += containsScore + closenessBonus - (len(key) - len(candidate))
	}

	return s
}

// assign formats an attribute assignment. Values starting with a bracket are
// sequence literals and are written as is. Every other value is quoted, with
// double quotes replaced by single quotes.
func assign(name, value string) string {
	if isSequence(value) {
		return name + " = " + value
	}

	value = strings.ReplaceAll(value, `\"`, "'")
	value = strings.ReplaceAll(value, `"`, "'")
	value = templateRe.ReplaceAllString(value, "$1$2$2{")

	return name + ` = "` + value + `"`
}

func isSequence(value string) bool {
	return strings.HasPrefix(value, "[") || strings.HasPrefix(value, "]")
}
