package translate

import (
	"errors"
	"strings"
)

// ErrUnbalanced indicates the source indentation closes more blocks than it
// opened, or returns to a column that matches no open block.
var ErrUnbalanced = errors.New("unbalanced blocks")

// Navigation is the path from the schema root to the block that is currently
// open in the output. Blocks that have no schema node, such as free-form maps
// under a custom key, are recorded as placeholders.
type Navigation struct {
	entries []navEntry
}

type navEntry struct {
	name   string
	custom bool
}

// Push records a block that matched the schema attribute name.
func (n *Navigation) Push(name string) {
	n.entries = append(n.entries, navEntry{name: name})
}

// PushPlaceholder records a block with no schema representation.
func (n *Navigation) PushPlaceholder() {
	n.entries = append(n.entries, navEntry{custom: true})
}

// Pop removes the innermost block.
func (n *Navigation) Pop() error {
	if len(n.entries) == 0 {
		return ErrUnbalanced
	}

	n.entries = n.entries[:len(n.entries)-1]

	return nil
}

// Len returns the number of open blocks.
func (n *Navigation) Len() int {
	return len(n.entries)
}

// Custom reports whether any open block is a placeholder.
func (n *Navigation) Custom() bool {
	for _, e := range n.entries {
		if e.custom {
			return true
		}
	}

	return false
}

// String returns the path as dot-separated names, with "*" for placeholders.
func (n *Navigation) String() string {
	parts := make([]string, 0, len(n.entries))

	for _, e := range n.entries {
		if e.custom {
			parts = append(parts, "*")

			continue
		}

		parts = append(parts, e.name)
	}

	return strings.Join(parts, ".")
}
