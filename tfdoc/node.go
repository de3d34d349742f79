package tfdoc

import (
	"fmt"
	"strings"
)

// State describes what is known about a node's children.
type State int

const (
	// Unresolved means the node may have children but they are not known yet.
	// Bullets start in this state until the linker attaches a section to them.
	Unresolved State = iota
	// Leaf means the node is a scalar, or a free-form map whose keys are not
	// documented (labels, annotations).
	Leaf
	// Mapping means the node is a block. Its children may be empty, which is
	// the case for query-style attributes.
	Mapping
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Leaf:
		return "leaf"
	case Mapping:
		return "mapping"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements [encoding.TextMarshaler].
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case Unresolved, Leaf, Mapping:
		return []byte(s.String()), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidTree, s)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "unresolved":
		*s = Unresolved
	case "leaf":
		*s = Leaf
	case "mapping":
		*s = Mapping
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTree, string(b))
	}

	return nil
}

// NodeID addresses a [Node] inside a [Forest] or [Tree] arena.
type NodeID int

// NoNode is the parent of root and unattached nodes.
const NoNode NodeID = -1

// Child is a named edge from a node to one of its children.
type Child struct {
	Name string
	ID   NodeID
}

// Node is one attribute name that is valid in the target configuration.
type Node struct {
	Name     string
	Children []Child
	State    State
	Parent   NodeID
	// HasParent is set once the node has been placed under another node.
	HasParent bool
	// CanHaveChildren is false when the documentation describes the value as
	// a primitive, or redirects to another resource's documentation.
	CanHaveChildren bool
}

// childIndex returns the position of the named child in n.Children.
func (n *Node) childIndex(name string) int {
	for i, c := range n.Children {
		if c.Name == name {
			return i
		}
	}

	return -1
}

// setChild points the named edge at id. An existing edge keeps its position.
func (n *Node) setChild(name string, id NodeID) {
	if i := n.childIndex(name); i >= 0 {
		n.Children[i].ID = id

		return
	}

	n.Children = append(n.Children, Child{Name: name, ID: id})
}
