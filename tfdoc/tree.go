package tfdoc

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrInvalidTree indicates an encoded tree could not be decoded.
var ErrInvalidTree = errors.New("invalid schema tree")

// Tree is a linked schema for one resource kind. Node 0 is the root.
//
// Trees are built by [Link] or decoded from JSON, and are not modified
// afterwards, so they are safe for concurrent readers.
type Tree struct {
	nodes []Node
}

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)

	return NodeID(len(t.nodes) - 1)
}

// Root returns the root node id.
func (t *Tree) Root() NodeID {
	return 0
}

// Name returns the root name, which is the resource kind.
func (t *Tree) Name() string {
	if len(t.nodes) == 0 {
		return ""
	}

	return t.nodes[0].Name
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Child returns the named child of id.
func (t *Tree) Child(id NodeID, name string) (NodeID, bool) {
	n := &t.nodes[id]

	i := n.childIndex(name)
	if i < 0 {
		return NoNode, false
	}

	return n.Children[i].ID, true
}

// Lookup follows a path of child names from the root.
func (t *Tree) Lookup(path ...string) (NodeID, bool) {
	id := t.Root()

	for _, name := range path {
		var ok bool

		id, ok = t.Child(id, name)
		if !ok {
			return NoNode, false
		}
	}

	return id, true
}

// Walk calls fn for every node in depth-first order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	if len(t.nodes) == 0 {
		return
	}

	var walk func(id NodeID, depth int)

	walk = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}

		for _, c := range t.nodes[id].Children {
			walk(c.ID, depth+1)
		}
	}

	walk(t.Root(), 0)
}

// jsonNode is the nested encoding of a [Tree].
type jsonNode struct {
	Name            string     `json:"name"`
	State           State      `json:"state"`
	Children        []jsonNode `json:"children,omitempty"`
	CanHaveChildren bool       `json:"canHaveChildren"`
}

// MarshalJSON encodes the tree as nested objects.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if len(t.nodes) == 0 {
		return []byte("null"), nil
	}

	var encode func(id NodeID) jsonNode

	encode = func(id NodeID) jsonNode {
		n := t.nodes[id]
		out := jsonNode{
			Name:            n.Name,
			State:           n.State,
			CanHaveChildren: n.CanHaveChildren,
		}

		for _, c := range n.Children {
			out.Children = append(out.Children, encode(c.ID))
		}

		return out
	}

	b, err := json.Marshal(encode(t.Root()))
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}

	return b, nil
}

// UnmarshalJSON decodes a tree produced by [Tree.MarshalJSON].
func (t *Tree) UnmarshalJSON(b []byte) error {
	var root *jsonNode

	err := json.Unmarshal(b, &root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTree, err)
	}

	if root == nil || root.Name == "" {
		return fmt.Errorf("%w: missing root", ErrInvalidTree)
	}

	t.nodes = nil

	var decode func(n jsonNode, parent NodeID) NodeID

	decode = func(n jsonNode, parent NodeID) NodeID {
		id := t.add(Node{
			Name:            n.Name,
			State:           n.State,
			Parent:          parent,
			HasParent:       parent != NoNode,
			CanHaveChildren: n.CanHaveChildren,
		})

		for _, c := range n.Children {
			child := decode(c, id)
			t.nodes[id].Children = append(t.nodes[id].Children, Child{Name: c.Name, ID: child})
		}

		return id
	}

	decode(*root, NoNode)

	return nil
}

// JSONSchema describes the tree as a JSON Schema. Blocks become objects with
// properties in documentation order; leaves carry no type constraint.
func (t *Tree) JSONSchema() *jsonschema.Schema {
	if len(t.nodes) == 0 {
		return &jsonschema.Schema{}
	}

	s := t.schemaFor(t.Root())
	s.Schema = "http://json-schema.org/draft-07/schema#"
	s.Title = t.Name()

	return s
}

func (t *Tree) schemaFor(id NodeID) *jsonschema.Schema {
	n := t.nodes[id]
	if n.State == Leaf {
		return &jsonschema.Schema{}
	}

	s := &jsonschema.Schema{Type: "object"}
	if len(n.Children) == 0 {
		return s
	}

	s.Properties = make(map[string]*jsonschema.Schema, len(n.Children))

	for _, c := range n.Children {
		s.Properties[c.Name] = t.schemaFor(c.ID)
		s.PropertyOrder = append(s.PropertyOrder, c.Name)
	}

	return s
}
