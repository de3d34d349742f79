package tfdoc

import (
	"log/slog"
	"strings"
)

// MaxNodes bounds the size of a linked [Tree]. Sections wired under many
// bullets are copied per placement, which grows exponentially when such
// sections nest.
const MaxNodes = 50000

// Link resolves f into a single rooted [Tree].
//
// Sections are wired into the bullets that name them in three ordered passes:
//
//  1. Compound names: an entry named "parent child" replaces the child bullet
//     of the first entry named parent.
//  2. First fit: each unresolved bullet takes the first entry with the same
//     name that has no parent yet.
//  3. Any fit: remaining unresolved bullets take the first entry with the
//     same name, attached or not.
//
// Bullets are only wired when their description allows children, and never
// to the entry that owns them. Bullets left unresolved become leaves.
//
// Link mutates f.
func Link(f *Forest) *Tree {
	f.linkCompoundNames()
	f.linkFirstFit()
	f.linkAnyFit()

	return f.materialize()
}

// Build extracts and links documentation text in one step.
func Build(rootName, text string) *Tree {
	return Link(Extract(rootName, text))
}

func (f *Forest) attach(parent NodeID, name string, id NodeID) {
	f.nodes[parent].setChild(name, id)

	if !f.nodes[id].HasParent {
		f.nodes[id].HasParent = true
		f.nodes[id].Parent = parent
	}

	slog.Debug("linked section",
		slog.String("parent", f.nodes[parent].Name),
		slog.String("child", name),
	)
}

// slot returns the node currently behind the named edge of parent.
func (f *Forest) slot(parent NodeID, name string) (NodeID, bool) {
	i := f.nodes[parent].childIndex(name)
	if i < 0 {
		return NoNode, false
	}

	return f.nodes[parent].Children[i].ID, true
}

func (f *Forest) linkCompoundNames() {
	for _, e := range f.entries {
		parts := strings.Fields(f.nodes[e].Name)
		if len(parts) < 2 {
			continue
		}

		parentName, childName := strings.ToLower(parts[0]), strings.ToLower(parts[1])

		parent, ok := f.Lookup(parentName)
		if !ok {
			slog.Warn("compound section has no parent section",
				slog.String("section", f.nodes[e].Name),
			)

			continue
		}

		slot, ok := f.slot(parent, childName)
		if !ok || !f.nodes[slot].CanHaveChildren {
			continue
		}

		f.attach(parent, childName, e)
		f.nodes[e].HasParent = true
	}
}

// unresolvedSlots returns the names of the bullets of parent that are still
// waiting for a section.
func (f *Forest) unresolvedSlots(parent NodeID) []string {
	var names []string

	for _, c := range f.nodes[parent].Children {
		n := f.nodes[c.ID]
		if n.State == Unresolved && n.CanHaveChildren {
			names = append(names, c.Name)
		}
	}

	return names
}

func (f *Forest) linkFirstFit() {
	for _, parent := range f.entries {
		for _, name := range f.unresolvedSlots(parent) {
			for _, e := range f.entries {
				if e == parent || f.nodes[e].HasParent || f.nodes[e].Name != name {
					continue
				}

				f.attach(parent, name, e)

				break
			}
		}
	}
}

func (f *Forest) linkAnyFit() {
	for _, parent := range f.entries {
		for _, name := range f.unresolvedSlots(parent) {
			if f.nodes[parent].Name == name {
				continue
			}

			for _, e := range f.entries {
				if e == parent || f.nodes[e].Name != name {
					continue
				}

				f.attach(parent, name, e)

				break
			}
		}
	}
}

// materialize copies the linked forest into a [Tree], starting at the root.
// Sections wired under several bullets are copied once per placement, so
// every tree node has exactly one parent. An edge back to a section already
// on the current path becomes a leaf. Children past [MaxNodes] are dropped.
func (f *Forest) materialize() *Tree {
	t := &Tree{}
	onPath := make(map[NodeID]bool)
	truncated := false

	var visit func(src NodeID, name string, parent NodeID) NodeID

	visit = func(src NodeID, name string, parent NodeID) NodeID {
		n := f.nodes[src]

		state := n.State
		if state == Unresolved {
			state = Leaf
		}

		id := t.add(Node{
			Name:            name,
			State:           state,
			Parent:          parent,
			HasParent:       parent != NoNode,
			CanHaveChildren: n.CanHaveChildren,
		})

		onPath[src] = true

		for _, c := range n.Children {
			if len(t.nodes) >= MaxNodes {
				if !truncated {
					slog.Warn("schema tree truncated",
						slog.String("root", f.nodes[f.Root()].Name),
						slog.String("section", name),
						slog.Int("max_nodes", MaxNodes),
					)
				}

				truncated = true

				break
			}

			if onPath[c.ID] {
				slog.Debug("cut cyclic section reference",
					slog.String("parent", name),
					slog.String("child", c.Name),
				)

				leaf := t.add(Node{
					Name:      c.Name,
					State:     Leaf,
					Parent:    id,
					HasParent: true,
				})
				t.nodes[id].Children = append(t.nodes[id].Children, Child{Name: c.Name, ID: leaf})

				continue
			}

			child := visit(c.ID, c.Name, id)
			t.nodes[id].Children = append(t.nodes[id].Children, Child{Name: c.Name, ID: child})
		}

		delete(onPath, src)

		return id
	}

	root := f.Root()
	visit(root, f.nodes[root].Name, NoNode)

	return t
}
