package tfdoc_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/k2tf/stringtest"
	"go.jacobcolvin.com/k2tf/tfdoc"
)

// dump renders a tree as one "name (state)" line per node, indented by depth.
func dump(tree *tfdoc.Tree) string {
	var lines []string

	tree.Walk(func(id tfdoc.NodeID, depth int) bool {
		n := tree.Node(id)
		lines = append(lines, strings.Repeat("  ", depth)+n.Name+" ("+n.State.String()+")")

		return true
	})

	return stringtest.JoinLF(lines...)
}

func TestLink(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"first fit": {
			input: stringtest.JoinLF(
				"* `strategy` - (Optional) The deployment strategy.",
				"### `strategy`",
				"* `type` - (Optional) Type of deployment.",
			),
			want: stringtest.JoinLF(
				"deployment (mapping)",
				"  strategy (mapping)",
				"    type (leaf)",
			),
		},
		"first fit prefers the first unattached section": {
			input: stringtest.JoinLF(
				"* `spec` - (Required) Deployment spec.",
				"### `spec`",
				"* `template` - (Required) Pod template.",
				"### `template`",
				"* `spec` - (Required) Pod spec.",
				"### `spec`",
				"* `container` - (Optional) Containers.",
			),
			want: stringtest.JoinLF(
				"deployment (mapping)",
				"  spec (mapping)",
				"    template (mapping)",
				"      spec (mapping)",
				"        container (leaf)",
			),
		},
		"compound name": {
			input: stringtest.JoinLF(
				"* `container` - (Optional) Containers.",
				"* `security_context` - (Optional) Pod security.",
				"### `security_context`",
				"* `fs_group` - (Optional) Group.",
				"### `container`",
				"* `security_context` - (Optional) Container security.",
				"### `Container security_context`",
				"* `privileged` - (Optional) Privileged mode.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  container (mapping)",
				"    security_context (mapping)",
				"      privileged (leaf)",
				"  security_context (mapping)",
				"    fs_group (leaf)",
			),
		},
		"compound name without a parent section is ignored": {
			input: stringtest.JoinLF(
				"* `image` - (Optional) Image.",
				"### `missing child`",
				"* `ghost` - (Optional) Never linked.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  image (leaf)",
			),
		},
		"any fit copies a shared section": {
			input: stringtest.JoinLF(
				"* `liveness_probe` - (Optional) Liveness.",
				"* `readiness_probe` - (Optional) Readiness.",
				"### `liveness_probe` / `readiness_probe`",
				"* `http_get` - (Optional) Request to perform.",
				"### `http_get`",
				"* `path` - (Optional) Path to access.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  liveness_probe (mapping)",
				"    http_get (mapping)",
				"      path (leaf)",
				"  readiness_probe (mapping)",
				"    http_get (mapping)",
				"      path (leaf)",
			),
		},
		"a section never links to itself": {
			input: stringtest.JoinLF(
				"* `items` - (Optional) Items.",
				"### `items`",
				"* `items` - (Optional) Nested items.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  items (mapping)",
				"    items (leaf)",
			),
		},
		"cycles are cut": {
			input: stringtest.JoinLF(
				"* `a` - (Optional) A.",
				"### `a`",
				"* `b` - (Optional) B.",
				"### `b`",
				"* `a` - (Optional) Back to A.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  a (mapping)",
				"    b (mapping)",
				"      a (leaf)",
			),
		},
		"primitives are never linked": {
			input: stringtest.JoinLF(
				"* `name` - (Optional) Name of the pod.",
				"* `labels` - (Optional) Labels map.",
				"### `name`",
				"* `first` - (Optional) Unused.",
			),
			want: stringtest.JoinLF(
				"pod (mapping)",
				"  name (leaf)",
				"  labels (leaf)",
			),
		},
		"query stays an empty mapping": {
			input: stringtest.JoinLF(
				"* `selector` - (Optional) A label query over pods.",
				"### `selector`",
				"* `match_labels` - (Optional) Labels.",
			),
			want: stringtest.JoinLF(
				"deployment (mapping)",
				"  selector (mapping)",
			),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := "pod"
			if strings.HasPrefix(tc.want, "deployment") {
				root = "deployment"
			}

			tree := tfdoc.Build(root, tc.input)
			assert.Equal(t, tc.want, dump(tree))
		})
	}
}

func readFixture(t *testing.T, name string) string {
	t.Helper()

	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)

	return string(b)
}

func TestBuildDeployment(t *testing.T) {
	t.Parallel()

	tree := tfdoc.Build("deployment", readFixture(t, "deployment_v1.md"))

	tcs := map[string]struct {
		path            []string
		state           tfdoc.State
		canHaveChildren bool
	}{
		"metadata": {
			path:            []string{"metadata"},
			state:           tfdoc.Mapping,
			canHaveChildren: true,
		},
		"metadata labels": {
			path:            []string{"metadata", "labels"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"metadata name": {
			path:  []string{"metadata", "name"},
			state: tfdoc.Leaf,
		},
		"replicas": {
			path:  []string{"spec", "replicas"},
			state: tfdoc.Leaf,
		},
		"selector": {
			path:            []string{"spec", "selector"},
			state:           tfdoc.Mapping,
			canHaveChildren: true,
		},
		"rolling update": {
			path:  []string{"spec", "strategy", "rolling_update", "max_surge"},
			state: tfdoc.Leaf,
		},
		"template metadata copy": {
			path:  []string{"spec", "template", "metadata", "namespace"},
			state: tfdoc.Leaf,
		},
		"pod spec": {
			path:            []string{"spec", "template", "spec", "dns_policy"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"container env": {
			path:            []string{"spec", "template", "spec", "container", "env", "value_from", "field_ref"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"liveness probe": {
			path:            []string{"spec", "template", "spec", "container", "liveness_probe", "http_get", "path"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"readiness probe": {
			path:            []string{"spec", "template", "spec", "container", "readiness_probe", "http_get", "path"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"http get port is not the container port block": {
			path:  []string{"spec", "template", "spec", "container", "liveness_probe", "http_get", "port"},
			state: tfdoc.Leaf,
		},
		"container port": {
			path:  []string{"spec", "template", "spec", "container", "port", "container_port"},
			state: tfdoc.Leaf,
		},
		"container security context": {
			path:            []string{"spec", "template", "spec", "container", "security_context", "privileged"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"pod security context": {
			path:            []string{"spec", "template", "spec", "security_context", "fs_group"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
		"volume": {
			path:            []string{"spec", "template", "spec", "volume", "empty_dir", "size_limit"},
			state:           tfdoc.Leaf,
			canHaveChildren: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			id, ok := tree.Lookup(tc.path...)
			require.True(t, ok, "path %v not found", tc.path)

			n := tree.Node(id)
			assert.Equal(t, tc.path[len(tc.path)-1], n.Name)
			assert.Equal(t, tc.state, n.State)
			assert.Equal(t, tc.canHaveChildren, n.CanHaveChildren)
		})
	}

	for _, path := range [][]string{
		{"create"},
		{"update"},
		{"spec", "template", "spec", "container", "security_context", "fs_group"},
		{"spec", "template", "spec", "security_context", "privileged"},
		{"spec", "selector", "match_labels"},
	} {
		_, ok := tree.Lookup(path...)
		assert.False(t, ok, "unexpected path %v", path)
	}
}

func TestBuildInvariants(t *testing.T) {
	t.Parallel()

	doc := readFixture(t, "deployment_v1.md")
	tree := tfdoc.Build("deployment", doc)

	visits := make(map[tfdoc.NodeID]int)

	tree.Walk(func(id tfdoc.NodeID, _ int) bool {
		visits[id]++

		n := tree.Node(id)
		assert.NotEqual(t, tfdoc.Unresolved, n.State, "node %q", n.Name)

		if id == tree.Root() {
			assert.False(t, n.HasParent)
		} else {
			require.True(t, n.HasParent, "node %q", n.Name)

			parent := tree.Node(n.Parent)
			child, ok := tree.Child(n.Parent, n.Name)
			require.True(t, ok)
			assert.Equal(t, id, child, "parent %q", parent.Name)
		}

		if n.State == tfdoc.Leaf {
			assert.Empty(t, n.Children, "leaf %q", n.Name)
		}

		return true
	})

	// Every node is reachable exactly once, so the tree is acyclic and every
	// node has a single parent.
	assert.Len(t, visits, tree.Len())

	for id, n := range visits {
		assert.Equal(t, 1, n, "node %d", id)
	}

	// Building the same text twice produces the same tree.
	assert.Equal(t, dump(tree), dump(tfdoc.Build("deployment", doc)))
}

func TestBuildNodeBudget(t *testing.T) {
	t.Parallel()

	// Each level is a pair of sections that both name the next pair, so every
	// level doubles the number of placements.
	level := func(i int) (string, string) {
		suffix := strings.Repeat("x", i)

		return "left_" + suffix, "right_" + suffix
	}

	left, right := level(0)
	lines := []string{
		"* `" + left + "` - (Optional) Nested block.",
		"* `" + right + "` - (Optional) Nested block.",
	}

	for i := range 24 {
		l, r := level(i)
		nextLeft, nextRight := level(i + 1)
		lines = append(lines,
			"### `"+l+"` / `"+r+"`",
			"* `"+nextLeft+"` - (Optional) Nested block.",
			"* `"+nextRight+"` - (Optional) Nested block.",
		)
	}

	tree := tfdoc.Build("chain", stringtest.JoinLF(lines...))

	require.LessOrEqual(t, tree.Len(), tfdoc.MaxNodes)
	assert.Greater(t, tree.Len(), 1)

	visits := 0

	tree.Walk(func(id tfdoc.NodeID, _ int) bool {
		visits++

		if id != tree.Root() {
			n := tree.Node(id)
			child, ok := tree.Child(n.Parent, n.Name)
			require.True(t, ok)
			assert.Equal(t, id, child)
		}

		return true
	})

	assert.Equal(t, tree.Len(), visits)

	_, ok := tree.Lookup("left_", "left_x", "left_xx")
	assert.True(t, ok)
}
