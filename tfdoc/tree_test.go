package tfdoc_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/k2tf/stringtest"
	"go.jacobcolvin.com/k2tf/tfdoc"
)

func TestTreeJSON(t *testing.T) {
	t.Parallel()

	tree := tfdoc.Build("deployment", readFixture(t, "deployment_v1.md"))

	b, err := json.Marshal(tree)
	require.NoError(t, err)

	var got tfdoc.Tree

	err = json.Unmarshal(b, &got)
	require.NoError(t, err)

	assert.Equal(t, tree.Len(), got.Len())
	assert.Equal(t, dump(tree), dump(&got))

	id, ok := got.Lookup("spec", "template", "spec", "container", "name")
	require.True(t, ok)
	assert.False(t, got.Node(id).CanHaveChildren)
}

func TestTreeJSONEncoding(t *testing.T) {
	t.Parallel()

	tree := tfdoc.Build("service", stringtest.JoinLF(
		"* `selector` - (Optional) A label query over pods.",
		"* `port` - (Optional) Number of the port.",
	))

	b, err := json.Marshal(tree)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "service",
		"state": "mapping",
		"canHaveChildren": true,
		"children": [
			{"name": "selector", "state": "mapping", "canHaveChildren": true},
			{"name": "port", "state": "leaf", "canHaveChildren": false}
		]
	}`, string(b))
}

func TestTreeUnmarshalJSONErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
	}{
		"null": {
			input: `null`,
		},
		"missing name": {
			input: `{"state": "mapping"}`,
		},
		"unknown state": {
			input: `{"name": "pod", "state": "sideways"}`,
		},
		"not json": {
			input: `{`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var tree tfdoc.Tree

			err := tree.UnmarshalJSON([]byte(tc.input))
			require.ErrorIs(t, err, tfdoc.ErrInvalidTree)
		})
	}
}

func TestTreeJSONSchema(t *testing.T) {
	t.Parallel()

	tree := tfdoc.Build("deployment", stringtest.JoinLF(
		"* `metadata` - (Required) Standard metadata.",
		"* `spec` - (Required) Spec.",
		"### `metadata`",
		"* `name` - (Optional) Name of the deployment.",
		"* `labels` - (Optional) Labels.",
		"### `spec`",
		"* `selector` - (Optional) A label query over pods.",
	))

	s := tree.JSONSchema()

	assert.Equal(t, "deployment", s.Title)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"metadata", "spec"}, s.PropertyOrder)

	metadata := s.Properties["metadata"]
	require.NotNil(t, metadata)
	assert.Equal(t, "object", metadata.Type)
	assert.Equal(t, []string{"name", "labels"}, metadata.PropertyOrder)
	assert.Empty(t, metadata.Properties["name"].Type)

	selector := s.Properties["spec"].Properties["selector"]
	require.NotNil(t, selector)
	assert.Equal(t, "object", selector.Type)
	assert.Empty(t, selector.Properties)
}

func TestStateText(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		state tfdoc.State
		want  string
	}{
		"unresolved": {state: tfdoc.Unresolved, want: "unresolved"},
		"leaf":       {state: tfdoc.Leaf, want: "leaf"},
		"mapping":    {state: tfdoc.Mapping, want: "mapping"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := tc.state.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))

			var got tfdoc.State

			require.NoError(t, got.UnmarshalText(b))
			assert.Equal(t, tc.state, got)
		})
	}

	_, err := tfdoc.State(42).MarshalText()
	require.ErrorIs(t, err, tfdoc.ErrInvalidTree)
}
