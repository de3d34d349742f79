package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/stringtest"
	"go.jacobcolvin.com/k2tf/tfdoc"
	"go.jacobcolvin.com/k2tf/translate"
)

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"lower":          {input: "replicas", want: "replicas"},
		"camel":          {input: "containerPort", want: "container_port"},
		"pascal":         {input: "StatefulSet", want: "stateful_set"},
		"capital run":    {input: "podIP", want: "pod_ip"},
		"leading run":    {input: "HTTPGet", want: "httpget"},
		"digits":         {input: "x509Cert", want: "x509cert"},
		"already snake":  {input: "config_map", want: "config_map"},
		"single capital": {input: "Service", want: "service"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, translate.SnakeCase(tc.input))
		})
	}
}

func metadataTree() *tfdoc.Tree {
	return tfdoc.Build("deployment", stringtest.JoinLF(
		"* `metadata` - (Required) Standard metadata.",
		"* `spec` - (Required) Spec.",
		"### `metadata`",
		"* `annotations` - (Optional) Annotations.",
		"* `generate_name` - (Optional) Prefix for the name.",
		"* `labels` - (Optional) Labels.",
		"* `name` - (Optional) Name of the deployment.",
		"* `namespace` - (Optional) Namespace of the deployment.",
		"### `spec`",
		"* `replicas` - (Optional) The number of replicas.",
		"* `selector` - (Optional) A label query over pods.",
	))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		line    manifest.Line
		nav     []string
		want    translate.Resolution
		wantNav string
	}{
		"exact match beats longer candidate": {
			line:    manifest.Line{Key: "name", Value: "web"},
			nav:     []string{"metadata"},
			want:    translate.Resolution{Name: "name", Text: `name = "web"`},
			wantNav: "metadata",
		},
		"longer key picks the longer candidate": {
			line:    manifest.Line{Key: "namespace", Value: "prod"},
			nav:     []string{"metadata"},
			want:    translate.Resolution{Name: "namespace", Text: `namespace = "prod"`},
			wantNav: "metadata",
		},
		"camel case key": {
			line:    manifest.Line{Key: "generateName", Value: "web-"},
			nav:     []string{"metadata"},
			want:    translate.Resolution{Name: "generate_name", Text: `generate_name = "web-"`},
			wantNav: "metadata",
		},
		"block opens and pushes": {
			line:    manifest.Line{Key: "metadata"},
			want:    translate.Resolution{Name: "metadata", Text: "metadata", Pushed: true},
			wantNav: "metadata",
		},
		"query mapping is a block": {
			line:    manifest.Line{Key: "selector"},
			nav:     []string{"spec"},
			want:    translate.Resolution{Name: "selector", Text: "selector", Pushed: true},
			wantNav: "spec.selector",
		},
		"leaf without value is a map": {
			line:    manifest.Line{Key: "labels"},
			nav:     []string{"metadata"},
			want:    translate.Resolution{Name: "labels", Text: "labels = ", Pushed: true},
			wantNav: "metadata.labels",
		},
		"numbers are quoted": {
			line:    manifest.Line{Key: "replicas", Value: "3"},
			nav:     []string{"spec"},
			want:    translate.Resolution{Name: "replicas", Text: `replicas = "3"`},
			wantNav: "spec",
		},
		"sequence literal is written as is": {
			line:    manifest.Line{Key: "finalizers", Value: `["a", "b"]`},
			nav:     []string{"metadata"},
			want:    translate.Resolution{Text: `finalizers = ["a", "b"]`},
			wantNav: "metadata",
		},
		"unmatched value is quoted": {
			line:    manifest.Line{Key: "hostNetwork", Value: "true"},
			nav:     []string{"spec"},
			want:    translate.Resolution{Text: `host_network = "true"`},
			wantNav: "spec",
		},
		"double quotes become single quotes": {
			line: manifest.Line{Key: "comment", Value: `say "hi"`},
			want: translate.Resolution{Text: `comment = "say 'hi'"`},
		},
		"escaped double quotes become single quotes": {
			line: manifest.Line{Key: "comment", Value: `say \"hi\"`},
			want: translate.Resolution{Text: `comment = "say 'hi'"`},
		},
		"template sequences are escaped": {
			line: manifest.Line{Key: "command", Value: "echo ${HOME} $${X}"},
			want: translate.Resolution{Text: `command = "echo $${HOME} $${X}"`},
		},
		"unmatched scope pushes a placeholder": {
			line:    manifest.Line{Key: "customThing"},
			nav:     []string{"spec"},
			want:    translate.Resolution{Text: "custom_thing = ", Pushed: true},
			wantNav: "spec.*",
		},
		"below a placeholder nothing is scored": {
			line:    manifest.Line{Key: "name", Value: "x"},
			nav:     []string{"metadata", "*"},
			want:    translate.Resolution{Text: `name = "x"`},
			wantNav: "metadata.*",
		},
		"below a leaf nothing matches": {
			line:    manifest.Line{Key: "name", Value: "x"},
			nav:     []string{"metadata", "labels"},
			want:    translate.Resolution{Text: `name = "x"`},
			wantNav: "metadata.labels",
		},
	}

	tree := metadataTree()
	r := translate.NewResolver(tree)

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var nav translate.Navigation

			for _, e := range tc.nav {
				if e == "*" {
					nav.PushPlaceholder()

					continue
				}

				nav.Push(e)
			}

			got := r.Resolve(tc.line, &nav)
			assert.Equal(t, tc.want, got)

			assert.Equal(t, tc.wantNav, nav.String())
		})
	}
}

func TestResolveTieKeepsFirst(t *testing.T) {
	t.Parallel()

	// Both candidates contain the key and are one character longer.
	tree := tfdoc.Build("pod", stringtest.JoinLF(
		"* `ports` - (Optional) Ports.",
		"* `sport` - (Optional) Sport.",
	))

	var nav translate.Navigation

	got := translate.NewResolver(tree).Resolve(manifest.Line{Key: "port", Value: "80"}, &nav)
	assert.Equal(t, "ports", got.Name)
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	var nav translate.Navigation

	assert.ErrorIs(t, nav.Pop(), translate.ErrUnbalanced)

	nav.Push("spec")
	nav.PushPlaceholder()
	assert.True(t, nav.Custom())
	assert.Equal(t, "spec.*", nav.String())

	assert.NoError(t, nav.Pop())
	assert.False(t, nav.Custom())
	assert.Equal(t, 1, nav.Len())
}
