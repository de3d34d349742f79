package translate_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/stringtest"
	"go.jacobcolvin.com/k2tf/translate"
)

func TestTranslateGolden(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile("testdata/nginx.yaml")
	require.NoError(t, err)

	tr := translate.New(deploymentTree(t), translate.Config{})

	got, err := tr.Translate(string(src))
	require.NoError(t, err)

	assertGolden(t, "testdata/nginx.tf", got)
	require.NoError(t, translate.Validate("nginx.tf", got))

	// Identical input produces identical output.
	again, err := tr.Translate(string(src))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		cfg   translate.Config
		want  string
	}{
		"nested block opens on the previous line": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: Deployment",
				"spec:",
				"  replicas: 2",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  spec {",
				`    replicas = "2"`,
				"  }",
				"}",
				"",
			),
		},
		"custom field below a placeholder": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: Deployment",
				"spec:",
				"  extra:",
				"    name: not-metadata",
				"    nested:",
				"      key: value",
				"  replicas: 1",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  spec {",
				"    extra = {",
				`      name = "not-metadata"`,
				"      nested = {",
				`        key = "value"`,
				"      }",
				"    }",
				`    replicas = "1"`,
				"  }",
				"}",
				"",
			),
		},
		"empty scopes are closed in place": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: Deployment",
				"metadata:",
				"  labels:",
				"  name: web",
				"spec:",
				"  selector: {}",
				"  custom:",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  metadata {",
				"    labels = null",
				`    name = "web"`,
				"  }",
				"  spec {",
				"    selector {}",
				"    custom = null",
				"  }",
				"}",
				"",
			),
		},
		"source indentation is normalized": {
			input: stringtest.JoinLF(
				"kind: Deployment",
				"apiVersion: apps/v1",
				"metadata:",
				"    labels:",
				"        app: web",
				"    name: web",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  metadata {",
				"    labels = {",
				`      app = "web"`,
				"    }",
				`    name = "web"`,
				"  }",
				"}",
				"",
			),
		},
		"env items become sibling blocks": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: Deployment",
				"spec:",
				"  template:",
				"    spec:",
				"      containers:",
				"      - name: app",
				"        env:",
				"        - name: A",
				"          value: a",
				"        - name: B",
				"          value: b",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  spec {",
				"    template {",
				"      spec {",
				"        container {",
				`          name = "app"`,
				"          env {",
				`            name = "A"`,
				`            value = "a"`,
				"          }",
				"          env {",
				`            name = "B"`,
				`            value = "b"`,
				"          }",
				"        }",
				"      }",
				"    }",
				"  }",
				"}",
				"",
			),
		},
		"multi-line flow sequence": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: Deployment",
				"spec:",
				"  template:",
				"    spec:",
				"      containers:",
				"      - name: app",
				"        args: [",
				"          \"--port\",",
				"          \"80\"",
				"        ]",
				"        image: nginx",
			),
			want: stringtest.JoinLF(
				`resource "kubernetes_deployment" "REPLACE_ME" {`,
				"  spec {",
				"    template {",
				"      spec {",
				"        container {",
				`          name = "app"`,
				`          args = ["--port", "80"]`,
				`          image = "nginx"`,
				"        }",
				"      }",
				"    }",
				"  }",
				"}",
				"",
			),
		},
		"custom prefix and name": {
			input: stringtest.JoinLF(
				"apiVersion: apps/v1",
				"kind: StatefulSet",
			),
			cfg: translate.Config{Prefix: "k8s", ResourceName: "main"},
			want: stringtest.JoinLF(
				`resource "k8s_stateful_set" "main" {`,
				"}",
				"",
			),
		},
	}

	tree := deploymentTree(t)

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := translate.New(tree, tc.cfg).Translate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			require.NoError(t, translate.Validate(name, got))
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		err   error
	}{
		"missing kind": {
			input: stringtest.JoinLF(
				"apiVersion: v1",
				"metadata:",
				"  name: x",
			),
			err: manifest.ErrMissingHeader,
		},
		"indentation matches no open block": {
			input: stringtest.JoinLF(
				"apiVersion: v1",
				"kind: Deployment",
				"spec:",
				"    replicas: 1",
				"  paused: true",
			),
			err: translate.ErrUnbalanced,
		},
		"first field is indented": {
			input: stringtest.JoinLF(
				"apiVersion: v1",
				"kind: Deployment",
				"  spec: x",
			),
			err: translate.ErrUnbalanced,
		},
	}

	tree := deploymentTree(t)

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := translate.New(tree, translate.Config{}).Translate(tc.input)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

// TestTranslateBlockBalance checks that every opened block is closed at the
// indentation it was opened at.
func TestTranslateBlockBalance(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile("testdata/nginx.yaml")
	require.NoError(t, err)

	got, err := translate.New(deploymentTree(t), translate.Config{}).Translate(string(src))
	require.NoError(t, err)

	var open []int

	for line := range strings.Lines(got) {
		line = strings.TrimRight(line, "\n")
		indent := len(line) - len(strings.TrimLeft(line, " "))

		switch {
		case strings.HasSuffix(line, "{}"):
		case strings.HasSuffix(line, "{"):
			open = append(open, indent)
		case strings.TrimSpace(line) == "}":
			require.NotEmpty(t, open)
			assert.Equal(t, open[len(open)-1], indent)

			open = open[:len(open)-1]
		}
	}

	assert.Empty(t, open)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	got := translate.Format(stringtest.JoinLF(
		`resource "kubernetes_service" "REPLACE_ME" {`,
		"metadata {",
		`name = "web"`,
		`namespace = "prod"`,
		"}",
		"}",
		"",
	))

	assert.Equal(t, stringtest.JoinLF(
		`resource "kubernetes_service" "REPLACE_ME" {`,
		"  metadata {",
		`    name      = "web"`,
		`    namespace = "prod"`,
		"  }",
		"}",
		"",
	), got)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	err := translate.Validate("bad.tf", stringtest.JoinLF(
		`resource "kubernetes_service" "REPLACE_ME" {`,
		"  metadata {",
		"}",
	))
	require.ErrorIs(t, err, translate.ErrInvalidHCL)
}
