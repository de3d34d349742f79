package translate_test

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/k2tf/tfdoc"
)

var update = flag.Bool("update", false, "update golden files")

// assertGolden compares translated output against a golden file.
// When -update is set, it writes the golden file instead.
func assertGolden(t *testing.T, goldenPath, got string) {
	t.Helper()

	if *update {
		require.NoError(t, os.WriteFile(goldenPath, []byte(got), 0o644))

		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "golden file %s not found; run with -update to create", goldenPath)

	assert.Equal(t, string(want), got)
}

func deploymentTree(t *testing.T) *tfdoc.Tree {
	t.Helper()

	b, err := os.ReadFile("testdata/deployment_v1.md")
	require.NoError(t, err)

	return tfdoc.Build("deployment", string(b))
}
