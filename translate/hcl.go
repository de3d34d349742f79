package translate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// ErrInvalidHCL indicates translated output is not valid HCL syntax.
var ErrInvalidHCL = errors.New("invalid hcl")

// Format rewrites src in canonical HCL style, aligning the equals signs of
// adjacent assignments.
func Format(src string) string {
	return string(hclwrite.Format([]byte(src)))
}

// Validate parses src as HCL native syntax. filename is only used in
// diagnostics.
func Validate(filename, src string) error {
	_, diags := hclsyntax.ParseConfig([]byte(src), filename, hcl.InitialPos)
	if !diags.HasErrors() {
		return nil
	}

	for _, d := range diags {
		slog.Warn("hcl diagnostic",
			slog.String("file", filename),
			slog.String("summary", d.Summary),
			slog.String("detail", d.Detail),
		)
	}

	return fmt.Errorf("%w: %w", ErrInvalidHCL, diags)
}
