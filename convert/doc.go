// Package convert runs the manifest to Terraform conversion over files.
//
// A [Converter] expands its inputs (directories contribute their *.yaml and
// *.yml files, without recursion), splits each file into documents with
// [go.jacobcolvin.com/k2tf/manifest], and writes one .tf file per input to
// the output folder. Files are converted concurrently. A file that fails is
// reported in its [Result] and does not stop the others.
//
// By default the output folder is removed before writing. Run refuses to
// do so when the folder is, or contains, one of the inputs.
//
// # Schema Trees
//
// A [Store] hands out the schema tree for a kind and API version. Trees are
// looked up in memory first, then in the optional on-disk
// [go.jacobcolvin.com/k2tf/cache], and finally built from a
// [go.jacobcolvin.com/k2tf/registry.Source]. Concurrent requests for the same
// kind share one build. A cache that cannot be read or written only produces
// a warning.
//
// # Configuration
//
// [Flags] and [Config] bind the command line to a [Converter]:
//
//	cfg := convert.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//	c, err := cfg.NewConverter(afero.NewOsFs())
package convert
