// Package manifest reads Kubernetes manifests as indented key/value lines.
//
// Translation works line by line, so this package never builds a YAML tree.
// [ParseLine] splits a line into its key, value and indentation; list item
// dashes count as indentation. [Normalize] rewrites the few YAML shapes that
// do not map onto one output line per input line: block scalars, lists of
// plain scalars, and lists of maps under fields such as env, which become one
// block per item.
//
// [Split] separates multi-document streams, [Validate] rejects malformed YAML
// before translation, and [ReadHeader] finds the apiVersion and kind that
// select the schema.
package manifest
