// Package tfdoc derives a schema tree for a Terraform resource from the
// provider's markdown documentation.
//
// The Terraform Kubernetes provider documents each resource as an "Argument
// Reference" bullet list followed by one "### `name`" section per nested
// block. No machine-readable nesting is published with these documents, so
// the tree is inferred from the text in two steps.
//
// # Extraction
//
// [Extract] scans the document line by line and produces a [Forest]: the
// root entry, plus one entry per section header, each holding the bullets
// listed under it. A bullet's description decides what it may become:
//
//   - descriptions like "is a string", "name of" or "number of" mark
//     primitives that can never hold children;
//   - "see ... for reference" redirects to another resource and is treated
//     the same way;
//   - descriptions mentioning a "query" produce an empty [Mapping], because
//     selectors are written as maps.
//
// Every other bullet starts [Unresolved].
//
// Headers naming two attributes ("### `limits` / `requests`") are
// multi-block sections: both names receive the bullets that follow. Only two
// names are supported; a third is dropped.
//
// Some documents restate attributes with a "The following arguments are
// supported:" sentence outside of the Argument Reference heading. The list or
// code block after such a sentence is skipped.
//
// # Linking
//
// [Link] wires sections into the bullets that name them. Attribute names are
// reused across unrelated parents (security_context appears under both pod
// and container), so linking runs three passes with decreasing precision:
// explicit compound names such as "### `container security_context`", then
// the first section that is not yet attached, then any section of the same
// name. When several undisambiguated sections share a name the first eligible
// one wins, which may not be what the documentation meant.
//
// The linked forest is then copied into a [Tree] from the root. Every tree
// node has exactly one parent, the tree has no cycles, and bullets that were
// never wired become [Leaf] nodes.
//
// # Encoding
//
// A [Tree] marshals to nested JSON for caching, and [Tree.JSONSchema]
// describes it as a JSON Schema for inspection.
package tfdoc
