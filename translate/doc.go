// Package translate converts Kubernetes manifests into Terraform resource
// blocks for the Kubernetes provider.
//
// Translation is line based. Each manifest line becomes one output line,
// and the schema tree from [go.jacobcolvin.com/k2tf/tfdoc] decides the
// attribute name and whether the line is an assignment or opens a block.
//
// # Resolution
//
// The [Resolver] keeps a [Navigation] path from the schema root to the
// block that is currently open. For each line it converts the key to snake
// case and scores it against the attributes at that position, preferring the
// closest substring match. The result takes one of these shapes:
//
//	name = "value"     a scalar, always quoted
//	name = [a, b]      a flow sequence, written as is
//	name               a schema block; the next deeper line opens it
//	name =             an undocumented map such as labels
//
// Keys that match nothing are written under their snake-cased name. An
// unmatched key without a value starts a custom map; nothing below it is
// scored, because it has no schema.
//
// # Structure
//
// The [Translator] tracks open blocks by source indentation. A deeper line
// turns the previous line into a block opener, and a shallower line closes
// one block per level. A line that could have opened a block but is not
// followed by a deeper one is closed in place ("name {}" or "name = null").
// Output is indented two spaces per level; [Format] aligns it further and
// [Validate] checks that it parses as HCL.
package translate
