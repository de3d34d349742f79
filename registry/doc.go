// Package registry fetches the markdown documentation of Terraform provider
// resources.
//
// A [Client] reads it from the Terraform Registry API, and a [Dir] reads it
// from a local checkout of the provider repository. Both implement [Source]
// and prefer the version-qualified document ("deployment_v1") over the
// unversioned one ("deployment").
package registry
