package registry

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Sentinel errors returned by sources.
var (
	ErrNotFound = errors.New("document not found")
	ErrRequest  = errors.New("registry request")
)

// versionSuffixRe matches the schema version marker at the end of a slug.
var versionSuffixRe = regexp.MustCompile(`_v\d+$`)

// Doc is the documentation of one resource.
type Doc struct {
	// Name is the resource name without provider prefix or version marker,
	// such as "deployment". It names the root of the schema tree.
	Name string
	// Slug identifies the document in its source, such as "deployment_v1".
	Slug string
	// Content is the markdown body.
	Content string
}

// Source returns resource documentation.
type Source interface {
	// Document returns the documentation for the snake-cased kind at the
	// given version, such as "stateful_set" and "v1". It returns an error
	// wrapping [ErrNotFound] when no document exists.
	Document(ctx context.Context, kind, version string) (Doc, error)
}

// docName strips the provider prefix and the version marker from a slug.
func docName(slug, prefix string) string {
	return versionSuffixRe.ReplaceAllString(strings.TrimPrefix(slug, prefix+"_"), "")
}

// slugs returns the slugs to look for, most specific first.
func slugs(kind, version string) []string {
	if version == "" {
		return []string{kind}
	}

	return []string{kind + "_" + version, kind}
}
