package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml/parser"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
)

// Sentinel errors returned when reading manifests.
var (
	ErrInvalidYAML       = errors.New("invalid yaml")
	ErrMissingHeader     = errors.New("missing apiVersion or kind")
	ErrInvalidAPIVersion = errors.New("invalid apiVersion")
)

// Split reads a stream of "---" separated manifests. Documents that hold
// only comments or whitespace are dropped.
func Split(r io.Reader) ([]string, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(r))

	var docs []string

	for {
		b, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
		}

		if isBlank(b) {
			continue
		}

		docs = append(docs, string(b))
	}

	return docs, nil
}

func isBlank(b []byte) bool {
	for line := range bytes.Lines(b) {
		if !insignificant(string(line)) && strings.TrimSpace(string(line)) != "---" {
			return false
		}
	}

	return true
}

// Validate reports whether doc is syntactically valid YAML.
func Validate(doc string) error {
	_, err := parser.ParseBytes([]byte(doc), 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	return nil
}

// Header holds the fields that select the schema for a manifest.
type Header struct {
	APIVersion string
	Kind       string
}

// ReadHeader returns the first apiVersion and kind fields of doc, at any
// position and in either order.
func ReadHeader(doc string) (Header, error) {
	var h Header

	for raw := range strings.Lines(doc) {
		l, ok := ParseLine(raw)
		if !ok {
			continue
		}

		switch {
		case l.Key == "apiVersion" && h.APIVersion == "":
			h.APIVersion = l.Value
		case l.Key == "kind" && h.Kind == "":
			h.Kind = l.Value
		}

		if h.APIVersion != "" && h.Kind != "" {
			return h, nil
		}
	}

	return h, ErrMissingHeader
}

// ResourceVersion returns the version part of the apiVersion, such as "v1"
// for "apps/v1".
func (h Header) ResourceVersion() (string, error) {
	gv, err := schema.ParseGroupVersion(h.APIVersion)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAPIVersion, err)
	}

	if gv.Version == "" {
		return "", fmt.Errorf("%w: %q has no version", ErrInvalidAPIVersion, h.APIVersion)
	}

	return gv.Version, nil
}
