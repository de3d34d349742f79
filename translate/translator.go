package translate

import (
	"fmt"
	"log/slog"
	"strings"

	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/tfdoc"
)

// Defaults for [Config].
const (
	DefaultPrefix       = "kubernetes"
	DefaultResourceName = "REPLACE_ME"
)

// Config configures a [Translator].
type Config struct {
	// Prefix is prepended to the snake-cased kind to form the resource type.
	Prefix string
	// ResourceName is the placeholder resource name.
	ResourceName string
	// Normalize configures the rewrites applied before translation.
	Normalize manifest.Options
}

// Translator converts manifests of one kind into Terraform resource blocks.
// It holds no per-document state and is safe for concurrent use.
type Translator struct {
	cfg      Config
	resolver *Resolver
}

// New creates a [Translator] for manifests whose schema is tree.
func New(tree *tfdoc.Tree, cfg Config) *Translator {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	if cfg.ResourceName == "" {
		cfg.ResourceName = DefaultResourceName
	}

	return &Translator{
		cfg:      cfg,
		resolver: NewResolver(tree),
	}
}

// ResourceType returns the Terraform resource type for a manifest kind, such
// as "kubernetes_stateful_set" for "StatefulSet".
func (t *Translator) ResourceType(kind string) string {
	return t.cfg.Prefix + "_" + SnakeCase(kind)
}

// Translate converts one manifest document. The output opens a resource
// block named after the document's kind, holds one line per manifest line,
// and ends with a newline.
//
// Indentation drives nesting: a deeper line opens a block on the line before
// it, and a shallower line closes one block per level. Output is indented by
// two spaces per level regardless of the source indentation.
func (t *Translator) Translate(doc string) (string, error) {
	h, err := manifest.ReadHeader(doc)
	if err != nil {
		return "", err
	}

	lines := manifest.Normalize(strings.Split(doc, "\n"), t.cfg.Normalize)

	s := &state{
		resolver: t.resolver,
		indents:  []int{0, 2},
		last:     2,
		prev:     -1,
		out: []string{
			fmt.Sprintf("resource %q %q {", t.ResourceType(h.Kind), t.cfg.ResourceName),
		},
	}

	for _, raw := range lines {
		l, ok := manifest.ParseLine(raw)
		if !ok {
			continue
		}

		if l.Indent == 0 && (l.Key == "apiVersion" || l.Key == "kind") {
			continue
		}

		err := s.line(l)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", l.Key, err)
		}
	}

	err = s.finish()
	if err != nil {
		return "", err
	}

	slog.Debug("translated manifest",
		slog.String("kind", h.Kind),
		slog.Int("lines", len(s.out)),
	)

	return strings.Join(s.out, "\n") + "\n", nil
}

// state is the translation state of one document. indents holds the source
// columns of the open blocks and nav their schema path; nav has two fewer
// entries than indents, because the first two indents belong to the file and
// the resource block.
type state struct {
	resolver *Resolver
	indents  []int
	nav      Navigation
	last     int
	out      []string
	// prev is the output index of the previous manifest line, and pushed
	// reports whether that line was recorded on nav.
	prev   int
	pushed bool
}

func (s *state) depth() int {
	return len(s.indents) - 1
}

func (s *state) emit(text string) {
	s.out = append(s.out, strings.Repeat("  ", s.depth())+text)
}

func (s *state) line(l manifest.Line) error {
	indent := l.Indent + 2

	switch {
	case indent > s.last:
		err := s.open(indent)
		if err != nil {
			return err
		}

	default:
		s.settle()

		if indent < s.last {
			err := s.close(indent)
			if err != nil {
				return err
			}
		}
	}

	res := s.resolver.Resolve(l, &s.nav)
	s.emit(res.Text)

	s.last = indent
	s.prev = len(s.out) - 1
	s.pushed = res.Pushed

	return nil
}

// open turns the previous line into a block opener.
func (s *state) open(indent int) error {
	if s.prev < 0 {
		return fmt.Errorf("%w: first field is indented", ErrUnbalanced)
	}

	if !s.pushed {
		// A scalar followed by a deeper line. Keep the stacks aligned.
		s.nav.PushPlaceholder()
	}

	s.indents = append(s.indents, indent)
	s.out[s.prev] = strings.TrimRight(s.out[s.prev], " ") + " {"
	s.pushed = false

	return nil
}

// settle finalizes a previous line that was pushed but opened no block.
func (s *state) settle() {
	if !s.pushed {
		return
	}

	line := strings.TrimRight(s.out[s.prev], " ")
	if strings.HasSuffix(line, "=") {
		s.out[s.prev] = line + " null"
	} else {
		s.out[s.prev] = line + " {}"
	}

	// The entry was pushed by the previous line, so this cannot fail.
	_ = s.nav.Pop()
	s.pushed = false
}

// close closes blocks until the innermost open block is at indent.
func (s *state) close(indent int) error {
	for s.indents[len(s.indents)-1] > indent {
		err := s.nav.Pop()
		if err != nil {
			return err
		}

		s.indents = s.indents[:len(s.indents)-1]
		s.emit("}")
	}

	if s.indents[len(s.indents)-1] != indent {
		return fmt.Errorf("%w: column %d matches no open block", ErrUnbalanced, indent-2)
	}

	return nil
}

// finish closes every open block, including the resource block.
func (s *state) finish() error {
	s.settle()

	for len(s.indents) > 1 {
		if len(s.indents) > 2 {
			err := s.nav.Pop()
			if err != nil {
				return err
			}
		}

		s.indents = s.indents[:len(s.indents)-1]
		s.emit("}")
	}

	if s.nav.Len() != 0 {
		return fmt.Errorf("%w: %d blocks left open", ErrUnbalanced, s.nav.Len())
	}

	return nil
}
