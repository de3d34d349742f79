package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/translate"
)

// Sentinel errors returned by the converter.
var (
	ErrReadInput     = errors.New("read input")
	ErrWriteOutput   = errors.New("write output")
	ErrInvalidOption = errors.New("invalid option")
)

// manifestExts are the extensions of files picked up from directories.
var manifestExts = []string{".yaml", ".yml"}

// Option configures a [Converter].
type Option func(*Converter)

// WithOutput sets the output folder.
func WithOutput(dir string) Option {
	return func(c *Converter) {
		c.output = dir
	}
}

// WithClean removes the output folder before writing when enabled.
func WithClean(clean bool) Option {
	return func(c *Converter) {
		c.clean = clean
	}
}

// WithParallel sets how many files are converted concurrently.
func WithParallel(n int) Option {
	return func(c *Converter) {
		c.parallel = max(n, 1)
	}
}

// WithFormat runs [translate.Format] on each output when enabled.
func WithFormat(format bool) Option {
	return func(c *Converter) {
		c.format = format
	}
}

// WithValidate runs [translate.Validate] on each output when enabled.
func WithValidate(validate bool) Option {
	return func(c *Converter) {
		c.validate = validate
	}
}

// WithTranslate sets the per-document translation options.
func WithTranslate(cfg translate.Config) Option {
	return func(c *Converter) {
		c.translate = cfg
	}
}

// Converter translates manifest files into Terraform files.
type Converter struct {
	fs        afero.Fs
	store     *Store
	output    string
	translate translate.Config
	parallel  int
	clean     bool
	format    bool
	validate  bool
}

// New creates a [Converter] that reads and writes files on fsys and takes
// schema trees from store.
func New(fsys afero.Fs, store *Store, opts ...Option) *Converter {
	c := &Converter{
		fs:       fsys,
		store:    store,
		output:   DefaultOutput,
		parallel: 1,
		clean:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Result describes the conversion of one input file.
type Result struct {
	// Input is the manifest path.
	Input string
	// Output is the written Terraform path. It is empty when Err is set.
	Output string
	// Err is the reason the file was not converted.
	Err error
	// Documents is the number of resources written.
	Documents int
}

// Run converts every input. Directories contribute their *.yaml and *.yml
// files. Cleaning an output folder that holds an input fails with
// [ErrInvalidOption]. A failed file does not stop the others; Run returns one result per
// file and an aggregate of the per-file errors.
func (c *Converter) Run(ctx context.Context, inputs ...string) ([]Result, error) {
	files, err := c.expand(inputs)
	if err != nil {
		return nil, err
	}

	err = c.prepareOutput(slices.Concat(inputs, files))
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(files))
	seen := make(map[string]string, len(files))

	for i, file := range files {
		results[i] = Result{Input: file, Output: c.outputPath(file)}

		if prev, ok := seen[results[i].Output]; ok {
			results[i].Err = fmt.Errorf("%w: %s and %s both write %s",
				ErrWriteOutput, prev, file, results[i].Output)

			continue
		}

		seen[results[i].Output] = file
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			mu.Lock()
			errs = multierror.Append(errs, r.Err)
			mu.Unlock()

			continue
		}

		g.Go(func() error {
			r.Documents, r.Err = c.convertFile(ctx, r.Input, r.Output)
			if r.Err == nil {
				slog.Debug("converted manifest",
					slog.String("input", r.Input),
					slog.String("output", r.Output),
					slog.Int("documents", r.Documents),
				)

				return nil
			}

			slog.Error("convert manifest",
				slog.String("input", r.Input),
				slog.Any("err", r.Err),
			)

			r.Output = ""

			mu.Lock()
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return results, errs.ErrorOrNil()
}

// expand resolves inputs to manifest files. Directories are not recursed.
func (c *Converter) expand(inputs []string) ([]string, error) {
	var files []string

	for _, in := range inputs {
		info, err := c.fs.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		if !info.IsDir() {
			files = append(files, in)

			continue
		}

		entries, err := afero.ReadDir(c.fs, in)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		for _, e := range entries {
			if e.IsDir() || !slices.Contains(manifestExts, strings.ToLower(filepath.Ext(e.Name()))) {
				continue
			}

			files = append(files, filepath.Join(in, e.Name()))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no manifests in %s", ErrReadInput, strings.Join(inputs, ", "))
	}

	return files, nil
}

// prepareOutput creates the output folder. With clean set, the folder is
// removed first, which is refused when it holds any of inputs.
func (c *Converter) prepareOutput(inputs []string) error {
	if c.clean {
		for _, in := range inputs {
			inside, err := within(c.output, in)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidOption, err)
			}

			if inside {
				return fmt.Errorf("%w: clean output %s would remove input %s",
					ErrInvalidOption, c.output, in)
			}
		}

		err := c.fs.RemoveAll(c.output)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	err := c.fs.MkdirAll(c.output, 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) (bool, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil //nolint:nilerr // Unrelated volumes.
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

func (c *Converter) outputPath(input string) string {
	base := filepath.Base(input)

	return filepath.Join(c.output, strings.TrimSuffix(base, filepath.Ext(base))+".tf")
}

// convertFile translates every document of one manifest file and writes the
// resource blocks, separated by blank lines, to output.
func (c *Converter) convertFile(ctx context.Context, input, output string) (int, error) {
	b, err := afero.ReadFile(c.fs, input)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	docs, err := manifest.Split(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	if len(docs) == 0 {
		return 0, fmt.Errorf("%w: no documents", ErrReadInput)
	}

	blocks := make([]string, 0, len(docs))

	for i, doc := range docs {
		block, err := c.convertDocument(ctx, doc)
		if err != nil {
			return 0, fmt.Errorf("document %d: %w", i+1, err)
		}

		blocks = append(blocks, block)
	}

	out := strings.Join(blocks, "\n")

	if c.validate {
		err := translate.Validate(filepath.Base(output), out)
		if err != nil {
			return 0, err
		}
	}

	err = afero.WriteFile(c.fs, output, []byte(out), 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return len(blocks), nil
}

func (c *Converter) convertDocument(ctx context.Context, doc string) (string, error) {
	err := manifest.Validate(doc)
	if err != nil {
		return "", err
	}

	h, err := manifest.ReadHeader(doc)
	if err != nil {
		return "", err
	}

	version, err := h.ResourceVersion()
	if err != nil {
		return "", err
	}

	tree, err := c.store.Tree(ctx, translate.SnakeCase(h.Kind), version)
	if err != nil {
		return "", err
	}

	out, err := translate.New(tree, c.translate).Translate(doc)
	if err != nil {
		return "", err
	}

	if c.format {
		out = translate.Format(out)
	}

	return out, nil
}

