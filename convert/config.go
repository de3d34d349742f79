package convert

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/k2tf/cache"
	"go.jacobcolvin.com/k2tf/manifest"
	"go.jacobcolvin.com/k2tf/registry"
	"go.jacobcolvin.com/k2tf/translate"
)

// Defaults for [Config].
const (
	DefaultOutput  = "./tf files"
	DefaultTimeout = 30 * time.Second
)

// Flags holds CLI flag names for conversion configuration, allowing callers
// to customize flag names while keeping sensible defaults.
type Flags struct {
	Output          string
	Clean           string
	Cache           string
	DocsDir         string
	RegistryURL     string
	Provider        string
	ProviderVersion string
	Prefix          string
	ResourceName    string
	NormalizeFields string
	Format          string
	Validate        string
	Parallel        string
	Timeout         string
}

// Config holds CLI flag values for conversion configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewConverter] to create a [Converter].
type Config struct {
	Flags           Flags
	Output          string
	Cache           string
	DocsDir         string
	RegistryURL     string
	Provider        string
	ProviderVersion string
	Prefix          string
	ResourceName    string
	NormalizeFields []string
	Parallel        int
	Timeout         time.Duration
	Clean           bool
	Format          bool
	Validate        bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Output:          "output",
		Clean:           "clean",
		Cache:           "cache",
		DocsDir:         "docs-dir",
		RegistryURL:     "registry-url",
		Provider:        "provider",
		ProviderVersion: "provider-version",
		Prefix:          "prefix",
		ResourceName:    "resource-name",
		NormalizeFields: "normalize-fields",
		Format:          "format",
		Validate:        "validate",
		Parallel:        "parallel",
		Timeout:         "timeout",
	}

	return &Config{Flags: f}
}

// RegisterFlags adds conversion flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", DefaultOutput,
		"output folder for .tf files")
	flags.BoolVar(&c.Clean, c.Flags.Clean, true,
		"remove the output folder before writing")
	flags.StringVar(&c.Cache, c.Flags.Cache, "",
		"schema cache file (empty disables caching)")
	flags.StringVar(&c.DocsDir, c.Flags.DocsDir, "",
		"read resource docs from a local provider checkout instead of the registry")
	flags.StringVar(&c.RegistryURL, c.Flags.RegistryURL, registry.DefaultBaseURL,
		"Terraform Registry URL")
	flags.StringVar(&c.Provider, c.Flags.Provider, registry.DefaultProvider,
		"provider as namespace/name")
	flags.StringVar(&c.ProviderVersion, c.Flags.ProviderVersion, registry.DefaultProviderVersion,
		"provider release: registry id, semantic version, or latest")
	flags.StringVar(&c.Prefix, c.Flags.Prefix, translate.DefaultPrefix,
		"resource type prefix")
	flags.StringVar(&c.ResourceName, c.Flags.ResourceName, translate.DefaultResourceName,
		"resource name written into every block")
	flags.StringSliceVar(&c.NormalizeFields, c.Flags.NormalizeFields, manifest.DefaultFields,
		"fields whose lists of maps become repeated blocks")
	flags.BoolVar(&c.Format, c.Flags.Format, false,
		"align the output with the HCL formatter")
	flags.BoolVar(&c.Validate, c.Flags.Validate, false,
		"check that the output parses as HCL")
	flags.IntVarP(&c.Parallel, c.Flags.Parallel, "p", 1,
		"number of files converted concurrently")
	flags.DurationVar(&c.Timeout, c.Flags.Timeout, DefaultTimeout,
		"registry request timeout")
}

// RegisterCompletions registers shell completions for conversion flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.ProviderVersion,
		cobra.FixedCompletions([]string{registry.LatestProviderVersion, registry.DefaultProviderVersion},
			cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ProviderVersion, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Output,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Output, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.DocsDir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.DocsDir, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{
		c.Flags.RegistryURL, c.Flags.Provider, c.Flags.Prefix, c.Flags.ResourceName,
		c.Flags.NormalizeFields, c.Flags.Parallel, c.Flags.Timeout,
	} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// NewSource creates the documentation source selected by this [Config].
func (c *Config) NewSource(fsys afero.Fs) registry.Source {
	if c.DocsDir != "" {
		return registry.NewDir(fsys, c.DocsDir)
	}

	opts := []registry.ClientOption{
		registry.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
	}

	if c.RegistryURL != "" {
		opts = append(opts, registry.WithBaseURL(c.RegistryURL))
	}

	if c.Provider != "" {
		opts = append(opts, registry.WithProvider(c.Provider))
	}

	if c.ProviderVersion != "" {
		opts = append(opts, registry.WithProviderVersion(c.ProviderVersion))
	}

	return registry.NewClient(opts...)
}

// NewStore creates a [Store] using this [Config].
func (c *Config) NewStore(fsys afero.Fs) *Store {
	var cf *cache.File
	if c.Cache != "" {
		cf = cache.New(c.Cache)
	}

	return NewStore(c.NewSource(fsys), cf)
}

// NewConverter creates a [Converter] that reads and writes files on fsys.
func (c *Config) NewConverter(fsys afero.Fs) (*Converter, error) {
	if c.Output == "" {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidOption, c.Flags.Output)
	}

	if c.Parallel < 1 {
		return nil, fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidOption, c.Flags.Parallel, c.Parallel)
	}

	if c.Timeout < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidOption, c.Flags.Timeout)
	}

	opts := []Option{
		WithOutput(c.Output),
		WithClean(c.Clean),
		WithParallel(c.Parallel),
		WithFormat(c.Format),
		WithValidate(c.Validate),
		WithTranslate(translate.Config{
			Prefix:       c.Prefix,
			ResourceName: c.ResourceName,
			Normalize:    manifest.Options{Fields: c.NormalizeFields},
		}),
	}

	return New(fsys, c.NewStore(fsys), opts...), nil
}
