package profile

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags names the profiling flags.
type Flags struct {
	Profiles string
	Dir      string
}

// NewConfig returns a [Config] that registers flags under these names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f, Dir: DefaultDir}
}

// Config selects the profiles to write. No profile is written by default.
type Config struct {
	Flags Flags

	// Profiles lists profile names, such as "cpu" or "heap".
	Profiles []string
	// Dir is the folder the profile files are written to.
	Dir string
}

// NewConfig returns a [Config] with the flag names "profile" and
// "profile-dir".
func NewConfig() *Config {
	return Flags{
		Profiles: "profile",
		Dir:      "profile-dir",
	}.NewConfig()
}

// RegisterFlags adds the profiling flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&c.Profiles, c.Flags.Profiles, nil,
		fmt.Sprintf("write runtime profiles, any of: %s", GetAllProfileStrings()))
	flags.StringVar(&c.Dir, c.Flags.Dir, DefaultDir, "folder for profile files")
}

// RegisterCompletions completes profile names and folders.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Profiles,
		cobra.FixedCompletions(GetAllProfileStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("register %s completion: %w", c.Flags.Profiles, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Dir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("register %s completion: %w", c.Flags.Dir, err)
	}

	return nil
}

// Validate reports an unknown profile name.
func (c *Config) Validate() error {
	for _, name := range c.Profiles {
		if !slices.Contains(allProfiles, name) {
			return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
		}
	}

	return nil
}

// NewProfiler returns a [Profiler] writing to fsys. It reads c when started,
// so flags may be parsed after this call.
func (c *Config) NewProfiler(fsys afero.Fs) *Profiler {
	return &Profiler{fs: fsys, cfg: c}
}
