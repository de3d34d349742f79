package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Defaults used by [Config.RegisterFlags].
const (
	DefaultLevel  = LevelInfo
	DefaultFormat = FormatText
)

// Flags names the logging flags. The zero value is not usable; start from
// [NewConfig], which uses "log-level", "log-format" and "verbose".
type Flags struct {
	Level   string
	Format  string
	Verbose string
}

// NewConfig returns a [Config] that registers flags under these names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:  f,
		Level:  string(DefaultLevel),
		Format: string(DefaultFormat),
	}
}

// Config is the logging setup of the k2tf commands. Every command shares
// one Config through persistent flags on the root command, and
// [Config.Setup] installs the resulting handler before any command runs.
type Config struct {
	Level   string
	Format  string
	Verbose bool
	Flags   Flags
}

// NewConfig returns a [Config] with the default flag names.
func NewConfig() *Config {
	return Flags{
		Level:   "log-level",
		Format:  "log-format",
		Verbose: "verbose",
	}.NewConfig()
}

// RegisterFlags adds the logging flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, string(DefaultLevel),
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, string(DefaultFormat),
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
	flags.BoolVarP(&c.Verbose, c.Flags.Verbose, "v", false,
		fmt.Sprintf("log at debug level, overriding --%s", c.Flags.Level))
}

// RegisterCompletions completes level and format names.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	completions := map[string][]string{
		c.Flags.Level:  GetAllLevelStrings(),
		c.Flags.Format: GetAllFormatStrings(),
	}

	for flag, values := range completions {
		err := cmd.RegisterFlagCompletionFunc(flag,
			cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("register %s completion: %w", flag, err)
		}
	}

	return nil
}

// NewHandler returns a [Handler] writing to w. Verbose wins over Level.
func (c *Config) NewHandler(w io.Writer) (Handler, error) {
	level := c.Level
	if c.Verbose {
		level = string(LevelDebug)
	}

	return NewHandlerFromStrings(w, level, c.Format)
}

// Setup makes a handler writing to w the [slog] default.
func (c *Config) Setup(w io.Writer) error {
	handler, err := c.NewHandler(w)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))

	return nil
}
