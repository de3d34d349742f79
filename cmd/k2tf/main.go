// Package main provides the CLI entry point for k2tf, a tool that converts
// Kubernetes YAML manifests into Terraform resources for the Kubernetes
// provider.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/k2tf/convert"
	"go.jacobcolvin.com/k2tf/log"
	"go.jacobcolvin.com/k2tf/profile"
	"go.jacobcolvin.com/k2tf/translate"
	"go.jacobcolvin.com/k2tf/version"
)

var errFailed = errors.New("conversion failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd, prof := newRootCmd(afero.NewOsFs())

	err := execute(ctx, rootCmd, prof)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// execute runs cmd and writes the profiles selected on its command line,
// also when cmd fails.
func execute(ctx context.Context, cmd *cobra.Command, prof *profile.Profiler) error {
	err := cmd.ExecuteContext(ctx)

	stopErr := prof.Stop()
	if stopErr == nil {
		return err
	}

	if err == nil {
		return fmt.Errorf("write profiles: %w", stopErr)
	}

	slog.Error("write profiles", slog.Any("err", stopErr))

	return err
}

func newRootCmd(fsys afero.Fs) (*cobra.Command, *profile.Profiler) {
	cfg := convert.NewConfig()
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()
	prof := profCfg.NewProfiler(fsys)

	rootCmd := &cobra.Command{
		Use:   "k2tf [flags] [file.yaml | dir ...]",
		Short: "Convert Kubernetes manifests to Terraform",
		Long: `k2tf converts Kubernetes YAML manifests into Terraform resources for the
hashicorp/kubernetes provider. Attribute names and block structure come from
the provider's resource documentation, fetched from the Terraform Registry or
read from a local provider checkout.

Without arguments the current directory is converted. Each input file becomes
one .tf file in the output folder.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			err := logCfg.Setup(os.Stderr)
			if err != nil {
				return err
			}

			return prof.Start()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), fsys, cfg, args)
		},
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profCfg.RegisterFlags(rootCmd.PersistentFlags())
	cfg.RegisterFlags(rootCmd.Flags())

	// Schema lookups honour the documentation source flags.
	schemaCmd := newSchemaCmd(fsys, cfg)
	for _, name := range []string{
		cfg.Flags.Cache, cfg.Flags.DocsDir, cfg.Flags.RegistryURL,
		cfg.Flags.Provider, cfg.Flags.ProviderVersion, cfg.Flags.Timeout,
	} {
		schemaCmd.Flags().AddFlag(rootCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(schemaCmd, newVersionCmd())

	for _, register := range []func(*cobra.Command) error{
		logCfg.RegisterCompletions,
		profCfg.RegisterCompletions,
		cfg.RegisterCompletions,
	} {
		err := register(rootCmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
		}
	}

	return rootCmd, prof
}

func run(ctx context.Context, w io.Writer, fsys afero.Fs, cfg *convert.Config, args []string) error {
	conv, err := cfg.NewConverter(fsys)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	results, err := conv.Run(ctx, args...)
	if results == nil {
		return err
	}

	failed := printSummary(w, results)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errFailed, failed, len(results))
	}

	return nil
}

// printSummary writes one status line per file and returns the number of
// failed files.
func printSummary(w io.Writer, results []convert.Result) int {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	failed := 0

	for _, r := range results {
		if r.Err != nil {
			failed++

			fmt.Fprintf(w, "%s %s: %v\n", fail("FAIL"), r.Input, r.Err)

			continue
		}

		fmt.Fprintf(w, "%s %s -> %s %s\n", ok("OK  "), r.Input, r.Output,
			dim(fmt.Sprintf("(%d resources)", r.Documents)))
	}

	return failed
}

func newSchemaCmd(fsys afero.Fs, cfg *convert.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <kind> <version>",
		Short: "Print the schema tree of a resource as JSON Schema",
		Example: `  k2tf schema Deployment v1
  k2tf schema stateful_set v1 --docs-dir ./terraform-provider-kubernetes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := cfg.NewStore(fsys).Tree(cmd.Context(), translate.SnakeCase(args[0]), args[1])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(tree.JSONSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %w", convert.ErrWriteOutput, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			if err != nil {
				return fmt.Errorf("%w: %w", convert.ErrWriteOutput, err)
			}

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.String())
			if err != nil {
				return fmt.Errorf("%w: %w", convert.ErrWriteOutput, err)
			}

			return nil
		},
	}
}
