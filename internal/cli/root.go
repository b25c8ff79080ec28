// Package cli provides the eda command: flag parsing, configuration and
// logger setup, and dispatch to the phase runner or the interactive menu.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/couchcryptid/flight-delay-eda/internal/chart"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
	"github.com/couchcryptid/flight-delay-eda/internal/pipeline"
)

// ConfigEnv, when set and non-empty, overrides --config.
const ConfigEnv = "EDA_CONFIG"

// Options are the parsed command-line settings.
type Options struct {
	Phase       pipeline.Phase
	ConfigPath  string
	LogLevel    string
	Profile     bool
	Interactive bool
}

// NewRootCmd creates the eda command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eda",
		Short: "Flight delay exploratory data analysis",
		Long: `eda loads the BTS on-time performance export, cleans it, derives
analysis features and renders a fixed set of delay charts.

Phases: 1 (load), 2 (clean), 3 (plot), all, smoke.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFrom(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd, opts)
		},
	}
	addFlags(cmd.Flags())

	_ = cmd.RegisterFlagCompletionFunc("phase", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"1", "2", "3", "all", "smoke"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("phase", "all", "phase to run: 1 (load), 2 (clean), 3 (plot), all or smoke")
	fs.String("config", config.DefaultPath, "configuration file; "+ConfigEnv+" overrides it")
	fs.String("log-level", "", "log level: debug, info, warn or error (overrides the config file)")
	fs.Bool("profile", false, "time each phase and write a Prometheus metrics textfile")
	fs.BoolP("interactive", "i", false, "pick phases from a menu")
}

// ParseArgs parses command-line arguments, without the program name.
func ParseArgs(args []string) (Options, error) {
	fs := pflag.NewFlagSet("eda", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() > 0 {
		return Options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return optionsFrom(fs)
}

func optionsFrom(fs *pflag.FlagSet) (Options, error) {
	name, err := fs.GetString("phase")
	if err != nil {
		return Options{}, err
	}
	phase, err := pipeline.ParsePhase(name)
	if err != nil {
		return Options{}, err
	}

	opts := Options{Phase: phase}
	if opts.ConfigPath, err = fs.GetString("config"); err != nil {
		return Options{}, err
	}
	if env := os.Getenv(ConfigEnv); env != "" {
		opts.ConfigPath = env
	}
	if opts.LogLevel, err = fs.GetString("log-level"); err != nil {
		return Options{}, err
	}
	if opts.Profile, err = fs.GetBool("profile"); err != nil {
		return Options{}, err
	}
	if opts.Interactive, err = fs.GetBool("interactive"); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func run(cmd *cobra.Command, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	metrics := observability.NewMetrics()
	logger.Debug("config loaded", "path", opts.ConfigPath, "phase", opts.Phase.String())

	runner := pipeline.NewRunner(cfg, chart.NewRenderer(cfg, logger, metrics), logger, metrics,
		pipeline.WithOutput(cmd.OutOrStdout()),
		pipeline.WithProfile(opts.Profile),
	)

	if opts.Interactive {
		return runMenu(cmd.Context(), runner, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	_, err = runner.Run(cmd.Context(), opts.Phase)
	return err
}

// Execute runs the eda command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
		}
		return err
	}
	return nil
}
