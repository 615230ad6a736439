package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/audiograph/internal/app"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/hcl_adapter"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// newLoader is swapped in tests.
var newLoader = func() config.Loader { return hcl_adapter.NewLoader() }

// NewRootCommand builds the audiograph command tree. Output goes to outW,
// logs and diagnostics to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "audiograph",
		Short: "Reconstructs live Web Audio graphs from instrumentation events",
		Long: `audiograph ingests WebAudio devtools events from one or more sources,
keeps an up-to-date graph per audio context and serves it over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(newServeCommand(), newReplayCommand())
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && isUsageError(err) {
		return usageError(err)
	}
	return err
}

// isUsageError matches the errors cobra returns for bad arguments, which it
// does not type.
func isUsageError(err error) bool {
	for _, prefix := range []string{"unknown command", "accepts ", "requires at least", "unknown flag", "unknown shorthand flag"} {
		if strings.HasPrefix(err.Error(), prefix) {
			return true
		}
	}
	return false
}

// commonFlags are the overrides every command accepts.
type commonFlags struct {
	configPaths []string
	logLevel    string
	logFormat   string
}

func (f *commonFlags) register(cmd *cobra.Command, defaultLevel string) {
	cmd.Flags().StringSliceVarP(&f.configPaths, "config", "c", nil, "Path to an .hcl file or a directory of them. Repeatable.")
	cmd.Flags().StringVar(&f.logLevel, "log-level", defaultLevel, "Logging level: 'debug', 'info', 'warn' or 'error'. Overrides the config file.")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log output format: 'text' or 'json'. Overrides the config file.")
}

func (f *commonFlags) appConfig(cmd *cobra.Command) app.Config {
	cfg := app.Config{ConfigPaths: f.configPaths, LogFormat: f.logFormat}
	// An unchanged default only applies when no file sets a level.
	if cmd.Flags().Changed("log-level") || len(f.configPaths) == 0 {
		cfg.LogLevel = f.logLevel
	}
	return cfg
}

func newServeCommand() *cobra.Command {
	var (
		flags commonFlags
		port  int
	)
	cmd := &cobra.Command{
		Use:   "serve [CONFIG_PATH...]",
		Short: "Run the configured sources and serve graphs over HTTP",
		Example: `  audiograph serve ./audiograph.hcl
  audiograph serve -c ./conf.d --port 8080 --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.configPaths = append(flags.configPaths, args...)
			cfg := flags.appConfig(cmd)
			if cmd.Flags().Changed("port") {
				cfg.Port = &port
			}

			appCfg, err := app.NewConfig(cfg)
			if err != nil {
				return usageError(err)
			}
			a, err := app.New(cmd.OutOrStdout(), appCfg, newLoader())
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	flags.register(cmd, "info")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP API port; 0 disables the API. Overrides the config file.")
	return cmd
}

func newReplayCommand() *cobra.Command {
	var (
		flags  commonFlags
		opts   replayOptions
		format string
	)
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay a recorded event file and print the resulting graphs",
		Long: `Replay reads newline-delimited WebAudio envelopes from FILE (or every
.ndjson file in a directory), applies them and prints the final graphs.
Sources from --config files are replayed alongside.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := newEncoder(format)
			if err != nil {
				return usageError(err)
			}
			opts.path = args[0]

			appCfg, err := app.NewConfig(flags.appConfig(cmd))
			if err != nil {
				return usageError(err)
			}
			snaps, err := replay(cmd.Context(), cmd.ErrOrStderr(), appCfg, opts)
			if err != nil {
				return err
			}
			if err := enc(cmd.OutOrStdout(), snaps); err != nil {
				return fmt.Errorf("failed to write snapshots: %w", err)
			}
			return nil
		},
	}
	flags.register(cmd, "warn")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: 'json' or 'yaml'.")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "Pause between envelopes, e.g. 50ms.")
	return cmd
}
