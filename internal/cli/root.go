package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/atlas/internal/audit"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string // "debug" | "info" | "warn" | "error"
	ConfigPath string

	// Overridden in tests for reproducible run ids and timestamps.
	clock audit.Clock
	ids   audit.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogLevels defines the allowed --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command for the atlas CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "atlas",
		Short: "atlas - dataset audit for the AI Strategic Actions Atlas",
		Long: `Validate and score the AI Strategic Actions Atlas dataset.

Loads the canonical registries, the event log and the pattern log, scores
every record against its rubric and reports each record as Passed, Needs
Revision or Rejected. The exit status is non-zero when any record is rejected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !slices.Contains(ValidLogLevels, opts.LogLevel) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid log level %q: must be one of %v", opts.LogLevel, ValidLogLevels))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (forces debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level on stderr (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (.yaml, .yml, .json or .cue; default ./atlas.yaml if present)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter builds the output formatter of a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newLogger builds the console logger writing to w. Logs never share a
// writer with command output.
func (o *RootOptions) newLogger(w io.Writer) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if o.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(o.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.LogLevel, err)
		}
		level = parsed
	}
	if o.Verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core).Named("atlas"), nil
}

// auditOptions returns the clock and id source of a run.
func (o *RootOptions) auditOptions() (audit.Clock, audit.IDGenerator) {
	clock, ids := o.clock, o.ids
	if clock == nil {
		clock = audit.SystemClock{}
	}
	if ids == nil {
		ids = audit.UUIDv7Generator{}
	}
	return clock, ids
}
