package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/config"
	"github.com/roach88/atlas/internal/metrics"
	"github.com/roach88/atlas/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	DataDir       string
	Events        string
	Patterns      string
	Entities      string
	StackLayers   string
	ActionTypes   string
	EntityClasses string
	MinYear       int
	MaxYear       int
	Strict        bool
	Quiet         bool
	Watch         bool
	MetricsFile   string
	HistoryDB     string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and score the dataset",
		Long: `Load the canonical registries, events and patterns and score every record.

Each record is reported as Passed, Needs Revision or Rejected. The command
exits 1 when any record is rejected (or, with --strict, when an input file
or line failed to load) and 2 on command errors.

Settings come from defaults, then the config file, then ATLAS_* environment
variables, then the flags given on the command line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.DataDir, "data-dir", config.DefaultDataDir, "dataset root directory")
	f.StringVar(&opts.Events, "events", "", "events file (default <data-dir>/"+audit.EventsFile+")")
	f.StringVar(&opts.Patterns, "patterns", "", "patterns file (default <data-dir>/"+audit.PatternsFile+")")
	f.StringVar(&opts.Entities, "entities", "", "entities registry (default <data-dir>/"+audit.EntitiesFile+")")
	f.StringVar(&opts.StackLayers, "stack-layers", "", "stack layers registry (default <data-dir>/"+audit.StackLayersFile+")")
	f.StringVar(&opts.ActionTypes, "action-types", "", "action types registry (default <data-dir>/"+audit.ActionTypesFile+")")
	f.StringVar(&opts.EntityClasses, "entity-classes", "", "optional entity classes registry (default <data-dir>/"+audit.EntityClassesFile+")")
	f.IntVar(&opts.MinYear, "min-year", 0, "earliest allowed event year")
	f.IntVar(&opts.MaxYear, "max-year", 0, "latest allowed event year")
	f.BoolVar(&opts.Strict, "strict", false, "fail the run on missing or malformed input")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the summary")
	f.BoolVarP(&opts.Watch, "watch", "w", false, "re-run when an input file changes")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.StringVar(&opts.HistoryDB, "history-db", "", "record the run in this SQLite database")

	return cmd
}

// resolveConfig layers explicitly set flags over the loaded configuration.
func resolveConfig(rootOpts *RootOptions, opts *ValidateOptions, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return nil, err
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("data-dir", func() { cfg.DataDir = opts.DataDir })
	set("events", func() { cfg.Files.Events = opts.Events })
	set("patterns", func() { cfg.Files.Patterns = opts.Patterns })
	set("entities", func() { cfg.Files.Entities = opts.Entities })
	set("stack-layers", func() { cfg.Files.StackLayers = opts.StackLayers })
	set("action-types", func() { cfg.Files.ActionTypes = opts.ActionTypes })
	set("entity-classes", func() { cfg.Files.EntityClasses = opts.EntityClasses })
	set("min-year", func() { cfg.Years.Min = opts.MinYear })
	set("max-year", func() { cfg.Years.Max = opts.MaxYear })
	set("strict", func() { cfg.Strict = opts.Strict })
	set("metrics-file", func() { cfg.MetricsFile = opts.MetricsFile })
	set("history-db", func() { cfg.HistoryDB = opts.HistoryDB })
	if flags.NFlag() > 0 {
		cfg.LoadedFrom = append(cfg.LoadedFrom, "flags")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runValidate(ctx context.Context, rootOpts *RootOptions, opts *ValidateOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := rootOpts.formatter(cmd)

	cfg, err := resolveConfig(rootOpts, opts, cmd.Flags())
	if err != nil {
		return formatter.fail(ErrCodeConfig, "load configuration", err)
	}
	formatter.VerboseLog("Configuration from: %v", cfg.LoadedFrom)

	logger, err := rootOpts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return formatter.fail(ErrCodeConfig, "configure logging", err)
	}
	defer func() { _ = logger.Sync() }()

	v := &validator{root: rootOpts, cfg: cfg, quiet: opts.Quiet, formatter: formatter, log: logger}
	if opts.Watch {
		return watchInputs(ctx, cfg.Sources().Paths(), defaultDebounce, logger, v.runOnce)
	}
	return v.runOnce(ctx)
}

// validator performs one audit run and its side outputs.
type validator struct {
	root      *RootOptions
	cfg       *config.Config
	quiet     bool
	formatter *OutputFormatter
	log       *zap.Logger
}

func (v *validator) runOnce(ctx context.Context) error {
	clock, ids := v.root.auditOptions()
	rep, err := audit.Run(ctx, v.cfg.Sources(), audit.Options{
		Years:  v.cfg.YearRange(),
		Strict: v.cfg.Strict,
		Logger: v.log,
		Clock:  clock,
		IDs:    ids,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "audit interrupted", err)
	}

	if err := v.sideOutputs(ctx, rep); err != nil {
		return err
	}
	if err := v.render(rep); err != nil {
		return WrapExitError(ExitCommandError, "write report", err)
	}

	if !rep.OK() {
		_, msg := failureMessage(rep)
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// sideOutputs writes the optional metrics textfile and history record.
func (v *validator) sideOutputs(ctx context.Context, rep *audit.Report) error {
	if path := v.cfg.MetricsFile; path != "" {
		rec := metrics.New()
		rec.Observe(rep)
		if err := rec.WriteTextfile(path); err != nil {
			return v.formatter.fail(ErrCodeWriteFailed, "write metrics textfile", err)
		}
		v.formatter.VerboseLog("Metrics written to %s", path)
	}

	if path := v.cfg.HistoryDB; path != "" {
		if err := recordHistory(ctx, path, rep); err != nil {
			return v.formatter.fail(ErrCodeStore, "record run history", err)
		}
		v.formatter.VerboseLog("Run %s recorded in %s", rep.RunID, path)
	}
	return nil
}

func recordHistory(ctx context.Context, path string, rep *audit.Report) (err error) {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, st.Close())
	}()
	return st.RecordRun(ctx, rep)
}

func (v *validator) render(rep *audit.Report) error {
	if !v.formatter.JSON() {
		reportWriter{w: v.formatter.Writer, quiet: v.quiet}.write(rep)
		return nil
	}

	var data any = rep
	if v.quiet {
		data = quietReport(rep)
	}
	if rep.OK() {
		return v.formatter.Encode(CLIResponse{Status: "ok", Data: data, RunID: rep.RunID})
	}
	code, msg := failureMessage(rep)
	return v.formatter.Encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: msg},
		RunID:  rep.RunID,
	})
}

// reportSummary is the --quiet JSON payload.
type reportSummary struct {
	Events   summaryCounts `json:"events"`
	Patterns summaryCounts `json:"patterns"`
	Problems int           `json:"problems"`
	OK       bool          `json:"ok"`
}

type summaryCounts struct {
	Total         int `json:"total"`
	Passed        int `json:"passed"`
	NeedsRevision int `json:"needs_revision"`
	Rejected      int `json:"rejected"`
}

func quietReport(rep *audit.Report) reportSummary {
	counts := func(s audit.Summary) summaryCounts {
		return summaryCounts{Total: s.Total, Passed: s.Passed, NeedsRevision: s.NeedsRevision, Rejected: s.Rejected}
	}
	return reportSummary{
		Events:   counts(rep.Events),
		Patterns: counts(rep.Patterns),
		Problems: len(rep.Problems),
		OK:       rep.OK(),
	}
}
