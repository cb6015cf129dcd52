package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/atlas/internal/config"
	"github.com/roach88/atlas/internal/store"
	"github.com/roach88/atlas/internal/validate"
)

// HistoryOptions holds flags for the history commands.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunDetail is the payload of history show.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Records []store.Change `json:"records"`
}

// NewHistoryCommand creates the history command and its show subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Long: `List the runs recorded with validate --history-db, newest first.

The database defaults to history_db from the configuration file or the
ATLAS_HISTORY_DB environment variable.

Examples:
  atlas history --history-db ./atlas.db
  atlas history --history-db ./atlas.db --limit 5 --format json
  atlas history show <run-id> --history-db ./atlas.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd.Context(), opts, cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "history-db", "", "path to the SQLite history database")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-record outcome of one run",
		Long: `Show every record of a recorded run with its score and verdict, and how
it compares to the run before it (new, modified or unchanged content).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd.Context(), opts, args[0], cmd)
		},
	})

	return cmd
}

// openHistory opens an existing history database.
func openHistory(opts *HistoryOptions, formatter *OutputFormatter) (*store.Store, error) {
	path := opts.Database
	if path == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, formatter.fail(ErrCodeConfig, "load configuration", err)
		}
		path = cfg.HistoryDB
	}
	if path == "" {
		return nil, formatter.fail(ErrCodeConfig, "no history database configured (use --history-db)", nil)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, formatter.fail(ErrCodeNotFound, fmt.Sprintf("history database not found: %s", path), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.fail(ErrCodeStore, "open history database", err)
	}
	return st, nil
}

func runHistoryList(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	st, err := openHistory(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return formatter.fail(ErrCodeStore, "list runs", err)
	}

	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: runs})
	}
	writeRunList(cmd.OutOrStdout(), runs)
	return nil
}

func runHistoryShow(ctx context.Context, opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	st, err := openHistory(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return formatter.fail(ErrCodeStore, "read run", err)
	}
	changes, err := st.Changes(ctx, runID)
	if err != nil {
		return formatter.fail(ErrCodeStore, "read run records", err)
	}

	detail := RunDetail{Run: run, Records: changes}
	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: detail, RunID: run.ID})
	}
	writeRunDetail(cmd.OutOrStdout(), detail, opts.Verbose)
	return nil
}

// writeRunList prints one line per run.
func writeRunList(w io.Writer, runs []store.Run) {
	fmt.Fprintln(w, "=== Runs ===")
	if len(runs) == 0 {
		fmt.Fprintln(w, "  (no runs recorded)")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  %-6s  events %s  patterns %s  problems %d\n",
			r.ID,
			r.StartedAt.UTC().Format(time.RFC3339),
			runStatus(r.OK),
			formatCounts(r.Events),
			formatCounts(r.Patterns),
			r.Problems)
	}
}

// writeRunDetail prints a run header and its records grouped by kind.
func writeRunDetail(w io.Writer, d RunDetail, verbose bool) {
	r := d.Run
	fmt.Fprintf(w, "Run: %s\n", r.ID)
	fmt.Fprintf(w, "Started: %s\n", r.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Status: %s\n", runStatus(r.OK))
	fmt.Fprintf(w, "Years: %s\n", r.Years)
	fmt.Fprintf(w, "Events: %s\n", formatCounts(r.Events))
	fmt.Fprintf(w, "Patterns: %s\n", formatCounts(r.Patterns))
	fmt.Fprintln(w)

	for _, kind := range []struct{ name, title string }{
		{"event", "=== Events ==="},
		{"pattern", "=== Patterns ==="},
	} {
		fmt.Fprintln(w, kind.title)
		n := 0
		for _, c := range d.Records {
			if c.Kind != kind.name {
				continue
			}
			n++
			fmt.Fprintf(w, "  [%d] %s  %s  %d/%d  %s\n",
				c.Index, c.RecordID, c.Verdict.Label(), c.Score, c.MaxScore, changeLabel(c))
			if !verbose {
				continue
			}
			for _, f := range c.Findings {
				fmt.Fprintf(w, "       %s: %s\n", severityLabel(f.Severity), f.Message)
			}
		}
		if n == 0 {
			fmt.Fprintln(w, "  (no records)")
		}
		fmt.Fprintln(w)
	}
}

func formatCounts(c store.Counts) string {
	return fmt.Sprintf("%d (passed %d, revise %d, rejected %d)", c.Total, c.Passed, c.NeedsRevision, c.Rejected)
}

func runStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func changeLabel(c store.Change) string {
	if c.PreviousVerdict != "" && c.PreviousVerdict != c.Verdict {
		return fmt.Sprintf("%s (was %s)", c.Status, c.PreviousVerdict.Label())
	}
	return string(c.Status)
}

func severityLabel(s validate.Severity) string {
	if s == validate.SeverityError {
		return "Error"
	}
	return "Warning"
}
