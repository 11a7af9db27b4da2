package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gramtest/internal/compare"
	"github.com/roach88/gramtest/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int    // number of runs to list
	Case  string // list one sentence's outcomes instead of runs
}

// RunSummary is one run in the JSON payload of the history command.
type RunSummary struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	File      string         `json:"file"`
	Variant   string         `json:"variant"`
	Total     int            `json:"total"`
	Passed    int            `json:"passed"`
	Counts    compare.Counts `json:"counts"`
}

// CaseSummary is one recorded outcome of a sentence.
type CaseSummary struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Source    string          `json:"source"`
	Line      int             `json:"line"`
	Outcome   compare.Outcome `json:"outcome"`
	Passed    bool            `json:"passed"`
	Error     string          `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history DB",
		Short: "Show recorded test runs",
		Long: `List runs recorded with "gramtest test --history DB", newest first.
With --case, list every recorded outcome of one sentence instead.

Examples:
  gramtest history runs.db
  gramtest history runs.db --limit 5 --format json
  gramtest history runs.db --case 'Mun {boahtán}${boađán} ihttin.'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show the outcomes of this sentence")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, path string) error {
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "history database not found", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()

	if opts.Case != "" {
		records, err := st.CaseHistory(ctx, opts.Case)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read case history", err)
		}
		summaries := make([]CaseSummary, len(records))
		for i, r := range records {
			summaries[i] = CaseSummary{
				RunID:     r.RunID,
				StartedAt: r.StartedAt,
				Source:    r.Source,
				Line:      r.Line,
				Outcome:   r.Outcome,
				Passed:    r.Passed,
				Error:     r.Error,
			}
		}
		return f.Success(summaries, func(w io.Writer) {
			if len(summaries) == 0 {
				fmt.Fprintln(w, "No recorded outcomes.")
				return
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tSOURCE\tOUTCOME")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s:%d\t%s\n",
					s.RunID, s.StartedAt.Format(time.RFC3339), s.Source, s.Line, s.Outcome)
			}
			tw.Flush()
		})
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = RunSummary{
			ID:        r.ID,
			StartedAt: r.StartedAt,
			File:      r.File,
			Variant:   r.Variant,
			Total:     r.Total,
			Passed:    r.Passed,
			Counts:    r.Counts,
		}
	}
	return f.Success(summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No recorded runs.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tFILE\tVARIANT\tPASSED\tF1")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%.1f%%\n",
				s.ID, s.StartedAt.Format(time.RFC3339), s.File, s.Variant,
				s.Passed, s.Total, 100*s.Counts.F1())
		}
		tw.Flush()
	})
}
