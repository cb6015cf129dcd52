package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/atlas/internal/validate"
)

// RubricInfo describes the scoring rubric of one record kind.
type RubricInfo struct {
	Kind       string              `json:"kind"`
	MaxScore   int                 `json:"max_score"`
	Thresholds validate.Thresholds `json:"thresholds"`
	Rules      []validate.RuleInfo `json:"rules"`
}

// Rubrics returns the event and pattern rubrics in report order.
func Rubrics() []RubricInfo {
	return []RubricInfo{
		{
			Kind:       validate.EventSchema.Kind,
			MaxScore:   validate.EventSchema.MaxScore(),
			Thresholds: validate.EventSchema.Thresholds,
			Rules:      validate.EventSchema.Catalogue(),
		},
		{
			Kind:       validate.PatternSchema.Kind,
			MaxScore:   validate.PatternSchema.MaxScore(),
			Thresholds: validate.PatternSchema.Thresholds,
			Rules:      validate.PatternSchema.Catalogue(),
		},
	}
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the scoring rubrics",
		Long: `Print every scoring rule of the event and pattern rubrics with the points
it can award. Rules worth 0 points only raise errors and warnings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if formatter.JSON() {
				return formatter.Encode(CLIResponse{Status: "ok", Data: Rubrics()})
			}
			writeRubrics(cmd.OutOrStdout(), Rubrics())
			return nil
		},
	}
}

func writeRubrics(w io.Writer, rubrics []RubricInfo) {
	for i, r := range rubrics {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s rubric (max %d) ===\n", r.Kind, r.MaxScore)
		fmt.Fprintf(w, "Passed at %d+, Needs Revision band from %d\n", r.Thresholds.Pass, r.Thresholds.Revise)
		for _, rule := range r.Rules {
			fmt.Fprintf(w, "  %-16s %2d  %s\n", rule.Name, rule.Max, rule.Description)
		}
	}
}
