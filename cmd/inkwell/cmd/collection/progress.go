// Package collection provides the commands that read and record the
// user's collection.
package collection

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/pkg/progress"
)

// Report is the structured output of the progress command.
type Report struct {
	Sets    []progress.Progress `json:"sets" yaml:"sets"`
	Overall *progress.Progress  `json:"overall,omitempty" yaml:"overall,omitempty"`
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(app appcontext.Interface) *cobra.Command {
	var total int

	cmd := &cobra.Command{
		Use:     "progress [set]",
		GroupID: "collection",
		Short:   "Show set completion",
		Long: `Show how many distinct cards of each set are owned. With a set name,
show that set only.

The total of a set is its bundled card list when present, otherwise the
card count from the set metadata.`,
		Example: `  inkwell progress
  inkwell progress "The First Chapter" --total 204`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var report Report
			if len(args) == 1 {
				var opts []progress.Option
				if total > 0 {
					opts = append(opts, progress.WithTotal(total))
				}
				p, err := client.SetProgress(args[0], opts...)
				if err != nil {
					return err
				}
				report.Sets = []progress.Progress{p}
			} else {
				overall := client.OverallProgress()
				report.Sets = client.AllProgress()
				report.Overall = &overall
			}

			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report,
				output.ProgressToTableData(report.Sets, report.Overall))
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "override the set total (single set only)")
	return cmd
}
