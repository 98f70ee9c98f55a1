package refresh

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/internal/report"
	"github.com/agentstation/inkwell/pkg/catalogs"
)

// CheckResult is the structured output of check-updates.
type CheckResult struct {
	HasUpdates bool                  `json:"has_updates" yaml:"has_updates"`
	Report     catalogs.UpdateReport `json:"report" yaml:"report"`
}

// NewCheckCommand creates the check-updates command.
func NewCheckCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "check-updates",
		GroupID: "catalog",
		Short:   "Compare remote card counts with the bundled catalog",
		Long: `Compare the number of cards per set on the remote source with the
bundled catalog and print a markdown report of new sets and sets with
new cards. The command succeeds whether or not updates exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			r, err := client.CheckUpdates(cmd.Context())
			if err != nil {
				return err
			}

			switch format := output.Format(app.OutputFormat()); format {
			case output.FormatJSON, output.FormatYAML:
				return output.Encode(cmd.OutOrStdout(), format,
					CheckResult{HasUpdates: r.HasUpdates(), Report: r})
			default:
				return report.WriteUpdateCheck(cmd.OutOrStdout(), report.Source{
					Name:    "Lorcast",
					URL:     app.RemoteURL(),
					Catalog: client.CatalogVersion(),
				}, r)
			}
		},
	}
}
