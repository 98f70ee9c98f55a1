// Package refresh provides the commands that talk to the remote card source.
package refresh

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/pkg/catalogs"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		GroupID: "catalog",
		Short:   "Refresh card metadata and prices from Lorcast",
		Long: `Fetch every set from the remote source and merge the cards into the
catalog: known cards get new prices, images and text, unknown cards are
added. The refresh is bounded by refresh.timeout; on failure the catalog
is left as it was.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			logger := app.Logger()

			start := time.Now()
			logger.Info().Str("source", app.RemoteURL()).Msg("Refreshing card data")
			result, err := client.RefreshAndWait(cmd.Context())
			if err != nil {
				logger.Error().Err(err).Stringer("status", client.LastRefreshOutcome()).Msg("Refresh failed")
				return err
			}

			summary := result.Summary()
			logger.Info().
				Int("updated", summary.Updated).
				Int("added", summary.Added).
				Dur("took", time.Since(start)).
				Msg("Refresh complete")

			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), summary,
				summaryTable(summary))
		},
	}
}

func summaryTable(s catalogs.MergeSummary) output.Data {
	newSets := "-"
	if len(s.NewSets) > 0 {
		newSets = strings.Join(s.NewSets, ", ")
	}
	return output.Data{
		Headers: []string{"Result", "Cards"},
		Rows: [][]string{
			{"Updated", strconv.Itoa(s.Updated)},
			{"Added", strconv.Itoa(s.Added)},
			{"Unchanged", strconv.Itoa(s.Unchanged)},
			{"Rejected", strconv.Itoa(s.Rejected)},
			{"New sets", newSets},
		},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight},
	}
}
