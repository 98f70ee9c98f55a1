// Package catalog provides the catalog browsing commands.
package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
)

// NewSetsCommand creates the sets command.
func NewSetsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "sets",
		GroupID: "catalog",
		Short:   "List the card sets in release order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			sets := client.Sets()
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), sets,
				output.SetsToTableData(sets, client.LocalCardCount))
		},
	}
}
