package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/pkg/query"
)

// NewCardsCommand creates the cards command.
func NewCardsCommand(app appcontext.Interface) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:     "cards [card-id]",
		GroupID: "catalog",
		Short:   "List cards, or show one card",
		Long: `List the cards of the catalog, the collection or the wishlist,
narrowed by set, type, ink, variant, rarity and cost.

With a card ID, show that card and its ownership record.`,
		Example: `  # Owned Amber characters
  inkwell cards --scope collection --ink amber --type character

  # Every legendary of a set, cheapest first
  inkwell cards --set "Rise of the Floodborn" --rarity legendary --sort cost

  # One card
  inkwell cards TFC-001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return showCard(cmd, app, client, args[0])
			}

			cf, err := flags.build("")
			if err != nil {
				return err
			}
			items := truncate(cf.Apply(client.Items(cf.Scope)), cf.Limit)
			return writeItems(cmd, app, client, items)
		},
	}
	flags.register(cmd, inkwell.ScopeAll)
	return cmd
}

func showCard(cmd *cobra.Command, app appcontext.Interface, client inkwell.Client, id string) error {
	card, err := client.Card(id)
	if err != nil {
		return err
	}
	entry, _ := client.Entry(card.ID)
	if !client.PremiumActive() {
		card.Price = nil
	}
	item := query.Item{Card: card, Quantity: entry.Quantity, Wishlisted: entry.Wishlisted, DateAdded: entry.DateAdded}
	return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), item,
		output.EntryToTableData(card, entry))
}

// writeItems renders a listing. Prices are shown only with an active
// premium entitlement.
func writeItems(cmd *cobra.Command, app appcontext.Interface, client inkwell.Client, items []query.Item) error {
	return output.WriteItems(cmd.OutOrStdout(), output.Format(app.OutputFormat()), items, client.PremiumActive())
}
