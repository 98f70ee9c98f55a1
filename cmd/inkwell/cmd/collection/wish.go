package collection

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/query"
)

// NewWishCommand creates the wish command.
func NewWishCommand(app appcontext.Interface) *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:     "wish <card-id>",
		GroupID: "collection",
		Short:   "Add a card to the wishlist or remove it",
		Long: `Toggle the wishlist flag of a card, or set it with --on or --off.
Ownership is not affected.`,
		Example: `  inkwell wish TFC-001
  inkwell wish TFC-001 --off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var entry ledger.Entry
			switch {
			case on || off:
				entry, err = client.SetWishlisted(cmd.Context(), args[0], on)
			default:
				entry, err = client.ToggleWishlist(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return writeEntry(cmd, app, entry)
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "add to the wishlist")
	cmd.Flags().BoolVar(&off, "off", false, "remove from the wishlist")
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	return cmd
}

// NewWishlistCommand creates the wishlist command.
func NewWishlistCommand(app appcontext.Interface) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:     "wishlist",
		GroupID: "collection",
		Short:   "List wishlisted cards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := query.ParseSort(sortBy)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			items := client.Search(inkwell.ScopeWishlist, query.Options{Sort: key})
			return output.WriteItems(cmd.OutOrStdout(), output.Format(app.OutputFormat()), items, client.PremiumActive())
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(query.SortRecent), "sort order: name, cost, rarity, set, recent")
	return cmd
}
