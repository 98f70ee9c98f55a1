package collection

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/internal/cmd/output"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/ledger"
)

// NewOwnCommand creates the own command.
func NewOwnCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "own <card-id> <quantity>",
		GroupID: "collection",
		Short:   "Record how many copies of a card you own",
		Long: `Set the owned copies of a card. A signed quantity adjusts the current
count instead; the count never goes below zero. Zero removes the card
from the collection and keeps its wishlist flag.`,
		Example: `  inkwell own TFC-001 2
  inkwell own TFC-001 +1
  inkwell own TFC-001 -- -1
  inkwell own TFC-001 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, relative, err := parseQuantity(args[1])
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			var entry ledger.Entry
			if relative {
				entry, err = client.AdjustQuantity(cmd.Context(), args[0], qty)
			} else {
				entry, err = client.SetOwnedQuantity(cmd.Context(), args[0], qty)
			}
			if err != nil {
				return err
			}

			app.Logger().Debug().
				Str("card_id", entry.CardID).
				Int("quantity", entry.Quantity).
				Msg("Quantity recorded")
			return writeEntry(cmd, app, entry)
		},
	}
}

// parseQuantity parses "3" as an absolute count and "+1" or "-1" as a delta.
func parseQuantity(s string) (qty int, relative bool, err error) {
	s = strings.TrimSpace(s)
	relative = strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")
	qty, err = strconv.Atoi(s)
	if err != nil {
		return 0, false, errors.NewValidationError("quantity", s, "must be a whole number")
	}
	return qty, relative, nil
}

// writeEntry prints an entry joined with its card, or a stub when the card
// has no metadata yet.
func writeEntry(cmd *cobra.Command, app appcontext.Interface, entry ledger.Entry) error {
	client, err := app.Client()
	if err != nil {
		return err
	}
	card, ok := client.Store().CardOrSlot(entry.CardID)
	if !ok {
		card = catalogs.Card{ID: entry.CardID, Name: entry.CardID}
	}
	return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), entry,
		output.EntryToTableData(card, entry))
}
