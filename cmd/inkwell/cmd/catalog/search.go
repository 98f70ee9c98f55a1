package catalog

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/appcontext"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/query"
)

// errNoText is returned by search without a search text.
var errNoText = errors.NewValidationError("text", "", "search text is required")

// NewSearchCommand creates the search command.
func NewSearchCommand(app appcontext.Interface) *cobra.Command {
	var (
		flags filterFlags
		fuzzy bool
	)

	cmd := &cobra.Command{
		Use:     "search <text>",
		GroupID: "catalog",
		Short:   "Search cards by name or rules text",
		Long: `Search matches the text against card names and rules text, ignoring
case, and lists the best matches first.

With --fuzzy the text is matched as a subsequence of the card name, so
"mckymse" finds "Mickey Mouse".`,
		Example: `  inkwell search "stitch"
  inkwell search --fuzzy mckymse --scope collection`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errNoText
			}
			if flags.sort == "" {
				flags.sort = string(query.SortRelevance)
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			var items []query.Item
			if fuzzy {
				cf, err := flags.build("")
				if err != nil {
					return err
				}
				// Rank orders by match quality; the flag sort is ignored.
				items = query.Rank(cf.Apply(client.Items(cf.Scope)), text)
				items = truncate(items, cf.Limit)
			} else {
				cf, err := flags.build(text)
				if err != nil {
					return err
				}
				items = truncate(cf.Apply(client.Items(cf.Scope)), cf.Limit)
			}
			return writeItems(cmd, app, client, items)
		},
	}
	flags.register(cmd, inkwell.ScopeAll)
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "match the text as a fuzzy subsequence of the card name")
	return cmd
}
