package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/ledger"
	"github.com/agentstation/inkwell/pkg/progress"
	"github.com/agentstation/inkwell/pkg/query"
)

// Write renders a command result. Table formats draw tableData; the
// structured formats encode data itself.
func Write(w io.Writer, format Format, data any, tableData Data) error {
	if format.Structured() {
		return Encode(w, format, data)
	}
	return RenderTable(w, tableData)
}

// SetsToTableData converts sets to table format.
func SetsToTableData(sets []catalogs.Set, localCounts func(string) int) Data {
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		released := "-"
		if !s.ReleaseDate.IsZero() {
			released = s.ReleaseDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.Itoa(s.ReleaseOrder),
			s.Name,
			dash(s.Code),
			strconv.Itoa(s.DeclaredCount),
			strconv.Itoa(localCounts(s.Name)),
			released,
		})
	}
	return Data{
		Headers:         []string{"#", "Set", "Code", "Cards", "Bundled", "Released"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// ItemsToTableData converts listed cards to table format. Wide adds rules
// text and stats; showPrice adds the market price columns.
func ItemsToTableData(items []query.Item, wide, showPrice bool) Data {
	headers := []string{"ID", "Name", "Set", "Type", "Ink", "Cost", "Rarity", "Owned", "Wish"}
	if showPrice {
		headers = append(headers, "USD", "Foil USD")
	}
	if wide {
		headers = append(headers, "Variant", "S/W/L", "Text")
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		c := it.Card
		row := []string{
			c.ID,
			c.FullName(),
			c.SetName,
			c.Type.String(),
			dash(c.Inks.String()),
			strconv.Itoa(c.Cost),
			c.Rarity.String(),
			strconv.Itoa(it.Quantity),
			check(it.Wishlisted),
		}
		if showPrice {
			row = append(row, FormatUSD(c.Price, false), FormatUSD(c.Price, true))
		}
		if wide {
			row = append(row, c.Variant.String(), formatStats(c), truncate(c.Text, 60))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// ProgressToTableData converts set progress to table format, with the
// overall sum as the last row.
func ProgressToTableData(sets []progress.Progress, overall *progress.Progress) Data {
	rows := make([][]string, 0, len(sets)+1)
	for _, p := range sets {
		rows = append(rows, progressRow(p.SetName, p))
	}
	if overall != nil {
		rows = append(rows, progressRow("Total", *overall))
	}
	return Data{
		Headers:         []string{"Set", "Collected", "Total", "Complete"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

func progressRow(name string, p progress.Progress) []string {
	return []string{
		name,
		strconv.Itoa(p.Collected),
		strconv.Itoa(p.Total),
		strconv.FormatFloat(p.Percentage, 'f', 1, 64) + "%",
	}
}

// EntryToTableData renders one ledger entry as a key-value table.
func EntryToTableData(card catalogs.Card, e ledger.Entry) Data {
	added := "-"
	if !e.DateAdded.IsZero() {
		added = e.DateAdded.Format("2006-01-02 15:04")
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Card", card.ID + " " + card.FullName()},
			{"Set", card.SetName},
			{"Quantity", strconv.Itoa(e.Quantity)},
			{"Wishlisted", strconv.FormatBool(e.Wishlisted)},
			{"Added", added},
		},
	}
}

// FormatUSD formats the normal or foil price of a card.
func FormatUSD(p *catalogs.Price, foil bool) string {
	if p == nil {
		return "-"
	}
	v := p.USD
	if foil {
		v = p.FoilUSD
	}
	if v == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatStats(c catalogs.Card) string {
	if c.Strength == nil && c.Willpower == nil && c.Lore == nil {
		return "-"
	}
	parts := []string{optInt(c.Strength), optInt(c.Willpower), optInt(c.Lore)}
	return strings.Join(parts, "/")
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return dash(s)
	}
	return string(r[:n-3]) + "..."
}

// WriteItems renders a card listing. Prices are stripped from the cards
// unless showPrice is set.
func WriteItems(w io.Writer, format Format, items []query.Item, showPrice bool) error {
	if !showPrice {
		for i := range items {
			items[i].Card.Price = nil
		}
	}
	return Write(w, format, items, ItemsToTableData(items, format == FormatWide, showPrice))
}
