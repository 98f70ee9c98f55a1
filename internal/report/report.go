// Package report renders the catalog update check as a markdown document.
package report

import (
	"fmt"
	"io"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/inkwell/pkg/catalogs"
)

// Source describes where the compared data came from.
type Source struct {
	Name    string // remote source display name, e.g. "Lorcast"
	URL     string // remote API root
	Catalog string // bundled catalog version or directory
}

// WriteUpdateCheck writes the update check report for r to w.
func WriteUpdateCheck(w io.Writer, src Source, r catalogs.UpdateReport) error {
	doc := md.NewMarkdown(w).
		H1("Card Data Update Check").
		PlainTextf("%s %s (%s)", md.Bold("Remote Source:"), src.Name, src.URL).LF().
		PlainTextf("%s %s", md.Bold("Local Catalog:"), src.Catalog).LF().
		H2("Set Comparison").
		Table(md.TableSet{
			Header: []string{"Set", src.Name + " Cards", "Local Cards", "Difference"},
			Rows:   comparisonRows(r),
		}).
		PlainTextf("%s %s has %d cards, local has %d cards",
			md.Bold("Total:"), src.Name, r.RemoteTotal, r.LocalTotal).LF()

	if !r.HasUpdates() {
		doc.H2("Status: Up to Date").
			PlainTextf("Local data matches the %s API. No updates needed.", src.Name).LF()
		return doc.Build()
	}

	doc.H2("Updates Available")
	if len(r.NewSets) > 0 {
		items := make([]string, 0, len(r.NewSets))
		for _, s := range r.NewSets {
			items = append(items, fmt.Sprintf("%s (%s): %d cards", md.Bold(s.Name), s.Code, s.Remote))
		}
		doc.H3("New Sets Detected").BulletList(items...)
	}
	if len(r.Updated) > 0 {
		items := make([]string, 0, len(r.Updated))
		for _, s := range r.Updated {
			items = append(items, fmt.Sprintf("%s (%s): +%d new cards (%d -> %d)",
				md.Bold(s.Name), s.Code, s.Difference, s.Local, s.Remote))
		}
		doc.H3("Sets with New Cards").BulletList(items...)
	}
	doc.H3("Recommended Actions").OrderedList(
		"Refresh card metadata with `inkwell refresh`",
		"Update the bundled catalog with the new card lists",
		"Review new cards for data quality issues",
	)
	return doc.Build()
}

func comparisonRows(r catalogs.UpdateReport) [][]string {
	rows := make([][]string, 0, len(r.Sets))
	for _, s := range r.Sets {
		switch {
		case s.New:
			rows = append(rows, []string{
				md.Bold(s.Name), strconv.Itoa(s.Remote), md.Bold("Missing"), md.Bold(fmt.Sprintf("+%d", s.Remote)),
			})
		case s.Difference > 0:
			rows = append(rows, []string{
				s.Name, strconv.Itoa(s.Remote), strconv.Itoa(s.Local), md.Bold(fmt.Sprintf("+%d", s.Difference)),
			})
		default:
			rows = append(rows, []string{
				s.Name, strconv.Itoa(s.Remote), strconv.Itoa(s.Local), strconv.Itoa(s.Difference),
			})
		}
	}
	return rows
}
