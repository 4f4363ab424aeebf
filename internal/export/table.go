package export

import (
	"strings"

	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headStyle = lipgloss.NewStyle().Bold(true)

// TableRows flattens the entries of one head into (relation, tail) rows. The
// relation is only printed on the first row of its tails; a relation without
// tails gets a single row with an empty tail cell.
func TableRows(entries []models.RelationEntry) [][]string {
	rows := [][]string{}
	for _, e := range entries {
		if len(e.Tails) == 0 {
			rows = append(rows, []string{e.Relation, ""})
			continue
		}
		for i, tail := range e.Tails {
			relation := ""
			if i == 0 {
				relation = e.Relation
			}
			rows = append(rows, []string{relation, tail})
		}
	}
	return rows
}

// RenderTable renders the grouped view with one table per head.
func RenderTable(grouped models.GroupedResult) string {
	var b strings.Builder
	for i, g := range grouped {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headStyle.Render(g.Head))
		b.WriteString("\n")
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Relation", "Tails").
			Rows(TableRows(g.Entries)...)
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return b.String()
}
