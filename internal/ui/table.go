package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused bubbles table with ssv's styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the "selected" row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	// Styles changed the header height; size the viewport to show every row.
	t.SetHeight(len(rows) + lipgloss.Height(s.Header.Render("x")))
	return t
}

// RenderSimpleTable renders a static table for CLI output.
// Column widths grow to fit the widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)
	for _, row := range rows {
		for i, cell := range row {
			if i < len(fitted) && lipgloss.Width(cell) > fitted[i].Width {
				fitted[i].Width = lipgloss.Width(cell)
			}
		}
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(fitted, tableRows).View()
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string
	Message    string
	Suggestion string
}

// RenderDoctorTable renders doctor check results grouped by category, in
// first-seen order.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	categories := make(map[string][]DoctorCheckRow)
	var order []string
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			order = append(order, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(BoldStyle().Render(cat) + "\n")

		for _, row := range categories[cat] {
			b.WriteString("  " + statusIcon(row.Status) + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != "pass" {
				b.WriteString("    " + MutedStyle().Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return SuccessStyle().Render(SymbolSuccess)
	case "warn":
		return WarningStyle().Render(SymbolWarning)
	case "fail":
		return ErrorStyle().Render(SymbolFail)
	default:
		return MutedStyle().Render(SymbolPending)
	}
}
