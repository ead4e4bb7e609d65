package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess+" "+fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning+" "+fmt.Sprintf(format, args...)))
}

// printField prints an aligned "label: value" line.
func printField(w io.Writer, label, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render(fmt.Sprintf("%-14s", label+":")), fmt.Sprintf(format, args...))
}

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		}).
		String()
}
