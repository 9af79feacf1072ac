package admin

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"skyeserver/internal/client"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	idStyle     = cellStyle.Foreground(lipgloss.Color("245"))
)

// RenderContent writes the catalog as a table of title, category, source
// and id.
func RenderContent(w io.Writer, items []client.ContentItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No content found.")
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		title := item.Title
		if item.Featured {
			title += " ★"
		}
		rows = append(rows, []string{title, capitalize(item.Category), item.Source, item.ID})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TITLE", "CATEGORY", "SOURCE", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return idStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderStats writes the analytics summary.
func RenderStats(w io.Writer, stats *client.Analytics) error {
	_, err := fmt.Fprintf(w, "Total videos:  %d\nStorage used:  %s\n", stats.TotalVideos, stats.StorageUsed)
	return err
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
