package tui

import (
	"github.com/charmbracelet/lipgloss"

	"skyeserver/internal/viewer"
)

const (
	sidebarWidth = 18
	cardWidth    = 20
	cardGap      = 1
)

var (
	accent = lipgloss.Color("#E50914")
	muted  = lipgloss.Color("#8B949E")

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(muted)

	navStyle        = lipgloss.NewStyle().PaddingLeft(1)
	navActiveStyle  = navStyle.Foreground(accent).Bold(true)
	navFocusedStyle = navStyle.Reverse(true)

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	heroDescStyle  = lipgloss.NewStyle().Foreground(muted).Italic(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted)
	buttonFocusedStyle = buttonStyle.BorderForeground(accent).Foreground(accent).Bold(true)

	rowTitleStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Width(cardWidth-2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(muted)
	cardFocusedStyle = cardStyle.BorderStyle(lipgloss.ThickBorder()).BorderForeground(accent)

	searchStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent)

	noticeTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpStyle        = lipgloss.NewStyle().Foreground(muted)
	errorStyle       = lipgloss.NewStyle().Foreground(accent)
)

func renderButton(a viewer.HeroAction, focused bool) string {
	if focused {
		return buttonFocusedStyle.Render(a.Label)
	}
	return buttonStyle.Render(a.Label)
}

func renderCard(item viewer.Item, focused bool) string {
	title := truncate(item.Title, cardWidth-2)
	body := title + "\n" + lipgloss.NewStyle().Foreground(muted).Render(truncate(viewer.CategoryLabel(item.Category), cardWidth-2))
	if focused {
		return cardFocusedStyle.Render(body)
	}
	return cardStyle.Render(body)
}

// layout measures with the same renderers View uses so left edges in the
// focus grid match the screen.
func layout() viewer.Layout {
	return viewer.Layout{
		ContentLeft: sidebarWidth + 1,
		Gap:         cardGap,
		CardWidth: func(item viewer.Item) int {
			return lipgloss.Width(renderCard(item, false))
		},
		ButtonWidth: func(a viewer.HeroAction) int {
			return lipgloss.Width(renderButton(a, false))
		},
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
