package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"skyeserver/internal/viewer"
)

func (m Model) View() string {
	if item, ok := m.session.Playing(); ok {
		return m.playerView(item)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), " ", m.contentView())

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.notice != nil {
		b.WriteString("\n")
		b.WriteString(noticeTitleStyle.Render(m.notice.title))
		b.WriteString("  ")
		b.WriteString(m.notice.message)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) sidebarView() string {
	focus := m.session.Focus()
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render("SKYE"), ""}
	for i, entry := range m.session.Nav() {
		style := navStyle
		switch {
		case entry.ID() == focus && m.session.Mode() == viewer.ModeBrowsing:
			style = navFocusedStyle
		case i == m.session.ActiveNav():
			style = navActiveStyle
		}
		lines = append(lines, style.Render(entry.Label))
	}
	return sidebarStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) contentView() string {
	if m.session.Mode() == viewer.ModeSearchActive {
		return searchStyle.Render("Search\n\n" + m.search.View() + "\n\n" + helpStyle.Render("enter search • esc cancel"))
	}

	var sections []string
	if m.session.HeroVisible() {
		sections = append(sections, m.heroView())
	}

	switch {
	case m.loading && m.session.Snapshot().Len() == 0:
		sections = append(sections, "Loading content…")
	case m.session.Err() != nil:
		sections = append(sections, errorStyle.Render("Content unavailable: "+m.session.Err().Error()))
	case len(m.session.Rows()) == 0 && m.session.View().Kind == viewer.ViewSearch:
		sections = append(sections, fmt.Sprintf("No results for %q", m.session.View().Query))
	case len(m.session.Rows()) == 0:
		sections = append(sections, "No content found.")
	}

	focus := m.session.Focus()
	for _, row := range m.session.Rows() {
		cards := make([]string, 0, len(row.Items)*2)
		for i, item := range row.Items {
			if i > 0 {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, renderCard(item, viewer.ItemID(item.ID) == focus))
		}
		sections = append(sections, rowTitleStyle.Render(row.Title)+"\n"+lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return strings.Join(sections, "\n")
}

func (m Model) heroView() string {
	item, ok := m.session.Hero().Current()
	if !ok {
		return ""
	}

	focus := m.session.Focus()
	var buttons []string
	for i, a := range viewer.Actions(item) {
		if i > 0 {
			buttons = append(buttons, strings.Repeat(" ", cardGap))
		}
		buttons = append(buttons, renderButton(a, a.ID == focus))
	}

	var lines []string
	if item.Thumbnail != "" {
		backdrop := "backdrop " + truncate(item.Thumbnail, max(m.width-sidebarWidth-24, 20))
		if size := m.backdrops[item.Thumbnail]; size > 0 {
			backdrop += " (" + humanize.Bytes(uint64(size)) + ")"
		}
		lines = append(lines, helpStyle.Render(backdrop))
	}
	lines = append(lines, heroTitleStyle.Render(item.Title))
	if item.Description != "" {
		lines = append(lines, heroDescStyle.Render(truncate(item.Description, max(m.width-sidebarWidth-4, 20))))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	return strings.Join(lines, "\n")
}

func (m Model) playerView(item viewer.Item) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		heroTitleStyle.Render("Now playing: "+item.Title)+"\n\n"+
			helpStyle.Render(item.VideoURL)+"\n\n"+
			helpStyle.Render("esc stop and close"))
}

func (m Model) helpLine() string {
	return "←↑↓→/hjkl move • enter select • / search • r refresh • q quit"
}
