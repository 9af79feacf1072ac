package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"skyeserver/internal/client"
	"skyeserver/internal/viewer"
)

type ContentSource interface {
	ListContent(ctx context.Context) ([]client.ContentItem, error)
}

// AssetSource fetches static assets. A ContentSource that also implements
// it gets hero backdrops loaded.
type AssetSource interface {
	FetchAsset(ctx context.Context, rawURL string) ([]byte, error)
}

type MediaPlayer interface {
	Start(url string) (<-chan error, error)
	Stop()
}

type contentLoadedMsg struct {
	items []viewer.Item
}

type contentErrorMsg struct {
	err error
}

type heroTickMsg struct {
	epoch uint64
}

type backdropLoadedMsg struct {
	url  string
	size int
	err  error
}

type playerExitedMsg struct {
	gen int
	err error
}

type notice struct {
	title   string
	message string
}

type Model struct {
	source   ContentSource
	assets   AssetSource
	player   MediaPlayer
	session  *viewer.Session
	search   textinput.Model
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	width   int
	height  int
	loading bool
	notice  *notice
	playGen int

	// backdrops maps a thumbnail URL to its size in bytes; -1 while loading
	// or after a failure.
	backdrops map[string]int
}

func NewModel(source ContentSource, player MediaPlayer, heroInterval time.Duration, logger zerolog.Logger) Model {
	search := textinput.New()
	search.Placeholder = "Search titles"
	search.CharLimit = 100
	search.Width = 40

	if heroInterval <= 0 {
		heroInterval = 7 * time.Second
	}

	assets, _ := source.(AssetSource)

	return Model{
		source:   source,
		assets:   assets,
		player:   player,
		session:  viewer.NewSession(layout()),
		search:   search,
		interval: heroInterval,
		timeout:  15 * time.Second,
		logger:   logger,
		width:    100,
		height:   30,
		loading:  source != nil,

		backdrops: make(map[string]int),
	}
}

func (m Model) Init() tea.Cmd {
	if m.source == nil {
		return nil
	}
	return fetchCmd(m.source, m.timeout)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case contentLoadedMsg:
		m.loading = false
		m.notice = nil
		epoch := m.session.Replace(msg.items)
		m.logger.Info().Int("items", len(msg.items)).Uint64("epoch", epoch).Msg("content loaded")
		if m.session.Hero().Len() > 0 {
			return m, tea.Batch(heroTickCmd(m.interval, epoch), m.backdropCmd())
		}
		return m, nil

	case contentErrorMsg:
		m.loading = false
		m.session.Fail(msg.err)
		m.logger.Error().Err(msg.err).Msg("content fetch failed")
		m.notice = &notice{title: "Could not load content", message: msg.err.Error()}
		return m, nil

	case heroTickMsg:
		if m.session.HeroTick(msg.epoch) {
			return m, tea.Batch(heroTickCmd(m.interval, msg.epoch), m.backdropCmd())
		}
		return m, nil

	case backdropLoadedMsg:
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Str("url", msg.url).Msg("backdrop unavailable")
			return m, nil
		}
		m.backdrops[msg.url] = msg.size
		return m, nil

	case playerExitedMsg:
		if msg.gen != m.playGen {
			return m, nil
		}
		if m.session.ClosePlayer() && msg.err != nil {
			m.notice = &notice{title: "Playback ended", message: msg.err.Error()}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopPlayer()
			return m, tea.Quit
		}
		switch m.session.Mode() {
		case viewer.ModeSearchActive:
			return m.updateSearch(msg)
		case viewer.ModePlayerActive:
			return m.updatePlayer(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.session.Navigate(viewer.Up)
	case "down", "j":
		m.session.Navigate(viewer.Down)
	case "left", "h":
		m.session.Navigate(viewer.Left)
	case "right", "l":
		m.session.Navigate(viewer.Right)
	case "/":
		if !m.session.EnterSearch() {
			return m, nil
		}
		cmd := m.openSearch()
		return m, cmd
	case "r":
		if m.source == nil || m.loading {
			return m, nil
		}
		m.loading = true
		return m, fetchCmd(m.source, m.timeout)
	case "enter":
		m.notice = nil
		return m.apply(m.session.Activate())
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.CancelSearch()
		m.search.Blur()
		m.search.Reset()
		return m, nil
	case "enter":
		if m.session.CommitSearch(m.search.Value()) {
			m.search.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updatePlayer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		m.stopPlayer()
		m.playGen++
		m.session.ClosePlayer()
	}
	return m, nil
}

func (m Model) apply(eff viewer.Effect) (tea.Model, tea.Cmd) {
	switch eff.Kind {
	case viewer.EffectSearch:
		cmd := m.openSearch()
		return m, cmd
	case viewer.EffectHero:
		return m, m.backdropCmd()
	case viewer.EffectPlay:
		return m.startPlayer(eff)
	case viewer.EffectDownload:
		m.notice = &notice{title: "Download", message: eff.URL}
	case viewer.EffectExternal:
		m.notice = &notice{title: "Open in Player", message: eff.URL}
	}
	return m, nil
}

func (m *Model) openSearch() tea.Cmd {
	m.search.Reset()
	return m.search.Focus()
}

func (m Model) startPlayer(eff viewer.Effect) (tea.Model, tea.Cmd) {
	if m.player == nil {
		m.session.ClosePlayer()
		m.notice = &notice{title: "Playback unavailable", message: "No player is configured."}
		return m, nil
	}

	exited, err := m.player.Start(eff.URL)
	if err != nil {
		m.session.ClosePlayer()
		m.logger.Error().Err(err).Str("url", eff.URL).Msg("failed to start player")
		m.notice = &notice{title: "Playback failed", message: err.Error()}
		return m, nil
	}

	m.playGen++
	return m, waitForExit(exited, m.playGen)
}

func (m Model) stopPlayer() {
	if m.player != nil && m.session.Mode() == viewer.ModePlayerActive {
		m.player.Stop()
	}
}

// backdropCmd loads the current hero item's thumbnail once per URL.
func (m Model) backdropCmd() tea.Cmd {
	if m.assets == nil {
		return nil
	}
	item, ok := m.session.Hero().Current()
	if !ok || item.Thumbnail == "" {
		return nil
	}
	if _, seen := m.backdrops[item.Thumbnail]; seen {
		return nil
	}
	m.backdrops[item.Thumbnail] = -1

	assets, url, timeout := m.assets, item.Thumbnail, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		data, err := assets.FetchAsset(ctx, url)
		return backdropLoadedMsg{url: url, size: len(data), err: err}
	}
}

func fetchCmd(source ContentSource, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		items, err := source.ListContent(ctx)
		if err != nil {
			return contentErrorMsg{err: err}
		}
		return contentLoadedMsg{items: toViewerItems(items)}
	}
}

func heroTickCmd(interval time.Duration, epoch uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return heroTickMsg{epoch: epoch}
	})
}

func waitForExit(exited <-chan error, gen int) tea.Cmd {
	return func() tea.Msg {
		return playerExitedMsg{gen: gen, err: <-exited}
	}
}

func toViewerItems(items []client.ContentItem) []viewer.Item {
	out := make([]viewer.Item, 0, len(items))
	for _, item := range items {
		out = append(out, viewer.Item{
			ID:          item.ID,
			Title:       item.Title,
			Category:    item.Category,
			Description: item.Description,
			Thumbnail:   item.Thumbnail,
			VideoURL:    item.VideoURL,
			Featured:    item.Featured,
			Source:      item.Source,
		})
	}
	return out
}

func (n *notice) String() string {
	return fmt.Sprintf("%s: %s", n.title, n.message)
}
