package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyeserver/internal/client"
	"skyeserver/internal/viewer"
)

type fakeSource struct {
	items []client.ContentItem
	err   error
}

func (f fakeSource) ListContent(context.Context) ([]client.ContentItem, error) {
	return f.items, f.err
}

type fakePlayer struct {
	started []string
	stopped int
	exited  chan error
	err     error
}

func (f *fakePlayer) Start(url string) (<-chan error, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, url)
	f.exited = make(chan error, 1)
	return f.exited, nil
}

func (f *fakePlayer) Stop() {
	f.stopped++
	f.exited <- nil
}

var items = []client.ContentItem{
	{ID: "dune", Title: "Dune: Part Two", Category: "movies", Featured: true, VideoURL: "https://cdn/dune.mp4", Description: "Paul joins the Fremen."},
	{ID: "show", Title: "The Show", Category: "tv", VideoURL: "https://cdn/show.mp4"},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func loaded(t *testing.T, player MediaPlayer) Model {
	t.Helper()
	m := NewModel(fakeSource{items: items}, player, time.Second, zerolog.Nop())
	msg := m.Init()()
	m, cmd := send(t, m, msg)
	require.NotNil(t, cmd, "hero timer should start")
	return m
}

func TestModel_InitialFetchRendersRowsAndHero(t *testing.T) {
	m := loaded(t, nil)

	view := m.View()
	assert.Contains(t, view, "Trending in Movies")
	assert.Contains(t, view, "Trending in Tv")
	assert.Contains(t, view, "Paul joins the Fremen.")
	assert.Contains(t, view, "Open in Player")
	assert.Equal(t, "nav:home", m.session.Focus())
}

func TestModel_FetchErrorShowsNotice(t *testing.T) {
	m := NewModel(fakeSource{err: errors.New("connection refused")}, nil, time.Second, zerolog.Nop())
	m, cmd := send(t, m, m.Init()())
	assert.Nil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "Could not load content")
	assert.Contains(t, view, "connection refused")
	assert.NotContains(t, view, "Open in Player")
}

func TestModel_StaleHeroTickIgnored(t *testing.T) {
	m := loaded(t, nil)
	epoch := m.session.Epoch()

	_, cmd := send(t, m, heroTickMsg{epoch: epoch})
	assert.NotNil(t, cmd)

	m, _ = send(t, m, contentLoadedMsg{items: toViewerItems(items)})
	_, cmd = send(t, m, heroTickMsg{epoch: epoch})
	assert.Nil(t, cmd)
}

func TestModel_SearchFlow(t *testing.T) {
	m := loaded(t, nil)
	m, _ = send(t, m, key("right"), key("down"))
	before := m.session.Focus()
	require.Equal(t, "item:dune", before)

	m, _ = send(t, m, key("/"))
	assert.Equal(t, viewer.ModeSearchActive, m.session.Mode())
	assert.Contains(t, m.View(), "esc cancel")

	// navigation keys type into the field instead of moving focus
	m, _ = send(t, m, key("j"), key("esc"))
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
	assert.Equal(t, before, m.session.Focus())

	m, _ = send(t, m, key("/"), key("s"), key("h"), key("o"), key("w"), key("enter"))
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
	assert.Contains(t, m.View(), `Results for "show"`)
	assert.Equal(t, "item:show", m.session.Focus())
}

func TestModel_PlayAndClose(t *testing.T) {
	player := &fakePlayer{}
	m := loaded(t, player)

	m, _ = send(t, m, key("right"))
	require.Equal(t, "hero:play", m.session.Focus())
	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"https://cdn/dune.mp4"}, player.started)
	assert.Contains(t, m.View(), "Now playing: Dune: Part Two")

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, 1, player.stopped)
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
	assert.Equal(t, "hero:play", m.session.Focus())

	// the exit of the stopped player arrives late and changes nothing
	m, _ = send(t, m, cmd())
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
}

func TestModel_PlayerExitClosesOverlay(t *testing.T) {
	player := &fakePlayer{}
	m := loaded(t, player)

	m, cmd := send(t, m, key("right"), key("enter"))
	require.Equal(t, viewer.ModePlayerActive, m.session.Mode())

	player.exited <- errors.New("exit status 2")
	m, _ = send(t, m, cmd())
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
	assert.Contains(t, m.View(), "Playback ended")
}

func TestModel_PlayerStartFailure(t *testing.T) {
	m := loaded(t, &fakePlayer{err: errors.New("executable file not found")})

	m, _ = send(t, m, key("right"), key("enter"))
	assert.Equal(t, viewer.ModeBrowsing, m.session.Mode())
	assert.Contains(t, m.View(), "Playback failed")
}

func TestModel_HeroButtonsShowLinks(t *testing.T) {
	m := loaded(t, nil)

	m, _ = send(t, m, key("right"), key("right"), key("right"), key("enter"))
	view := m.View()
	assert.True(t, strings.Contains(view, "vlc://https://cdn/dune.mp4"), view)
}

func TestModel_HeroTickChangesBackdrop(t *testing.T) {
	featured := []client.ContentItem{
		{ID: "a", Title: "Arrival", Category: "movies", Featured: true, Thumbnail: "https://img/arrival.jpg"},
		{ID: "b", Title: "Blade Runner", Category: "movies", Featured: true, Thumbnail: "https://img/blade.jpg"},
	}
	m := NewModel(fakeSource{items: featured}, nil, time.Second, zerolog.Nop())
	m, _ = send(t, m, m.Init()())

	view := m.View()
	assert.Contains(t, view, "https://img/arrival.jpg")
	assert.NotContains(t, view, "https://img/blade.jpg")

	m, _ = send(t, m, heroTickMsg{epoch: m.session.Epoch()})
	view = m.View()
	assert.Contains(t, view, "https://img/blade.jpg")
	assert.NotContains(t, view, "https://img/arrival.jpg")
}

type assetSource struct {
	fakeSource
	fetched []string
}

func (a *assetSource) FetchAsset(_ context.Context, url string) ([]byte, error) {
	a.fetched = append(a.fetched, url)
	return make([]byte, 34000), nil
}

// run executes cmd and any batched commands, returning their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func TestModel_LoadsBackdropOnce(t *testing.T) {
	src := &assetSource{fakeSource: fakeSource{items: []client.ContentItem{
		{ID: "a", Title: "Arrival", Category: "movies", Featured: true, Thumbnail: "https://img/arrival.jpg"},
	}}}
	m := NewModel(src, nil, time.Millisecond, zerolog.Nop())
	m, cmd := send(t, m, m.Init()())

	for _, msg := range run(cmd) {
		m, _ = send(t, m, msg)
	}
	assert.Equal(t, []string{"https://img/arrival.jpg"}, src.fetched)
	assert.Contains(t, m.View(), "(34 kB)")

	// a single featured item rotates onto itself; the size is already known
	m, cmd = send(t, m, heroTickMsg{epoch: m.session.Epoch()})
	run(cmd)
	assert.Len(t, src.fetched, 1)
}
