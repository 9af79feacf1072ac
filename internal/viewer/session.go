package viewer

import (
	"strings"
)

type Mode int

const (
	ModeBrowsing Mode = iota
	ModeSearchActive
	ModePlayerActive
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeSearchActive:
		return "search"
	case ModePlayerActive:
		return "player"
	}
	return "unknown"
}

// NavigationState holds the focused element and the active mode.
// LastFocused is the element to return to when an overlay closes.
type NavigationState struct {
	Mode        Mode
	Focus       string
	LastFocused string
}

type NavKind int

const (
	NavSearch NavKind = iota
	NavHome
	NavCategory
)

// NavEntry is a sidebar link.
type NavEntry struct {
	Kind     NavKind
	Category string
	Label    string
}

func (e NavEntry) ID() string {
	switch e.Kind {
	case NavSearch:
		return "nav:search"
	case NavHome:
		return "nav:home"
	}
	return "nav:category:" + e.Category
}

type ViewKind int

const (
	ViewHome ViewKind = iota
	ViewCategory
	ViewSearch
)

// View is what the content area shows.
type View struct {
	Kind     ViewKind
	Category string
	Query    string
}

type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectView
	EffectSearch
	EffectHero
	EffectPlay
	EffectDownload
	EffectExternal
)

// Effect tells the caller what activating the focused element asked for
// beyond the state change already applied.
type Effect struct {
	Kind EffectKind
	Item Item
	URL  string
}

// Layout supplies the rendered widths the grid is measured with.
type Layout struct {
	ContentLeft int
	Gap         int
	CardWidth   func(Item) int
	ButtonWidth func(HeroAction) int
}

func (l Layout) card(item Item) int {
	if l.CardWidth == nil {
		return 20
	}
	return l.CardWidth(item)
}

func (l Layout) button(a HeroAction) int {
	if l.ButtonWidth == nil {
		return len(a.Label) + 4
	}
	return l.ButtonWidth(a)
}

func ItemID(id string) string {
	return "item:" + id
}

// Session is the viewer's owned state: the current snapshot, the hero
// carousel built from it, the sidebar, the content rows and the
// navigation state.
type Session struct {
	layout   Layout
	snapshot *Snapshot
	err      error
	nav      []NavEntry
	active   int
	view     View
	rows     []Row
	hero     *Hero
	epoch    uint64
	grid     *Grid
	state    NavigationState
	playing  Item
}

func NewSession(layout Layout) *Session {
	s := &Session{
		layout:   layout,
		snapshot: NewSnapshot(nil),
		hero:     NewHero(nil, 0),
	}
	s.rebuildNav()
	s.state.Focus = s.nav[s.active].ID()
	s.rebuild()
	return s
}

// Replace installs a freshly fetched snapshot. The hero carousel is
// rebuilt under a new epoch, which is returned so the caller can start a
// timer for it.
func (s *Session) Replace(items []Item) uint64 {
	s.snapshot = NewSnapshot(items)
	s.err = nil
	s.epoch++
	s.hero = NewHero(s.snapshot.Featured(MaxHeroItems), s.epoch)
	s.rebuildNav()
	s.rebuild()
	return s.epoch
}

// Fail records a fetch failure. The content area empties and the hero is
// hidden; the sidebar stays usable.
func (s *Session) Fail(err error) {
	s.snapshot = NewSnapshot(nil)
	s.err = err
	s.epoch++
	s.hero = NewHero(nil, s.epoch)
	s.rebuildNav()
	s.rebuild()
}

// HeroTick advances the carousel when epoch is current. A false result
// means the timer that sent the tick is stale and should stop.
func (s *Session) HeroTick(epoch uint64) bool {
	return s.hero.Tick(epoch)
}

func (s *Session) Navigate(d Direction) bool {
	if s.state.Mode != ModeBrowsing {
		return false
	}
	p, ok := s.grid.Find(s.state.Focus)
	if !ok {
		s.state.Focus = s.fallbackFocus()
		return true
	}
	next := Navigate(s.grid, p, d)
	if next == p {
		return false
	}
	cell, _ := s.grid.At(next)
	s.state.Focus = cell.ID
	return true
}

// Activate handles the select key on the focused element.
func (s *Session) Activate() Effect {
	if s.state.Mode != ModeBrowsing {
		return Effect{}
	}
	focus := s.state.Focus

	for i, entry := range s.nav {
		if entry.ID() != focus {
			continue
		}
		switch entry.Kind {
		case NavSearch:
			s.EnterSearch()
			return Effect{Kind: EffectSearch}
		case NavHome:
			s.active = i
			s.view = View{Kind: ViewHome}
		case NavCategory:
			s.active = i
			s.view = View{Kind: ViewCategory, Category: entry.Category}
		}
		s.rebuild()
		return Effect{Kind: EffectView}
	}

	if strings.HasPrefix(focus, "hero:") {
		item, ok := s.hero.Current()
		if !ok {
			return Effect{}
		}
		for _, a := range Actions(item) {
			if a.ID != focus {
				continue
			}
			switch a.Kind {
			case ActionPlay:
				s.openPlayer(item)
				return Effect{Kind: EffectPlay, Item: item, URL: a.URL}
			case ActionDownload:
				return Effect{Kind: EffectDownload, Item: item, URL: a.URL}
			case ActionExternal:
				return Effect{Kind: EffectExternal, Item: item, URL: a.URL}
			}
		}
		return Effect{}
	}

	if id, ok := strings.CutPrefix(focus, "item:"); ok {
		item, ok := s.snapshot.Lookup(id)
		if !ok {
			return Effect{}
		}
		if s.HeroVisible() {
			s.hero.Show(item)
			return Effect{Kind: EffectHero, Item: item}
		}
		s.openPlayer(item)
		return Effect{Kind: EffectPlay, Item: item, URL: item.VideoURL}
	}

	return Effect{}
}

// EnterSearch opens the search input, remembering the focused element.
func (s *Session) EnterSearch() bool {
	if s.state.Mode != ModeBrowsing {
		return false
	}
	s.state.LastFocused = s.state.Focus
	s.state.Mode = ModeSearchActive
	return true
}

// CommitSearch shows the results for query and returns to browsing. An
// empty query is ignored and the input stays open.
func (s *Session) CommitSearch(query string) bool {
	if s.state.Mode != ModeSearchActive {
		return false
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	s.view = View{Kind: ViewSearch, Query: query}
	s.active = s.navIndex(NavEntry{Kind: NavSearch}.ID())
	s.rebuild()
	s.state.Mode = ModeBrowsing

	switch {
	case s.has(s.state.LastFocused):
		s.state.Focus = s.state.LastFocused
	case len(s.grid.Rows) > 0:
		s.state.Focus = s.grid.Rows[0][0].ID
	default:
		s.state.Focus = s.fallbackFocus()
	}
	s.state.LastFocused = ""
	return true
}

// CancelSearch closes the search input without changing the view.
func (s *Session) CancelSearch() bool {
	if s.state.Mode != ModeSearchActive {
		return false
	}
	s.closeOverlay()
	return true
}

// ClosePlayer leaves PlayerActive and restores focus.
func (s *Session) ClosePlayer() bool {
	if s.state.Mode != ModePlayerActive {
		return false
	}
	s.playing = Item{}
	s.closeOverlay()
	return true
}

func (s *Session) openPlayer(item Item) {
	s.state.LastFocused = s.state.Focus
	s.state.Mode = ModePlayerActive
	s.playing = item
}

func (s *Session) closeOverlay() {
	s.state.Mode = ModeBrowsing
	if s.has(s.state.LastFocused) {
		s.state.Focus = s.state.LastFocused
	} else {
		s.state.Focus = s.fallbackFocus()
	}
	s.state.LastFocused = ""
}

func (s *Session) State() NavigationState { return s.state }
func (s *Session) Mode() Mode             { return s.state.Mode }
func (s *Session) Focus() string          { return s.state.Focus }
func (s *Session) View() View             { return s.view }
func (s *Session) Rows() []Row            { return s.rows }
func (s *Session) Grid() *Grid            { return s.grid }
func (s *Session) Nav() []NavEntry        { return s.nav }
func (s *Session) ActiveNav() int         { return s.active }
func (s *Session) Hero() *Hero            { return s.hero }
func (s *Session) Err() error             { return s.err }
func (s *Session) Snapshot() *Snapshot    { return s.snapshot }
func (s *Session) Epoch() uint64          { return s.epoch }

// Position is where the focused element sits in the grid.
func (s *Session) Position() (Position, bool) {
	return s.grid.Find(s.state.Focus)
}

func (s *Session) Playing() (Item, bool) {
	return s.playing, s.state.Mode == ModePlayerActive
}

// HeroVisible reports whether the hero section is shown. It is hidden when
// there are no featured items, after a failed fetch and while search
// results are shown.
func (s *Session) HeroVisible() bool {
	return s.hero.Len() > 0 && s.err == nil && s.view.Kind != ViewSearch
}

func (s *Session) rebuildNav() {
	activeID := ""
	if s.active < len(s.nav) {
		activeID = s.nav[s.active].ID()
	}

	s.nav = []NavEntry{
		{Kind: NavSearch, Label: "Search"},
		{Kind: NavHome, Label: "Home"},
	}
	for _, category := range s.snapshot.Categories() {
		s.nav = append(s.nav, NavEntry{Kind: NavCategory, Category: category, Label: CategoryLabel(category)})
	}

	s.active = s.navIndex(activeID)
	if s.active < 0 || (s.view.Kind == ViewCategory && s.nav[s.active].Kind != NavCategory) {
		s.active = s.navIndex(NavEntry{Kind: NavHome}.ID())
		s.view = View{Kind: ViewHome}
	}
}

func (s *Session) rebuild() {
	switch s.view.Kind {
	case ViewCategory:
		s.rows = CategoryRows(s.snapshot, s.view.Category)
	case ViewSearch:
		s.rows = Search(s.snapshot, s.view.Query)
	default:
		s.rows = HomeRows(s.snapshot)
	}

	g := &Grid{SidebarActive: s.active}
	for _, entry := range s.nav {
		g.Sidebar = append(g.Sidebar, Cell{ID: entry.ID(), Width: len(entry.Label)})
	}
	if s.HeroVisible() {
		item, _ := s.hero.Current()
		x := s.layout.ContentLeft
		for _, a := range Actions(item) {
			w := s.layout.button(a)
			g.Hero = append(g.Hero, Cell{ID: a.ID, Left: x, Width: w})
			x += w + s.layout.Gap
		}
	}
	for _, row := range s.rows {
		var cells []Cell
		x := s.layout.ContentLeft
		for _, item := range row.Items {
			w := s.layout.card(item)
			cells = append(cells, Cell{ID: ItemID(item.ID), Left: x, Width: w})
			x += w + s.layout.Gap
		}
		g.AddRow(cells)
	}
	s.grid = g

	if s.state.Mode == ModeBrowsing && !s.has(s.state.Focus) {
		s.state.Focus = s.fallbackFocus()
	}
}

func (s *Session) has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.grid.Find(id)
	return ok
}

func (s *Session) navIndex(id string) int {
	for i, entry := range s.nav {
		if entry.ID() == id {
			return i
		}
	}
	return -1
}

func (s *Session) fallbackFocus() string {
	return s.nav[s.active].ID()
}
