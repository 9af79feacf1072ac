package viewer

// MaxHeroItems bounds the carousel rotation.
const MaxHeroItems = 5

type ActionKind int

const (
	ActionPlay ActionKind = iota
	ActionDownload
	ActionExternal
)

// HeroAction is one of the buttons under the hero spotlight.
type HeroAction struct {
	Kind  ActionKind
	ID    string
	Label string
	URL   string
}

// Actions derives the hero buttons for item.
func Actions(item Item) []HeroAction {
	return []HeroAction{
		{Kind: ActionPlay, ID: "hero:play", Label: "Play", URL: item.VideoURL},
		{Kind: ActionDownload, ID: "hero:download", Label: "Download", URL: item.VideoURL},
		{Kind: ActionExternal, ID: "hero:external", Label: "Open in Player", URL: "vlc://" + item.VideoURL},
	}
}

// Hero is the rotating spotlight over the featured items of one snapshot.
// Its epoch identifies the timer that drives it; ticks carrying another
// epoch belong to a replaced carousel and are ignored.
type Hero struct {
	items   []Item
	index   int
	display Item
	epoch   uint64
}

func NewHero(featured []Item, epoch uint64) *Hero {
	if len(featured) > MaxHeroItems {
		featured = featured[:MaxHeroItems]
	}
	h := &Hero{items: append([]Item(nil), featured...), epoch: epoch}
	if len(h.items) > 0 {
		h.display = h.items[0]
	}
	return h
}

func (h *Hero) Len() int {
	if h == nil {
		return 0
	}
	return len(h.items)
}

func (h *Hero) Epoch() uint64 {
	if h == nil {
		return 0
	}
	return h.epoch
}

// Current is the item on display.
func (h *Hero) Current() (Item, bool) {
	if h.Len() == 0 {
		return Item{}, false
	}
	return h.display, true
}

// Index is the rotation position, which manual selection does not move.
func (h *Hero) Index() int {
	if h == nil {
		return 0
	}
	return h.index
}

// Tick advances the rotation if epoch matches and reports whether it did.
func (h *Hero) Tick(epoch uint64) bool {
	if h.Len() == 0 || epoch != h.epoch {
		return false
	}
	h.index = (h.index + 1) % len(h.items)
	h.display = h.items[h.index]
	return true
}

// Show puts item on display until the next tick.
func (h *Hero) Show(item Item) {
	if h.Len() == 0 {
		return
	}
	h.display = item
}
