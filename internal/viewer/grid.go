package viewer

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

type Region int

const (
	RegionSidebar Region = iota
	RegionHero
	RegionRow
)

// Position addresses one focusable element. Row is only meaningful in
// RegionRow; Index is the position within the sidebar, the hero button
// row or the content row.
type Position struct {
	Region Region
	Row    int
	Index  int
}

// Cell is a focusable element and its horizontal extent on screen.
type Cell struct {
	ID    string
	Left  int
	Width int
}

// Grid is the materialized arrangement directional input moves across.
// Hero is empty when the hero section is hidden. Rows never contain an
// empty row.
type Grid struct {
	Sidebar       []Cell
	SidebarActive int
	Hero          []Cell
	Rows          [][]Cell
}

// AddRow appends a content row, dropping it when empty.
func (g *Grid) AddRow(cells []Cell) {
	if len(cells) == 0 {
		return
	}
	g.Rows = append(g.Rows, cells)
}

func (g *Grid) At(p Position) (Cell, bool) {
	cells := g.region(p)
	if p.Index < 0 || p.Index >= len(cells) {
		return Cell{}, false
	}
	return cells[p.Index], true
}

// Find locates the element with the given id.
func (g *Grid) Find(id string) (Position, bool) {
	for i, c := range g.Sidebar {
		if c.ID == id {
			return Position{Region: RegionSidebar, Index: i}, true
		}
	}
	for i, c := range g.Hero {
		if c.ID == id {
			return Position{Region: RegionHero, Index: i}, true
		}
	}
	for r, row := range g.Rows {
		for i, c := range row {
			if c.ID == id {
				return Position{Region: RegionRow, Row: r, Index: i}, true
			}
		}
	}
	return Position{}, false
}

func (g *Grid) activeSidebar() (Position, bool) {
	p := Position{Region: RegionSidebar, Index: g.SidebarActive}
	_, ok := g.At(p)
	return p, ok
}

func (g *Grid) region(p Position) []Cell {
	switch p.Region {
	case RegionSidebar:
		return g.Sidebar
	case RegionHero:
		return g.Hero
	case RegionRow:
		if p.Row >= 0 && p.Row < len(g.Rows) {
			return g.Rows[p.Row]
		}
	}
	return nil
}

// Navigate returns the position directional input d moves to from p. When
// no element lies in that direction, or p is not in the grid, p is
// returned unchanged.
func Navigate(g *Grid, p Position, d Direction) Position {
	current, ok := g.At(p)
	if !ok {
		return p
	}

	switch p.Region {
	case RegionSidebar:
		switch d {
		case Up, Down:
			next := p
			if d == Up {
				next.Index--
			} else {
				next.Index++
			}
			if _, ok := g.At(next); ok {
				return next
			}
		case Right:
			if len(g.Hero) > 0 {
				return Position{Region: RegionHero}
			}
			if len(g.Rows) > 0 {
				return Position{Region: RegionRow}
			}
		}

	case RegionHero, RegionRow:
		switch d {
		case Left:
			if p.Index > 0 {
				p.Index--
				return p
			}
			if side, ok := g.activeSidebar(); ok {
				return side
			}
		case Right:
			next := p
			next.Index++
			if _, ok := g.At(next); ok {
				return next
			}
		case Up:
			if p.Region == RegionRow && p.Row > 0 {
				return Position{Region: RegionRow, Row: p.Row - 1, Index: nearest(g.Rows[p.Row-1], current.Left)}
			}
			if p.Region == RegionRow && len(g.Hero) > 0 {
				return Position{Region: RegionHero, Index: nearest(g.Hero, current.Left)}
			}
		case Down:
			target := p.Row + 1
			if p.Region == RegionHero {
				target = 0
			}
			if target < len(g.Rows) {
				return Position{Region: RegionRow, Row: target, Index: nearest(g.Rows[target], current.Left)}
			}
		}
	}

	return p
}

// nearest picks the cell whose left edge is closest to left. Ties go to
// the first cell in row order.
func nearest(cells []Cell, left int) int {
	best, bestDist := 0, -1
	for i, c := range cells {
		dist := c.Left - left
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}
