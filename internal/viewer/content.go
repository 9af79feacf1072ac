package viewer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is one catalog entry as the viewer sees it.
type Item struct {
	ID          string
	Title       string
	Category    string
	Description string
	Thumbnail   string
	VideoURL    string
	Featured    bool
	Source      string
}

// Snapshot is the full content list fetched at startup. It is replaced
// wholesale on re-fetch and never mutated.
type Snapshot struct {
	items []Item
}

func NewSnapshot(items []Item) *Snapshot {
	return &Snapshot{items: append([]Item(nil), items...)}
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the snapshot contents in fetch order.
func (s *Snapshot) Items() []Item {
	if s == nil {
		return nil
	}
	return append([]Item(nil), s.items...)
}

func (s *Snapshot) Lookup(id string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Categories lists the distinct categories in first-seen order.
func (s *Snapshot) Categories() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, item := range s.items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

// Featured returns up to limit featured items, preserving order.
func (s *Snapshot) Featured(limit int) []Item {
	if s == nil {
		return nil
	}
	var out []Item
	for _, item := range s.items {
		if len(out) == limit {
			break
		}
		if item.Featured {
			out = append(out, item)
		}
	}
	return out
}

// Row is a titled horizontal group of items.
type Row struct {
	Title string
	Items []Item
}

// CategoryLabel upper-cases the first letter of a category.
func CategoryLabel(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + category[size:]
}

// HomeRows builds one row per category in first-seen order.
func HomeRows(s *Snapshot) []Row {
	var rows []Row
	for _, category := range s.Categories() {
		rows = append(rows, CategoryRows(s, category)...)
	}
	return rows
}

// CategoryRows builds the single row for category, or none if it has no items.
func CategoryRows(s *Snapshot, category string) []Row {
	var items []Item
	for _, item := range s.Items() {
		if item.Category == category {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return []Row{{Title: "Trending in " + CategoryLabel(category), Items: items}}
}

// Search matches titles containing query, ignoring case. The result is a
// single row, or none when nothing matches.
func Search(s *Snapshot, query string) []Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)

	var items []Item
	for _, item := range s.Items() {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return []Row{{Title: fmt.Sprintf("Results for %q", query), Items: items}}
}
