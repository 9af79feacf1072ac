package viewer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func titled(titles ...string) []Item {
	items := make([]Item, len(titles))
	for i, title := range titles {
		items[i] = Item{ID: title, Title: title}
	}
	return items
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	s := NewSnapshot(titled("Dune: Part Two", "The Creator", "dunes of mars"))

	rows := Search(s, "  dune ")
	want := []Row{{
		Title: `Results for "dune"`,
		Items: []Item{{ID: "Dune: Part Two", Title: "Dune: Part Two"}, {ID: "dunes of mars", Title: "dunes of mars"}},
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("search rows mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, Search(s, "alien"))
	assert.Empty(t, Search(s, "   "))
}

func TestHomeRows_GroupsByFirstSeenCategory(t *testing.T) {
	s := NewSnapshot([]Item{
		{ID: "1", Category: "movies"},
		{ID: "2", Category: "tv"},
		{ID: "3", Category: "movies"},
		{ID: "4", Category: "other"},
	})

	want := []Row{
		{Title: "Trending in Movies", Items: []Item{{ID: "1", Category: "movies"}, {ID: "3", Category: "movies"}}},
		{Title: "Trending in Tv", Items: []Item{{ID: "2", Category: "tv"}}},
		{Title: "Trending in Other", Items: []Item{{ID: "4", Category: "other"}}},
	}
	if diff := cmp.Diff(want, HomeRows(s)); diff != "" {
		t.Errorf("home rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryRows(t *testing.T) {
	s := NewSnapshot([]Item{{ID: "1", Category: "movies"}, {ID: "2", Category: "tv"}})

	rows := CategoryRows(s, "tv")
	assert.Len(t, rows, 1)
	assert.Equal(t, "Trending in Tv", rows[0].Title)
	assert.Empty(t, CategoryRows(s, "docs"))
}

func TestSnapshot(t *testing.T) {
	items := []Item{
		{ID: "1", Featured: true},
		{ID: "2"},
		{ID: "3", Featured: true},
		{ID: "4", Featured: true},
	}
	s := NewSnapshot(items)
	items[0].Title = "changed"

	got, ok := s.Lookup("1")
	assert.True(t, ok)
	assert.Empty(t, got.Title)

	featured := s.Featured(2)
	assert.Len(t, featured, 2)
	assert.Equal(t, "3", featured[1].ID)

	var nilSnap *Snapshot
	assert.Equal(t, 0, nilSnap.Len())
	assert.Empty(t, HomeRows(nilSnap))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Movies", CategoryLabel("movies"))
	assert.Equal(t, "Élan", CategoryLabel("élan"))
	assert.Equal(t, "", CategoryLabel(""))
	assert.Equal(t, "TV shows", CategoryLabel("tV shows"))
}
