package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestStoreDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft StoreDraft
		ok    bool
	}{
		{"complete", StoreDraft{NameJP: "豆花", Lat: ptr(25.03), Lng: ptr(121.56)}, true},
		{"missing name", StoreDraft{Lat: ptr(25.03), Lng: ptr(121.56)}, false},
		{"blank name", StoreDraft{NameJP: "  ", Lat: ptr(25.03), Lng: ptr(121.56)}, false},
		{"missing lat", StoreDraft{NameJP: "豆花", Lng: ptr(121.56)}, false},
		{"missing lng", StoreDraft{NameJP: "豆花", Lat: ptr(25.03)}, false},
		{"zero lat", StoreDraft{NameJP: "豆花", Lat: ptr(0), Lng: ptr(121.56)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMissingRequired)
			}
		})
	}
}

func TestStoreDraftToggleCaps(t *testing.T) {
	var d StoreDraft
	for _, g := range []string{"g1", "g2", "g3", "g4", "g5"} {
		d.ToggleGenre(g)
	}
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, d.Genres)

	d.ToggleGenre("g2")
	assert.Equal(t, []string{"g1", "g3", "g4"}, d.Genres)

	d.ToggleGenre("g5")
	assert.Equal(t, []string{"g1", "g3", "g4", "g5"}, d.Genres)

	d.ToggleImage("a.jpg")
	d.ToggleImage("a.jpg")
	assert.Empty(t, d.Images)
}

func TestStoreDraftSetVideo(t *testing.T) {
	var d StoreDraft
	require.NoError(t, d.SetVideo(2, " https://youtu.be/abc "))
	assert.Equal(t, []string{"", "", "https://youtu.be/abc", ""}, d.Videos)
	assert.Error(t, d.SetVideo(4, "x"))
}

func TestDraftStoreRoundTrip(t *testing.T) {
	s := Store{ID: "s1", NameJP: "芒果冰", Lat: 25.0, Lng: 121.5, Genres: []string{"g1"}}
	d := DraftFromStore(s)
	d.ToggleGenre("g2")

	out := d.Store()
	assert.Equal(t, "s1", out.ID)
	assert.Equal(t, []string{"g1", "g2"}, out.Genres)
	assert.Equal(t, []string{}, out.Images)
	assert.Equal(t, []string{"g1"}, s.Genres, "editing the draft must not touch the source store")
}

func TestVideoID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", VideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10"))
	assert.Equal(t, "dQw4w9WgXcQ", VideoID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "", VideoID(""))
	assert.Equal(t, "", EmbedURL(" "))
	assert.Equal(t, "https://www.youtube.com/embed/abc", EmbedURL("abc"))
}

func TestAppearanceFor(t *testing.T) {
	genres := []Genre{{ID: "g1", IconURL: "🍧", Color: "#B5EAD7"}, {ID: "g2", IconURL: "🍮"}}

	assert.Equal(t, MarkerAppearance{Icon: "🍧", Color: "#B5EAD7"}, AppearanceFor(Store{Genres: []string{"g1", "g2"}}, genres))
	assert.Equal(t, MarkerAppearance{Icon: "🍮", Color: "#ffffff"}, AppearanceFor(Store{Genres: []string{"g2"}}, genres))
	assert.Equal(t, MarkerAppearance{Icon: FallbackMarkerIcon, Color: FallbackMarkerColor}, AppearanceFor(Store{Genres: []string{"gone"}}, genres))
	assert.Equal(t, MarkerAppearance{Icon: FallbackMarkerIcon, Color: FallbackMarkerColor}, AppearanceFor(Store{}, genres))
}

func TestGenreLabelsKeepsDanglingIDs(t *testing.T) {
	genres := []Genre{{ID: "g1", NameJP: "かき氷"}}
	assert.Equal(t, []string{"かき氷", "deleted"}, GenreLabels([]string{"g1", "deleted"}, genres))
}

func TestGenreValidate(t *testing.T) {
	assert.NoError(t, Genre{NameJP: "豆花", IconURL: "🥛", Color: "#fff"}.Validate())
	assert.ErrorIs(t, Genre{NameJP: "豆花", Color: "#fff"}.Validate(), ErrMissingRequired)
}

func TestUserStatsToggle(t *testing.T) {
	u := EmptyStats()
	u = u.Toggle(StatFavorites, "a")
	assert.True(t, u.Has(StatFavorites, "a"))
	assert.False(t, u.Has(StatVisited, "a"))

	u = u.Toggle(StatFavorites, "a")
	assert.False(t, u.Has(StatFavorites, "a"))
	assert.Empty(t, u.Favorites)
}

func TestBoundsOf(t *testing.T) {
	b, ok := BoundsOf([]LatLng{{25, 121}, {22.6, 120.3}, {24.1, 121.6}})
	require.True(t, ok)
	assert.Equal(t, Bounds{South: 22.6, West: 120.3, North: 25, East: 121.6}, b)
	assert.True(t, b.Contains(LatLng{23, 121}))

	_, ok = BoundsOf(nil)
	assert.False(t, ok)
}
