package models

import "strings"

const (
	FallbackMarkerIcon  = "🍡"
	FallbackMarkerColor = "#FFB6C1"
)

type Genre struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	NameJP string `json:"nameJP" bson:"nameJP"`
	NameCH string `json:"nameCH" bson:"nameCH"`
	// IconURL holds a glyph such as an emoji, not a URL.
	IconURL string `json:"iconUrl" bson:"iconUrl"`
	Color   string `json:"color" bson:"color"`
}

func (g Genre) Validate() error {
	if strings.TrimSpace(g.NameJP) == "" || strings.TrimSpace(g.IconURL) == "" || strings.TrimSpace(g.Color) == "" {
		return ErrMissingRequired
	}
	return nil
}

// MarkerAppearance is the icon and background color a store's marker is drawn with.
type MarkerAppearance struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// AppearanceFor picks the look of the store's first genre. Unknown genre ids
// and untagged stores fall back to the default dango marker.
func AppearanceFor(s Store, genres []Genre) MarkerAppearance {
	if len(s.Genres) > 0 {
		for _, g := range genres {
			if g.ID != s.Genres[0] {
				continue
			}
			color := g.Color
			if color == "" {
				color = "#ffffff"
			}
			return MarkerAppearance{Icon: g.IconURL, Color: color}
		}
	}
	return MarkerAppearance{Icon: FallbackMarkerIcon, Color: FallbackMarkerColor}
}

// GenreLabels resolves genre ids to their Japanese names. Ids without a
// matching genre are returned as-is.
func GenreLabels(ids []string, genres []Genre) []string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		label := id
		for _, g := range genres {
			if g.ID == id {
				label = g.NameJP
				break
			}
		}
		labels = append(labels, label)
	}
	return labels
}
