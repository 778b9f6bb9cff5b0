// Package markers keeps a clustering overlay's marker set in step with the
// list of stores being displayed.
package markers

import "sweetmap/models"

// Marker is the handle the rendering layer creates for one store.
type Marker struct {
	StoreID    string                  `json:"storeId"`
	Position   models.LatLng           `json:"position"`
	Appearance models.MarkerAppearance `json:"appearance"`
	Title      string                  `json:"title"`
	Favorite   bool                    `json:"favorite"`
	Visited    bool                    `json:"visited"`
}

// NewMarker binds a marker to the store's current coordinates.
func NewMarker(s models.Store, genres []models.Genre) *Marker {
	m := &Marker{StoreID: s.ID}
	m.Bind(s, genres)
	return m
}

// Bind refreshes the marker from the store record.
func (m *Marker) Bind(s models.Store, genres []models.Genre) {
	m.Position = models.LatLng{Lat: s.Lat, Lng: s.Lng}
	m.Appearance = models.AppearanceFor(s, genres)
	m.Title = s.NameJP
}

// Overlay is the active marker set of a clustering layer.
type Overlay interface {
	Add(m *Marker)
	Remove(m *Marker)
	Clear()
	Handles() []*Marker
}
