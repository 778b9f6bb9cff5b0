package models

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf returns the smallest box containing every point. ok is false for no points.
func BoundsOf(points []LatLng) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{South: points[0].Lat, North: points[0].Lat, West: points[0].Lng, East: points[0].Lng}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b, true
}

func (b Bounds) Extend(p LatLng) Bounds {
	if p.Lat < b.South {
		b.South = p.Lat
	}
	if p.Lat > b.North {
		b.North = p.Lat
	}
	if p.Lng < b.West {
		b.West = p.Lng
	}
	if p.Lng > b.East {
		b.East = p.Lng
	}
	return b
}

func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Camera is a map viewport.
type Camera struct {
	Center LatLng  `json:"center"`
	Zoom   int     `json:"zoom"`
	Bounds *Bounds `json:"bounds,omitempty"`
}

var (
	// TaiwanCenter is the initial map center.
	TaiwanCenter = LatLng{Lat: 23.6978, Lng: 120.9605}
	DefaultZoom  = 8
	// LocateZoom is used after panning to the user's position.
	LocateZoom = 14
	// PlaceZoom is used after an autocomplete pick.
	PlaceZoom = 17
	MaxZoom   = 20
)

func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
