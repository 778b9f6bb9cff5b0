package markers

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"sweetmap/models"
)

const (
	tileSize            = 256.0
	earthRadius         = 6378137.0
	DefaultRadiusPx     = 60.0
	DefaultViewportW    = 1024
	DefaultViewportH    = 768
	fitPaddingPx        = 40
	minClusterSize      = 2
	clusterIDSeparator  = "@"
	clusterIDPrefix     = "cluster:"
	singleMarkerIDLabel = "marker:"
)

// Cluster is either a single marker or an aggregate of markers that fall
// within the clustering radius at some zoom.
type Cluster struct {
	ID       string        `json:"id"`
	Count    int           `json:"count"`
	Position models.LatLng `json:"position"`
	Bounds   models.Bounds `json:"bounds"`
	StoreIDs []string      `json:"storeIds"`
	Marker   *Marker       `json:"marker,omitempty"`
}

func (c Cluster) Aggregate() bool { return c.Count >= minClusterSize }

// Clusterer is an Overlay that groups its active markers by pixel distance.
// Clicking an aggregate fits the viewport to the bounds of its members.
type Clusterer struct {
	active    map[*Marker]struct{}
	radiusPx  float64
	viewportW int
	viewportH int
}

func NewClusterer(radiusPx float64) *Clusterer {
	if radiusPx <= 0 {
		radiusPx = DefaultRadiusPx
	}
	return &Clusterer{
		active:    make(map[*Marker]struct{}),
		radiusPx:  radiusPx,
		viewportW: DefaultViewportW,
		viewportH: DefaultViewportH,
	}
}

// SetViewport sets the pixel size used by ClickCluster to fit bounds.
func (c *Clusterer) SetViewport(w, h int) {
	if w > 0 {
		c.viewportW = w
	}
	if h > 0 {
		c.viewportH = h
	}
}

func (c *Clusterer) Add(m *Marker)    { c.active[m] = struct{}{} }
func (c *Clusterer) Remove(m *Marker) { delete(c.active, m) }
func (c *Clusterer) Clear()           { c.active = make(map[*Marker]struct{}) }

func (c *Clusterer) Handles() []*Marker {
	out := make([]*Marker, 0, len(c.active))
	for m := range c.active {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreID < out[j].StoreID })
	return out
}

// Clusters groups the active markers at zoom. Each unassigned marker, taken
// in store id order, seeds a group with every unassigned marker closer than
// the radius in pixels.
func (c *Clusterer) Clusters(zoom int) []Cluster {
	handles := c.Handles()
	type projected struct {
		m        *Marker
		px, py   float64
		assigned bool
	}
	points := make([]projected, len(handles))
	for i, m := range handles {
		px, py := latLngToPixel(m.Position.Lat, m.Position.Lng, zoom)
		points[i] = projected{m: m, px: px, py: py}
	}

	var out []Cluster
	for i := range points {
		if points[i].assigned {
			continue
		}
		points[i].assigned = true
		members := []*Marker{points[i].m}
		for j := i + 1; j < len(points); j++ {
			if points[j].assigned {
				continue
			}
			if math.Hypot(points[i].px-points[j].px, points[i].py-points[j].py) < c.radiusPx {
				points[j].assigned = true
				members = append(members, points[j].m)
			}
		}
		out = append(out, newCluster(members, zoom))
	}
	return out
}

func newCluster(members []*Marker, zoom int) Cluster {
	pts := make([]models.LatLng, len(members))
	ids := make([]string, len(members))
	var sumLat, sumLng float64
	for i, m := range members {
		pts[i] = m.Position
		ids[i] = m.StoreID
		sumLat += m.Position.Lat
		sumLng += m.Position.Lng
	}
	bounds, _ := models.BoundsOf(pts)
	n := float64(len(members))
	cl := Cluster{
		Count:    len(members),
		Position: models.LatLng{Lat: sumLat / n, Lng: sumLng / n},
		Bounds:   bounds,
		StoreIDs: ids,
	}
	if len(members) == 1 {
		cl.ID = singleMarkerIDLabel + ids[0]
		cl.Marker = members[0]
		cl.Position = members[0].Position
	} else {
		cl.ID = fmt.Sprintf("%s%s%s%d", clusterIDPrefix, ids[0], clusterIDSeparator, zoom)
	}
	return cl
}

// ErrClusterNotFound is returned by ClickCluster for an id not present at zoom.
var ErrClusterNotFound = errors.New("cluster not found")

// ClickCluster resolves a click on an aggregate into the camera that fits all
// of its members. Clicking a single marker centers on it without zooming.
func (c *Clusterer) ClickCluster(clusterID string, zoom int) (models.Camera, error) {
	for _, cl := range c.Clusters(zoom) {
		if cl.ID != clusterID {
			continue
		}
		if !cl.Aggregate() {
			return models.Camera{Center: cl.Position, Zoom: zoom}, nil
		}
		b := cl.Bounds
		return models.Camera{
			Center: b.Center(),
			Zoom:   c.fitZoom(b),
			Bounds: &b,
		}, nil
	}
	return models.Camera{}, ErrClusterNotFound
}

// fitZoom is the largest zoom at which b fits in the padded viewport.
func (c *Clusterer) fitZoom(b models.Bounds) int {
	w := float64(c.viewportW - 2*fitPaddingPx)
	h := float64(c.viewportH - 2*fitPaddingPx)
	for z := models.MaxZoom; z > 0; z-- {
		x1, y1 := latLngToPixel(b.North, b.West, z)
		x2, y2 := latLngToPixel(b.South, b.East, z)
		if math.Abs(x2-x1) <= w && math.Abs(y2-y1) <= h {
			return z
		}
	}
	return 0
}

func latLngToWebMercator(lat, lng float64) (x, y float64) {
	const originShift = math.Pi * earthRadius
	x = lng * originShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return x, y
}

func webMercatorToPixel(x, y float64, zoom int) (px, py float64) {
	const circumference = 2 * math.Pi * earthRadius
	scale := math.Exp2(float64(zoom))
	px = (x + circumference/2) / circumference * tileSize * scale
	py = (circumference/2 - y) / circumference * tileSize * scale
	return px, py
}

func latLngToPixel(lat, lng float64, zoom int) (px, py float64) {
	x, y := latLngToWebMercator(lat, lng)
	return webMercatorToPixel(x, y, zoom)
}
