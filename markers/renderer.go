package markers

import (
	"sweetmap/filter"
	"sweetmap/models"
)

// Renderer plays the rendering layer: it turns each new eligible-store list
// into resync, unmount and mount notifications for a Synchronizer.
type Renderer struct {
	sync     *Synchronizer
	rendered map[string]bool
}

func NewRenderer(sync *Synchronizer) *Renderer {
	return &Renderer{sync: sync, rendered: make(map[string]bool)}
}

// Render settles the overlay on stores. The resync for the new list comes
// first, then markers of dropped stores unmount and new stores mount.
// Markers of stores that remain are re-bound to the current record.
func (r *Renderer) Render(stores []models.Store, genres []models.Genre) {
	ids := filter.IDs(stores)
	r.sync.Resync(ids)

	next := make(map[string]bool, len(stores))
	for _, id := range ids {
		next[id] = true
	}
	for id := range r.rendered {
		if !next[id] {
			r.sync.Unmount(id)
		}
	}

	for _, s := range stores {
		if m, ok := r.sync.Handle(s.ID); ok && r.rendered[s.ID] {
			m.Bind(s, genres)
			continue
		}
		r.sync.Mount(s.ID, NewMarker(s, genres))
	}
	r.rendered = next
}
