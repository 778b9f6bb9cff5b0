package markers

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sweetmap/filter"
	"sweetmap/models"
)

func TestSynchronizerMountUnmount(t *testing.T) {
	overlay := NewClusterer(0)
	s := NewSynchronizer(overlay, zap.NewNop())

	a := &Marker{StoreID: "a"}
	b := &Marker{StoreID: "b"}
	s.Mount("a", a)
	s.Mount("b", b)
	assert.Equal(t, []string{"a", "b"}, s.Active())

	s.Unmount("a")
	assert.Equal(t, []string{"b"}, s.Active())
	assert.Equal(t, []string{"b"}, s.Registered())

	s.Unmount("missing")
	assert.Equal(t, []string{"b"}, s.Active())
}

func TestSynchronizerMountReplacesHandle(t *testing.T) {
	overlay := NewClusterer(0)
	s := NewSynchronizer(overlay, nil)

	old := &Marker{StoreID: "a"}
	fresh := &Marker{StoreID: "a"}
	s.Mount("a", old)
	s.Mount("a", fresh)

	require.Len(t, overlay.Handles(), 1)
	assert.Same(t, fresh, overlay.Handles()[0])
}

func TestSynchronizerResyncSkipsUnmounted(t *testing.T) {
	overlay := NewClusterer(0)
	s := NewSynchronizer(overlay, nil)
	s.Mount("a", &Marker{StoreID: "a"})
	s.Mount("b", &Marker{StoreID: "b"})

	s.Resync([]string{"b", "c"})
	assert.Equal(t, []string{"b"}, s.Active())

	s.Mount("c", &Marker{StoreID: "c"})
	assert.Equal(t, []string{"b", "c"}, s.Active())
}

type notification struct {
	mount  bool
	handle *Marker
}

// renderSim models a rendering layer whose per-store mount and unmount
// notifications arrive late and interleaved across stores, but in order for
// any single store.
type renderSim struct {
	sync     *Synchronizer
	rendered map[string]bool
	pending  map[string][]notification
}

func (r *renderSim) change(eligible []models.Store) {
	ids := filter.IDs(eligible)
	r.sync.Resync(ids)
	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		next[id] = true
		if !r.rendered[id] {
			r.pending[id] = append(r.pending[id], notification{mount: true, handle: &Marker{StoreID: id}})
		}
	}
	for id := range r.rendered {
		if !next[id] {
			r.pending[id] = append(r.pending[id], notification{})
		}
	}
	r.rendered = next
}

func (r *renderSim) deliverSome(rng *rand.Rand) {
	for id, queue := range r.pending {
		if len(queue) == 0 || rng.Intn(2) == 0 {
			continue
		}
		r.deliver(id)
	}
}

func (r *renderSim) deliver(id string) {
	n := r.pending[id][0]
	r.pending[id] = r.pending[id][1:]
	if n.mount {
		r.sync.Mount(id, n.handle)
	} else {
		r.sync.Unmount(id)
	}
}

func (r *renderSim) settle() {
	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for len(r.pending[id]) > 0 {
			r.deliver(id)
		}
	}
}

func TestSynchronizerConvergesUnderRandomChanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	genres := []string{"g1", "g2", "g3"}

	for round := 0; round < 50; round++ {
		overlay := NewClusterer(0)
		sim := &renderSim{
			sync:     NewSynchronizer(overlay, zap.NewNop()),
			rendered: map[string]bool{},
			pending:  map[string][]notification{},
		}
		source := map[string]models.Store{}
		var selected []string
		nextID := 0

		for step := 0; step < 40; step++ {
			switch rng.Intn(3) {
			case 0:
				id := fmt.Sprintf("s%d", nextID)
				nextID++
				s := models.Store{ID: id, Lat: 22 + rng.Float64()*3, Lng: 120 + rng.Float64()*2}
				if rng.Intn(4) > 0 {
					s.Genres = []string{genres[rng.Intn(len(genres))]}
				}
				source[id] = s
			case 1:
				for id := range source {
					delete(source, id)
					break
				}
			case 2:
				selected = nil
				for _, g := range genres {
					if rng.Intn(2) == 0 {
						selected = append(selected, g)
					}
				}
			}

			eligible := filter.ByGenres(sortedStores(source), selected)
			sim.change(eligible)
			sim.deliverSome(rng)

			if rng.Intn(4) == 0 {
				sim.settle()
				want := filter.IDs(eligible)
				sort.Strings(want)
				assert.Equal(t, want, sim.sync.Active(), "round %d step %d", round, step)
				assert.Equal(t, want, sim.sync.Registered(), "round %d step %d", round, step)
			}
		}

		sim.settle()
		want := filter.IDs(filter.ByGenres(sortedStores(source), selected))
		sort.Strings(want)
		assert.Equal(t, want, sim.sync.Active(), "round %d final", round)
	}
}

func sortedStores(m map[string]models.Store) []models.Store {
	out := make([]models.Store, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func TestRendererSettlesOnEachList(t *testing.T) {
	overlay := NewClusterer(0)
	s := NewSynchronizer(overlay, nil)
	r := NewRenderer(s)

	stores := []models.Store{
		{ID: "a", Lat: 25.03, Lng: 121.56, Genres: []string{"g1"}},
		{ID: "b", Lat: 22.62, Lng: 120.30, Genres: []string{"g2"}},
		{ID: "c", Lat: 24.15, Lng: 120.67},
	}
	r.Render(stores, nil)
	assert.Equal(t, []string{"a", "b", "c"}, s.Active())

	r.Render(filter.ByGenres(stores, []string{"g1"}), nil)
	assert.Equal(t, []string{"a", "c"}, s.Active())
	assert.Equal(t, []string{"a", "c"}, s.Registered())

	moved := stores[0]
	moved.Lat = 25.10
	r.Render([]models.Store{moved, stores[1]}, nil)
	assert.Equal(t, []string{"a", "b"}, s.Active())
	m, ok := s.Handle("a")
	require.True(t, ok)
	assert.Equal(t, 25.10, m.Position.Lat)
}
