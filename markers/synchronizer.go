package markers

import (
	"sort"

	"go.uber.org/zap"
)

// Synchronizer owns the store id to marker registry and is the only writer of
// the overlay's active set. It is not safe for concurrent use; callers
// serialize mount, unmount and resync notifications.
type Synchronizer struct {
	overlay Overlay
	handles map[string]*Marker
	logger  *zap.Logger
}

func NewSynchronizer(overlay Overlay, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		overlay: overlay,
		handles: make(map[string]*Marker),
		logger:  logger,
	}
}

// Mount registers the marker for storeID and makes it active. A marker
// already registered under the same id is replaced.
func (s *Synchronizer) Mount(storeID string, m *Marker) {
	if prev, ok := s.handles[storeID]; ok && prev != m {
		s.overlay.Remove(prev)
	}
	s.handles[storeID] = m
	s.overlay.Add(m)
	s.logger.Debug("marker mounted", zap.String("store_id", storeID))
}

// Unmount removes the store's marker from the overlay and forgets it.
func (s *Synchronizer) Unmount(storeID string) {
	m, ok := s.handles[storeID]
	if !ok {
		return
	}
	s.overlay.Remove(m)
	delete(s.handles, storeID)
	s.logger.Debug("marker unmounted", zap.String("store_id", storeID))
}

// Resync rebuilds the overlay from scratch with the known markers of ids.
// Ids whose marker has not mounted yet are skipped; their Mount adds them.
func (s *Synchronizer) Resync(ids []string) {
	s.overlay.Clear()
	added := 0
	for _, id := range ids {
		if m, ok := s.handles[id]; ok {
			s.overlay.Add(m)
			added++
		}
	}
	s.logger.Debug("overlay resynced", zap.Int("eligible", len(ids)), zap.Int("active", added))
}

// Handle returns the registered marker for storeID.
func (s *Synchronizer) Handle(storeID string) (*Marker, bool) {
	m, ok := s.handles[storeID]
	return m, ok
}

// Registered lists the ids with a mounted marker, sorted.
func (s *Synchronizer) Registered() []string {
	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Active lists the store ids of markers currently in the overlay, sorted.
func (s *Synchronizer) Active() []string {
	hs := s.overlay.Handles()
	ids := make([]string, 0, len(hs))
	for _, m := range hs {
		ids = append(ids, m.StoreID)
	}
	sort.Strings(ids)
	return ids
}
