package mapview

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sweetmap/livedata"
)

// SnapshotSource is the part of livedata.Feed a registry needs.
type SnapshotSource interface {
	Snapshot() livedata.Snapshot
	Subscribe(fn func(livedata.Snapshot)) (unsubscribe func())
}

// Registry owns the open map views and pushes every data snapshot to them.
type Registry struct {
	source   SnapshotSource
	radiusPx float64
	logger   *zap.Logger

	mu          sync.RWMutex
	views       map[string]*View
	unsubscribe func()
}

func NewRegistry(source SnapshotSource, radiusPx float64, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		source:   source,
		radiusPx: radiusPx,
		logger:   logger,
		views:    make(map[string]*View),
	}
	r.unsubscribe = source.Subscribe(r.broadcast)
	return r
}

func (r *Registry) broadcast(snap livedata.Snapshot) {
	r.mu.RLock()
	views := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		views = append(views, v)
	}
	r.mu.RUnlock()
	for _, v := range views {
		v.Update(snap)
	}
}

// Create opens a view rendered from the current snapshot. The snapshot is
// read while holding the registry lock, so a broadcast racing Create either
// is already in that snapshot or is delivered to the new view afterwards.
func (r *Registry) Create() *View {
	id := uuid.New().String()
	r.mu.Lock()
	v := newView(id, r.source.Snapshot(), r.radiusPx, r.logger)
	r.views[id] = v
	r.mu.Unlock()
	r.logger.Info("map view opened", zap.String("view_id", id))
	return v
}

func (r *Registry) Get(id string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Delete closes a view. It reports whether the view existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[id]; !ok {
		return false
	}
	delete(r.views, id)
	r.logger.Info("map view closed", zap.String("view_id", id))
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Close stops receiving snapshots.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
