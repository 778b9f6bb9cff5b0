// Package livedata mirrors the live stores and genres collections in memory.
package livedata

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"sweetmap/models"
)

// Snapshot is the full state of both collections after a change. Version
// grows by one with every change, so a subscriber can drop a snapshot older
// than the one it holds.
type Snapshot struct {
	Version uint64
	Stores  []models.Store
	Genres  []models.Genre
}

// Source pushes the complete contents of a collection every time it changes.
// Watch calls block until ctx is done or the subscription fails.
type Source interface {
	WatchStores(ctx context.Context, emit func([]models.Store)) error
	WatchGenres(ctx context.Context, emit func([]models.Genre)) error
}

// Feed is a read-only projection of the source. Each notification replaces
// the whole list. Ready turns true with the first stores snapshot and stays
// false forever if that subscription fails.
type Feed struct {
	source Source
	logger *zap.Logger

	// publishMu orders every change with its delivery, so subscribers see
	// snapshots in version order.
	publishMu sync.Mutex

	mu      sync.RWMutex
	version uint64
	stores  []models.Store
	genres  []models.Genre
	ready   bool
	readyCh chan struct{}
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewFeed(source Source, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		source:  source,
		logger:  logger,
		stores:  []models.Store{},
		genres:  []models.Genre{},
		readyCh: make(chan struct{}),
		subs:    make(map[int]func(Snapshot)),
	}
}

// Run subscribes to both collections and blocks until ctx is cancelled and
// both subscriptions have returned. Failures are logged, never retried.
func (f *Feed) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := f.source.WatchStores(ctx, f.setStores); err != nil && ctx.Err() == nil {
			f.logger.Error("stores subscription failed", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := f.source.WatchGenres(ctx, f.setGenres); err != nil && ctx.Err() == nil {
			f.logger.Error("genres subscription failed", zap.Error(err))
		}
	}()
	wg.Wait()
}

func (f *Feed) setStores(stores []models.Store) {
	list := make([]models.Store, len(stores))
	for i, s := range stores {
		list[i] = s.Normalize()
	}
	f.apply(func() {
		f.stores = list
		if !f.ready {
			f.ready = true
			close(f.readyCh)
		}
	})
	f.logger.Debug("stores snapshot", zap.Int("count", len(list)))
}

func (f *Feed) setGenres(genres []models.Genre) {
	list := append([]models.Genre{}, genres...)
	f.apply(func() { f.genres = list })
	f.logger.Debug("genres snapshot", zap.Int("count", len(list)))
}

// apply runs change under the state lock, bumps the version and delivers the
// resulting snapshot before the next change can start.
func (f *Feed) apply(change func()) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()

	f.mu.Lock()
	change()
	f.version++
	snap := f.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe registers fn for every future snapshot. The returned func removes it.
func (f *Feed) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Snapshot copies the current lists.
func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

func (f *Feed) snapshotLocked() Snapshot {
	return Snapshot{
		Version: f.version,
		Stores:  append([]models.Store{}, f.stores...),
		Genres:  append([]models.Genre{}, f.genres...),
	}
}

func (f *Feed) Stores() []models.Store { return f.Snapshot().Stores }

func (f *Feed) Genres() []models.Genre { return f.Snapshot().Genres }

// Store looks up one store by id in the current snapshot.
func (f *Feed) Store(id string) (models.Store, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.stores {
		if s.ID == id {
			return s, true
		}
	}
	return models.Store{}, false
}

func (f *Feed) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ready
}

// WaitReady blocks until the first stores snapshot or ctx is done.
func (f *Feed) WaitReady(ctx context.Context) error {
	select {
	case <-f.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
