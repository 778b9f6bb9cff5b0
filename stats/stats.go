// Package stats keeps a device's visited and favorite stores in local
// persistent storage.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sweetmap/models"
)

// StorageKey is the key the stats blob lives under.
const StorageKey = "taiwan_sweet_stats"

// ErrNotFound is returned by Storage.Get for a key that was never written.
var ErrNotFound = errors.New("stats: key not found")

// Storage is a small string key/value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store holds UserStats loaded once from Storage. Every toggle writes the
// whole blob back immediately.
type Store struct {
	storage Storage
	logger  *zap.Logger

	mu    sync.Mutex
	stats models.UserStats
}

// Load reads and parses the stored blob. A missing or malformed value is
// logged and yields empty stats.
func Load(ctx context.Context, storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{storage: storage, logger: logger, stats: models.EmptyStats()}

	raw, err := storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to read user stats", zap.Error(err))
		}
		return s
	}
	var parsed models.UserStats
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Warn("failed to parse user stats", zap.Error(err))
		return s
	}
	if parsed.Visited == nil {
		parsed.Visited = []string{}
	}
	if parsed.Favorites == nil {
		parsed.Favorites = []string{}
	}
	s.stats = parsed
	return s
}

// Stats returns a copy of the current state.
func (s *Store) Stats() models.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() models.UserStats {
	return models.UserStats{
		Visited:   append([]string{}, s.stats.Visited...),
		Favorites: append([]string{}, s.stats.Favorites...),
	}
}

// Toggle flips id's membership in the kind's list and persists the result.
// The in-memory state changes even when the write fails; the error is returned.
func (s *Store) Toggle(ctx context.Context, kind models.StatKind, id string) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = s.stats.Toggle(kind, id)

	blob, err := json.Marshal(s.stats)
	if err != nil {
		return s.copyLocked(), fmt.Errorf("encode user stats: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, string(blob)); err != nil {
		s.logger.Error("failed to save user stats", zap.Error(err))
		return s.copyLocked(), err
	}
	return s.copyLocked(), nil
}
