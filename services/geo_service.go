package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sweetmap/livedata"
	"sweetmap/models"
)

const (
	GeoKey        = "stores:geo"
	geoStagingKey = "stores:geo:staging"
	maxNearby     = 50
	// Redis GEO cannot index latitudes beyond this.
	maxGeoLat = 85.05112878
)

// StoreLookup resolves store ids from the live snapshot.
type StoreLookup interface {
	Store(id string) (models.Store, bool)
}

// SnapshotFeed delivers every change of the store list.
type SnapshotFeed interface {
	Subscribe(fn func(livedata.Snapshot)) (unsubscribe func())
}

type NearbyStore struct {
	Store      models.Store `json:"store"`
	DistanceKm float64      `json:"distanceKm"`
}

type geoEntry struct {
	id       string
	lat, lng float64
}

// GeoService keeps a Redis GEO index of store coordinates in step with the
// live feed and answers radius queries from it. Rebuilds are serialized
// because they share the staging key.
type GeoService struct {
	redis  redis.Cmdable
	stores StoreLookup
	logger *zap.Logger

	mu      sync.Mutex
	indexed []geoEntry
	built   bool
}

func NewGeoService(client redis.Cmdable, stores StoreLookup, logger *zap.Logger) *GeoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoService{redis: client, stores: stores, logger: logger}
}

// Rebuild replaces the index with the given stores. The new set is staged
// under a separate key and renamed over the live one.
func (s *GeoService) Rebuild(ctx context.Context, stores []models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx, s.entries(stores))
}

// syncIndex rebuilds only when the indexed ids or coordinates changed since
// the last successful rebuild.
func (s *GeoService) syncIndex(ctx context.Context, stores []models.Store) (rebuilt bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.entries(stores)
	if s.built && slices.Equal(entries, s.indexed) {
		return false, nil
	}
	return true, s.rebuildLocked(ctx, entries)
}

func (s *GeoService) entries(stores []models.Store) []geoEntry {
	entries := make([]geoEntry, 0, len(stores))
	for _, st := range stores {
		if !models.ValidCoordinates(st.Lat, st.Lng) || st.Lat > maxGeoLat || st.Lat < -maxGeoLat {
			s.logger.Warn("skipping store with invalid coordinates", zap.String("store_id", st.ID))
			continue
		}
		entries = append(entries, geoEntry{id: st.ID, lat: st.Lat, lng: st.Lng})
	}
	return entries
}

func (s *GeoService) rebuildLocked(ctx context.Context, entries []geoEntry) error {
	s.built = false
	if len(entries) == 0 {
		if err := s.redis.Del(ctx, GeoKey).Err(); err != nil {
			return err
		}
		s.indexed, s.built = entries, true
		return nil
	}
	locations := make([]*redis.GeoLocation, len(entries))
	for i, e := range entries {
		locations[i] = &redis.GeoLocation{Name: e.id, Longitude: e.lng, Latitude: e.lat}
	}
	if err := s.redis.Del(ctx, geoStagingKey).Err(); err != nil {
		return err
	}
	if err := s.redis.GeoAdd(ctx, geoStagingKey, locations...).Err(); err != nil {
		s.logger.Error("failed to stage geo index", zap.Error(err))
		return err
	}
	if err := s.redis.Rename(ctx, geoStagingKey, GeoKey).Err(); err != nil {
		s.logger.Error("failed to swap geo index", zap.Error(err))
		return err
	}
	s.indexed, s.built = entries, true
	s.logger.Debug("geo index rebuilt", zap.Int("stores", len(entries)))
	return nil
}

// Follow keeps the index on the feed until unsubscribed. Snapshots that
// leave every store where it was, such as genre edits, cost nothing.
func (s *GeoService) Follow(feed SnapshotFeed) (unsubscribe func()) {
	return feed.Subscribe(func(snap livedata.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.syncIndex(ctx, snap.Stores); err != nil {
			s.logger.Error("geo index rebuild failed", zap.Error(err))
		}
	})
}

// Nearby returns stores within radiusKm of the point, closest first.
func (s *GeoService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyStore, error) {
	geoResults, err := s.redis.GeoRadius(ctx, GeoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
		Count:    maxNearby,
	}).Result()
	if err != nil {
		s.logger.Error("redis GeoRadius failed", zap.Error(err))
		return nil, err
	}

	results := make([]NearbyStore, 0, len(geoResults))
	for _, r := range geoResults {
		st, ok := s.stores.Store(r.Name)
		if !ok {
			// index is rebuilt asynchronously and may briefly lag the feed
			continue
		}
		results = append(results, NearbyStore{Store: st, DistanceKm: r.Dist})
	}
	return results, nil
}
