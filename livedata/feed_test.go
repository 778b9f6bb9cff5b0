package livedata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"sweetmap/models"
)

type push[T any] struct {
	list []T
	ack  chan struct{}
}

// fakeSource hands each pushed list to the feed and waits until it has been
// applied, so tests observe the feed only after a snapshot is settled.
type fakeSource struct {
	stores    chan push[models.Store]
	genres    chan push[models.Genre]
	storesErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{stores: make(chan push[models.Store]), genres: make(chan push[models.Genre])}
}

func (f *fakeSource) pushStores(list []models.Store) {
	ack := make(chan struct{})
	f.stores <- push[models.Store]{list: list, ack: ack}
	<-ack
}

func (f *fakeSource) pushGenres(list []models.Genre) {
	ack := make(chan struct{})
	f.genres <- push[models.Genre]{list: list, ack: ack}
	<-ack
}

func (f *fakeSource) WatchStores(ctx context.Context, emit func([]models.Store)) error {
	if f.storesErr != nil {
		return f.storesErr
	}
	return drain(ctx, f.stores, emit)
}

func (f *fakeSource) WatchGenres(ctx context.Context, emit func([]models.Genre)) error {
	return drain(ctx, f.genres, emit)
}

func drain[T any](ctx context.Context, ch chan push[T], emit func([]T)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-ch:
			emit(p.list)
			close(p.ack)
		}
	}
}

func runFeed(t *testing.T, src Source) (*Feed, func()) {
	t.Helper()
	feed := NewFeed(src, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()
	return feed, func() {
		cancel()
		<-done
	}
}

func TestFeedReadyAfterFirstStoresSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	feed, stop := runFeed(t, src)
	defer stop()

	assert.False(t, feed.Ready())

	src.pushGenres([]models.Genre{{ID: "g1"}})
	assert.False(t, feed.Ready(), "genres alone do not make the feed ready")

	src.pushStores([]models.Store{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, feed.WaitReady(ctx))
	assert.True(t, feed.Ready())
	assert.Empty(t, feed.Stores())
	assert.Len(t, feed.Genres(), 1)
}

func TestFeedReplacesWholeList(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	feed, stop := runFeed(t, src)
	defer stop()

	src.pushStores([]models.Store{{ID: "a"}, {ID: "b"}})
	src.pushStores([]models.Store{{ID: "b"}})

	got := feed.Stores()
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, []string{}, got[0].Genres, "records are normalized")

	_, ok := feed.Store("a")
	assert.False(t, ok)
}

func TestFeedSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	feed, stop := runFeed(t, src)
	defer stop()

	var mu sync.Mutex
	var seen []int
	unsubscribe := feed.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, len(s.Stores))
		mu.Unlock()
	})

	src.pushStores([]models.Store{{ID: "a"}})
	src.pushStores([]models.Store{{ID: "a"}, {ID: "b"}})
	unsubscribe()
	src.pushStores([]models.Store{})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestFeedFailedSubscriptionNeverReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	src.storesErr = errors.New("permission denied")
	feed, stop := runFeed(t, src)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, feed.WaitReady(ctx), context.DeadlineExceeded)
	assert.False(t, feed.Ready())
}

func TestFeedDeliversSnapshotsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newFakeSource()
	feed, stop := runFeed(t, src)
	defer stop()

	blocked := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var delivered []Snapshot
	feed.Subscribe(func(s Snapshot) {
		if len(s.Stores) == 0 && len(s.Genres) == 1 {
			close(blocked)
			<-release
		}
		mu.Lock()
		delivered = append(delivered, s)
		mu.Unlock()
	})

	genresDone := make(chan struct{})
	go func() {
		src.pushGenres([]models.Genre{{ID: "g1"}})
		close(genresDone)
	}()
	<-blocked

	// the stores watcher races the delivery still held by the subscriber
	storesDone := make(chan struct{})
	go func() {
		src.pushStores([]models.Store{{ID: "a"}})
		close(storesDone)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-genresDone
	<-storesDone

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 2)
	assert.Less(t, delivered[0].Version, delivered[1].Version)
	last := delivered[1]
	assert.Len(t, last.Stores, 1)
	assert.Len(t, last.Genres, 1)
	assert.Equal(t, feed.Snapshot().Version, last.Version)
}
