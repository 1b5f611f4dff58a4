package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pauljones0/rental-board/internal/models"
)

// DefaultFetchTimeout bounds one shared refresh, retries included.
const DefaultFetchTimeout = 2 * time.Minute

// ErrNotLoaded is the snapshot error before the first refresh completes.
var ErrNotLoaded = errors.New("listings feed not loaded yet")

// Fetcher loads one complete feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Listing, error)
}

// Snapshot is one immutable feed read. A failed read carries Err and no listings.
type Snapshot struct {
	Listings  []models.Listing
	FetchedAt time.Time
	Err       error
}

// Loaded reports whether the snapshot came from a successful read.
func (s *Snapshot) Loaded() bool {
	return s != nil && s.Err == nil
}

// Find returns the listing with the given id.
func (s *Snapshot) Find(id string) (models.Listing, bool) {
	id = strings.TrimSpace(id)
	for _, l := range s.Listings {
		if l.ID.Trimmed() == id {
			return l, true
		}
	}
	return models.Listing{}, false
}

// Cache holds the current snapshot. Each refresh replaces it wholesale;
// concurrent refreshes share a single fetch.
type Cache struct {
	fetcher      Fetcher
	fetchTimeout time.Duration
	current      atomic.Pointer[Snapshot]
	group        singleflight.Group
	now          func() time.Time
	logger       *slog.Logger
}

func NewCache(f Fetcher, logger *slog.Logger) *Cache {
	c := &Cache{fetcher: f, fetchTimeout: DefaultFetchTimeout, now: time.Now, logger: logger}
	c.current.Store(&Snapshot{Err: ErrNotLoaded})
	return c
}

// Current returns the latest snapshot. Callers must not modify it.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

// Refresh reads the feed and installs the result, successful or not.
//
// The shared fetch runs detached from ctx, bounded by the fetch timeout, so a
// caller that goes away neither cancels it for the other waiters nor replaces
// the snapshot. Such a caller gets the current snapshot and ctx.Err().
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan("feed", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return c.load(fetchCtx), nil
	})

	select {
	case <-ctx.Done():
		return c.Current(), ctx.Err()
	case res := <-ch:
		snap := res.Val.(*Snapshot)
		return snap, snap.Err
	}
}

func (c *Cache) load(ctx context.Context) *Snapshot {
	listings, err := c.fetcher.Fetch(ctx)
	if errors.Is(err, context.Canceled) {
		// Not a feed failure; keep serving what we have.
		c.logger.Warn("Listings feed refresh canceled", "error", err)
		return c.Current()
	}
	snap := &Snapshot{Listings: listings, FetchedAt: c.now(), Err: err}
	if err != nil {
		snap.Listings = nil
		c.logger.Error("Listings feed refresh failed", "error", err)
	} else {
		c.logger.Info("Listings feed refreshed", "count", len(listings))
	}
	c.current.Store(snap)
	return snap
}

// Run refreshes the feed every interval until ctx is cancelled.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	c.logger.Info("Feed refresher started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Feed refresher stopped")
			return nil
		case <-ticker.C:
			_, _ = c.Refresh(ctx)
		}
	}
}
