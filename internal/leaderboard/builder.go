package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Builder computes season leaderboards from the score ledger.
// Concurrent builds of the same season share one ledger query.
type Builder struct {
	source  Source
	seasons SeasonLookup
	cache   Cache
	metrics metrics.Metrics
	group   singleflight.Group

	// mu guards generations, bumped by every Invalidate of a season.
	mu          sync.Mutex
	generations map[int64]uint64
}

// NewBuilder creates a Builder. cache may be nil, in which case every call reads the ledger.
func NewBuilder(source Source, seasons SeasonLookup, cache Cache, m metrics.Metrics) *Builder {
	return &Builder{source: source, seasons: seasons, cache: cache, metrics: m, generations: make(map[int64]uint64)}
}

func (b *Builder) generation(seasonID int64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generations[seasonID]
}

func (b *Builder) Build(ctx context.Context, seasonID int64) ([]Entry, error) {
	s, err := b.seasons.GetSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		entries, ok, err := b.cache.Get(ctx, seasonID)
		if err != nil {
			log.Warn("Leaderboard cache read failed", "error", err, "seasonID", seasonID)
		} else if ok {
			b.metrics.IncLeaderboardCacheHits()
			return entries, nil
		}
		b.metrics.IncLeaderboardCacheMisses()
	}

	key := strconv.FormatInt(seasonID, 10)
	ch := b.group.DoChan(key, func() (interface{}, error) {
		// Shared by every waiting caller, so one caller going away must not fail the others.
		buildCtx := context.WithoutCancel(ctx)
		gen := b.generation(seasonID)
		start := time.Now()
		snapshots, err := b.source.LatestSnapshots(buildCtx, seasonID)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshots for season %d: %w", seasonID, err)
		}
		entries := Rank(snapshots, s.Name)
		b.metrics.ObserveLeaderboardBuildDuration(time.Since(start).Seconds())

		if b.cache != nil {
			b.storeIfCurrent(buildCtx, seasonID, gen, entries)
		}
		return entries, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	entries := res.Val.([]Entry)
	log.Debug("Built leaderboard", "seasonID", seasonID, "players", len(entries), "shared", res.Shared)
	return entries, nil
}

// storeIfCurrent caches entries unless the season was invalidated since generation gen was read.
// The check and the write happen under mu, so a concurrent Invalidate either skips the write or
// deletes it afterwards.
func (b *Builder) storeIfCurrent(ctx context.Context, seasonID int64, gen uint64, entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generations[seasonID] != gen {
		log.Debug("Skipping cache write of stale leaderboard", "seasonID", seasonID)
		return
	}
	if err := b.cache.Set(ctx, seasonID, entries); err != nil {
		log.Warn("Leaderboard cache write failed", "error", err, "seasonID", seasonID)
	}
}

// Invalidate drops the cached leaderboard of a season after its scores changed.
func (b *Builder) Invalidate(ctx context.Context, seasonID int64) {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	b.generations[seasonID]++
	b.mu.Unlock()
	b.group.Forget(strconv.FormatInt(seasonID, 10))

	if err := b.cache.Delete(ctx, seasonID); err != nil {
		log.Warn("Leaderboard cache invalidation failed", "error", err, "seasonID", seasonID)
	}
}

// PlayerEntry builds the season leaderboard and returns the entry of address.
func (b *Builder) PlayerEntry(ctx context.Context, seasonID int64, address string) (*Entry, error) {
	entries, err := b.Build(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return FindPlayer(entries, address)
}
