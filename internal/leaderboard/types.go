package leaderboard

import (
	"context"

	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/season"
)

// Entry is one ranked row of a season scoreboard.
type Entry struct {
	Player   string `json:"player" msgpack:"player"`
	Score    int64  `json:"score" msgpack:"score"`
	Season   string `json:"season" msgpack:"season"`
	Position int    `json:"position" msgpack:"position"`
}

// Source provides the latest snapshot of every player in a season.
type Source interface {
	LatestSnapshots(ctx context.Context, seasonID int64) ([]ledger.Snapshot, error)
}

type SeasonLookup interface {
	GetSeason(ctx context.Context, id int64) (*season.Season, error)
}

// Cache stores built leaderboards per season. A miss is reported with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, seasonID int64) (entries []Entry, ok bool, err error)
	Set(ctx context.Context, seasonID int64, entries []Entry) error
	Delete(ctx context.Context, seasonID int64) error
}
