package scoring

import (
	"context"

	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
)

// Award describes points added to a player's season score outside the daily game loop.
type Award struct {
	UserID   int64         `json:"user_id" msgpack:"user_id"`
	SeasonID int64         `json:"season_id" msgpack:"season_id"`
	Delta    int64         `json:"delta" msgpack:"delta"`
	RecordID int64         `json:"record_id" msgpack:"record_id"`
	Source   ledger.Source `json:"source" msgpack:"source"`
}

// AwardNotifier is told about every points-only award after it has been stored.
type AwardNotifier interface {
	OnScoreAwarded(ctx context.Context, award Award) error
}

type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context, seasonID int64)
}

type AttemptCounter interface {
	CountAttemptsToday(ctx context.Context, playerID, seasonID int64) (int, error)
}

// Service is the only writer of score state.
type Service struct {
	ledger      ledger.Ledger
	attempts    AttemptCounter
	notifier    AwardNotifier
	invalidator LeaderboardInvalidator
	metrics     metrics.Metrics
	locks       *keyedMutex
}

var _ AttemptCounter = (*attempts.Tracker)(nil)
