package referral

import (
	"context"
	"time"

	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

// Credit is a share of a referral's award booked for the referrer.
type Credit struct {
	ID             int64
	ReferrerID     int64
	ReferralID     int64
	SeasonID       int64
	SourceRecordID int64
	Points         int64
	CreatedAt      time.Time
}

// Profile is the public view of a user with referral totals.
type Profile struct {
	Address          string `json:"address"`
	ReferralUsername string `json:"referral_username"`
	ReferrerUsername string `json:"referrer_username"`
	ReferralCount    int    `json:"referral_count"`
	ReferralPoints   int64  `json:"referral_points"`
}

// CreditStore persists referral credits.
type CreditStore interface {
	// Record stores c. It reports false when a credit for the same source record already exists.
	Record(ctx context.Context, c Credit) (bool, error)
	TotalForReferrer(ctx context.Context, referrerID int64) (int64, error)
}

// PointsAdder adds referral bonus points to a player's score.
type PointsAdder interface {
	AddReferralPoints(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error)
}

// RecordReader loads score records by id.
type RecordReader interface {
	GetRecord(ctx context.Context, recordID int64) (*ledger.ScoreRecord, error)
}

type SeasonLookup interface {
	GetSeason(ctx context.Context, id int64) (*season.Season, error)
}

// Ledger handles referral linking and referral rewards.
type Ledger struct {
	users   user.UserStore
	credits CreditStore
	records RecordReader
	points  PointsAdder
	seasons SeasonLookup
	metrics metrics.Metrics
	cfg     config.ReferralConfig
}
