package scoring

import (
	"context"

	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
)

// Scorer is the score write path as seen by transports.
type Scorer interface {
	SubmitScore(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error)
	AddPoints(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error)
	AddReferralPoints(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error)
	Lives(ctx context.Context, playerID, seasonID int64) (attempts.Lives, error)
}

var _ Scorer = (*Service)(nil)
