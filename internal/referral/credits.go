package referral

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mauv0809/whack-a-blob/internal/database"
)

type creditStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewCreditStore creates a CreditStore backed by the referral_credits table.
func NewCreditStore(db *sql.DB) CreditStore {
	return &creditStore{db: db, now: time.Now}
}

func (s *creditStore) Record(ctx context.Context, c Credit) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO referral_credits (referrer_id, referral_id, season_id, source_record_id, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ReferrerID, c.ReferralID, c.SeasonID, c.SourceRecordID, c.Points, s.now().UTC().UnixMilli())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record referral credit: %w", err)
	}
	return true, nil
}

func (s *creditStore) TotalForReferrer(ctx context.Context, referrerID int64) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(points), 0) FROM referral_credits WHERE referrer_id = ?", referrerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum referral credits: %w", err)
	}
	return total, nil
}
