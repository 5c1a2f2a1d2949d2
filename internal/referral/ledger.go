package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

var _ scoring.AwardNotifier = (*Ledger)(nil)

// NewLedger creates a referral Ledger. points is usually the scoring service and records
// the score ledger it writes to.
func NewLedger(users user.UserStore, credits CreditStore, records RecordReader, points PointsAdder, seasons SeasonLookup, m metrics.Metrics, cfg config.ReferralConfig) *Ledger {
	return &Ledger{users: users, credits: credits, records: records, points: points, seasons: seasons, metrics: m, cfg: cfg}
}

// OnScoreAwarded books BonusPercent of a points-only award for the player's referrer.
// The award is checked against the score record it names and the credit is computed from
// that record, so only the record id of the message is trusted.
// Redelivery of the same award books nothing new.
func (l *Ledger) OnScoreAwarded(ctx context.Context, award scoring.Award) error {
	if award.Source == ledger.SourceReferral {
		return nil
	}
	record, err := l.records.GetRecord(ctx, award.RecordID)
	if errors.Is(err, ledger.ErrRecordNotFound) {
		log.Warn("Rejected score award for unknown record", "recordID", award.RecordID, "userID", award.UserID)
		return ErrAwardMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to load awarded record %d: %w", award.RecordID, err)
	}
	if record.PlayerID != award.UserID || record.SeasonID != award.SeasonID || record.Source != ledger.SourcePoints {
		log.Warn("Rejected score award that does not match its record", "recordID", record.ID,
			"userID", award.UserID, "recordPlayerID", record.PlayerID,
			"seasonID", award.SeasonID, "recordSeasonID", record.SeasonID, "source", record.Source)
		return ErrAwardMismatch
	}
	if award.Delta != record.Delta {
		log.Warn("Score award delta differs from its record, using the record", "recordID", record.ID,
			"delta", award.Delta, "recordDelta", record.Delta)
	}

	points := record.Delta * l.cfg.BonusPercent / 100
	if points <= 0 {
		return nil
	}

	referral, err := l.users.GetByID(ctx, record.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to load awarded user %d: %w", record.PlayerID, err)
	}
	if referral.ReferrerUsername == "" {
		return nil
	}
	referrer, err := l.users.GetByReferralUsername(ctx, referral.ReferrerUsername)
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn("Referrer of awarded user no longer exists", "userID", referral.ID, "referrer", referral.ReferrerUsername)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load referrer %s: %w", referral.ReferrerUsername, err)
	}

	recorded, err := l.credits.Record(ctx, Credit{
		ReferrerID:     referrer.ID,
		ReferralID:     referral.ID,
		SeasonID:       record.SeasonID,
		SourceRecordID: record.ID,
		Points:         points,
	})
	if err != nil {
		return err
	}
	if !recorded {
		log.Debug("Referral credit already booked", "recordID", record.ID)
		return nil
	}
	l.metrics.IncReferralCredits()
	log.Info("Booked referral credit", "referrerID", referrer.ID, "referralID", referral.ID, "points", points, "recordID", record.ID)
	return nil
}

// SaveReferral links the user at referralAddress to the referrer. Only the referral
// itself or an admin may do so.
func (l *Ledger) SaveReferral(ctx context.Context, session *identity.Session, referralAddress, referrerUsername string) error {
	if !session.IsAdmin() && !strings.EqualFold(session.Address, strings.TrimSpace(referralAddress)) {
		return ErrNotReferralOwner
	}
	return l.users.LinkReferral(ctx, referralAddress, strings.TrimSpace(referrerUsername))
}

// CreditSignupBonus pays SignupBonus points for every referral u gained since the last payout.
// The bonus season must exist before anything is claimed. The payout is then claimed before
// the points are added, so a failed add is not retried.
func (l *Ledger) CreditSignupBonus(ctx context.Context, u *user.User) (int64, error) {
	if _, err := l.seasons.GetSeason(ctx, l.cfg.SeasonID); err != nil {
		return 0, fmt.Errorf("failed to load referral season %d: %w", l.cfg.SeasonID, err)
	}
	pending, err := l.users.ClaimReferralRewards(ctx, u.ID)
	if err != nil {
		return 0, err
	}
	if pending == 0 {
		return 0, nil
	}

	points := int64(pending) * l.cfg.SignupBonus
	if _, err := l.points.AddReferralPoints(ctx, u.ID, l.cfg.SeasonID, points); err != nil {
		return 0, fmt.Errorf("failed to add referral bonus of %d points: %w", points, err)
	}
	log.Info("Credited referral signup bonus", "userID", u.ID, "referrals", pending, "points", points)
	return points, nil
}

// Profile returns the profile of the user at address.
func (l *Ledger) Profile(ctx context.Context, address string) (*Profile, error) {
	u, err := l.users.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	total, err := l.credits.TotalForReferrer(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Address:          u.Address,
		ReferralUsername: u.ReferralUsername,
		ReferrerUsername: u.ReferrerUsername,
		ReferralCount:    u.ReferralCount,
		ReferralPoints:   total,
	}, nil
}
