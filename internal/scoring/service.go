package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
)

const maxAppendRetries = 3

// NewService wires the scoring write path. notifier and invalidator may be nil.
func NewService(l ledger.Ledger, counter AttemptCounter, notifier AwardNotifier, invalidator LeaderboardInvalidator, m metrics.Metrics) *Service {
	return &Service{
		ledger:      l,
		attempts:    counter,
		notifier:    notifier,
		invalidator: invalidator,
		metrics:     m,
		locks:       newKeyedMutex(),
	}
}

// SetNotifier replaces the award notifier. It must be called before the service is used.
func (s *Service) SetNotifier(notifier AwardNotifier) {
	s.notifier = notifier
}

// SubmitScore is the standard game submission. It consumes one of the player's daily
// attempts and does not notify the award notifier.
func (s *Service) SubmitScore(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error) {
	if err := ledger.ValidateDelta(delta); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(playerSeason{playerID, seasonID})
	defer unlock()

	count, err := s.attempts.CountAttemptsToday(ctx, playerID, seasonID)
	if err != nil {
		log.Error("Failed to count attempts", "error", err, "playerID", playerID, "seasonID", seasonID)
		return nil, err
	}
	if err := attempts.Validate(count); err != nil {
		s.metrics.IncAttemptsExhausted()
		log.Info("Rejected score submission, no lives left", "playerID", playerID, "seasonID", seasonID, "attempts", count)
		return nil, err
	}

	record, err := s.append(ctx, playerID, seasonID, delta, ledger.SourceGame)
	if err != nil {
		return nil, err
	}
	log.Info("Score submitted", "playerID", playerID, "seasonID", seasonID, "delta", delta, "score", record.Score, "attempt", count+1)
	return record, nil
}

// AddPoints adds delta without consuming an attempt and notifies the award notifier.
func (s *Service) AddPoints(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error) {
	return s.award(ctx, playerID, seasonID, delta, ledger.SourcePoints)
}

// AddReferralPoints is AddPoints for referral bonuses. Awards from this path never
// produce further referral credit.
func (s *Service) AddReferralPoints(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error) {
	return s.award(ctx, playerID, seasonID, delta, ledger.SourceReferral)
}

// Lives reports the player's attempts for today in the season.
func (s *Service) Lives(ctx context.Context, playerID, seasonID int64) (attempts.Lives, error) {
	count, err := s.attempts.CountAttemptsToday(ctx, playerID, seasonID)
	if err != nil {
		return attempts.Lives{}, err
	}
	return attempts.CalcLives(count), nil
}

func (s *Service) award(ctx context.Context, playerID, seasonID, delta int64, source ledger.Source) (*ledger.ScoreRecord, error) {
	if err := ledger.ValidateDelta(delta); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(playerSeason{playerID, seasonID})
	record, err := s.append(ctx, playerID, seasonID, delta, source)
	unlock()
	if err != nil {
		return nil, err
	}
	log.Info("Points added", "playerID", playerID, "seasonID", seasonID, "delta", delta, "score", record.Score, "source", source)

	if s.notifier != nil {
		award := Award{UserID: playerID, SeasonID: seasonID, Delta: delta, RecordID: record.ID, Source: source}
		// The record is committed; a failed notification must not fail the request.
		if err := s.notifier.OnScoreAwarded(ctx, award); err != nil {
			s.metrics.IncAwardNotifyFailed()
			log.Error("Failed to notify score award", "error", err, "playerID", playerID, "recordID", record.ID)
		}
	}
	return record, nil
}

// append retries version conflicts caused by writers outside this process.
func (s *Service) append(ctx context.Context, playerID, seasonID, delta int64, source ledger.Source) (*ledger.ScoreRecord, error) {
	var lastErr error
	for i := 0; i < maxAppendRetries; i++ {
		record, err := s.ledger.AppendScore(ctx, playerID, seasonID, delta, source)
		if err == nil {
			s.metrics.IncScoreSubmissions(string(source))
			if s.invalidator != nil {
				s.invalidator.Invalidate(ctx, seasonID)
			}
			return record, nil
		}
		if !errors.Is(err, ledger.ErrConcurrentAppend) {
			return nil, err
		}
		s.metrics.IncAppendConflicts()
		log.Warn("Score append conflicted, retrying", "playerID", playerID, "seasonID", seasonID, "try", i+1)
		lastErr = err
	}
	return nil, fmt.Errorf("score append failed after %d tries: %w", maxAppendRetries, lastErr)
}
