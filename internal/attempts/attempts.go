package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/mauv0809/whack-a-blob/internal/apperr"
)

// MaxDailyAttempts is how many standard score submissions a player gets per season per UTC day.
const MaxDailyAttempts = 3

var ErrAttemptsExhausted = apperr.AttemptsExhausted("You don't have any lives left")

// Counter counts score records in a half-open time range.
type Counter interface {
	CountRecordsBetween(ctx context.Context, playerID, seasonID int64, from, to time.Time) (int, error)
}

// Lives reports a player's attempts for the current day.
type Lives struct {
	CurrentAttempts int `json:"current_attempts"`
	LivesLeft       int `json:"lives_left"`
}

// Tracker answers attempt questions for the current UTC day.
type Tracker struct {
	counter Counter
	now     func() time.Time
}

func NewTracker(counter Counter) *Tracker {
	return NewTrackerWithClock(counter, time.Now)
}

func NewTrackerWithClock(counter Counter, now func() time.Time) *Tracker {
	return &Tracker{counter: counter, now: now}
}

// DayBounds returns the start of the UTC calendar day containing t and the start of the next one.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// CountAttemptsToday counts the records the player created in the season today.
func (t *Tracker) CountAttemptsToday(ctx context.Context, playerID, seasonID int64) (int, error) {
	from, to := DayBounds(t.now())
	count, err := t.counter.CountRecordsBetween(ctx, playerID, seasonID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// Validate fails with ErrAttemptsExhausted once count reaches MaxDailyAttempts.
func Validate(count int) error {
	if count >= MaxDailyAttempts {
		return ErrAttemptsExhausted
	}
	return nil
}

func CalcLives(count int) Lives {
	return Lives{CurrentAttempts: count, LivesLeft: max(MaxDailyAttempts-count, 0)}
}
