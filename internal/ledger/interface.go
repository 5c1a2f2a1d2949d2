package ledger

import (
	"context"
	"time"
)

// Ledger is the append-only store of score records.
type Ledger interface {
	// LatestScore returns the current cumulative score, or 0 when the player has no record yet.
	LatestScore(ctx context.Context, playerID, seasonID int64) (int64, error)
	// AppendScore adds delta on top of the latest score and stores the result as a new record.
	// It returns ErrConcurrentAppend when another append for the same pair committed first.
	AppendScore(ctx context.Context, playerID, seasonID, delta int64, source Source) (*ScoreRecord, error)
	// CountRecordsBetween counts records created in [from, to).
	CountRecordsBetween(ctx context.Context, playerID, seasonID int64, from, to time.Time) (int, error)
	// GetRecord returns the record with the given id, with Delta set to its increment over the
	// previous version. It returns ErrRecordNotFound for unknown ids.
	GetRecord(ctx context.Context, recordID int64) (*ScoreRecord, error)
	LatestSnapshots(ctx context.Context, seasonID int64) ([]Snapshot, error)
}
