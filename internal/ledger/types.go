package ledger

import (
	"database/sql"
	"time"
)

// Source tells which write path produced a score record.
type Source string

const (
	SourceGame     Source = "game"
	SourcePoints   Source = "points"
	SourceReferral Source = "referral"
)

// ScoreRecord is one immutable snapshot of a player's cumulative score in a season.
// Delta is the increment it added on top of the previous version.
type ScoreRecord struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player"`
	SeasonID  int64     `json:"season"`
	Score     int64     `json:"score"`
	Version   int64     `json:"-"`
	Delta     int64     `json:"-"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the latest record of one player in a season, joined with the player's address.
type Snapshot struct {
	RecordID int64
	PlayerID int64
	Address  string
	Score    int64
	// ReachedAt is when the player first reached the current score.
	ReachedAt time.Time
}

type store struct {
	db  *sql.DB
	now func() time.Time
}
