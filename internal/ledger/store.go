package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/database"
	"github.com/mauv0809/whack-a-blob/internal/season"
)

// New creates a new Ledger backed by db.
func New(db *sql.DB) Ledger {
	return NewWithClock(db, time.Now)
}

// NewWithClock creates a Ledger that stamps records using now.
func NewWithClock(db *sql.DB, now func() time.Time) Ledger {
	return &store{db: db, now: now}
}

func (s *store) LatestScore(ctx context.Context, playerID, seasonID int64) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx,
		"SELECT score FROM score_records WHERE player_id = ? AND season_id = ? ORDER BY version DESC LIMIT 1",
		playerID, seasonID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest score: %w", err)
	}
	return score, nil
}

func (s *store) AppendScore(ctx context.Context, playerID, seasonID, delta int64, source Source) (*ScoreRecord, error) {
	if err := ValidateDelta(delta); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM seasons WHERE id = ?", seasonID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, season.ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check season: %w", err)
	}

	var latest, version int64
	err = tx.QueryRowContext(ctx,
		"SELECT score, version FROM score_records WHERE player_id = ? AND season_id = ? ORDER BY version DESC LIMIT 1",
		playerID, seasonID).Scan(&latest, &version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query latest score: %w", err)
	}

	score, err := addScore(latest, delta)
	if err != nil {
		return nil, err
	}

	record := &ScoreRecord{
		PlayerID:  playerID,
		SeasonID:  seasonID,
		Score:     score,
		Version:   version + 1,
		Delta:     delta,
		Source:    source,
		CreatedAt: s.now().UTC(),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO score_records (player_id, season_id, score, version, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.PlayerID, record.SeasonID, record.Score, record.Version, string(record.Source), record.CreatedAt.UnixMilli())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConcurrentAppend
		}
		return nil, fmt.Errorf("failed to insert score record: %w", err)
	}
	if record.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read score record id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConcurrentAppend
		}
		return nil, fmt.Errorf("failed to commit score record: %w", err)
	}

	log.Debug("Appended score record", "playerID", playerID, "seasonID", seasonID,
		"delta", delta, "score", score, "version", record.Version, "source", source)
	return record, nil
}

func (s *store) CountRecordsBetween(ctx context.Context, playerID, seasonID int64, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM score_records
		WHERE player_id = ? AND season_id = ? AND created_at >= ? AND created_at < ?`,
		playerID, seasonID, from.UnixMilli(), to.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count score records: %w", err)
	}
	return count, nil
}

func (s *store) GetRecord(ctx context.Context, recordID int64) (*ScoreRecord, error) {
	var r ScoreRecord
	var source string
	var createdAt, previous int64
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.player_id, r.season_id, r.score, r.version, r.source, r.created_at,
			COALESCE((SELECT p.score FROM score_records p
				WHERE p.player_id = r.player_id AND p.season_id = r.season_id AND p.version = r.version - 1), 0)
		FROM score_records r
		WHERE r.id = ?`, recordID).Scan(&r.ID, &r.PlayerID, &r.SeasonID, &r.Score, &r.Version, &source, &createdAt, &previous)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query score record %d: %w", recordID, err)
	}
	r.Source = Source(source)
	r.Delta = r.Score - previous
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}

// LatestSnapshots returns the latest record of every player with at least one record in the season.
func (s *store) LatestSnapshots(ctx context.Context, seasonID int64) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.player_id, u.address, r.score,
			(SELECT MIN(p.created_at) FROM score_records p
				WHERE p.player_id = r.player_id AND p.season_id = r.season_id AND p.score = r.score)
		FROM score_records r
		JOIN users u ON u.id = r.player_id
		WHERE r.season_id = ?
			AND r.version = (SELECT MAX(v.version) FROM score_records v
				WHERE v.player_id = r.player_id AND v.season_id = r.season_id)
		ORDER BY r.player_id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var reachedAt int64
		if err := rows.Scan(&snap.RecordID, &snap.PlayerID, &snap.Address, &snap.Score, &reachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.ReachedAt = time.UnixMilli(reachedAt).UTC()
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}
