package season

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const maxNameLength = 100

// New creates a new SeasonStore.
func New(db *sql.DB) SeasonStore {
	return &store{
		db:  db,
		now: time.Now,
	}
}

// CreateSeason inserts a new season with the given display name.
func (s *store) CreateSeason(ctx context.Context, name string) (*Season, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	createdAt := s.now().UTC()
	res, err := s.db.ExecContext(ctx, "INSERT INTO seasons (name, created_at) VALUES (?, ?)", name, createdAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to insert season: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read season id: %w", err)
	}

	log.Info("Created season", "seasonID", id, "name", name)
	return &Season{ID: id, Name: name, CreatedAt: createdAt}, nil
}

// GetSeason returns the season with the given id or ErrSeasonNotFound.
func (s *store) GetSeason(ctx context.Context, id int64) (*Season, error) {
	var season Season
	var createdAt int64
	err := s.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM seasons WHERE id = ?", id).
		Scan(&season.ID, &season.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to query season: %w", err)
	}
	season.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &season, nil
}
