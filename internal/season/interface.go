package season

import "context"

// SeasonStore defines the persistence operations for seasons.
type SeasonStore interface {
	CreateSeason(ctx context.Context, name string) (*Season, error)
	GetSeason(ctx context.Context, id int64) (*Season, error)
}
