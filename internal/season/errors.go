package season

import "github.com/mauv0809/whack-a-blob/internal/apperr"

var (
	ErrSeasonNotFound = apperr.NotFound("Season not found")
	ErrInvalidName    = apperr.Validation("Season name must be between 1 and 100 characters")
)
