package ledger

import (
	"errors"

	"github.com/mauv0809/whack-a-blob/internal/apperr"
)

var (
	ErrInvalidDelta  = apperr.Validation("Invalid value provided for score")
	ErrScoreOverflow = apperr.Validation("Score is too large")

	ErrRecordNotFound = apperr.NotFound("Score record not found")

	// ErrConcurrentAppend is returned when the version slot was taken by a concurrent append.
	ErrConcurrentAppend = errors.New("concurrent score append")
)
