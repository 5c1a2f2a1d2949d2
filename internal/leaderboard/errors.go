package leaderboard

import "github.com/mauv0809/whack-a-blob/internal/apperr"

var ErrPlayerNotFound = apperr.NotFound("user not found")
