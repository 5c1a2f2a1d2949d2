package referral

import "github.com/mauv0809/whack-a-blob/internal/apperr"

var (
	ErrNotReferralOwner = apperr.Forbidden("You can only save your own referrer")

	// ErrAwardMismatch is returned for awards that name no points record of the awarded player.
	ErrAwardMismatch = apperr.Validation("Score award does not match its record")
)
