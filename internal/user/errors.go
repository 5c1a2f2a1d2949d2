package user

import "github.com/mauv0809/whack-a-blob/internal/apperr"

var (
	ErrUserNotFound      = apperr.NotFound("User does not exist")
	ErrReferralNotFound  = apperr.NotFound("Referral does not exist")
	ErrReferrerNotFound  = apperr.NotFound("Referrer does not exist")
	ErrAlreadyReferred   = apperr.Validation("Referral already has a referrer")
	ErrSelfReferral      = apperr.Validation("A user cannot refer themselves")
	ErrInvalidAddress    = apperr.Validation("Invalid wallet address")
	ErrInvalidTaskStatus = apperr.Validation("Task values must be 0 or 1")
)
