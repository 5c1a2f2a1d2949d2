package user

import "context"

// UserStore defines the persistence operations for wallet users.
type UserStore interface {
	// GetOrCreate returns the user for address, creating it with a fresh referral
	// username when absent. The bool reports whether the user was created.
	GetOrCreate(ctx context.Context, address string) (*User, bool, error)
	GetByAddress(ctx context.Context, address string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByReferralUsername(ctx context.Context, username string) (*User, error)
	// LinkReferral records referrerUsername as the referrer of the user at
	// referralAddress and increments the referrer's referral count atomically.
	LinkReferral(ctx context.Context, referralAddress, referrerUsername string) error
	// ClaimReferralRewards advances last_rewarded_referral_count to referral_count
	// and returns how many referrals were not yet rewarded.
	ClaimReferralRewards(ctx context.Context, userID int64) (int, error)
	UpdateTasks(ctx context.Context, userID int64, tasks Tasks) error
}
