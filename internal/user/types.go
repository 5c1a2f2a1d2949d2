package user

import (
	"database/sql"
	"sync"
	"time"
)

// User is a wallet-authenticated player.
type User struct {
	ID                        int64     `json:"id"`
	Address                   string    `json:"address"`
	ReferralUsername          string    `json:"referral_username"`
	ReferrerUsername          string    `json:"referrer_username,omitempty"`
	ReferralCount             int       `json:"referral_count"`
	LastRewardedReferralCount int       `json:"-"`
	Tasks                     Tasks     `json:"tasks"`
	CreatedAt                 time.Time `json:"-"`
}

// Tasks holds the social task completion flags of a user.
type Tasks struct {
	Twitter   int `json:"twitter_task"`
	Telegram  int `json:"telegram_task"`
	Whitelist int `json:"whitelist_task"`
}

// store handles all database operations for users.
type store struct {
	db         *sql.DB
	mu         sync.Mutex
	nameSource func() string
	now        func() time.Time
}
