package handlers

import (
	"context"
	"encoding/json"

	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/referral"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

// Leaderboards serves ranked season scoreboards.
type Leaderboards interface {
	Build(ctx context.Context, seasonID int64) ([]leaderboard.Entry, error)
	PlayerEntry(ctx context.Context, seasonID int64, address string) (*leaderboard.Entry, error)
}

// Referrals is the referral bookkeeping used by the user endpoints.
type Referrals interface {
	SaveReferral(ctx context.Context, session *identity.Session, referralAddress, referrerUsername string) error
	CreditSignupBonus(ctx context.Context, u *user.User) (int64, error)
	Profile(ctx context.Context, address string) (*referral.Profile, error)
}

// MessageDecoder decodes the payload of a pushed pubsub message.
type MessageDecoder interface {
	ProcessMessage(data []byte, returnValue any) error
}

var (
	_ Leaderboards = (*leaderboard.Builder)(nil)
	_ Referrals    = (*referral.Ledger)(nil)
)

type loginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type saveReferralRequest struct {
	ReferralAddress  string `json:"referral_address"`
	ReferrerUsername string `json:"referrer_username"`
}

type viewProfileRequest struct {
	Address string `json:"address"`
}

type createSeasonRequest struct {
	Season string `json:"season"`
}

type seasonRequest struct {
	Season json.Number `json:"season"`
}

type scoreRequest struct {
	Season json.Number `json:"season"`
	Score  json.Number `json:"score"`
}

// pushMessage is the envelope of a pubsub push delivery.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"`
	} `json:"message"`
}
