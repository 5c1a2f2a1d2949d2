package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const (
	referralPrefix = "redfox-"
	// maxRandomNameAttempts bounds the random draws before switching to a counter suffix.
	maxRandomNameAttempts = 5
	maxCounterSuffix      = 1000
)

var errUsernameSpaceExhausted = errors.New("could not allocate a unique referral username")

// generateReferralUsername picks an unused referral username inside tx.
// Random names are tried first, then the last name with an increasing counter.
func (s *store) generateReferralUsername(ctx context.Context, tx *sql.Tx) (string, error) {
	var base string
	for i := 0; i < maxRandomNameAttempts; i++ {
		base = referralPrefix + sanitizeName(s.nameSource())
		taken, err := usernameTaken(ctx, tx, base)
		if err != nil {
			return "", err
		}
		if !taken {
			return base, nil
		}
	}

	for n := 2; n <= maxCounterSuffix; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := usernameTaken(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errUsernameSpaceExhausted
}

func usernameTaken(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE referral_username = ?", username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check referral username: %w", err)
	}
	return true, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "blob"
	}
	return b.String()
}
