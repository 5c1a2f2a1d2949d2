package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
)

const userColumns = `id, address, COALESCE(referral_username, ''), COALESCE(referrer_username, ''),
	referral_count, last_rewarded_referral_count, twitter_task, telegram_task, whitelist_task, created_at`

// New creates a new UserStore. Referral usernames are drawn from gofakeit first names.
func New(db *sql.DB) UserStore {
	faker := gofakeit.New(0)
	return NewWithNameSource(db, faker.FirstName)
}

// NewWithNameSource creates a UserStore with a custom name source for referral usernames.
func NewWithNameSource(db *sql.DB, nameSource func() string) UserStore {
	return &store{
		db:         db,
		nameSource: nameSource,
		now:        time.Now,
	}
}

func (s *store) GetOrCreate(ctx context.Context, address string) (*User, bool, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return nil, false, err
	}

	// Serialises username generation; the faker source is not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.GetByAddress(ctx, address)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	username, err := s.generateReferralUsername(ctx, tx)
	if err != nil {
		return nil, false, err
	}

	createdAt := s.now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (address, referral_username, created_at) VALUES (?, ?, ?)",
		address, username, createdAt.UnixMilli())
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read user id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit user: %w", err)
	}

	log.Info("Created user", "userID", id, "address", address, "referralUsername", username)
	return &User{ID: id, Address: address, ReferralUsername: username, CreatedAt: createdAt}, true, nil
}

func (s *store) GetByAddress(ctx context.Context, address string) (*User, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE address = ?", address)
	return scanUser(row)
}

func (s *store) GetByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *store) GetByReferralUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE referral_username = ?", username)
	return scanUser(row)
}

func (s *store) LinkReferral(ctx context.Context, referralAddress, referrerUsername string) error {
	referralAddress, err := NormalizeAddress(referralAddress)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var referralID int64
	var referralUsername, currentReferrer sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT id, referral_username, referrer_username FROM users WHERE address = ?", referralAddress).
		Scan(&referralID, &referralUsername, &currentReferrer)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReferralNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load referral: %w", err)
	}
	if currentReferrer.Valid && currentReferrer.String != "" {
		return ErrAlreadyReferred
	}
	if referralUsername.Valid && referralUsername.String == referrerUsername {
		return ErrSelfReferral
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET referral_count = referral_count + 1 WHERE referral_username = ?", referrerUsername)
	if err != nil {
		return fmt.Errorf("failed to update referrer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReferrerNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET referrer_username = ? WHERE id = ?", referrerUsername, referralID); err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit referral: %w", err)
	}
	log.Info("Linked referral", "referral", referralAddress, "referrer", referrerUsername)
	return nil
}

func (s *store) ClaimReferralRewards(ctx context.Context, userID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count, rewarded int
	err = tx.QueryRowContext(ctx,
		"SELECT referral_count, last_rewarded_referral_count FROM users WHERE id = ?", userID).
		Scan(&count, &rewarded)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load referral counts: %w", err)
	}
	if count <= rewarded {
		return 0, nil
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET last_rewarded_referral_count = ? WHERE id = ? AND last_rewarded_referral_count = ?",
		count, userID, rewarded)
	if err != nil {
		return 0, fmt.Errorf("failed to advance rewarded referrals: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Another claim won the race.
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit referral claim: %w", err)
	}
	return count - rewarded, nil
}

func (s *store) UpdateTasks(ctx context.Context, userID int64, tasks Tasks) error {
	for _, v := range []int{tasks.Twitter, tasks.Telegram, tasks.Whitelist} {
		if v != 0 && v != 1 {
			return ErrInvalidTaskStatus
		}
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET twitter_task = ?, telegram_task = ?, whitelist_task = ? WHERE id = ?",
		tasks.Twitter, tasks.Telegram, tasks.Whitelist, userID)
	if err != nil {
		return fmt.Errorf("failed to update tasks: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Address, &u.ReferralUsername, &u.ReferrerUsername,
		&u.ReferralCount, &u.LastRewardedReferralCount,
		&u.Tasks.Twitter, &u.Tasks.Telegram, &u.Tasks.Whitelist, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}
