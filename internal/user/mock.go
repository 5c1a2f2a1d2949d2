package user

import (
	"context"
	"strings"
	"sync"
)

// MockStore is a mock implementation of the UserStore interface for testing.
// It keeps users in memory and is safe for concurrent use.
type MockStore struct {
	mu     sync.Mutex
	users  map[int64]*User
	nextID int64

	GetOrCreateFunc  func(ctx context.Context, address string) (*User, bool, error)
	LinkReferralFunc func(ctx context.Context, referralAddress, referrerUsername string) error

	// Call records
	GetOrCreateCalls  []string
	LinkReferralCalls []struct {
		ReferralAddress  string
		ReferrerUsername string
	}
	ClaimReferralRewardsCalls []int64
	UpdateTasksCalls          []struct {
		UserID int64
		Tasks  Tasks
	}
}

func NewMock() *MockStore {
	return &MockStore{users: make(map[int64]*User)}
}

// Add stores u, assigning an id when it has none, and returns the stored copy.
func (m *MockStore) Add(u User) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	u.Address = strings.ToLower(u.Address)
	m.users[u.ID] = &u
	copied := u
	return &copied
}

func (m *MockStore) GetOrCreate(ctx context.Context, address string) (*User, bool, error) {
	m.mu.Lock()
	m.GetOrCreateCalls = append(m.GetOrCreateCalls, address)
	fn := m.GetOrCreateFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, address)
	}

	normalized, err := NormalizeAddress(address)
	if err != nil {
		return nil, false, err
	}
	if u, err := m.GetByAddress(ctx, normalized); err == nil {
		return u, false, nil
	}
	return m.Add(User{Address: normalized, ReferralUsername: "redfox-" + normalized[2:8]}), true, nil
}

func (m *MockStore) GetByAddress(ctx context.Context, address string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Address, address) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockStore) GetByID(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockStore) GetByReferralUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ReferralUsername == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockStore) LinkReferral(ctx context.Context, referralAddress, referrerUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkReferralCalls = append(m.LinkReferralCalls, struct {
		ReferralAddress  string
		ReferrerUsername string
	}{referralAddress, referrerUsername})
	if m.LinkReferralFunc != nil {
		return m.LinkReferralFunc(ctx, referralAddress, referrerUsername)
	}

	var referral, referrer *User
	for _, u := range m.users {
		if strings.EqualFold(u.Address, referralAddress) {
			referral = u
		}
		if u.ReferralUsername == referrerUsername {
			referrer = u
		}
	}
	switch {
	case referral == nil:
		return ErrReferralNotFound
	case referral.ReferrerUsername != "":
		return ErrAlreadyReferred
	case referral.ReferralUsername == referrerUsername:
		return ErrSelfReferral
	case referrer == nil:
		return ErrReferrerNotFound
	}
	referral.ReferrerUsername = referrerUsername
	referrer.ReferralCount++
	return nil
}

func (m *MockStore) ClaimReferralRewards(ctx context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimReferralRewardsCalls = append(m.ClaimReferralRewardsCalls, userID)
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	pending := u.ReferralCount - u.LastRewardedReferralCount
	if pending <= 0 {
		return 0, nil
	}
	u.LastRewardedReferralCount = u.ReferralCount
	return pending, nil
}

func (m *MockStore) UpdateTasks(ctx context.Context, userID int64, tasks Tasks) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateTasksCalls = append(m.UpdateTasksCalls, struct {
		UserID int64
		Tasks  Tasks
	}{userID, tasks})
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tasks = tasks
	return nil
}
