package scoring

import (
	"context"
	"sync"
)

// MockNotifier records awards. It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	OnScoreAwardedFunc func(ctx context.Context, award Award) error

	OnScoreAwardedCalls []Award
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) OnScoreAwarded(ctx context.Context, award Award) error {
	m.mu.Lock()
	m.OnScoreAwardedCalls = append(m.OnScoreAwardedCalls, award)
	fn := m.OnScoreAwardedFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, award)
	}
	return nil
}

func (m *MockNotifier) Calls() []Award {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Award(nil), m.OnScoreAwardedCalls...)
}

// MockInvalidator records invalidated seasons.
type MockInvalidator struct {
	mu    sync.Mutex
	Calls []int64
}

func (m *MockInvalidator) Invalidate(ctx context.Context, seasonID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, seasonID)
}
