package season

import (
	"context"
	"sync"
)

// Mock is an in-memory SeasonStore for tests. It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	seasons map[int64]*Season
	nextID  int64

	GetSeasonCalls []int64
}

func NewMock() *Mock {
	return &Mock{seasons: make(map[int64]*Season)}
}

func (m *Mock) CreateSeason(ctx context.Context, name string) (*Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		return nil, ErrInvalidName
	}
	m.nextID++
	s := &Season{ID: m.nextID, Name: name}
	m.seasons[s.ID] = s
	return s, nil
}

func (m *Mock) GetSeason(ctx context.Context, id int64) (*Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetSeasonCalls = append(m.GetSeasonCalls, id)
	s, ok := m.seasons[id]
	if !ok {
		return nil, ErrSeasonNotFound
	}
	copied := *s
	return &copied, nil
}
