package notifier

import (
	"sync"

	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/season"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendSeasonCreatedFunc func(s *season.Season, dryRun bool) error

	// Call records
	SendSeasonCreatedCalls []*season.Season
	SendLeaderboardCalls   []struct {
		SeasonName string
		Entries    []leaderboard.Entry
	}
	FormatUsageResponseCalls []string

	LastLeaderboardResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSeasonCreatedCalls = nil
	m.SendLeaderboardCalls = nil
	m.FormatUsageResponseCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendSeasonCreated(s *season.Season, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSeasonCreatedCalls = append(m.SendSeasonCreatedCalls, s)
	if m.SendSeasonCreatedFunc != nil {
		return m.SendSeasonCreatedFunc(s, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(seasonName string, entries []leaderboard.Entry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		SeasonName string
		Entries    []leaderboard.Entry
	}{seasonName, entries})
	return nil
}

func (m *Mock) FormatLeaderboardResponse(seasonName string, entries []leaderboard.Entry) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastLeaderboardResponse = entries
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatUsageResponse(message string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatUsageResponseCalls = append(m.FormatUsageResponseCalls, message)
	return "formatted_usage", nil
}
