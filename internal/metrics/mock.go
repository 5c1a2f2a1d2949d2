package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                     sync.Mutex
	scoreSubmissions       map[string]int
	attemptsExhausted      int
	appendConflicts        int
	buildDurations         []float64
	leaderboardCacheHits   int
	leaderboardCacheMisses int
	referralCredits        int
	awardNotifyFailed      int
	slackNotifSent         int
	slackNotifFailed       int
	startupTime            float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		scoreSubmissions: make(map[string]int),
		buildDurations:   make([]float64, 0),
	}
}

func (m *Mock) IncScoreSubmissions(variant string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreSubmissions[variant]++
}

func (m *Mock) IncAttemptsExhausted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attemptsExhausted++
}

func (m *Mock) IncAppendConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendConflicts++
}

func (m *Mock) ObserveLeaderboardBuildDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildDurations = append(m.buildDurations, duration)
}

func (m *Mock) IncLeaderboardCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardCacheHits++
}

func (m *Mock) IncLeaderboardCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardCacheMisses++
}

func (m *Mock) IncReferralCredits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referralCredits++
}

func (m *Mock) IncAwardNotifyFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awardNotifyFailed++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ScoreSubmissions returns how many submissions of variant were counted.
func (m *Mock) ScoreSubmissions(variant string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreSubmissions[variant]
}

func (m *Mock) AttemptsExhausted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attemptsExhausted
}

func (m *Mock) AppendConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendConflicts
}

// LeaderboardBuilds returns the number of observed leaderboard builds.
func (m *Mock) LeaderboardBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buildDurations)
}

func (m *Mock) LeaderboardCacheHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardCacheHits
}

func (m *Mock) LeaderboardCacheMisses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardCacheMisses
}

func (m *Mock) ReferralCredits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.referralCredits
}

func (m *Mock) AwardNotifyFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awardNotifyFailed
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
