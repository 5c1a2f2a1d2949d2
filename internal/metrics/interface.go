package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncScoreSubmissions(variant string)
	IncAttemptsExhausted()
	IncAppendConflicts()
	ObserveLeaderboardBuildDuration(duration float64)
	IncLeaderboardCacheHits()
	IncLeaderboardCacheMisses()
	IncReferralCredits()
	IncAwardNotifyFailed()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
