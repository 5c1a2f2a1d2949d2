package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	ScoreSubmissions         *prometheus.CounterVec
	AttemptsExhausted        prometheus.Counter
	AppendConflicts          prometheus.Counter
	LeaderboardBuildDuration prometheus.Histogram
	LeaderboardCacheHits     prometheus.Counter
	LeaderboardCacheMisses   prometheus.Counter
	ReferralCredits          prometheus.Counter
	AwardNotifyFailed        prometheus.Counter
	SlackNotifSent           prometheus.Counter
	SlackNotifFailed         prometheus.Counter
	StartupTimeSeconds       prometheus.Gauge
}
