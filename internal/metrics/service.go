package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ScoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blob_score_submissions_total",
			Help: "The total number of accepted score submissions, by variant.",
		}, []string{"variant"}),
		AttemptsExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_attempts_exhausted_total",
			Help: "The total number of submissions rejected because no lives were left.",
		}),
		AppendConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_score_append_conflicts_total",
			Help: "The total number of score appends retried after a version conflict.",
		}),
		LeaderboardBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blob_leaderboard_build_duration_seconds",
			Help:    "The duration of leaderboard builds from the score ledger.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		LeaderboardCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_leaderboard_cache_hits_total",
			Help: "The total number of leaderboards served from the cache.",
		}),
		LeaderboardCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_leaderboard_cache_misses_total",
			Help: "The total number of leaderboard cache misses.",
		}),
		ReferralCredits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_referral_credits_total",
			Help: "The total number of referral credits recorded for referrers.",
		}),
		AwardNotifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_award_notifications_failed_total",
			Help: "The total number of score award notifications that failed after the score was stored.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blob_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ScoreSubmissions,
		s.AttemptsExhausted,
		s.AppendConflicts,
		s.LeaderboardBuildDuration,
		s.LeaderboardCacheHits,
		s.LeaderboardCacheMisses,
		s.ReferralCredits,
		s.AwardNotifyFailed,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncScoreSubmissions(variant string) {
	s.ScoreSubmissions.WithLabelValues(variant).Inc()
}

func (s *Service) IncAttemptsExhausted() {
	s.AttemptsExhausted.Inc()
}

func (s *Service) IncAppendConflicts() {
	s.AppendConflicts.Inc()
}

func (s *Service) ObserveLeaderboardBuildDuration(duration float64) {
	s.LeaderboardBuildDuration.Observe(duration)
}

func (s *Service) IncLeaderboardCacheHits() {
	s.LeaderboardCacheHits.Inc()
}

func (s *Service) IncLeaderboardCacheMisses() {
	s.LeaderboardCacheMisses.Inc()
}

func (s *Service) IncReferralCredits() {
	s.ReferralCredits.Inc()
}

func (s *Service) IncAwardNotifyFailed() {
	s.AwardNotifyFailed.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
