package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/http/handlers"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/notifier"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

// Deps are the collaborators the HTTP surface is wired to.
type Deps struct {
	Users          user.UserStore
	Seasons        season.SeasonStore
	Scorer         scoring.Scorer
	Leaderboards   handlers.Leaderboards
	Referrals      handlers.Referrals
	Identity       identity.Gateway
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler

	// PushDecoder and Awards serve the pubsub push endpoint. Both nil disables it.
	PushDecoder handlers.MessageDecoder
	Awards      scoring.AwardNotifier
}

type Server struct {
	Deps
	Cfg          config.Config
	Router       chi.Router
	loginLimiter *IPRateLimiter
}
