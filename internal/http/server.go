package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/http/handlers"
	"golang.org/x/time/rate"
)

func NewServer(cfg config.Config, deps Deps) *Server {
	server := &Server{
		Deps:         deps,
		Cfg:          cfg,
		Router:       chi.NewRouter(),
		loginLimiter: NewIPRateLimiter(rate.Limit(cfg.Auth.LoginRateLimit), cfg.Auth.LoginRateBurst),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.Cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.Cfg.RequestTimeout))
	}

	if s.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(paramsMiddleware)
		r.Get("/healthcheck", handlers.HealthCheckHandler())

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rateLimitMiddleware(s.loginLimiter))
				r.Post("/login", handlers.LoginHandler(s.Identity, s.Users, s.Referrals))
				r.Post("/login/refresh", handlers.RefreshHandler(s.Identity))
			})
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware(s.Identity))
				r.Post("/save-referral", handlers.SaveReferralHandler(s.Referrals))
				r.Post("/view-profile", handlers.ViewProfileHandler(s.Referrals))
				r.Post("/add-task", handlers.AddTaskHandler(s.Users))
			})
		})

		r.Route("/whack-a-blob", func(r chi.Router) {
			r.Use(authMiddleware(s.Identity))
			r.Post("/add-score", handlers.AddScoreHandler(s.Scorer))
			r.Post("/add-points-alone", handlers.AddPointsHandler(s.Scorer))
			r.Post("/scoreboard", handlers.ScoreboardHandler(s.Leaderboards))
			r.Post("/player-scoreboard", handlers.PlayerScoreboardHandler(s.Leaderboards))
			r.Post("/player-lives", handlers.PlayerLivesHandler(s.Scorer, s.Seasons))

			r.With(requireAdmin).Post("/create-season", handlers.CreateSeasonHandler(s.Seasons, s.Notifier))
			r.With(requireAdmin).Post("/announce-scoreboard", handlers.AnnounceScoreboardHandler(s.Leaderboards, s.Seasons, s.Notifier))
		})

		if s.PushDecoder != nil && s.Awards != nil && s.Cfg.PushToken != "" {
			r.With(pushTokenVerifier(s.Cfg.PushToken)).
				Post("/pubsub/score-awarded", handlers.ScoreAwardedHandler(s.PushDecoder, s.Awards))
		}
		if s.Cfg.Slack.SigningSecret != "" {
			r.With(slackVerifier(s.Cfg.Slack.SigningSecret)).
				Post("/slack/command/scoreboard", handlers.ScoreboardCommandHandler(s.Leaderboards, s.Seasons, s.Notifier))
		}
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
