package http

import (
	"bytes"
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/whack-a-blob/internal/http/handlers"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/slack-go/slack"
)

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
// Every request gets its own logger in the context; 'verbose' lowers only that logger's level.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.With("request_id", middleware.GetReqID(r.Context()))
		if r.URL.Query().Get("verbose") == "true" {
			logger.SetLevel(log.DebugLevel)
		}
		logger.Info("incoming request", "method", r.Method, "url", r.URL.String())

		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), handlers.DryRunKey, isDryRun)
		ctx = log.WithContext(ctx, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware requires a valid bearer access token and stores its session in the context.
func authMiddleware(gateway identity.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				handlers.WriteError(w, identity.ErrMissingToken)
				return
			}
			session, err := gateway.ValidateAccessToken(strings.TrimSpace(token))
			if err != nil {
				log.Debug("Rejected access token", "error", err, "path", r.URL.Path)
				handlers.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithSession(r.Context(), session)))
		})
	}
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := handlers.SessionFromContext(r.Context())
		if err != nil {
			handlers.WriteError(w, err)
			return
		}
		if !session.IsAdmin() {
			log.Warn("Admin route denied", "userID", session.UserID, "path", r.URL.Path)
			handlers.WriteError(w, identity.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// slackVerifier checks the request signature Slack attaches to slash commands.
func slackVerifier(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
			if err != nil {
				log.Warn("Missing slack signature headers", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			body, err := io.ReadAll(io.TeeReader(r.Body, &verifier))
			if err != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			if err := verifier.Ensure(); err != nil {
				log.Warn("Invalid slack signature", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// pushTokenVerifier rejects pubsub push requests whose token query parameter is not token.
// The subscription's push endpoint is configured with ?token=<PUBSUB_PUSH_TOKEN>.
func pushTokenVerifier(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("token")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn("Rejected pubsub push with invalid token", "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
