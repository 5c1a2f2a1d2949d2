package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/apperr"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey  ContextKey = "dryRun"
	SessionKey ContextKey = "session"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidBody   = apperr.Validation("Invalid request body")
	errInvalidSeason = apperr.Validation("Invalid value provided for season")
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// WithSession returns a copy of ctx carrying the authenticated session.
func WithSession(ctx context.Context, s *identity.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext returns the session stored by the auth middleware.
func SessionFromContext(ctx context.Context) (*identity.Session, error) {
	s, ok := ctx.Value(SessionKey).(*identity.Session)
	if !ok || s == nil {
		return nil, identity.ErrMissingToken
	}
	return s, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// WriteError maps err to a status code by its category and writes {"error": msg}.
// Uncategorised errors are logged and answered with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrAttemptsExhausted):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	}

	msg, ok := apperr.Message(err)
	if status == http.StatusInternalServerError || !ok {
		log.Error("Request failed", "error", err)
		status = http.StatusInternalServerError
		msg = "Internal server error"
	}
	WriteJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.FromContext(r.Context()).Debug("Failed to decode request body", "error", err)
		return errInvalidBody
	}
	return nil
}

// parseSeasonID accepts a JSON number or a numeric string.
func parseSeasonID(raw json.Number) (int64, error) {
	id, err := raw.Int64()
	if err != nil || id <= 0 {
		return 0, errInvalidSeason
	}
	return id, nil
}

func parseDelta(raw json.Number) (int64, error) {
	return ledger.ParseDelta(raw.String())
}
