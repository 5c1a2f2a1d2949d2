package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/apperr"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

var errMissingCredentials = apperr.Validation("address, signature and message are required")

// LoginHandler authenticates a wallet signature, creating the user on first login,
// and returns a fresh token pair. Pending referral signup bonuses are paid on the way.
func LoginHandler(gateway identity.Gateway, users user.UserStore, referrals Referrals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Address) == "" || req.Signature == "" || req.Message == "" {
			WriteError(w, errMissingCredentials)
			return
		}
		if err := gateway.VerifySignature(req.Address, req.Message, req.Signature); err != nil {
			WriteError(w, err)
			return
		}

		u, created, err := users.GetOrCreate(r.Context(), req.Address)
		if err != nil {
			WriteError(w, err)
			return
		}
		if !created {
			if points, err := referrals.CreditSignupBonus(r.Context(), u); err != nil {
				logger.Error("Failed to credit referral signup bonus", "error", err, "userID", u.ID)
			} else if points > 0 {
				logger.Debug("Paid referral signup bonus on login", "userID", u.ID, "points", points)
			}
		}

		tokens, err := gateway.IssueSession(u)
		if err != nil {
			WriteError(w, err)
			return
		}
		logger.Info("User logged in", "userID", u.ID, "new", created)
		WriteJSON(w, http.StatusOK, tokens)
	}
}

func RefreshHandler(gateway identity.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		if req.RefreshToken == "" {
			WriteError(w, identity.ErrMissingToken)
			return
		}
		tokens, err := gateway.Refresh(req.RefreshToken)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, tokens)
	}
}

func SaveReferralHandler(referrals Referrals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		var req saveReferralRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		if err := referrals.SaveReferral(r.Context(), session, req.ReferralAddress, req.ReferrerUsername); err != nil {
			WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func ViewProfileHandler(referrals Referrals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req viewProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		profile, err := referrals.Profile(r.Context(), req.Address)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, profile)
	}
}

// AddTaskHandler stores the social task flags of the session user.
func AddTaskHandler(users user.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		var tasks user.Tasks
		if err := decodeJSON(w, r, &tasks); err != nil {
			WriteError(w, err)
			return
		}
		if err := users.UpdateTasks(r.Context(), session.UserID, tasks); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, tasks)
	}
}
