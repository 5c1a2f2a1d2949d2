package handlers

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/notifier"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/season"
)

// CreateSeasonHandler creates a season and announces it. Admin only.
func CreateSeasonHandler(seasons season.SeasonStore, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		var req createSeasonRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		created, err := seasons.CreateSeason(r.Context(), req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		if err := n.SendSeasonCreated(created, IsDryRunFromContext(r)); err != nil {
			logger.Warn("Failed to announce season", "error", err, "seasonID", created.ID)
		}
		WriteJSON(w, http.StatusOK, created)
	}
}

// AddScoreHandler submits a game result. It consumes one of today's lives.
func AddScoreHandler(scorer scoring.Scorer) http.HandlerFunc {
	return scoreHandler(scorer.SubmitScore)
}

// AddPointsHandler adds points without consuming a life.
func AddPointsHandler(scorer scoring.Scorer) http.HandlerFunc {
	return scoreHandler(scorer.AddPoints)
}

type addScoreFunc func(ctx context.Context, playerID, seasonID, delta int64) (*ledger.ScoreRecord, error)

func scoreHandler(add addScoreFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		var req scoreRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		seasonID, err := parseSeasonID(req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		delta, err := parseDelta(req.Score)
		if err != nil {
			WriteError(w, err)
			return
		}

		record, err := add(r.Context(), session.UserID, seasonID, delta)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, record)
	}
}

func ScoreboardHandler(boards Leaderboards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req seasonRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		seasonID, err := parseSeasonID(req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		entries, err := boards.Build(r.Context(), seasonID)
		if err != nil {
			WriteError(w, err)
			return
		}
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		WriteJSON(w, http.StatusOK, entries)
	}
}

// PlayerScoreboardHandler returns the leaderboard entry of the session user.
func PlayerScoreboardHandler(boards Leaderboards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		var req seasonRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		seasonID, err := parseSeasonID(req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		entry, err := boards.PlayerEntry(r.Context(), seasonID, session.Address)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, entry)
	}
}

// PlayerLivesHandler reports today's attempts of the session user in an existing season.
func PlayerLivesHandler(scorer scoring.Scorer, seasons season.SeasonStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		var req seasonRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		seasonID, err := parseSeasonID(req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		if _, err := seasons.GetSeason(r.Context(), seasonID); err != nil {
			WriteError(w, err)
			return
		}
		lives, err := scorer.Lives(r.Context(), session.UserID, seasonID)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, lives)
	}
}

// AnnounceScoreboardHandler posts the current leaderboard of a season to the ops channel. Admin only.
func AnnounceScoreboardHandler(boards Leaderboards, seasons season.SeasonStore, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req seasonRequest
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
		seasonID, err := parseSeasonID(req.Season)
		if err != nil {
			WriteError(w, err)
			return
		}
		s, err := seasons.GetSeason(r.Context(), seasonID)
		if err != nil {
			WriteError(w, err)
			return
		}
		entries, err := boards.Build(r.Context(), seasonID)
		if err != nil {
			WriteError(w, err)
			return
		}
		if err := n.SendLeaderboard(s.Name, entries, IsDryRunFromContext(r)); err != nil {
			WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
