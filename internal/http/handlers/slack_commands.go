package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/notifier"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/slack-go/slack"
)

const scoreboardUsage = "Usage: /scoreboard <season id>"

// respondWithSlackMsg is a helper to write a formatted Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func respondWithUsage(w http.ResponseWriter, n notifier.Notifier, message string) {
	msg, err := n.FormatUsageResponse(message)
	if err != nil {
		http.Error(w, "Failed to format response", http.StatusInternalServerError)
		log.Error("Failed to format usage response", "error", err)
		return
	}
	respondWithSlackMsg(w, msg)
}

// ScoreboardCommandHandler answers the /scoreboard slash command with the ranked season.
func ScoreboardCommandHandler(boards Leaderboards, seasons season.SeasonStore, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		logger.Info("Received scoreboard command", "user", cmd.UserName, "text", cmd.Text)

		seasonID, err := strconv.ParseInt(strings.TrimSpace(cmd.Text), 10, 64)
		if err != nil || seasonID <= 0 {
			respondWithUsage(w, n, scoreboardUsage)
			return
		}

		s, err := seasons.GetSeason(r.Context(), seasonID)
		if errors.Is(err, season.ErrSeasonNotFound) {
			respondWithUsage(w, n, fmt.Sprintf("Season %d does not exist. %s", seasonID, scoreboardUsage))
			return
		}
		if err != nil {
			http.Error(w, "Failed to load season", http.StatusInternalServerError)
			logger.Error("Failed to load season", "error", err, "seasonID", seasonID)
			return
		}

		entries, err := boards.Build(r.Context(), seasonID)
		if err != nil {
			http.Error(w, "Failed to build scoreboard", http.StatusInternalServerError)
			logger.Error("Failed to build scoreboard", "error", err, "seasonID", seasonID)
			return
		}

		msg, err := n.FormatLeaderboardResponse(s.Name, entries)
		if err != nil {
			http.Error(w, "Failed to format scoreboard", http.StatusInternalServerError)
			logger.Error("Failed to format scoreboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
