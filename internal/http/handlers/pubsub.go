package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/apperr"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
)

// ScoreAwardedHandler receives score awards pushed back by the pubsub subscription and
// hands them to the award notifier. Awards that do not match their record answer 400. Other
// failures answer 500 so pubsub redelivers.
func ScoreAwardedHandler(decoder MessageDecoder, awards scoring.AwardNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			logger.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		logger.Debug("Received score awarded message", "body", string(bodyBytes))

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			logger.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			logger.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var award scoring.Award
		if err := decoder.ProcessMessage(rawData, &award); err != nil {
			logger.Error("Failed to decode score award", "error", err, "messageID", msg.Message.ID)
			http.Error(w, "Invalid score award", http.StatusBadRequest)
			return
		}
		if IsDryRunFromContext(r) {
			logger.Info("[Dry Run] Would have processed score award", "userID", award.UserID, "delta", award.Delta)
			w.Write([]byte("OK"))
			return
		}
		if err := awards.OnScoreAwarded(r.Context(), award); err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				logger.Warn("Rejected score award", "error", err, "messageID", msg.Message.ID, "recordID", award.RecordID)
				http.Error(w, "Invalid score award", http.StatusBadRequest)
				return
			}
			logger.Error("Failed to process score award", "error", err, "messageID", msg.Message.ID, "recordID", award.RecordID)
			http.Error(w, "Failed to process score award", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
