package notifier

import (
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/season"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	SendSeasonCreated(s *season.Season, dryRun bool) error
	SendLeaderboard(seasonName string, entries []leaderboard.Entry, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(seasonName string, entries []leaderboard.Entry) (any, error)
	FormatUsageResponse(message string) (any, error)
}
