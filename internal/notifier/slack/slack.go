package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/notifier"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/slack-go/slack"
)

// maxLeaderboardRows caps the rows rendered in one message; Slack allows 50 blocks.
const maxLeaderboardRows = 25

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. With an empty token every message is logged as a dry run.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendSeasonCreated(created *season.Season, dryRun bool) error {
	msg := s.formatSeasonCreated(created)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(seasonName string, entries []leaderboard.Entry, dryRun bool) error {
	msg := s.formatLeaderboard(seasonName, entries)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(seasonName string, entries []leaderboard.Entry) (any, error) {
	return s.formatLeaderboard(seasonName, entries), nil
}

func (s *Notifier) FormatUsageResponse(message string) (any, error) {
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", message, false, false), nil, nil),
	), nil
}

func (s *Notifier) formatSeasonCreated(created *season.Season) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", "🫧 New season started! 🫧", true, false)
	body := fmt.Sprintf("*%s* (season %d) is open. Everyone has 3 fresh lives per day.", created.Name, created.ID)
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), nil, nil),
	)
}

// formatLeaderboard creates a Slack message with the top of a season scoreboard.
func (s *Notifier) formatLeaderboard(seasonName string, entries []leaderboard.Entry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s Scoreboard 🏆", seasonName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No scores yet. Go whack some blobs!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	shown := entries
	if len(shown) > maxLeaderboardRows {
		shown = shown[:maxLeaderboardRows]
	}
	for _, entry := range shown {
		var medal string
		switch entry.Position {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		playerText := fmt.Sprintf("%d. %s %s\n> Score: %d", entry.Position, medal, shortAddress(entry.Player), entry.Score)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}
	if hidden := len(entries) - len(shown); hidden > 0 {
		more := fmt.Sprintf("…and %d more players", hidden)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", more, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// shortAddress renders 0x1234…abcd.
func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
