package pubsub

import (
	"context"

	"github.com/mauv0809/whack-a-blob/internal/scoring"
)

// AwardPublisher fans score awards out over pubsub. The push subscription delivers
// them back to the score-awarded handler.
type AwardPublisher struct {
	client PubSubClient
}

var _ scoring.AwardNotifier = (*AwardPublisher)(nil)

func NewAwardPublisher(client PubSubClient) *AwardPublisher {
	return &AwardPublisher{client: client}
}

func (p *AwardPublisher) OnScoreAwarded(ctx context.Context, award scoring.Award) error {
	return p.client.SendMessage(ctx, EventScoreAwarded, award)
}
