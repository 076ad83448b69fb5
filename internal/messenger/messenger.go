// Package messenger delivers chat events to the subscribers of a match topic.
// It persists nothing and performs no authorization: callers store the
// message and check participation before publishing or subscribing.
package messenger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
)

// Topic is the transport the messenger publishes through. The websocket hub
// implements it; a hosted pub/sub would do as well.
type Topic interface {
	Publish(ctx context.Context, topic string, event *model.WSEvent) error
}

// MatchTopic names the channel shared by the two participants of a match.
func MatchTopic(matchID uuid.UUID) string {
	return "match-" + matchID.String()
}

// UserTopic names the private channel of one user.
func UserTopic(userID uuid.UUID) string {
	return "user-" + userID.String()
}

type Messenger struct {
	topic Topic
}

func New(topic Topic) *Messenger {
	return &Messenger{topic: topic}
}

// PublishMessage broadcasts message:new to the match topic.
func (m *Messenger) PublishMessage(ctx context.Context, msg *model.Message) error {
	return m.publish(ctx, MatchTopic(msg.MatchID), model.WSEventMessageNew, msg)
}

// PublishReadReceipt broadcasts message:read to the match topic.
func (m *Messenger) PublishReadReceipt(ctx context.Context, receipt model.ReadReceiptEvent) error {
	return m.publish(ctx, MatchTopic(receipt.MatchID), model.WSEventMessageRead, receipt)
}

// PublishTyping tells the match topic that userID is typing.
func (m *Messenger) PublishTyping(ctx context.Context, matchID, userID uuid.UUID) error {
	return m.publish(ctx, MatchTopic(matchID), model.WSEventTyping, model.TypingEvent{
		MatchID: matchID,
		UserID:  userID,
	})
}

// PublishMatch notifies userID about a new match on their private topic.
func (m *Messenger) PublishMatch(ctx context.Context, userID uuid.UUID, event model.MatchEvent) error {
	return m.publish(ctx, UserTopic(userID), model.WSEventMatchNew, event)
}

func (m *Messenger) publish(ctx context.Context, topic, eventType string, payload any) error {
	if err := m.topic.Publish(ctx, topic, &model.WSEvent{Type: eventType, Payload: payload}); err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, topic, err)
	}
	return nil
}
