package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ChatService handles matches and the messages inside them
type ChatService struct {
	matchRepo *repository.MatchRepository
	msgRepo   *repository.MessageRepository
	userRepo  *repository.UserRepository
	limiter   *ratelimit.Limiter
	messenger *messenger.Messenger
	notifier  Notifier
	clock     clock.Clock
}

func NewChatService(
	matchRepo *repository.MatchRepository,
	msgRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	limiter *ratelimit.Limiter,
	msgr *messenger.Messenger,
	notifier Notifier,
	clk clock.Clock,
) *ChatService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &ChatService{
		matchRepo: matchRepo,
		msgRepo:   msgRepo,
		userRepo:  userRepo,
		limiter:   limiter,
		messenger: msgr,
		notifier:  notifier,
		clock:     clk,
	}
}

// GetMatch returns the match when userID is one of its participants.
// A missing match and a foreign one look the same to the caller.
func (s *ChatService) GetMatch(ctx context.Context, matchID, userID uuid.UUID) (*model.Match, error) {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !match.HasUser(userID) {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// GetMatches returns the caller's matches newest first, each with the
// partner summary, the last message and the unread count
func (s *ChatService) GetMatches(ctx context.Context, userID uuid.UUID) ([]model.MatchResponse, error) {
	matches, err := s.matchRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result := make([]model.MatchResponse, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		partner := &m.UserB
		if m.UserBID == userID {
			partner = &m.UserA
		}

		resp := model.MatchResponse{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			Partner:   partnerOf(partner, now),
		}
		last, err := s.msgRepo.GetLastMessage(ctx, m.ID)
		switch {
		case err == nil:
			resp.LastMessage = last
		case !isNotFound(err):
			return nil, err
		}
		if resp.UnreadCount, err = s.msgRepo.CountUnread(ctx, m.ID, userID); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, nil
}

// SendMessage stores a message from a participant and broadcasts message:new
// to the match topic
func (s *ChatService) SendMessage(ctx context.Context, senderID, matchID uuid.UUID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < model.MinMessageLength || n > model.MaxMessageLength {
		return nil, ErrMessageLength
	}

	sender, err := activeUser(ctx, s.userRepo, senderID)
	if err != nil {
		return nil, err
	}
	match, err := s.GetMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}
	if err := allow(ctx, s.limiter, senderID, ratelimit.KindMessage); err != nil {
		return nil, err
	}

	msg := &model.Message{
		MatchID:  match.ID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	if err := s.messenger.PublishMessage(ctx, msg); err != nil {
		logger.Warn("message:new not delivered", "match_id", match.ID, "message_id", msg.ID, "error", err)
	}

	s.notifier.NotifyMessage(msg, match.PartnerOf(senderID), sender.Name)

	return msg, nil
}

// GetMessages returns one page of history. Pages count back from the newest
// message; messages inside a page are in chronological order.
func (s *ChatService) GetMessages(ctx context.Context, userID, matchID uuid.UUID, page, limit int) (*model.MessageListResponse, error) {
	if _, err := s.GetMatch(ctx, matchID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	page = max(page, 1)

	messages, err := s.msgRepo.GetMatchMessages(ctx, matchID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	slices.Reverse(messages)

	return &model.MessageListResponse{
		Messages: messages,
		Page:     page,
		Limit:    limit,
		HasMore:  hasMore,
	}, nil
}

// MarkRead sets read_at on the messages the reader received and has not
// read yet, optionally only those in messageIDs. When anything changed a
// message:read receipt is broadcast. Calling it again is a no-op.
func (s *ChatService) MarkRead(ctx context.Context, readerID, matchID uuid.UUID, messageIDs []uuid.UUID) (*model.MarkReadResponse, error) {
	if _, err := s.GetMatch(ctx, matchID, readerID); err != nil {
		return nil, err
	}

	readAt := s.clock.Now()
	marked, err := s.msgRepo.MarkRead(ctx, matchID, readerID, messageIDs, readAt)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	if len(marked) > 0 {
		receipt := model.ReadReceiptEvent{
			MatchID:    matchID,
			MessageIDs: marked,
			ReadBy:     readerID,
			ReadAt:     readAt,
		}
		if err := s.messenger.PublishReadReceipt(ctx, receipt); err != nil {
			logger.Warn("message:read not delivered", "match_id", matchID, "error", err)
		}
	}

	return &model.MarkReadResponse{UpdatedCount: len(marked)}, nil
}

// Typing relays a typing indicator from a participant
func (s *ChatService) Typing(ctx context.Context, userID, matchID uuid.UUID) error {
	if _, err := s.GetMatch(ctx, matchID, userID); err != nil {
		return err
	}
	return s.messenger.PublishTyping(ctx, matchID, userID)
}
