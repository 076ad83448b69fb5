package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository handles database operations for Message
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetMatchMessages returns one page of a match's messages, newest first.
// It fetches limit+1 rows so the caller can tell whether more exist.
func (r *MessageRepository) GetMatchMessages(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]model.Message, error) {
	messages := []model.Message{}
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit + 1).
		Find(&messages).Error
	return messages, err
}

// GetLastMessage returns the most recent message in a match
func (r *MessageRepository) GetLastMessage(ctx context.Context, matchID uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead sets read_at on the match's messages that readerID received and
// has not read yet, optionally narrowed to ids. It returns the ids this
// statement changed; rows a concurrent reader got to first are not included.
func (r *MessageRepository) MarkRead(ctx context.Context, matchID, readerID uuid.UUID, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var rows []model.Message
	query := r.db.WithContext(ctx).Model(&rows).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("match_id = ? AND sender_id <> ? AND read_at IS NULL", matchID, readerID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if err := query.Update("read_at", at).Error; err != nil {
		return nil, err
	}

	marked := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		marked = append(marked, row.ID)
	}
	return marked, nil
}

// CountUnread counts messages readerID has not read in a match
func (r *MessageRepository) CountUnread(ctx context.Context, matchID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("match_id = ? AND sender_id <> ? AND read_at IS NULL", matchID, readerID).
		Count(&count).Error
	return count, err
}
