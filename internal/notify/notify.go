// Package notify delivers push and email notifications off the request path.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/worker"
)

// DefaultQueueSize bounds the number of pending jobs
const DefaultQueueSize = 256

// previewLength caps the message text shown in a push
const previewLength = 100

type Pusher interface {
	SendMatchNotification(ctx context.Context, userID uuid.UUID, partnerName string, matchID uuid.UUID) error
	SendMessageNotification(ctx context.Context, receiverID uuid.UUID, senderName, text string, matchID uuid.UUID) error
}

type Emailer interface {
	SendMatch(toEmail, name, partnerName string) error
}

type OnlineChecker interface {
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

type kind int

const (
	kindMatch kind = iota
	kindMessage
)

// Job is one notification for one recipient
type Job struct {
	kind        kind
	UserID      uuid.UUID
	Email       string
	Name        string
	MatchID     uuid.UUID
	PartnerName string
	Text        string
}

// Dispatcher queues notifications and hands them to a worker pool.
// Jobs are dropped when the queue is full.
type Dispatcher struct {
	jobs     chan Job
	push     Pusher
	mail     Emailer
	presence OnlineChecker
}

// New creates a dispatcher. Any of push, mail and presence may be nil.
func New(push Pusher, mail Emailer, presence OnlineChecker, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		jobs:     make(chan Job, queueSize),
		push:     push,
		mail:     mail,
		presence: presence,
	}
}

// Run processes jobs with workers goroutines until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context, workers int) {
	worker.BlockingPool(ctx, workers, d.jobs, d.handle)
}

// NotifyMatch queues a match notification for both users
func (d *Dispatcher) NotifyMatch(match *model.Match, a, b *model.User) {
	for _, pair := range [][2]*model.User{{a, b}, {b, a}} {
		d.enqueue(Job{
			kind:        kindMatch,
			UserID:      pair[0].ID,
			Email:       pair[0].Email,
			Name:        pair[0].Name,
			MatchID:     match.ID,
			PartnerName: pair[1].Name,
		})
	}
}

// NotifyMessage queues a push for the recipient of msg
func (d *Dispatcher) NotifyMessage(msg *model.Message, recipientID uuid.UUID, senderName string) {
	d.enqueue(Job{
		kind:        kindMessage,
		UserID:      recipientID,
		MatchID:     msg.MatchID,
		PartnerName: senderName,
		Text:        preview(msg.Text),
	})
}

func (d *Dispatcher) enqueue(job Job) {
	select {
	case d.jobs <- job:
	default:
		logger.Warn("notification queue full, dropping job", "user_id", job.UserID, "match_id", job.MatchID)
	}
}

func (d *Dispatcher) handle(ctx context.Context, job Job) {
	switch job.kind {
	case kindMatch:
		if d.push != nil {
			if err := d.push.SendMatchNotification(ctx, job.UserID, job.PartnerName, job.MatchID); err != nil {
				logger.Warn("match push failed", "user_id", job.UserID, "error", err)
			}
		}
		if d.mail != nil && job.Email != "" {
			if err := d.mail.SendMatch(job.Email, job.Name, job.PartnerName); err != nil {
				logger.Warn("match email failed", "user_id", job.UserID, "error", err)
			}
		}
	case kindMessage:
		if d.push == nil {
			return
		}
		// online users already got message:new over the socket
		if d.presence != nil {
			online, err := d.presence.IsOnline(ctx, job.UserID)
			if err != nil {
				logger.Warn("presence lookup failed", "user_id", job.UserID, "error", err)
			}
			if online {
				return
			}
		}
		if err := d.push.SendMessageNotification(ctx, job.UserID, job.PartnerName, job.Text, job.MatchID); err != nil {
			logger.Warn("message push failed", "user_id", job.UserID, "error", err)
		}
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "…"
}
