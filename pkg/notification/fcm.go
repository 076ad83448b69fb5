package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"google.golang.org/api/option"
)

// DeviceStore is where push tokens live
type DeviceStore interface {
	GetUserDevices(ctx context.Context, userID uuid.UUID) ([]model.UserDevice, error)
	RemoveDevice(ctx context.Context, token string) error
}

// NotificationService handles FCM notifications
type NotificationService struct {
	client  *messaging.Client
	devices DeviceStore
}

// NewNotificationService creates a new FCM notification service. It returns
// nil when push is not configured; a nil service sends nothing.
func NewNotificationService(credentialsFile string, devices DeviceStore) (*NotificationService, error) {
	if credentialsFile == "" {
		logger.Warn("firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logger.Info("firebase FCM initialized")
	return &NotificationService{
		client:  client,
		devices: devices,
	}, nil
}

// SendMatchNotification tells userID about a new match with partnerName
func (s *NotificationService) SendMatchNotification(ctx context.Context, userID uuid.UUID, partnerName string, matchID uuid.UUID) error {
	return s.send(ctx, userID, &messaging.Notification{
		Title: "It's a match!",
		Body:  "You and " + partnerName + " liked each other",
	}, map[string]string{
		"type":     "new_match",
		"match_id": matchID.String(),
	})
}

// SendMessageNotification sends a push notification for a new chat message
func (s *NotificationService) SendMessageNotification(ctx context.Context, receiverID uuid.UUID, senderName, text string, matchID uuid.UUID) error {
	return s.send(ctx, receiverID, &messaging.Notification{
		Title: senderName,
		Body:  text,
	}, map[string]string{
		"type":        "new_message",
		"match_id":    matchID.String(),
		"sender_name": senderName,
	})
}

func (s *NotificationService) send(ctx context.Context, userID uuid.UUID, notif *messaging.Notification, data map[string]string) error {
	if s == nil || s.client == nil {
		return nil
	}

	devices, err := s.devices.GetUserDevices(ctx, userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notif,
		Data:         data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast message: %w", err)
	}

	if br.FailureCount > 0 {
		for idx, resp := range br.Responses {
			if resp.Success {
				continue
			}
			if messaging.IsUnregistered(resp.Error) {
				_ = s.devices.RemoveDevice(ctx, tokens[idx])
				continue
			}
			logger.Warn("fcm delivery failed", "user_id", userID, "error", resp.Error)
		}
	}

	return nil
}
