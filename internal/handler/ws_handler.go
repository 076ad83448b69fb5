package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/middleware"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/presence"
	"github.com/quocanhngo/spark/internal/service"
	"github.com/quocanhngo/spark/internal/ws"
)

// eventTimeout bounds the work done for one inbound event
const eventTimeout = 5 * time.Second

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub         *ws.Hub
	chatService *service.ChatService
	tracker     *presence.Tracker
	upgrader    websocket.Upgrader
}

// NewWSHandler creates the handler. An empty origins list accepts any origin.
func NewWSHandler(hub *ws.Hub, chatService *service.ChatService, tracker *presence.Tracker, origins []string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:         hub,
		chatService: chatService,
		tracker:     tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket godoc
// @Summary Open the realtime connection
// @Description Connect with ws://host/ws?token=<jwt>. Send subscribe {match_id} to receive a match's events.
// @Tags Realtime
// @Param token query string true "JWT token"
// @Success 101
// @Failure 401 {object} model.ErrorResponse
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := currentUserID(c)
	name := c.GetString(middleware.NameKey)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID, name)
	client.OnPong = func() { h.heartbeat(userID) }
	h.hub.Register(client)
	h.heartbeat(userID)

	logger.Info("ws connected", "user_id", userID)

	go client.WritePump()
	go client.ReadPump(h.handleWSMessage)
}

// handleWSMessage processes incoming WebSocket messages from clients
func (h *WSHandler) handleWSMessage(client *ws.Client, event ws.InboundEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch event.Type {
	case model.WSEventSubscribe:
		h.handleSubscribe(ctx, client, event)
	case model.WSEventUnsubscribe:
		payload, ok := h.topicPayload(client, event)
		if !ok {
			return
		}
		h.hub.Leave(messenger.MatchTopic(payload.MatchID), client)
	case model.WSEventTyping:
		payload, ok := h.topicPayload(client, event)
		if !ok {
			return
		}
		if err := h.chatService.Typing(ctx, client.UserID, payload.MatchID); err != nil {
			h.replyError(client, err)
		}
	case model.WSEventHeartbeat:
		h.heartbeat(client.UserID)
	default:
		h.hub.SendTo(client, errorEvent("unknown_event", "unknown event type "+event.Type))
	}
}

// handleSubscribe joins the match topic after checking participation
func (h *WSHandler) handleSubscribe(ctx context.Context, client *ws.Client, event ws.InboundEvent) {
	payload, ok := h.topicPayload(client, event)
	if !ok {
		return
	}

	if _, err := h.chatService.GetMatch(ctx, payload.MatchID, client.UserID); err != nil {
		h.replyError(client, err)
		return
	}

	h.hub.Join(messenger.MatchTopic(payload.MatchID), client)
	h.hub.SendTo(client, &model.WSEvent{
		Type:    model.WSEventSubscribed,
		Payload: model.TopicPayload{MatchID: payload.MatchID},
	})
}

func (h *WSHandler) topicPayload(client *ws.Client, event ws.InboundEvent) (model.TopicPayload, bool) {
	var payload model.TopicPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.MatchID == uuid.Nil {
		h.hub.SendTo(client, errorEvent("bad_request", "match_id is required"))
		return payload, false
	}
	return payload, true
}

func (h *WSHandler) heartbeat(userID uuid.UUID) {
	if h.tracker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if err := h.tracker.Heartbeat(ctx, userID); err != nil {
		logger.Warn("heartbeat not recorded", "user_id", userID, "error", err)
	}
}

func (h *WSHandler) replyError(client *ws.Client, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		h.hub.SendTo(client, errorEvent("forbidden", err.Error()))
	default:
		logger.Warn("ws event failed", "user_id", client.UserID, "error", err)
		h.hub.SendTo(client, errorEvent("internal", "event could not be processed"))
	}
}

func errorEvent(code, message string) *model.WSEvent {
	return &model.WSEvent{
		Type:    model.WSEventError,
		Payload: model.ErrorResponse{Error: code, Message: message},
	}
}
