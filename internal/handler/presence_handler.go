package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/presence"
)

// PresenceHandler records heartbeats and reports who is online
type PresenceHandler struct {
	tracker *presence.Tracker
	clock   clock.Clock
}

func NewPresenceHandler(tracker *presence.Tracker, clk clock.Clock) *PresenceHandler {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &PresenceHandler{tracker: tracker, clock: clk}
}

// Presence godoc
// @Summary Send a heartbeat or go offline
// @Tags Presence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.PresenceRequest true "Action"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /presence [post]
func (h *PresenceHandler) Presence(c *gin.Context) {
	var req model.PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)

	var err error
	switch req.Action {
	case model.PresenceHeartbeat:
		err = h.tracker.Heartbeat(ctx, userID)
	case model.PresenceDisconnect:
		err = h.tracker.Disconnect(ctx, userID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: string(req.Action) + " recorded"})
}

// Online godoc
// @Summary Users online right now
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.OnlineResponse
// @Router /metrics/online [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	users, err := h.tracker.OnlineUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if users == nil {
		users = []uuid.UUID{}
	}

	c.JSON(http.StatusOK, model.OnlineResponse{
		OnlineUsers: len(users),
		Users:       users,
		Timestamp:   h.clock.Now().UTC(),
	})
}
