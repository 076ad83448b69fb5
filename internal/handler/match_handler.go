package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
)

// MatchHandler handles matches, their messages and blocks
type MatchHandler struct {
	chatService  *service.ChatService
	blockService *service.BlockService
}

func NewMatchHandler(chatService *service.ChatService, blockService *service.BlockService) *MatchHandler {
	return &MatchHandler{chatService: chatService, blockService: blockService}
}

// GetMatches godoc
// @Summary Get the caller's matches
// @Description Newest first, with partner summary, last message and unread count
// @Tags Matches
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.MatchResponse
// @Router /matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	matches, err := h.chatService.GetMatches(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetMessages godoc
// @Summary Get message history of a match
// @Description Page 1 is the newest page; messages inside a page are chronological
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(50)
// @Success 200 {object} model.MessageListResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /matches/{id}/messages [get]
func (h *MatchHandler) GetMessages(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.chatService.GetMessages(c.Request.Context(), currentUserID(c), matchID, req.Page, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SendMessage godoc
// @Summary Send a message in a match
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param body body model.SendMessageRequest true "Message"
// @Success 201 {object} model.Message
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /matches/{id}/messages [post]
func (h *MatchHandler) SendMessage(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), currentUserID(c), matchID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary Mark received messages as read
// @Description Without message_ids every unread received message is marked
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param body body model.MarkReadRequest false "Message IDs"
// @Success 200 {object} model.MarkReadResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /matches/{id}/read [post]
func (h *MatchHandler) MarkRead(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.MarkReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	resp, err := h.chatService.MarkRead(c.Request.Context(), currentUserID(c), matchID, req.MessageIDs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Block godoc
// @Summary Block a user
// @Description Removes any match with the user together with its messages
// @Tags Block
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.BlockRequest true "User to block"
// @Success 201 {object} model.Block
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /block [post]
func (h *MatchHandler) Block(c *gin.Context) {
	var req model.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	block, err := h.blockService.Block(c.Request.Context(), currentUserID(c), req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, block)
}

// Unblock godoc
// @Summary Unblock a user
// @Tags Block
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Blocked user ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /block/{userId} [delete]
func (h *MatchHandler) Unblock(c *gin.Context) {
	blockedID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	if err := h.blockService.Unblock(c.Request.Context(), currentUserID(c), blockedID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "User unblocked"})
}

// ListBlocked godoc
// @Summary List users the caller blocked
// @Tags Block
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Block
// @Router /block [get]
func (h *MatchHandler) ListBlocked(c *gin.Context) {
	blocks, err := h.blockService.ListBlocked(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, blocks)
}
