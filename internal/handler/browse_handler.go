package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
)

// BrowseHandler serves preferences, the candidate feed and swipes
type BrowseHandler struct {
	browseService *service.BrowseService
	swipeService  *service.SwipeService
}

func NewBrowseHandler(browseService *service.BrowseService, swipeService *service.SwipeService) *BrowseHandler {
	return &BrowseHandler{browseService: browseService, swipeService: swipeService}
}

// GetPreference godoc
// @Summary Get search preferences
// @Description Defaults are created on first read
// @Tags Browse
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Preference
// @Router /preferences [get]
func (h *BrowseHandler) GetPreference(c *gin.Context) {
	pref, err := h.browseService.GetPreference(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pref)
}

// UpdatePreference godoc
// @Summary Update search preferences
// @Tags Browse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.UpdatePreferenceRequest true "Preferences"
// @Success 200 {object} model.Preference
// @Failure 400 {object} model.ErrorResponse
// @Router /preferences [put]
func (h *BrowseHandler) UpdatePreference(c *gin.Context) {
	var req model.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pref, err := h.browseService.UpdatePreference(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pref)
}

// Browse godoc
// @Summary Ranked candidates for the caller
// @Description Nearest first; near-ties ordered by shared interests
// @Tags Browse
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.BrowseResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /browse [get]
func (h *BrowseHandler) Browse(c *gin.Context) {
	resp, err := h.browseService.Browse(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Swipe godoc
// @Summary Swipe on a candidate
// @Tags Browse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.SwipeRequest true "Swipe"
// @Success 200 {object} model.SwipeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /swipe [post]
func (h *BrowseHandler) Swipe(c *gin.Context) {
	var req model.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.swipeService.Swipe(c.Request.Context(), currentUserID(c), req.TargetID, req.Direction)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
