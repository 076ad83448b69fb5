package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/middleware"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
)

// AccountHandler serves data export and account deletion
type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Export godoc
// @Summary Download everything stored about the current user
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AccountExport
// @Router /account/export [get]
func (h *AccountHandler) Export(c *gin.Context) {
	out, err := h.accountService.Export(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="spark-export.json"`)
	c.JSON(http.StatusOK, out)
}

// Delete godoc
// @Summary Delete the current account
// @Description Erases profile, photos, swipes, matches, messages, blocks and reports. The token is revoked.
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.DeleteAccountRequest true "Confirmation and password"
// @Success 200 {object} model.DeleteAccountResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /account/delete [post]
func (h *AccountHandler) Delete(c *gin.Context) {
	var req model.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.accountService.Delete(c.Request.Context(), currentUserID(c), req, c.GetString(middleware.TokenKey))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
