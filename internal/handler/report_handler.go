package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
)

// ReportHandler handles user reports and their moderation
type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Report godoc
// @Summary Report a user
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.ReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /report [post]
func (h *ReportHandler) Report(c *gin.Context) {
	var req model.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reportService.Report(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports godoc
// @Summary List reports
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, RESOLVED, DISMISSED)
// @Success 200 {object} model.ReportListResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /admin/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	var req model.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.reportService.ListReports(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResolveReport godoc
// @Summary Ban the reported user or dismiss the report
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param body body model.ResolveReportRequest true "Decision"
// @Success 200 {object} model.Report
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /admin/reports/{id} [post]
func (h *ReportHandler) ResolveReport(c *gin.Context) {
	reportID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reportService.Resolve(c.Request.Context(), reportID, req.Action)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
