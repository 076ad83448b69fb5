package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
)

// ReportService takes user reports and applies moderator decisions.
// Reports never ban anyone automatically.
type ReportService struct {
	reportRepo *repository.ReportRepository
	userRepo   *repository.UserRepository
	limiter    *ratelimit.Limiter
	clock      clock.Clock
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	userRepo *repository.UserRepository,
	limiter *ratelimit.Limiter,
	clk clock.Clock,
) *ReportService {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		limiter:    limiter,
		clock:      clk,
	}
}

// Report files a complaint of reporterID about the user in req
func (s *ReportService) Report(ctx context.Context, reporterID uuid.UUID, req model.ReportRequest) (*model.Report, error) {
	if reporterID == req.UserID {
		return nil, ErrSelfAction
	}
	if err := allow(ctx, s.limiter, reporterID, ratelimit.KindReport); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if isNotFound(err) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	report := &model.Report{
		ReporterID: reporterID,
		ReportedID: req.UserID,
		Reason:     req.Reason,
		Details:    strings.TrimSpace(req.Details),
		Status:     model.ReportStatusPending,
	}
	created, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if !created {
		return nil, ErrAlreadyReported
	}
	return report, nil
}

// ListReports returns a page of reports for moderators
func (s *ReportService) ListReports(ctx context.Context, req model.ReportListRequest) (*model.ReportListResponse, error) {
	page := max(req.Page, 1)
	limit := req.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}

	reports, total, err := s.reportRepo.List(ctx, req.Status, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &model.ReportListResponse{
		Reports: reports,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// Resolve applies a moderator decision to a pending report. Banning removes
// the reported user's matches and messages and closes every pending report
// against them.
func (s *ReportService) Resolve(ctx context.Context, reportID uuid.UUID, action model.ReportAction) (*model.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.Status != model.ReportStatusPending {
		return nil, ErrReportClosed
	}

	now := s.clock.Now()
	switch action {
	case model.ReportActionBan:
		matchIDs, err := s.reportRepo.BanUser(ctx, report.ReportedID, now)
		if err != nil {
			return nil, fmt.Errorf("ban user: %w", err)
		}
		logger.Info("user banned", "user_id", report.ReportedID, "report_id", report.ID, "matches_removed", len(matchIDs))
	case model.ReportActionDismiss:
		if err := s.reportRepo.Dismiss(ctx, report.ID, now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidAction
	}

	return s.reportRepo.FindByID(ctx, reportID)
}
