package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/middleware"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
	"github.com/quocanhngo/spark/pkg/storage"
	"gorm.io/gorm"
)

var (
	badRequestErrors = []error{
		service.ErrSelfAction,
		service.ErrInvalidDirection,
		service.ErrMessageLength,
		service.ErrInvalidPreference,
		service.ErrInvalidCoordinates,
		service.ErrInvalidBirthdate,
		service.ErrInvalidGender,
		service.ErrInvalidAction,
		service.ErrTooManyPhotos,
		service.ErrNoPreference,
		service.ErrNoLocation,
		service.ErrNotConfirmed,
		service.ErrWrongPassword,
		storage.ErrUnsupportedType,
	}
	notFoundErrors = []error{
		service.ErrUserNotFound,
		service.ErrTargetNotFound,
		service.ErrMatchNotFound,
		service.ErrPhotoNotFound,
		service.ErrReportNotFound,
		service.ErrNotBlocked,
		gorm.ErrRecordNotFound,
	}
	conflictErrors = []error{
		service.ErrAlreadyDecided,
		service.ErrAlreadyBlocked,
		service.ErrAlreadyReported,
		service.ErrReportClosed,
		service.ErrEmailTaken,
	}
)

// writeError maps a service error to a status code and an ErrorResponse
func writeError(c *gin.Context, err error) {
	var limited *service.RateLimitedError
	if errors.As(err, &limited) {
		retryAfter := limited.RetryAfter(time.Now())
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(limited.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(limited.ResetAt.Unix(), 10))
		c.Header("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{Error: "Rate limit exceeded", Message: err.Error()})
		return
	}

	switch {
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrBanned):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, model.ErrorResponse{Error: "Request timed out"})
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
}

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.UserIDKey).(uuid.UUID)
}

// uuidParam parses a path parameter, answering 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
