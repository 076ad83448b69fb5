package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/service"
	"github.com/quocanhngo/spark/pkg/storage"
)

// ProfileHandler serves the caller's own profile, photos and devices
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile godoc
// @Summary Get current user profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /me [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update name, bio, city and interests
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /me [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateLocation godoc
// @Summary Update the caller's coordinates
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.UpdateLocationRequest true "Coordinates"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /me/location [put]
func (h *ProfileHandler) UpdateLocation(c *gin.Context) {
	var req model.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileService.UpdateLocation(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RegisterDevice godoc
// @Summary Register a device for push notifications
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.RegisterDeviceRequest true "Device token"
// @Success 200 {object} model.SuccessResponse
// @Router /me/devices [post]
func (h *ProfileHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.profileService.RegisterDevice(c.Request.Context(), currentUserID(c), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Device registered"})
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Description jpeg, png or webp up to 10 MB. The first photo becomes primary.
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Photo"
// @Success 201 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /me/photos [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	// room for the multipart envelope around the file
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxPhotoSize+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, storage.ErrTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required", Message: err.Error()})
		return
	}
	defer file.Close()

	if _, err := storage.ValidateImage(header); err != nil {
		writeError(c, err)
		return
	}

	photo, err := h.profileService.AddPhoto(c.Request.Context(), currentUserID(c), file, header)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.UploadResponse{Photo: *photo})
}

// DeletePhoto godoc
// @Summary Delete a profile photo
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /me/photos/{id} [delete]
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	photoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.profileService.DeletePhoto(c.Request.Context(), currentUserID(c), photoID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Photo deleted"})
}

// SetPrimaryPhoto godoc
// @Summary Make a photo the primary one
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /me/photos/{id}/primary [put]
func (h *ProfileHandler) SetPrimaryPhoto(c *gin.Context) {
	photoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.profileService.SetPrimaryPhoto(c.Request.Context(), currentUserID(c), photoID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Primary photo updated"})
}
