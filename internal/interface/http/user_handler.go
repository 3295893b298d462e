package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/response"
	"github.com/oksasatya/fitness-app-api/pkg/validation"
)

const maxAvatarBytes = 5 << 20

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,displayname"`
}

func (h *UserHandler) fail(c *gin.Context, id helpers.Identity, err error) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, application.ErrStorageDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "avatar storage not configured", nil)
	default:
		h.Logger.WithError(err).WithField("user_id", id.UserID).Error("user request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// Me GET /api/user/me
func (h *UserHandler) Me(c *gin.Context, id helpers.Identity) {
	p, err := h.Svc.GetCurrentUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

// UpdateProfile PUT /api/user/update-profile
func (h *UserHandler) UpdateProfile(c *gin.Context, id helpers.Identity) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	// an empty string may slip past omitempty on a pointer field
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"name": "must not be blank and at most 100 characters long"})
		return
	}
	p, err := h.Svc.UpdateProfile(c.Request.Context(), id.UserID, application.UpdateProfileInput{Name: req.Name})
	if err != nil {
		h.fail(c, id, err)
		return
	}
	profileUpdates.Add(1)
	response.Success(c, http.StatusOK, p, "Profile updated successfully", nil)
}

// UploadAvatar POST /api/user/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context, id helpers.Identity) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusBadRequest, "avatar must be 5MB or smaller", nil)
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !allowedAvatarTypes[contentType] {
		response.Error[any](c, http.StatusBadRequest, "avatar must be a jpeg, png, webp or gif image", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer f.Close()

	p, err := h.Svc.UploadAvatar(c.Request.Context(), id.UserID, f, fh.Filename, contentType)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	avatarUploads.Add(1)
	response.Success(c, http.StatusOK, p, "Avatar updated", nil)
}
