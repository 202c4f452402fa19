package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"mellow/internal/auth"
	apperrors "mellow/internal/errors"
	"mellow/internal/service"
)

// ClaimsContextKey is where the JWT middleware stores *auth.Claims.
const ClaimsContextKey = "user"

// ProfileHandler serves profile reads and the avatar update.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents an avatar update. An empty or null
// profileImage clears the avatar; an absent one is rejected.
type UpdateProfileRequest struct {
	EmailOrPhone string          `json:"emailOrPhone" validate:"required"`
	ProfileImage json.RawMessage `json:"profileImage" swaggertype:"string"`
}

// image returns nil when profileImage was absent and "" when it was null.
func (r *UpdateProfileRequest) image() (*string, error) {
	if len(r.ProfileImage) == 0 {
		return nil, nil
	}
	image := ""
	if string(r.ProfileImage) == "null" {
		return &image, nil
	}
	if err := json.Unmarshal(r.ProfileImage, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

// UpdateProfile godoc
// @Summary Replace the profile image of an account
// @Tags profile
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /update-profile [post]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := c.Validate(&req); err != nil {
		return apperrors.MapErrorToHTTP(apperrors.ErrValidation)
	}

	image, err := req.image()
	if err != nil {
		return apperrors.MapErrorToHTTP(apperrors.ErrValidation)
	}

	if err := h.profileService.UpdateProfileImage(c.Request().Context(), req.EmailOrPhone, image); err != nil {
		return apperrors.MapErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Profile image updated successfully"})
}

// Me godoc
// @Summary Current account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PublicUser
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok {
		return apperrors.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED")
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), claims.Identifier())
	if err != nil {
		return apperrors.MapErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, user)
}
