package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "mellow/internal/errors"
	"mellow/internal/model"
	"mellow/internal/service"
)

// AuthHandler handles signup, login and token endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a signup request.
type SignupRequest struct {
	Name         string  `json:"name" validate:"required"`
	Username     string  `json:"username" validate:"required"`
	EmailOrPhone string  `json:"emailOrPhone" validate:"required"`
	Password     string  `json:"password" validate:"required"`
	ProfileImage *string `json:"profileImage"`
}

// LoginRequest represents a login request. Missing fields fail as invalid
// credentials rather than as validation errors.
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SignupResponse is returned by a successful signup.
type SignupResponse struct {
	User    *model.PublicUser `json:"user"`
	Message string            `json:"message"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User         *model.PublicUser `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse is a bare acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := c.Validate(&req); err != nil {
		return apperrors.MapErrorToHTTP(apperrors.ErrValidation)
	}

	user, err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Name:         req.Name,
		Username:     req.Username,
		EmailOrPhone: req.EmailOrPhone,
		Password:     req.Password,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return apperrors.MapErrorToHTTP(err)
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		User:    user,
		Message: "User created successfully",
	})
}

// Login godoc
// @Summary Login with email or phone
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	result, err := h.authService.Login(c.Request().Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		return apperrors.MapErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := c.Validate(&req); err != nil {
		return apperrors.MapErrorToHTTP(apperrors.ErrValidation)
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return apperrors.MapErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := c.Validate(&req); err != nil {
		return apperrors.MapErrorToHTTP(apperrors.ErrValidation)
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return apperrors.MapErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
