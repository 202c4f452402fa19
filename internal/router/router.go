package router

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"mellow/internal/auth"
	apperrors "mellow/internal/errors"
	"mellow/internal/handler"
	"mellow/internal/logging"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Deals   *handler.DealsHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, logger *zap.Logger, jwtService *auth.JWTService, h Handlers) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = handler.NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/signup", h.Auth.Signup)
	e.POST("/login", h.Auth.Login)
	e.POST("/update-profile", h.Profile.UpdateProfile)
	e.POST("/auth/refresh", h.Auth.Refresh)
	e.POST("/auth/logout", h.Auth.Logout)

	api := e.Group("/api")
	api.GET("/deals", h.Deals.Deals)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(strings.TrimSpace(token))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED")
		},
	}))

	secured.GET("/me", h.Profile.Me)
}
