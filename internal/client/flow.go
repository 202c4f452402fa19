package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mellow/internal/identity"
	"mellow/internal/model"
	"mellow/internal/session"
)

// ErrInvalidInput is returned before any request when input has the wrong shape.
var ErrInvalidInput = errors.New("invalid input")

// Flow runs the account flows against the API and keeps the session in step.
type Flow struct {
	api      *API
	sessions *session.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewFlow wires an API client to a session manager.
func NewFlow(api *API, sessions *session.Manager, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	if err := identity.RegisterValidations(v); err != nil {
		// Tag names are fixed; a failure here is a programming error.
		panic(err)
	}
	return &Flow{api: api, sessions: sessions, validate: v, logger: logger}
}

// checkInput runs the validate tags of in and turns the first failure into ErrInvalidInput.
func (f *Flow) checkInput(in any) error {
	err := f.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch fe := fieldErrs[0]; fe.Tag() {
	case "required":
		if fe.Field() == "Password" {
			return fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		return fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	case "contact_identifier":
		return fmt.Errorf("%w: enter a valid email or 10 digit phone number", ErrInvalidInput)
	case "login_identifier":
		return fmt.Errorf("%w: enter a phone number, email or username", ErrInvalidInput)
	case "max":
		return fmt.Errorf("%w: password must be at most %s bytes", ErrInvalidInput, fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidInput, fe.Field())
	}
}

// Signup registers the account, logs in with the same credentials and persists
// the resulting session.
func (f *Flow) Signup(ctx context.Context, req SignupRequest) (session.Session, error) {
	if err := f.checkInput(req); err != nil {
		return session.Session{}, err
	}

	if _, err := f.api.Signup(ctx, req); err != nil {
		return session.Session{}, err
	}
	return f.Login(ctx, req.EmailOrPhone, req.Password)
}

// Login authenticates and persists the session. The identifier may look like a
// phone number, email or username, but the server matches it exactly against
// the stored email or phone.
func (f *Flow) Login(ctx context.Context, identifier, password string) (session.Session, error) {
	if err := f.checkInput(loginInput{Identifier: identifier, Password: password}); err != nil {
		return session.Session{}, err
	}

	resp, err := f.api.Login(ctx, identifier, password)
	if err != nil {
		return session.Session{}, err
	}
	if resp.User == nil {
		return session.Session{}, errors.New("login response without user")
	}

	s := session.Session{
		User:         *resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if err := f.sessions.Set(ctx, s); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Logout revokes the refresh token when possible and always clears the local session.
func (f *Flow) Logout(ctx context.Context) error {
	s, ok := f.sessions.Current()
	if !ok {
		return nil
	}
	if s.RefreshToken != "" {
		if err := f.api.Logout(ctx, s.RefreshToken); err != nil {
			f.logger.Warn("server logout failed", zap.Error(err))
		}
	}
	return f.sessions.Clear(ctx)
}

// UpdateProfileImage changes the avatar on the server, then in the local session.
// The session is untouched when the server rejects the change.
func (f *Flow) UpdateProfileImage(ctx context.Context, image string) error {
	s, ok := f.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}
	if err := f.api.UpdateProfile(ctx, s.User.EmailOrPhone, image); err != nil {
		return err
	}
	return f.sessions.UpdateProfileImage(ctx, image)
}

// Whoami returns the account from the server, refreshing the access token once
// if it has expired.
func (f *Flow) Whoami(ctx context.Context) (*model.PublicUser, error) {
	s, ok := f.sessions.Current()
	if !ok {
		return nil, session.ErrNoSession
	}

	user, err := f.api.Me(ctx, s.AccessToken)
	if err == nil || !IsStatus(err, http.StatusUnauthorized) || s.RefreshToken == "" {
		return user, err
	}

	accessToken, err := f.api.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return nil, err
	}
	s.AccessToken = accessToken
	if err := f.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return f.api.Me(ctx, accessToken)
}

// Deals fetches the venue feed.
func (f *Flow) Deals(ctx context.Context) ([]model.VenueListing, error) {
	return f.api.Deals(ctx)
}
