// Package client talks to the Mellow HTTP API and drives the account flows
// used by the command line client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mellow/internal/model"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response. Message is the server text, shown to users as is.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// SignupRequest is the signup payload. The validate tags are checked by Flow
// before anything is sent.
type SignupRequest struct {
	Name         string  `json:"name" validate:"required"`
	Username     string  `json:"username" validate:"required"`
	EmailOrPhone string  `json:"emailOrPhone" validate:"required,contact_identifier"`
	Password     string  `json:"password" validate:"required,max=72"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

type loginInput struct {
	Identifier string `validate:"required,login_identifier"`
	Password   string `validate:"required"`
}

// LoginResponse is the login payload.
type LoginResponse struct {
	User         *model.PublicUser `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}

type signupResponse struct {
	User    *model.PublicUser `json:"user"`
	Message string            `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// API is a thin client for the server endpoints. It never retries.
type API struct {
	baseURL string
	http    *http.Client
}

// Option configures an API.
type Option func(*API)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.http = c }
}

// NewAPI returns a client for the server at baseURL.
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Signup registers an account and returns its public record.
func (a *API) Signup(ctx context.Context, req SignupRequest) (*model.PublicUser, error) {
	var out signupResponse
	if err := a.do(ctx, http.MethodPost, "/signup", "", req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates with an email or phone number.
func (a *API) Login(ctx context.Context, emailOrPhone, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"emailOrPhone": emailOrPhone, "password": password}
	if err := a.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the avatar. An empty image clears it.
func (a *API) UpdateProfile(ctx context.Context, emailOrPhone, image string) error {
	body := map[string]string{"emailOrPhone": emailOrPhone, "profileImage": image}
	return a.do(ctx, http.MethodPost, "/update-profile", "", body, nil)
}

// Deals fetches the venue feed.
func (a *API) Deals(ctx context.Context) ([]model.VenueListing, error) {
	var out []model.VenueListing
	if err := a.do(ctx, http.MethodGet, "/api/deals", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *API) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"refresh_token": refreshToken}
	if err := a.do(ctx, http.MethodPost, "/auth/refresh", "", body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout revokes a refresh token.
func (a *API) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return a.do(ctx, http.MethodPost, "/auth/logout", "", body, nil)
}

// Me returns the account the access token was issued for.
func (a *API) Me(ctx context.Context, accessToken string) (*model.PublicUser, error) {
	var out model.PublicUser
	if err := a.do(ctx, http.MethodGet, "/api/me", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			apiErr.Message = e.Message
			apiErr.Code = e.Code
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
