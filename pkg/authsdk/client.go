package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded into the error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authsdk: %d: %s", e.StatusCode, e.Message)
}

// Client talks to the auth API. It keeps the session cookie between calls, so
// one Client models one browser session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client with its own cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authsdk: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("authsdk: decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and stores the session cookie for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account directly (no invitation).
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterInvitation completes an invitation with the given token.
func (c *Client) RegisterInvitation(ctx context.Context, req RegisterInvitationRequest) (*RegisterInvitationResponse, error) {
	var out RegisterInvitationResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register-invitation", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite sends a team invitation. Requires an authenticated session.
func (c *Client) Invite(ctx context.Context, email, role string) (*InviteResponse, error) {
	var out InviteResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/invite", InviteRequest{Email: email, Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyInvitation checks whether an invitation token is still redeemable.
func (c *Client) VerifyInvitation(ctx context.Context, token string) (*VerifyInvitationResponse, error) {
	var out VerifyInvitationResponse
	path := "/api/auth/verify-invitation/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current session.
func (c *Client) Logout(ctx context.Context) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a password-reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", ForgotPasswordRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", ResetPasswordRequest{Token: token, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all profiles. Requires an authenticated session.
func (c *Client) ListUsers(ctx context.Context) (*UsersResponse, error) {
	var out UsersResponse
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser returns a single profile by email.
func (c *Client) GetUser(ctx context.Context, email string) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user by email. Requires an Administrator session.
func (c *Client) DeleteUser(ctx context.Context, email string) (*BasicResponse, error) {
	var out BasicResponse
	if err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
