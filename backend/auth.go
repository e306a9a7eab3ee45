package backend

import (
	"context"
	"net/http"
	"net/url"

	"smartoffice-console/models"
)

func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out models.LoginResponse
	if err := c.do(ctx, "", http.MethodPost, "/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the viewer's tokens. The id token is the bearer credential;
// the access token travels in the body.
func (c *Client) Logout(ctx context.Context, idToken, accessToken string) error {
	bearer := idToken
	if bearer == "" {
		bearer = accessToken
	}
	body := map[string]string{"access_token": accessToken}
	return c.do(ctx, bearer, http.MethodPost, "/logout", nil, body, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req models.ProfileUpdateRequest) error {
	return c.do(ctx, token, http.MethodPost, "/profile-update", nil, req, nil)
}

func (c *Client) GetUserOffice(ctx context.Context, token, userID string) (*models.UserOffice, error) {
	var out models.UserOffice
	q := url.Values{"userId": {userID}}
	if err := c.do(ctx, token, http.MethodGet, "/user-office", q, nil, &out); err != nil {
		return nil, err
	}
	if out.UserID == "" {
		out.UserID = userID
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) error {
	body := map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}
	return c.do(ctx, "", http.MethodPost, "/signup", nil, body, nil)
}

// VerifySignup confirms a new account with its emailed code. The backend
// creates the company organisation on first verification.
func (c *Client) VerifySignup(ctx context.Context, req models.VerifySignupRequest) error {
	return c.do(ctx, "", http.MethodPost, "/verify-signup", nil, req, nil)
}

func (c *Client) ResendCode(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "", http.MethodPost, "/resend-code", nil, body, nil)
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	body := map[string]string{
		"username":     req.Email,
		"code":         req.Code,
		"new_password": req.NewPassword,
	}
	return c.do(ctx, "", http.MethodPost, "/confirm-forgot-password", nil, body, nil)
}

// ForgotPassword asks the identity provider to send a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"username": email}
	return c.do(ctx, "", http.MethodPost, "/forgot-password", nil, body, nil)
}
