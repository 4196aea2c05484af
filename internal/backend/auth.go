package backend

import (
	"context"
	"fmt"
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login returns the bearer token issued for the credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login: %w: empty token", ErrBadResponse)
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", req, nil)
}
