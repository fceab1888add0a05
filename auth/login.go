package auth

import (
	"context"
	"net/http"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login attempts to sign a user in with an email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.makeRequest(ctx, http.MethodPost, "/auth/login", "", &loginRequest{
		Email:    email,
		Password: password,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.makeRequest(ctx, http.MethodPost, "/auth/register", "", &registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
}
