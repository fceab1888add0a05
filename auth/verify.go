package auth

import (
	"context"
	"net/http"
)

// CheckToken checks if a session token is still valid. On success the server
// returns the authenticated user and a token that may differ from the one sent.
func (c *Client) CheckToken(ctx context.Context, token string) (*Session, error) {
	return c.makeRequest(ctx, http.MethodGet, "/auth/check-token", token, nil)
}
