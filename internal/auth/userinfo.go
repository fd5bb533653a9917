package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Katty020/Book-Review-Platform/pkg/httpclient"
)

// UserInfoClient fetches the current profile from the auth provider's
// userinfo endpoint. Token claims can lag behind profile edits; this
// refreshes the display name and email before they are denormalized onto
// a review. The circuit breaker keeps a dead provider from stalling the
// write path.
type UserInfoClient struct {
	endpoint string
	client   *httpclient.BreakerClient
}

// NewUserInfoClient creates a client for the given userinfo endpoint.
func NewUserInfoClient(endpoint string, client *httpclient.BreakerClient) *UserInfoClient {
	return &UserInfoClient{
		endpoint: endpoint,
		client:   client,
	}
}

type userInfoResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Fetch retrieves the profile behind the bearer token. Callers treat a
// failure as non-fatal and fall back to the token's own claims.
func (c *UserInfoClient) Fetch(ctx context.Context, token string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("userinfo response carries no user id")
	}

	return &Session{
		UserID: info.ID,
		Name:   info.Name,
		Email:  info.Email,
	}, nil
}
