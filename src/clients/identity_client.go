package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"
)

// IdentityClient handles communication with the identity service
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewIdentityClient creates a new identity service client
func NewIdentityClient(cfg *config.Configuration) *IdentityClient {
	return &IdentityClient{
		baseURL: cfg.ExternalServices.IdentityService.URL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.ExternalServices.IdentityService.Timeout) * time.Second,
		},
	}
}

// GetUserByID retrieves user info from the identity service
func (c *IdentityClient) GetUserByID(ctx context.Context, userID string) (*models.UserInfo, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Identity service call failed")
		return nil, models.ErrIdentityUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrUserNotFound
	}

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("Identity service returned unexpected status")
		return nil, models.ErrIdentityUnavailable
	}

	var user models.UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	return &user, nil
}

// ValidateUser checks that a user exists and is enabled
func (c *IdentityClient) ValidateUser(ctx context.Context, userID string) (bool, error) {
	user, err := c.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Enabled, nil
}
