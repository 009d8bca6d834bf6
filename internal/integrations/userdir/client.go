package userdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"chairtime/internal/pkg/config"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/usecase/notify"

	"github.com/google/uuid"
)

// Client resolves user profiles from the directory service. Lookups feed
// notification payload enrichment only, so callers treat failures as
// missing data.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.UserDirConfig) notify.UserDirectory {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type profileResponse struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (c *Client) Profile(ctx context.Context, userID uuid.UUID) (*notify.UserProfile, error) {
	url := fmt.Sprintf("%s/api/users/%s/profile", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build profile request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "failed to call user directory")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(fmt.Sprintf("user directory returned status %d", resp.StatusCode))
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Wrap(err, "failed to decode profile response")
	}
	return &notify.UserProfile{
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
	}, nil
}
