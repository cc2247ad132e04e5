// Package gamestatus mirrors the game server's live match status into a
// Discord channel.
package gamestatus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

const (
	DefaultAPIURL  = "http://ctf.rubenwardy.com/api"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Client fetches the public status document.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for url. A nil httpClient gets a default with a timeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: url, http: httpClient}
}

// Fetch returns the current game status.
func (c *Client) Fetch(ctx context.Context) (*models.GameStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("game api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("game api returned status %d: %s", resp.StatusCode, string(body))
	}

	var status models.GameStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode game status: %w", err)
	}
	return &status, nil
}
