// Package imgbb uploads local images to the imgbb hosting service and
// rewrites Markdown image references to the hosted URLs.
package imgbb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.imgbb.com/1/upload"

// Expiration bounds accepted by the imgbb API, in seconds.
const (
	MinExpiration = 60
	MaxExpiration = 15552000
)

// Client is a minimal imgbb upload client. Payloads go up as
// form-encoded base64, the way the API expects them.
type Client struct {
	BaseURL    string
	apiKey     string
	expiration int
	httpClient *http.Client
}

// NewClient builds a client. expiration is in seconds; zero means the
// upload never expires, out-of-range values are clamped.
func NewClient(apiKey string, expiration int) *Client {
	if expiration != 0 {
		if expiration < MinExpiration {
			expiration = MinExpiration
		}
		if expiration > MaxExpiration {
			expiration = MaxExpiration
		}
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		expiration: expiration,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL       string `json:"url"`
		DeleteURL string `json:"delete_url"`
	} `json:"data"`
}

// Upload posts the file at path and returns the public URL. name is
// the display name shown on imgbb; when empty the file's base name
// without extension is used.
func (c *Client) Upload(ctx context.Context, path, name string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}

	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	endpoint := c.BaseURL + "?key=" + url.QueryEscape(c.apiKey)
	if c.expiration != 0 {
		endpoint += fmt.Sprintf("&expiration=%d", c.expiration)
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(raw))
	form.Set("name", name)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success || result.Data.URL == "" {
		return "", fmt.Errorf("imgbb upload rejected (status %d)", resp.StatusCode)
	}
	return result.Data.URL, nil
}
