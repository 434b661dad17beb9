// Package spacehey publishes rendered bulletins to spacehey.com using a
// browser-scraped session cookie. Cookie acquisition happens outside
// this program; the session file is the only contract consumed here.
package spacehey

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const DefaultBaseURL = "https://spacehey.com"

// ErrUnauthorized means the session cookie is missing, expired, or was
// rejected by the site. Callers match it with errors.Is to trigger
// re-authentication instead of retrying blindly.
var ErrUnauthorized = errors.New("session cookie missing or rejected")

// StatusError is any other non-success response from the site.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spacehey returned status %d", e.StatusCode)
}

// CredentialProvider yields the Cookie header value for requests.
type CredentialProvider interface {
	Cookie() (string, error)
}

// FileCredentials loads the cookie string from the session file written
// by the browser login flow. The value is read once per provider, not
// implicitly re-read across runs.
type FileCredentials struct {
	Path string

	cookie string
	loaded bool
}

func (f *FileCredentials) Cookie() (string, error) {
	if f.loaded {
		return f.cookie, nil
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: read session file %s: %v", ErrUnauthorized, f.Path, err)
	}
	cookie := strings.TrimSpace(string(raw))
	if cookie == "" {
		return "", fmt.Errorf("%w: session file %s is empty", ErrUnauthorized, f.Path)
	}

	f.cookie = cookie
	f.loaded = true
	return cookie, nil
}

// Client posts bulletins. Redirects are never followed: the site
// answers an invalid session with a 302 to the login page, and that
// redirect is the authorization signal.
type Client struct {
	BaseURL    string
	creds      CredentialProvider
	httpClient *http.Client
}

func NewClient(creds CredentialProvider) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check verifies the session cookie is still attached to an account by
// loading the bulletin composer page.
func (c *Client) Check(ctx context.Context) error {
	cookie, err := c.creds.Cookie()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/createbulletin", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("session check request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case isAuthFailure(resp.StatusCode):
		return fmt.Errorf("%w: session check got status %d", ErrUnauthorized, resp.StatusCode)
	default:
		return &StatusError{StatusCode: resp.StatusCode}
	}
}

// PostBulletin publishes a bulletin with the given title and rendered
// HTML body.
func (c *Client) PostBulletin(ctx context.Context, title, content string) error {
	cookie, err := c.creds.Cookie()
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("title", title)
	form.Set("content", content)

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/createbulletin", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bulletin post request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case isAuthFailure(resp.StatusCode):
		return fmt.Errorf("%w: bulletin post got status %d", ErrUnauthorized, resp.StatusCode)
	default:
		return &StatusError{StatusCode: resp.StatusCode}
	}
}

func isAuthFailure(status int) bool {
	return status == http.StatusFound ||
		status == http.StatusUnauthorized ||
		status == http.StatusForbidden
}
