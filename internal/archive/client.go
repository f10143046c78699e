// Package archive talks to the remote archive over HTTP: existence probes,
// S3-style item uploads, and direct manual downloads.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"salli-go/internal/config"
	"salli-go/internal/salli"
)

const DefaultUserAgent = "salli/1.0"

// Client answers existence probes with HEAD requests.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client whose requests give up after timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func NewClientFromConfig(cfg config.ArchiveConfig) *Client {
	return NewClient(config.Seconds(cfg.Timeout), cfg.UserAgent)
}

// Exists issues a HEAD for itemURL, following redirects. 200 means the item
// exists and 404 means it does not; any other status or a transport failure
// is an error.
func (c *Client) Exists(itemURL string) (bool, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodHead, itemURL, nil)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", itemURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: unexpected status %s", itemURL, resp.Status)
	}
}

var _ salli.ExistenceChecker = (*Client)(nil)
