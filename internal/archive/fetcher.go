package archive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/salli"
)

// HTTPFetcher downloads a manual straight from its listing URL. It suits
// sources that serve the document at manual_url; anything behind a viewer
// or captcha goes through Ingest instead.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (f *HTTPFetcher) Fetch(m *sqlc.Manual, w io.Writer) (*salli.FetchInfo, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, m.ManualUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", m.ManualUrl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", m.ManualUrl, resp.Status)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, fmt.Errorf("reading %s: %w", m.ManualUrl, err)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return &salli.FetchInfo{
		Filename:    responseFilename(resp),
		ContentType: contentType,
	}, nil
}

// responseFilename prefers the Content-Disposition filename, then the last
// element of the final request path.
func responseFilename(resp *http.Response) string {
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
			return name
		}
	}

	u := resp.Request.URL
	if u == nil {
		return ""
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

var _ salli.Fetcher = (*HTTPFetcher)(nil)
