package testutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
	"salli-go/internal/salli"
)

// StubChecker answers existence checks from a map of item URL to result.
// URLs in Errors fail with that error; unknown URLs are misses.
type StubChecker struct {
	mu      sync.Mutex
	Present map[string]bool
	Errors  map[string]error
	Calls   []string
}

func NewStubChecker() *StubChecker {
	return &StubChecker{
		Present: make(map[string]bool),
		Errors:  make(map[string]error),
	}
}

func (c *StubChecker) Exists(itemURL string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, itemURL)
	if err, ok := c.Errors[itemURL]; ok {
		return false, err
	}
	return c.Present[itemURL], nil
}

// SetPresent marks an item URL as existing.
func (c *StubChecker) SetPresent(itemURL string, present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Present[itemURL] = present
}

// StubFetcher serves documents by manual URL. URLs without content fail.
type StubFetcher struct {
	Content  map[string][]byte
	Filename string
	Calls    int
}

func NewStubFetcher() *StubFetcher {
	return &StubFetcher{Content: make(map[string][]byte)}
}

func (f *StubFetcher) Fetch(m *sqlc.Manual, w io.Writer) (*salli.FetchInfo, error) {
	f.Calls++
	data, ok := f.Content[m.ManualUrl]
	if !ok {
		return nil, fmt.Errorf("fetching %s: status 503", m.ManualUrl)
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	return &salli.FetchInfo{Filename: f.Filename, ContentType: "application/pdf"}, nil
}

// StubUploader records uploads. When Err is set every upload fails with it.
// When OnUpload is set it runs after a successful upload.
type StubUploader struct {
	Err      error
	OnUpload func(req *model.UploadRequest)
	Requests []*model.UploadRequest
	Bodies   [][]byte
}

func (u *StubUploader) Upload(req *model.UploadRequest, content io.Reader) error {
	if u.Err != nil {
		return u.Err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	u.Requests = append(u.Requests, req)
	u.Bodies = append(u.Bodies, data)
	if u.OnUpload != nil {
		u.OnUpload(req)
	}
	return nil
}

// StubCleaner writes Transform(input) to the output path. A nil Transform
// copies the input unchanged.
type StubCleaner struct {
	Transform func([]byte) []byte
	Err       error
}

func (c *StubCleaner) Clean(inPath, outPath string) error {
	if c.Err != nil {
		return c.Err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	if c.Transform != nil {
		data = c.Transform(bytes.Clone(data))
	}
	return os.WriteFile(outPath, data, 0644)
}
