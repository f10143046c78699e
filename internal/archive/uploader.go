package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"salli-go/internal/config"
	"salli-go/internal/model"
	"salli-go/internal/salli"
)

const DefaultUploadEndpoint = "https://s3.us.archive.org"

// S3Uploader creates archive items through the archive's S3-like API: one
// PUT per file, item metadata carried in x-archive-meta headers.
type S3Uploader struct {
	endpoint   string
	accessKey  string
	secretKey  string
	userAgent  string
	httpClient *http.Client
}

// NewS3Uploader creates an uploader. Uploads have no overall timeout since
// files can be large.
func NewS3Uploader(endpoint, accessKey, secretKey, userAgent string) *S3Uploader {
	if endpoint == "" {
		endpoint = DefaultUploadEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &S3Uploader{
		endpoint:   strings.TrimRight(endpoint, "/"),
		accessKey:  accessKey,
		secretKey:  secretKey,
		userAgent:  userAgent,
		httpClient: &http.Client{},
	}
}

func NewS3UploaderFromConfig(cfg config.ArchiveConfig) *S3Uploader {
	return NewS3Uploader(cfg.UploadEndpoint, cfg.AccessKey, cfg.SecretKey, cfg.UserAgent)
}

// Upload sends content as req.RemoteFilename inside item req.Identifier,
// creating the item when needed.
func (u *S3Uploader) Upload(req *model.UploadRequest, content io.Reader) error {
	if u.accessKey == "" || u.secretKey == "" {
		return fmt.Errorf("archive credentials are not configured")
	}

	target := u.endpoint + "/" + url.PathEscape(req.Identifier) + "/" + url.PathEscape(req.RemoteFilename)
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPut, target, content)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	httpReq.ContentLength = req.Size

	httpReq.Header.Set("User-Agent", u.userAgent)
	httpReq.Header.Set("Authorization", "LOW "+u.accessKey+":"+u.secretKey)
	httpReq.Header.Set("x-amz-auto-make-bucket", "1")
	for name, value := range metadataHeaders(req.Metadata) {
		httpReq.Header.Set(name, value)
	}

	resp, err := u.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", req.Identifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("uploading %s: unexpected status %s: %s", req.Identifier, resp.Status, bytes.TrimSpace(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// metadataHeaders maps item metadata to archive headers. Repeated fields are
// numbered (x-archive-meta01-subject, x-archive-meta02-subject).
func metadataHeaders(meta model.UploadMetadata) map[string]string {
	h := make(map[string]string)
	set := func(field, value string) {
		if value != "" {
			h["x-archive-meta-"+field] = headerValue(value)
		}
	}
	setList := func(field string, values []string) {
		for i, v := range values {
			h[fmt.Sprintf("x-archive-meta%02d-%s", i+1, field)] = headerValue(v)
		}
	}

	set("mediatype", meta.MediaType)
	set("title", meta.Title)
	set("description", meta.Description)
	set("source", meta.Source)
	setList("subject", meta.Subjects)
	setList("external-identifier", meta.ExternalIdentifiers)
	return h
}

// headerValue wraps values that are not plain printable ASCII in the
// archive's uri() encoding.
func headerValue(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] >= utf8.RuneSelf {
			return "uri(" + url.PathEscape(s) + ")"
		}
	}
	return s
}

var _ salli.Uploader = (*S3Uploader)(nil)
