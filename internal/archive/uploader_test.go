package archive

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salli-go/internal/model"
)

func TestS3Uploader_Upload(t *testing.T) {
	var (
		gotPath   string
		gotHeader http.Header
		gotBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.EscapedPath()
		gotHeader = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := NewS3Uploader(srv.URL, "access", "secret", "salli-test")
	req := &model.UploadRequest{
		Identifier:     "manualzz-id-42",
		RemoteFilename: "KV 27 manual.pdf",
		Size:           7,
		Metadata: model.UploadMetadata{
			MediaType:           "texts",
			Title:               "Sony KV-27 Manual",
			Subjects:            []string{"manualzz", "manuals"},
			Source:              "https://example.com/m/1",
			ExternalIdentifiers: []string{"urn:md5:abc", "urn:sha1:def"},
		},
	}

	if err := u.Upload(req, strings.NewReader("content")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if gotPath != "/manualzz-id-42/KV%2027%20manual.pdf" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != "content" {
		t.Errorf("body = %q", gotBody)
	}

	wantHeaders := map[string]string{
		"Authorization":                        "LOW access:secret",
		"X-Amz-Auto-Make-Bucket":               "1",
		"X-Archive-Meta-Mediatype":             "texts",
		"X-Archive-Meta-Title":                 "Sony KV-27 Manual",
		"X-Archive-Meta-Source":                "https://example.com/m/1",
		"X-Archive-Meta01-Subject":             "manualzz",
		"X-Archive-Meta02-Subject":             "manuals",
		"X-Archive-Meta01-External-Identifier": "urn:md5:abc",
		"X-Archive-Meta02-External-Identifier": "urn:sha1:def",
		"User-Agent":                           "salli-test",
	}
	for name, want := range wantHeaders {
		if got := gotHeader.Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
	if gotHeader.Get("X-Archive-Meta-Description") != "" {
		t.Error("empty description should not be sent")
	}
}

func TestS3Uploader_Upload_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "SlowDown", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req := &model.UploadRequest{Identifier: "x-id-1", RemoteFilename: "a.pdf", Size: 1}

	t.Run("server rejects", func(t *testing.T) {
		u := NewS3Uploader(srv.URL, "a", "b", "")
		err := u.Upload(req, strings.NewReader("x"))
		if err == nil || !strings.Contains(err.Error(), "SlowDown") {
			t.Errorf("Upload() error = %v, want status error with body", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		u := NewS3Uploader(srv.URL, "", "", "")
		if err := u.Upload(req, strings.NewReader("x")); err == nil {
			t.Error("Upload() expected credentials error")
		}
	})
}

func TestHeaderValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain Title", "Plain Title"},
		{"Grundig Bedienungsanleitung für TV", "uri(Grundig%20Bedienungsanleitung%20f%C3%BCr%20TV)"},
		{"line\nbreak", "uri(line%0Abreak)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := headerValue(tt.in); got != tt.want {
				t.Errorf("headerValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
