package salli_test

import (
	"errors"
	"strings"
	"testing"

	"salli-go/internal/salli"
)

func TestComputeDigests(t *testing.T) {
	t.Run("digests known content", func(t *testing.T) {
		d, n, err := salli.ComputeDigests(strings.NewReader("hello world"))
		if err != nil {
			t.Fatalf("ComputeDigests() error = %v", err)
		}
		if d.SHA1 != "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed" {
			t.Errorf("SHA1 = %q", d.SHA1)
		}
		if d.MD5 != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
			t.Errorf("MD5 = %q", d.MD5)
		}
		if n != 11 {
			t.Errorf("size = %d, want 11", n)
		}
	})

	t.Run("content larger than one chunk", func(t *testing.T) {
		data := strings.Repeat("x", salli.ChunkSize*3+17)
		_, n, err := salli.ComputeDigests(strings.NewReader(data))
		if err != nil {
			t.Fatalf("ComputeDigests() error = %v", err)
		}
		if n != int64(len(data)) {
			t.Errorf("size = %d, want %d", n, len(data))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		d, n, err := salli.ComputeDigests(strings.NewReader(""))
		if err != nil {
			t.Fatalf("ComputeDigests() error = %v", err)
		}
		if n != 0 {
			t.Errorf("size = %d, want 0", n)
		}
		if d.SHA1 != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
			t.Errorf("SHA1 = %q", d.SHA1)
		}
	})
}

func TestContentPath(t *testing.T) {
	tests := []struct {
		name    string
		digest  string
		ext     string
		want    string
		wantErr error
	}{
		{"with dot", "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", ".pdf", "2a/ae/2aae6c35c94fcfb415dbe95f408b9ce91ee846ed.pdf", nil},
		{"without dot", "abcdef", "pdf", "ab/cd/abcdef.pdf", nil},
		{"no extension", "abcdef", "", "ab/cd/abcdef", nil},
		{"shortest digest", "abcd", ".pdf", "ab/cd/abcd.pdf", nil},
		{"too short", "abc", ".pdf", "", salli.ErrDigestTooShort},
		{"uppercase", "ABCDEF", ".pdf", "", salli.ErrInvalidDigest},
		{"traversal", "../../etc", ".pdf", "", salli.ErrInvalidDigest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := salli.ContentPath(tt.digest, tt.ext)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ContentPath() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ContentPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ContentPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
