package salli_test

import (
	"database/sql"
	"slices"
	"testing"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
	"salli-go/internal/salli"
)

func TestBuildTitle(t *testing.T) {
	tests := []struct {
		name                  string
		brand, model, docType string
		want                  string
	}{
		{"all parts", "Sony", "KV-27FS120", "Service Manual", "Sony KV-27FS120 Service Manual"},
		{"brand repeated in model", "Sony", "Sony KV-27", "", "Sony KV-27 Manual"},
		{"brand prefix case-insensitive", "SONY", "sony KV-27", "Manual", "SONY KV-27 Manual"},
		{"missing brand", "", "X100", "Manual", "Unknown X100 Manual"},
		{"model mentions doc type", "Bose", "Wave Owner's Manual", "Manual", "Bose Wave Owner's Manual"},
		{"empty model", "Sony", "", "", "Sony Manual"},
		{"control characters removed", "Ac\x01me", "M1\x7f", "Guide", "Acme M1 Guide"},
		{"kelvin sign brand", "\u212A", "k1", "Manual", "\u212A 1 Manual"},
		{"kelvin sign in model", "k", "\u212A1", "Manual", "k 1 Manual"},
		{"model shorter than brand", "Grundig", "Gr", "Manual", "Grundig Gr Manual"},
		{"non-ascii brand", "Löwe", "LÖWE Art 32", "", "Löwe Art 32 Manual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := salli.BuildTitle(tt.brand, tt.model, tt.docType); got != tt.want {
				t.Errorf("BuildTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildUploadRequest(t *testing.T) {
	m := &sqlc.Manual{
		ID:             7,
		Brand:          "Sony",
		Model:          "KV-27",
		Source:         "manualzz",
		SourceID:       sql.NullString{String: "42", Valid: true},
		ManualUrl:      "https://manualzz.com/doc/42",
		DocType:        sql.NullString{String: "Service Manual", Valid: true},
		DocDescription: sql.NullString{String: "Chassis\x00 AA-1", Valid: true},
	}
	file := &model.ResolvedFile{
		Path: "ab/cd/abcdef.pdf",
		SHA1: "abcdef",
		MD5:  "0123",
		Size: 99,
	}

	t.Run("builds identifier and metadata", func(t *testing.T) {
		req, err := salli.BuildUploadRequest(m, file)
		if err != nil {
			t.Fatalf("BuildUploadRequest() error = %v", err)
		}
		if req.Identifier != "manualzz-id-42" {
			t.Errorf("Identifier = %q", req.Identifier)
		}
		if req.Title != "Sony KV-27 Service Manual" {
			t.Errorf("Title = %q", req.Title)
		}
		if req.Metadata.MediaType != "texts" {
			t.Errorf("MediaType = %q", req.Metadata.MediaType)
		}
		if !slices.Equal(req.Metadata.Subjects, []string{"manualzz", "manuals"}) {
			t.Errorf("Subjects = %v", req.Metadata.Subjects)
		}
		if req.Metadata.Description != "Chassis AA-1" {
			t.Errorf("Description = %q", req.Metadata.Description)
		}
		if req.Metadata.Source != "https://manualzz.com/doc/42" {
			t.Errorf("Source = %q", req.Metadata.Source)
		}
		wantIDs := []string{"urn:md5:0123", "urn:sha1:abcdef"}
		if !slices.Equal(req.Metadata.ExternalIdentifiers, wantIDs) {
			t.Errorf("ExternalIdentifiers = %v, want %v", req.Metadata.ExternalIdentifiers, wantIDs)
		}
		if req.LocalPath != file.Path || req.Size != 99 {
			t.Errorf("file = %q/%d", req.LocalPath, req.Size)
		}
		if req.RemoteFilename != "abcdef.pdf" {
			t.Errorf("RemoteFilename = %q, want abcdef.pdf", req.RemoteFilename)
		}
	})

	t.Run("prefers the original filename", func(t *testing.T) {
		withName := *m
		withName.OriginalFilename = sql.NullString{String: "kv27_sm.pdf", Valid: true}
		req, err := salli.BuildUploadRequest(&withName, file)
		if err != nil {
			t.Fatalf("BuildUploadRequest() error = %v", err)
		}
		if req.RemoteFilename != "kv27_sm.pdf" {
			t.Errorf("RemoteFilename = %q", req.RemoteFilename)
		}
	})

	t.Run("requires a stored file", func(t *testing.T) {
		if _, err := salli.BuildUploadRequest(m, nil); err == nil {
			t.Error("expected error for nil file")
		}
		if _, err := salli.BuildUploadRequest(m, &model.ResolvedFile{}); err == nil {
			t.Error("expected error for empty path")
		}
	})
}
