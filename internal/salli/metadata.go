package salli

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

var xmlControlChars = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

// SanitizeXML removes characters XML 1.0 cannot carry.
func SanitizeXML(s string) string {
	return xmlControlChars.ReplaceAllString(s, "")
}

// BuildTitle composes "Brand Model DocType". A brand prefix repeated in the
// model is dropped, and the doc type is omitted when the model already
// mentions it.
func BuildTitle(brand, modelName, docType string) string {
	brand = strings.TrimSpace(SanitizeXML(brand))
	modelName = strings.TrimSpace(SanitizeXML(modelName))
	docType = strings.TrimSpace(SanitizeXML(docType))
	if brand == "" {
		brand = "Unknown"
	}
	if docType == "" {
		docType = "Manual"
	}

	if rest, ok := cutPrefixFold(modelName, brand); ok {
		modelName = strings.TrimSpace(rest)
	}

	parts := []string{brand}
	if modelName != "" {
		parts = append(parts, modelName)
	}
	if !strings.Contains(strings.ToLower(modelName), strings.ToLower(docType)) {
		parts = append(parts, docType)
	}
	return strings.Join(parts, " ")
}

// cutPrefixFold is strings.CutPrefix under Unicode case folding. It walks
// runes, since folded forms can differ in byte length.
func cutPrefixFold(s, prefix string) (string, bool) {
	for _, pr := range prefix {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || !strings.EqualFold(string(r), string(pr)) {
			return "", false
		}
		s = s[size:]
	}
	return s, true
}

// BuildUploadRequest assembles the identifier, metadata, and file reference
// for uploading m. It has no side effects.
func BuildUploadRequest(m *sqlc.Manual, file *model.ResolvedFile) (*model.UploadRequest, error) {
	if file == nil || file.Path == "" {
		return nil, fmt.Errorf("manual %d has no stored file", m.ID)
	}

	title := BuildTitle(m.Brand, m.Model, m.DocType.String)
	meta := model.UploadMetadata{
		MediaType: "texts",
		Title:     title,
		Subjects:  []string{m.Source, "manuals"},
	}
	if m.DocDescription.Valid && m.DocDescription.String != "" {
		meta.Description = SanitizeXML(m.DocDescription.String)
	}
	if m.ManualUrl != "" {
		meta.Source = SanitizeXML(m.ManualUrl)
	}
	if file.MD5 != "" {
		meta.ExternalIdentifiers = append(meta.ExternalIdentifiers, "urn:md5:"+file.MD5)
	}
	if file.SHA1 != "" {
		meta.ExternalIdentifiers = append(meta.ExternalIdentifiers, "urn:sha1:"+file.SHA1)
	}

	remote := m.OriginalFilename.String
	if remote == "" {
		remote = path.Base(file.Path)
	}
	if remote == "" || remote == "." || remote == "/" {
		remote = "manual.pdf"
	}

	return &model.UploadRequest{
		Identifier:     ArchiveIdentifier(m),
		Title:          title,
		Metadata:       meta,
		LocalPath:      file.Path,
		RemoteFilename: SanitizeXML(remote),
		Size:           file.Size,
	}, nil
}
