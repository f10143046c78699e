package salli

import (
	"fmt"
	"strings"

	"salli-go/internal/database/sqlc"
)

const (
	minIdentifierLen = 5
	maxIdentifierLen = 100
	identifierSuffix = "_manual"
)

// DefaultArchiveHost is the base URL of the remote archive.
const DefaultArchiveHost = "https://archive.org"

// SanitizeIdentifier turns arbitrary text into a remote archive identifier:
// ASCII letters, digits, '-' and '_' only, separator runs collapsed, no
// leading or trailing separator, between 5 and 100 characters long. The
// result depends only on s.
func SanitizeIdentifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	// Pending separator run: 0 none, '-' hyphens only, '_' anything else.
	var pending byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isIdentChar(c):
			if pending != 0 {
				b.WriteByte(pending)
				pending = 0
			}
			b.WriteByte(c)
		case c == '-':
			if pending == 0 {
				pending = '-'
			}
		default:
			pending = '_'
		}
	}

	id := strings.Trim(b.String(), "-_")
	if id == "" {
		id = "manual"
	}
	if len(id) < minIdentifierLen {
		id += identifierSuffix
	}
	if len(id) > maxIdentifierLen {
		id = strings.TrimRight(id[:maxIdentifierLen], "-_")
	}
	return id
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// sourceID returns the trimmed source id, or "" when absent.
func sourceID(m *sqlc.Manual) string {
	if !m.SourceID.Valid {
		return ""
	}
	return strings.TrimSpace(m.SourceID.String)
}

// ProbeIdentifier returns "<source>-id-<sourceId>", the identifier the
// existence prober looks up. Manuals without a source id cannot be probed.
func ProbeIdentifier(m *sqlc.Manual) (string, error) {
	id := sourceID(m)
	if id == "" {
		return "", fmt.Errorf("%w: manual %d", ErrMissingSourceID, m.ID)
	}
	return SanitizeIdentifier(m.Source + "-id-" + id), nil
}

// ArchiveIdentifier derives the remote identifier used for uploads. It is
// the probe identifier when a source id exists, otherwise a sanitized slug
// of source, brand and model.
func ArchiveIdentifier(m *sqlc.Manual) string {
	if id, err := ProbeIdentifier(m); err == nil {
		return id
	}
	return SanitizeIdentifier(fmt.Sprintf("%s-%s-%s", m.Source, m.Brand, m.Model))
}

// ArchiveItemURL returns the item page URL for identifier on host.
func ArchiveItemURL(host, identifier string) string {
	if host == "" {
		host = DefaultArchiveHost
	}
	return strings.TrimRight(host, "/") + "/details/" + identifier
}
