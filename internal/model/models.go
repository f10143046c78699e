package model

import (
	"fmt"
	"regexp"
	"time"
)

// Source identifies the external catalog a manual was indexed from.
// The tag is embedded in remote archive identifiers, so it must stay
// lowercase ASCII.
type Source string

const (
	SourceManualsLib  Source = "manualslib"
	SourceManualsBase Source = "manualsbase"
	SourceManualzz    Source = "manualzz"
)

var sourcePattern = regexp.MustCompile(`^[a-z0-9]+$`)

// ParseSource validates a source tag. Unknown but well-formed tags are
// accepted so new catalogs can be added without a code change.
func ParseSource(s string) (Source, error) {
	if !sourcePattern.MatchString(s) {
		return "", fmt.Errorf("invalid source tag: %q", s)
	}
	return Source(s), nil
}

func (s Source) String() string { return string(s) }

// VariantKind names a stored rendition of a manual.
type VariantKind string

const (
	VariantOriginal VariantKind = "original"
	VariantStripped VariantKind = "stripped"
)

// Digests holds the two content digests recorded for every stored file.
// SHA1 is the primary digest and drives the storage path; MD5 is kept
// because remote catalogs publish it.
type Digests struct {
	SHA1 string
	MD5  string
}

// StoredObject describes bytes placed in a content store.
type StoredObject struct {
	Path    string // store-relative path, derived from Digests.SHA1
	Digests Digests
	Size    int64
	Existed bool // content was already present; nothing new was written
}

// FileRecord is one stored rendition as handed to the ledger.
type FileRecord struct {
	Path string
	SHA1 string
	MD5  string
	Size int64
}

// DownloadedFiles is what a completed download reports to the ledger.
// Final is the rendition delivered by default. Original is set only when a
// transform produced a different artifact than the raw download.
type DownloadedFiles struct {
	Final            FileRecord
	Original         *FileRecord
	OriginalFilename string
}

// ResolvedFile is the file a manual delivers, whichever tier it came from.
type ResolvedFile struct {
	Path        string
	SHA1        string
	MD5         string
	Size        int64
	VariantType VariantKind // empty for legacy single-file records
	Legacy      bool
}

// NewManual carries the fields a scraper knows at index time.
type NewManual struct {
	Brand          string
	Model          string
	ManualURL      string
	Source         Source
	SourceID       string
	ModelURL       string
	ModelID        string
	DocType        string
	DocDescription string
	Category       string
}

// NewBrand carries a brand discovered while walking a catalog.
type NewBrand struct {
	Name          string
	Slug          string
	BrandURL      string
	Categories    []string
	CategoryURLs  []string
	AllCategories []string
}

// NewVariant is a rendition to register against a manual.
type NewVariant struct {
	ManualID  int64
	Kind      VariantKind
	File      FileRecord
	IsPrimary bool
}

// DownloadFilter narrows the pending-for-download set.
type DownloadFilter struct {
	Brand           string
	Source          Source
	IncludeArchived bool
}

// ManualFilter narrows a general manual listing.
type ManualFilter struct {
	Brand      string
	Source     Source
	Downloaded *bool
}

// LedgerStats summarises the ledger, optionally for one source.
type LedgerStats struct {
	Total      int64
	Downloaded int64
	Archived   int64
	Pending    int64
	ByBrand    []GroupStats
	BySource   []GroupStats
}

// GroupStats is one row of a grouped count.
type GroupStats struct {
	Key        string
	Total      int64
	Downloaded int64
	Archived   int64
}

// ArchiveCheckStats reports progress of the existence prober.
type ArchiveCheckStats struct {
	TotalCheckable     int64
	Archived           int64
	CheckedNotArchived int64
	NeverChecked       int64
}

// BrandStats reports how many discovered brands have been fully indexed.
type BrandStats struct {
	Total   int64
	Indexed int64
	Pending int64
}

// VariantStats counts stored renditions.
type VariantStats struct {
	Total     int64
	TotalSize int64
	ByType    map[VariantKind]int64
}

// ProbeStats is the outcome of one prober run.
type ProbeStats struct {
	Checked int
	Found   int
	Errors  int
	Started time.Time
}

// DownloadStats is the outcome of one bulk download run.
type DownloadStats struct {
	Attempted    int
	Downloaded   int
	Failed       int
	Deduplicated int
}

// UploadStats is the outcome of one reconciler run.
type UploadStats struct {
	Considered     int
	AlreadyPresent int
	Uploaded       int
	Failed         int
	Skipped        int
}

// AuditStats is the outcome of re-checking archived manuals.
type AuditStats struct {
	Checked  int
	Verified int
	Missing  int
	Unmarked int
}

// CleanupStats is the outcome of a cleanup pass.
type CleanupStats struct {
	Considered int
	Produced   int
	Promoted   int
	Unchanged  int
	Failed     int
}

// ImportStats is the outcome of loading a manual or brand listing.
type ImportStats struct {
	Rows     int
	Created  int
	Existing int
	Skipped  int
	Indexed  int // brands only
}

// UploadRequest is everything an uploader needs for one item. It is built
// without side effects from a ledger row and its resolved file.
type UploadRequest struct {
	Identifier     string
	Title          string
	Metadata       UploadMetadata
	LocalPath      string // store-relative path of the file to send
	RemoteFilename string
	Size           int64
}

// UploadMetadata is the archive-side item metadata.
type UploadMetadata struct {
	MediaType           string
	Title               string
	Subjects            []string
	Description         string
	Source              string
	ExternalIdentifiers []string
}
