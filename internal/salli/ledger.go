package salli

import (
	"time"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// StalenessWindow is how long a negative archive check stays valid before
// the manual becomes eligible for another probe.
const StalenessWindow = 7 * 24 * time.Hour

// Ledger is the authoritative record store for manuals, brands, their
// stored renditions, and CLI run history. Mutations touch one manual and
// are atomic. Lookups that find nothing return nil, nil.
type Ledger interface {
	// Manual operations

	// AddManual inserts a manual keyed on its listing URL. When the URL is
	// already recorded it returns the existing id with created=false.
	AddManual(m *model.NewManual) (id int64, created bool, err error)

	FindManualByID(id int64) (*sqlc.Manual, error)
	FindManualByURL(manualURL string) (*sqlc.Manual, error)

	// MarkDownloaded records a completed download and registers its
	// renditions in one transaction. When files.Original is set the raw
	// download is kept as a non-primary "original" variant and the final
	// file becomes the primary "stripped" variant.
	MarkDownloaded(id int64, files *model.DownloadedFiles) error

	// MarkArchived flags the manual as present in the remote archive.
	MarkArchived(id int64, archiveURL string) error

	// UnmarkArchived reverses MarkArchived for items the archive lost.
	UnmarkArchived(id int64) error

	// RecordArchiveCheck always advances the check timestamp and, when
	// exists is true, also marks the manual archived at archiveURL.
	RecordArchiveCheck(id int64, exists bool, archiveURL string) error

	// PendingForDownload returns undownloaded manuals ordered by brand then
	// model. Archived manuals are excluded unless the filter asks for them.
	PendingForDownload(filter model.DownloadFilter) ([]*sqlc.Manual, error)

	// PendingForVerification returns manuals with a source id that are
	// neither archived nor downloaded and whose last check is older than
	// StalenessWindow, never-checked first.
	PendingForVerification(limit int) ([]*sqlc.Manual, error)

	// PendingForUpload returns downloaded, unarchived manuals with a stored
	// file, ordered by brand then model. An empty source matches all.
	PendingForUpload(source model.Source, limit int) ([]*sqlc.Manual, error)

	// PendingForCleanup returns downloaded manuals that have an original
	// variant and no stripped one.
	PendingForCleanup(limit int) ([]*sqlc.Manual, error)

	ListArchived() ([]*sqlc.Manual, error)
	ListManuals(filter model.ManualFilter) ([]*sqlc.Manual, error)

	// Variant operations

	// RegisterVariant records a rendition. A second registration of the same
	// kind for a manual returns the existing id with created=false.
	RegisterVariant(v *model.NewVariant) (id int64, created bool, err error)

	// SetPrimaryVariant makes kind the only primary variant of a manual.
	// Returns false when the manual has no variant of that kind.
	SetPrimaryVariant(manualID int64, kind model.VariantKind) (bool, error)

	// ListVariants returns a manual's variants, primary first.
	ListVariants(manualID int64) ([]*sqlc.FileVariant, error)

	PrimaryVariant(manualID int64) (*sqlc.FileVariant, error)
	VariantByKind(manualID int64, kind model.VariantKind) (*sqlc.FileVariant, error)

	// FindVariantsByDigest returns every variant with the given SHA-1,
	// across manuals.
	FindVariantsByDigest(sha1 string) ([]*sqlc.FileVariant, error)

	// ResolvePrimaryFile returns the file a manual delivers: its primary
	// variant, else the legacy single-file columns, else nil.
	ResolvePrimaryFile(manualID int64) (*model.ResolvedFile, error)

	// BackfillVariants synthesizes a primary variant for downloaded manuals
	// recorded before variants existed. Returns the number created.
	BackfillVariants() (int, error)

	// Brand operations

	// AddBrand inserts a brand keyed on its slug. When the slug exists it
	// returns the existing id with created=false.
	AddBrand(b *model.NewBrand) (id int64, created bool, err error)

	FindBrandBySlug(slug string) (*sqlc.Brand, error)

	// ListBrands returns brands by name. A nil indexed matches all.
	ListBrands(indexed *bool) ([]*sqlc.Brand, error)

	MarkBrandIndexed(id int64) error

	// Statistics

	Stats(source model.Source) (*model.LedgerStats, error)
	ArchiveCheckStats() (*model.ArchiveCheckStats, error)
	BrandStats() (*model.BrandStats, error)
	VariantStats() (*model.VariantStats, error)

	// Bulk clear

	// ClearManuals deletes manuals and their variants. An empty source
	// clears every manual.
	ClearManuals(source model.Source) (int64, error)
	ClearBrands() (int64, error)

	// Run tracking

	CreateRun(operation string, parameters string) (*sqlc.Run, error)
	FinishRun(id int64, status string) error
	ListRuns(limit int) ([]*sqlc.Run, error)
	MaxRunID() (int64, error)

	// Close closes the database connection.
	Close() error
}
