package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"salli-go/internal/database/migrations"
	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
	"salli-go/internal/salli"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements salli.Ledger on a single SQLite file.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	clock   salli.Clock
}

// NewSQLiteDatabase opens the ledger at path, which can be a file path or
// ":memory:". A nil clock uses the real time.
func NewSQLiteDatabase(path string, clock salli.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	d := NewSQLiteDatabaseFromDB(db, clock)
	d.path = path
	return d, nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection opened with
// OpenConnection.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock salli.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = salli.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite connection.
// The pool holds one connection: the ledger has a single writer, and every
// connection to ":memory:" would otherwise be a separate database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return db, nil
}

func (s *SQLiteDatabase) now() sql.NullTime {
	return sql.NullTime{Time: salli.Timestamp(s.clock.Now()), Valid: true}
}

// inTx runs fn inside a transaction. fn must use only the queries it is given.
func (s *SQLiteDatabase) inTx(fn func(qtx *sqlc.Queries) error) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Manual operations

func (s *SQLiteDatabase) AddManual(m *model.NewManual) (int64, bool, error) {
	if m.ManualURL == "" {
		return 0, false, fmt.Errorf("manual url is required")
	}
	ctx := context.Background()

	res, err := s.queries.InsertManual(ctx, sqlc.InsertManualParams{
		Brand:          m.Brand,
		Model:          m.Model,
		ModelUrl:       nullString(m.ModelURL),
		ModelID:        nullString(m.ModelID),
		DocType:        nullString(m.DocType),
		DocDescription: nullString(m.DocDescription),
		ManualUrl:      m.ManualURL,
		Source:         string(m.Source),
		SourceID:       nullString(m.SourceID),
		Category:       nullString(m.Category),
		ScrapedAt:      s.now().Time,
	})
	if err != nil {
		return 0, false, fmt.Errorf("inserting manual: %w", err)
	}

	id, created, err := insertedID(res)
	if err != nil {
		return 0, false, fmt.Errorf("inserting manual: %w", err)
	}
	if created {
		return id, true, nil
	}

	existing, err := s.queries.GetManualByURL(ctx, m.ManualURL)
	if err != nil {
		return 0, false, fmt.Errorf("finding existing manual: %w", err)
	}
	return existing.ID, false, nil
}

// insertedID reads the result of an ON CONFLICT DO NOTHING insert. created
// is false when the row already existed and nothing was written.
func insertedID(res sql.Result) (int64, bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteDatabase) FindManualByID(id int64) (*sqlc.Manual, error) {
	m, err := s.queries.GetManualByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding manual by id: %w", err)
	}
	return &m, nil
}

func (s *SQLiteDatabase) FindManualByURL(manualURL string) (*sqlc.Manual, error) {
	m, err := s.queries.GetManualByURL(context.Background(), manualURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding manual by url: %w", err)
	}
	return &m, nil
}

func (s *SQLiteDatabase) MarkDownloaded(id int64, files *model.DownloadedFiles) error {
	ctx := context.Background()
	now := s.now()

	// The legacy columns always describe the delivered file. original_* is
	// the raw download, which equals the final file when nothing was
	// transformed.
	raw := files.Final
	if files.Original != nil {
		raw = *files.Original
	}

	return s.inTx(func(qtx *sqlc.Queries) error {
		n, err := qtx.UpdateManualDownloaded(ctx, sqlc.UpdateManualDownloadedParams{
			DownloadedAt:     now,
			FilePath:         nullString(files.Final.Path),
			FileSha1:         nullString(files.Final.SHA1),
			FileMd5:          nullString(files.Final.MD5),
			FileSize:         sql.NullInt64{Int64: files.Final.Size, Valid: true},
			OriginalFileSha1: nullString(raw.SHA1),
			OriginalFileMd5:  nullString(raw.MD5),
			OriginalFilename: nullString(files.OriginalFilename),
			ID:               id,
		})
		if err != nil {
			return fmt.Errorf("updating manual: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("manual %d not found", id)
		}

		primary := model.VariantOriginal
		if files.Original != nil && files.Original.SHA1 != files.Final.SHA1 {
			if err := putVariant(ctx, qtx, id, model.VariantOriginal, *files.Original, now.Time); err != nil {
				return err
			}
			primary = model.VariantStripped
		}
		if err := putVariant(ctx, qtx, id, primary, files.Final, now.Time); err != nil {
			return err
		}
		return setPrimary(ctx, qtx, id, primary)
	})
}

func (s *SQLiteDatabase) MarkArchived(id int64, archiveURL string) error {
	n, err := s.queries.UpdateManualArchived(context.Background(), sqlc.UpdateManualArchivedParams{
		ArchiveUrl: nullString(archiveURL),
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("marking manual archived: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("manual %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) UnmarkArchived(id int64) error {
	n, err := s.queries.ClearManualArchived(context.Background(), id)
	if err != nil {
		return fmt.Errorf("unmarking manual archived: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("manual %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) RecordArchiveCheck(id int64, exists bool, archiveURL string) error {
	ctx := context.Background()
	now := s.now()

	return s.inTx(func(qtx *sqlc.Queries) error {
		n, err := qtx.UpdateManualArchiveChecked(ctx, sqlc.UpdateManualArchiveCheckedParams{
			ArchiveCheckedAt: now,
			ID:               id,
		})
		if err != nil {
			return fmt.Errorf("updating archive check time: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("manual %d not found", id)
		}
		if !exists {
			return nil
		}

		if _, err := qtx.UpdateManualArchived(ctx, sqlc.UpdateManualArchivedParams{
			ArchiveUrl: nullString(archiveURL),
			ID:         id,
		}); err != nil {
			return fmt.Errorf("marking manual archived: %w", err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) PendingForDownload(filter model.DownloadFilter) ([]*sqlc.Manual, error) {
	rows, err := s.queries.ListPendingDownload(context.Background(), sqlc.ListPendingDownloadParams{
		Brand:           nullString(filter.Brand),
		Source:          nullString(string(filter.Source)),
		IncludeArchived: filter.IncludeArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("listing pending downloads: %w", err)
	}
	return manualPtrs(rows), nil
}

func (s *SQLiteDatabase) PendingForVerification(limit int) ([]*sqlc.Manual, error) {
	cutoff := salli.Timestamp(s.clock.Now().Add(-salli.StalenessWindow))
	rows, err := s.queries.ListPendingVerification(context.Background(), sqlc.ListPendingVerificationParams{
		CheckedBefore: sql.NullTime{Time: cutoff, Valid: true},
		Limit:         sqlLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing manuals to verify: %w", err)
	}
	return manualPtrs(rows), nil
}

func (s *SQLiteDatabase) PendingForUpload(source model.Source, limit int) ([]*sqlc.Manual, error) {
	rows, err := s.queries.ListPendingUpload(context.Background(), sqlc.ListPendingUploadParams{
		Source: nullString(string(source)),
		Limit:  sqlLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing uploadable manuals: %w", err)
	}
	return manualPtrs(rows), nil
}

func (s *SQLiteDatabase) PendingForCleanup(limit int) ([]*sqlc.Manual, error) {
	rows, err := s.queries.ListPendingCleanup(context.Background(), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing manuals to clean: %w", err)
	}
	return manualPtrs(rows), nil
}

func (s *SQLiteDatabase) ListArchived() ([]*sqlc.Manual, error) {
	rows, err := s.queries.ListArchivedManuals(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing archived manuals: %w", err)
	}
	return manualPtrs(rows), nil
}

func (s *SQLiteDatabase) ListManuals(filter model.ManualFilter) ([]*sqlc.Manual, error) {
	params := sqlc.ListManualsParams{
		Brand:  nullString(filter.Brand),
		Source: nullString(string(filter.Source)),
	}
	if filter.Downloaded != nil {
		params.Downloaded = sql.NullBool{Bool: *filter.Downloaded, Valid: true}
	}

	rows, err := s.queries.ListManuals(context.Background(), params)
	if err != nil {
		return nil, fmt.Errorf("listing manuals: %w", err)
	}
	return manualPtrs(rows), nil
}

// Bulk clear

func (s *SQLiteDatabase) ClearManuals(source model.Source) (int64, error) {
	ctx := context.Background()

	var n int64
	var err error
	if source == "" {
		n, err = s.queries.DeleteAllManuals(ctx)
	} else {
		n, err = s.queries.DeleteManualsBySource(ctx, string(source))
	}
	if err != nil {
		return 0, fmt.Errorf("clearing manuals: %w", err)
	}
	return n, nil
}

// Maintenance

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate applies pending schema migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a consistent copy of the ledger to destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// sqlLimit maps "no limit" (<= 0) to SQLite's LIMIT -1.
func sqlLimit(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit)
}

func manualPtrs(rows []sqlc.Manual) []*sqlc.Manual {
	result := make([]*sqlc.Manual, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result
}

// Compile-time check that SQLiteDatabase implements salli.Ledger
var _ salli.Ledger = (*SQLiteDatabase)(nil)
