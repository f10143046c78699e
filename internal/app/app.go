package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"salli-go/internal/archive"
	"salli-go/internal/clean"
	"salli-go/internal/config"
	"salli-go/internal/database"
	"salli-go/internal/database/sqlc"
	"salli-go/internal/encryption"
	"salli-go/internal/model"
	"salli-go/internal/salli"
	"salli-go/internal/store"

	"github.com/google/uuid"
)

// SnapshotName is the store metadata item holding the ledger snapshot.
const SnapshotName = "ledger"

// SalliApp is the application layer between the CLI and the salli service
// types. It constructs all dependencies from config, exposes high-level
// operations, and pushes a ledger snapshot to the store on Close.
type SalliApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	store     salli.ContentStore
	encryptor salli.Encryptor
	checker   salli.ExistenceChecker
	uploader  salli.Uploader
	fetcher   salli.Fetcher
	cleaner   salli.Cleaner
	logger    salli.Logger
	clock     salli.Clock
	sleeper   salli.Sleeper
	jitter    salli.Jitter
	runID     string
	op        *Operation
	logFile   *os.File
}

// New creates a fully wired SalliApp from the given config. operation
// identifies the CLI command being run (e.g. "Verify", "Upload"). The
// caller must call Close when done.
func New(cfg *config.Config, operation string) (*SalliApp, error) {
	st, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID, salli.RealClock{})
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// Refuse to run on a ledger older than the last pushed snapshot.
	remoteVersion, err := st.GetMetadataVersion(cfg.HostID, SnapshotName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking snapshot version: %w", err)
	}
	localMax, err := db.MaxRunID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking local run id: %w", err)
	}
	if remoteVersion > localMax {
		db.Close()
		return nil, fmt.Errorf("local ledger is behind snapshot (local=%d, snapshot=%d): restore with 'salli snapshot restore'", localMax, remoteVersion)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	runID := uuid.New().String()
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	n, err := db.BackfillVariants()
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("backfilling variants: %w", err)
	}
	if n > 0 {
		logger.Info("backfilled legacy variants", "count", n)
	}

	timeout := config.Seconds(cfg.Archive.Timeout)
	return &SalliApp{
		cfg:       cfg,
		db:        db,
		store:     st,
		encryptor: enc,
		checker:   archive.NewClientFromConfig(cfg.Archive),
		uploader:  archive.NewS3UploaderFromConfig(cfg.Archive),
		fetcher:   archive.NewHTTPFetcher(timeout, cfg.Archive.UserAgent),
		cleaner:   clean.NewPDFCleaner(),
		logger:    logger,
		clock:     salli.RealClock{},
		sleeper:   salli.RealSleeper{},
		jitter:    salli.RandJitter{},
		runID:     runID,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the ledger, giving it an
// auto-increment ID. Only ledger-mutating commands call it.
func (a *SalliApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	run, err := a.db.CreateRun(a.op.Name, parameters)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.op.ID = run.ID
	a.logger.Info("run started", "run", run.ID, "operation", a.op.Name, "parameters", parameters)
	return nil
}

// RunID returns the correlation id written to every log line of this run.
func (a *SalliApp) RunID() string {
	return a.runID
}

// ProberConfig returns the prober settings from the config file. The CLI
// overrides individual fields from flags before calling NewProber.
func (a *SalliApp) ProberConfig() salli.ProberConfig {
	p := a.cfg.Prober
	return salli.ProberConfig{
		ArchiveHost:  a.cfg.Archive.Host,
		DelayMin:     config.Seconds(p.DelayMin),
		DelayMax:     config.Seconds(p.DelayMax),
		BatchSize:    p.BatchSize,
		BatchPause:   config.Seconds(p.BatchPause),
		IdleInterval: config.Seconds(p.IdleInterval),
		FetchSize:    p.FetchSize,
	}
}

// NewProber persists the run and returns a prober for it. The caller runs
// it, so it can read Stats from a signal handler.
func (a *SalliApp) NewProber(cfg salli.ProberConfig) (*salli.Prober, error) {
	params := fmt.Sprintf("continuous=%t limit=%d delay=%s-%s batch=%d/%s",
		cfg.Continuous, cfg.Limit, cfg.DelayMin, cfg.DelayMax, cfg.BatchSize, cfg.BatchPause)
	if err := a.persistOperation(params); err != nil {
		return nil, err
	}
	return salli.NewProber(a.db, a.checker, cfg, a.sleeper, a.jitter, a.clock, a.logger), nil
}

// Fail records that the current operation ended in error.
func (a *SalliApp) Fail(err error) error {
	return a.op.Fail(err)
}

func (a *SalliApp) downloader() *salli.Downloader {
	d := a.cfg.Download
	return salli.NewDownloader(a.db, a.store, a.fetcher, a.cleaner, salli.DownloadConfig{
		DelayMin:         config.Seconds(d.DelayMin),
		DelayMax:         config.Seconds(d.DelayMax),
		FailureThreshold: d.FailureThreshold,
		TempDir:          d.TempDir,
	}, a.sleeper, a.jitter, a.logger)
}

// Download fetches every pending manual matching filter.
func (a *SalliApp) Download(filter model.DownloadFilter) (*model.DownloadStats, error) {
	params := fmt.Sprintf("brand=%s source=%s include_archived=%t", filter.Brand, filter.Source, filter.IncludeArchived)
	if err := a.persistOperation(params); err != nil {
		return nil, err
	}
	stats, err := a.downloader().Run(filter)
	return stats, a.op.Fail(err)
}

// Ingest records a file fetched outside salli as the manual's download.
func (a *SalliApp) Ingest(manualID int64, path, originalFilename string) (*model.DownloadedFiles, error) {
	if err := a.persistOperation(fmt.Sprintf("id=%d path=%s", manualID, path)); err != nil {
		return nil, err
	}
	files, err := a.downloader().Ingest(manualID, path, originalFilename)
	return files, a.op.Fail(err)
}

// Clean produces stripped renditions for up to limit manuals.
func (a *SalliApp) Clean(limit int) (*model.CleanupStats, error) {
	if err := a.persistOperation(fmt.Sprintf("limit=%d", limit)); err != nil {
		return nil, err
	}
	stats, err := salli.NewCleanup(a.db, a.store, a.cleaner, a.cfg.Download.TempDir, a.logger).Run(limit)
	return stats, a.op.Fail(err)
}

func (a *SalliApp) reconciler() *salli.Reconciler {
	p := a.cfg.Prober
	pacer := salli.NewPacer(a.sleeper, a.jitter,
		config.Seconds(p.DelayMin), config.Seconds(p.DelayMax),
		p.BatchSize, config.Seconds(p.BatchPause))
	return salli.NewReconciler(a.db, a.store, a.checker, a.uploader, a.cfg.Archive.Host, pacer, a.logger)
}

// Upload promotes downloaded manuals to the remote archive.
func (a *SalliApp) Upload(source model.Source, limit int, dryRun bool) (*model.UploadStats, error) {
	if err := a.persistOperation(fmt.Sprintf("source=%s limit=%d dry_run=%t", source, limit, dryRun)); err != nil {
		return nil, err
	}
	stats, err := a.reconciler().Run(source, limit, dryRun)
	return stats, a.op.Fail(err)
}

// Audit re-checks archived manuals against the remote archive.
func (a *SalliApp) Audit(fix bool) (*model.AuditStats, error) {
	if err := a.persistOperation(fmt.Sprintf("fix=%t", fix)); err != nil {
		return nil, err
	}
	stats, err := a.reconciler().Audit(fix)
	return stats, a.op.Fail(err)
}

// ImportPaths names the listings Import reads. Either may be empty.
type ImportPaths struct {
	Manuals string
	Brands  string
}

// ImportResult reports what Import added. A nil field means that listing
// was not given.
type ImportResult struct {
	Manuals *model.ImportStats
	Brands  *model.ImportStats
}

// Import loads scraper listings into the ledger. Brands are read first so a
// partial failure never leaves manuals without their brand rows.
func (a *SalliApp) Import(paths ImportPaths) (*ImportResult, error) {
	if err := a.persistOperation(fmt.Sprintf("manuals=%s brands=%s", paths.Manuals, paths.Brands)); err != nil {
		return nil, err
	}
	im := salli.NewImporter(a.db, a.logger)
	res := &ImportResult{}

	var err error
	if paths.Brands != "" {
		res.Brands, err = importFile(paths.Brands, im.Brands)
		if err != nil {
			return res, a.op.Fail(fmt.Errorf("importing brands: %w", err))
		}
	}
	if paths.Manuals != "" {
		res.Manuals, err = importFile(paths.Manuals, im.Manuals)
		if err != nil {
			return res, a.op.Fail(fmt.Errorf("importing manuals: %w", err))
		}
	}
	return res, nil
}

func importFile(path string, load func(io.Reader, salli.ImportFormat) (*model.ImportStats, error)) (*model.ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(f, salli.FormatForPath(path))
}

// StatsReport gathers every ledger summary shown by 'salli stats'.
type StatsReport struct {
	Ledger   *model.LedgerStats
	Checks   *model.ArchiveCheckStats
	Variants *model.VariantStats
	Brands   *model.BrandStats
}

// Stats summarises the ledger, optionally for one source.
func (a *SalliApp) Stats(source model.Source) (*StatsReport, error) {
	ledger, err := a.db.Stats(source)
	if err != nil {
		return nil, err
	}
	checks, err := a.db.ArchiveCheckStats()
	if err != nil {
		return nil, err
	}
	variants, err := a.db.VariantStats()
	if err != nil {
		return nil, err
	}
	brands, err := a.db.BrandStats()
	if err != nil {
		return nil, err
	}
	return &StatsReport{Ledger: ledger, Checks: checks, Variants: variants, Brands: brands}, nil
}

// ListBrands returns discovered brands. A nil indexed lists all of them.
func (a *SalliApp) ListBrands(indexed *bool) ([]*sqlc.Brand, error) {
	return a.db.ListBrands(indexed)
}

// ListVariants returns a manual's stored renditions, primary first.
func (a *SalliApp) ListVariants(manualID int64) ([]*sqlc.FileVariant, error) {
	m, err := a.db.FindManualByID(manualID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("manual %d not found", manualID)
	}
	return a.db.ListVariants(manualID)
}

// SetPrimaryVariant makes kind the delivered rendition of a manual.
func (a *SalliApp) SetPrimaryVariant(manualID int64, kind model.VariantKind) error {
	if err := a.persistOperation(fmt.Sprintf("id=%d kind=%s", manualID, kind)); err != nil {
		return err
	}
	found, err := a.db.SetPrimaryVariant(manualID, kind)
	if err != nil {
		return a.op.Fail(err)
	}
	if !found {
		return a.op.Fail(fmt.Errorf("manual %d has no %s variant", manualID, kind))
	}
	return nil
}

// History returns the most recent runs.
func (a *SalliApp) History(limit int) ([]*sqlc.Run, error) {
	return a.db.ListRuns(limit)
}

// ClearScope selects what Clear removes.
type ClearScope struct {
	Source  model.Source // with Manuals, limits the clear to one source
	Manuals bool
	Brands  bool
}

// ClearResult reports how many rows Clear removed.
type ClearResult struct {
	Manuals int64
	Brands  int64
}

// Clear deletes ledger rows. Stored content is left in place.
func (a *SalliApp) Clear(scope ClearScope) (*ClearResult, error) {
	if !scope.Manuals && !scope.Brands {
		return nil, errors.New("nothing to clear")
	}
	var parts []string
	if scope.Manuals {
		parts = append(parts, "manuals")
		if scope.Source != "" {
			parts = append(parts, "source="+string(scope.Source))
		}
	}
	if scope.Brands {
		parts = append(parts, "brands")
	}
	if err := a.persistOperation(strings.Join(parts, " ")); err != nil {
		return nil, err
	}

	res := &ClearResult{}
	var err error
	if scope.Manuals {
		if res.Manuals, err = a.db.ClearManuals(scope.Source); err != nil {
			return res, a.op.Fail(err)
		}
	}
	if scope.Brands {
		if res.Brands, err = a.db.ClearBrands(); err != nil {
			return res, a.op.Fail(err)
		}
	}
	a.logger.Warn("ledger cleared", "manuals", res.Manuals, "brands", res.Brands, "source", string(scope.Source))
	return res, nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the run record, snapshots the ledger,
// and pushes the snapshot to the store with the run id as its version.
// For non-persisted operations: just closes the database.
func (a *SalliApp) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.op.Persisted() {
		if err := a.db.FinishRun(a.op.ID, a.op.Status); err != nil {
			record(fmt.Errorf("finishing run: %w", err))
		}

		snapshot, err := a.snapshot()
		record(err)

		if err := a.db.Close(); err != nil {
			record(fmt.Errorf("closing database: %w", err))
		}

		if snapshot != "" {
			record(a.pushSnapshot(snapshot, a.op.ID))
			os.Remove(snapshot)
		}
		a.logger.Info("run finished", "run", a.op.ID, "status", a.op.Status)
	} else if err := a.db.Close(); err != nil {
		record(fmt.Errorf("closing database: %w", err))
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// snapshot writes a consistent copy of the ledger to a temp file and seals
// it. Returns the sealed file's path.
func (a *SalliApp) snapshot() (string, error) {
	raw, err := tempPath("salli-ledger-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for ledger snapshot: %w", err)
	}
	defer os.Remove(raw)

	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(raw)
	if err := a.db.BackupTo(raw); err != nil {
		return "", err
	}

	sealed, err := tempPath("salli-ledger-*.snap")
	if err != nil {
		return "", fmt.Errorf("creating temp file for sealed snapshot: %w", err)
	}
	if err := encryption.SealFile(snapshotEncryptor(a.encryptor), raw, sealed); err != nil {
		os.Remove(sealed)
		return "", fmt.Errorf("sealing ledger snapshot: %w", err)
	}
	return sealed, nil
}

// pushSnapshot uploads the sealed snapshot as store metadata.
func (a *SalliApp) pushSnapshot(path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening ledger snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger snapshot: %w", err)
	}

	if err := a.store.PutMetadata(a.cfg.HostID, SnapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("pushing ledger snapshot: %w", err)
	}
	return nil
}

// snapshotEncryptor returns enc, or a pass-through encryptor when no keys
// have been generated yet.
func snapshotEncryptor(enc salli.Encryptor) salli.Encryptor {
	if enc.IsConfigured() {
		return enc
	}
	return encryption.PlainEncryptor{}
}

func tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}
