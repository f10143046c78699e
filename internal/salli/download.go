package salli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// DocumentExt is the extension given to every stored object.
const DocumentExt = ".pdf"

// DownloadConfig controls the bulk download loop.
type DownloadConfig struct {
	DelayMin         time.Duration
	DelayMax         time.Duration
	FailureThreshold int
	TempDir          string // staging location for fetched files; "" uses os.TempDir
}

// DefaultDownloadConfig returns the stock download pacing.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		DelayMin:         5 * time.Second,
		DelayMax:         15 * time.Second,
		FailureThreshold: DefaultFailureThreshold,
	}
}

// Downloader fetches pending manuals one at a time, stores their bytes in
// the content store, and records them in the ledger. Consecutive failures
// trip a circuit breaker that aborts the run.
type Downloader struct {
	ledger  Ledger
	store   ContentStore
	fetcher Fetcher
	cleaner Cleaner
	pacer   *Pacer
	logger  Logger
	cfg     DownloadConfig
}

// NewDownloader creates a Downloader. cleaner may be nil, in which case only
// the original rendition is stored.
func NewDownloader(ledger Ledger, store ContentStore, fetcher Fetcher, cleaner Cleaner, cfg DownloadConfig, sleeper Sleeper, jitter Jitter, logger Logger) *Downloader {
	return &Downloader{
		ledger:  ledger,
		store:   store,
		fetcher: fetcher,
		cleaner: cleaner,
		pacer:   NewPacer(sleeper, jitter, cfg.DelayMin, cfg.DelayMax, 0, 0),
		logger:  logger,
		cfg:     cfg,
	}
}

// Run downloads every manual matching filter in brand, model order. Item
// failures are logged and counted; once the breaker opens Run returns an
// error matching ErrCircuitOpen along with the partial stats.
func (d *Downloader) Run(filter model.DownloadFilter) (*model.DownloadStats, error) {
	manuals, err := d.ledger.PendingForDownload(filter)
	if err != nil {
		return nil, fmt.Errorf("fetching pending downloads: %w", err)
	}

	d.logger.Info("download started", "pending", len(manuals), "brand", filter.Brand, "source", string(filter.Source))

	stats := &model.DownloadStats{}
	breaker := NewCircuitBreaker(d.cfg.FailureThreshold)

	for i, m := range manuals {
		if i > 0 {
			d.pacer.Wait()
		}
		stats.Attempted++
		attrs := manualAttrs(m.ID, m.Brand, m.Model)

		existed, err := d.downloadOne(m)
		if err != nil {
			stats.Failed++
			d.logger.Error("download failed", append(attrs, "url", m.ManualUrl, "error", err)...)
			if open := breaker.RecordFailure(err); open != nil {
				d.logger.Error("circuit breaker open, aborting download run", "failures", breaker.Failures())
				return stats, open
			}
			continue
		}

		breaker.RecordSuccess()
		stats.Downloaded++
		if existed {
			stats.Deduplicated++
		}
		d.logger.Info("manual downloaded", attrs...)
	}

	d.logger.Info("download finished",
		"attempted", stats.Attempted,
		"downloaded", stats.Downloaded,
		"failed", stats.Failed)
	return stats, nil
}

// Ingest stores a file that a scraper already fetched and records it as the
// manual's download.
func (d *Downloader) Ingest(manualID int64, localPath, originalFilename string) (*model.DownloadedFiles, error) {
	m, err := d.ledger.FindManualByID(manualID)
	if err != nil {
		return nil, fmt.Errorf("finding manual: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("manual %d not found", manualID)
	}
	if originalFilename == "" {
		originalFilename = filepath.Base(localPath)
	}

	files, _, err := d.storeAndRecord(m, localPath, originalFilename)
	if err != nil {
		return nil, err
	}
	d.logger.Info("manual ingested", append(manualAttrs(m.ID, m.Brand, m.Model), "path", localPath)...)
	return files, nil
}

// downloadOne fetches m into a staging file and hands it to storeAndRecord.
func (d *Downloader) downloadOne(m *sqlc.Manual) (bool, error) {
	tmp, err := os.CreateTemp(d.cfg.TempDir, "salli-download-*.pdf")
	if err != nil {
		return false, fmt.Errorf("creating staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	info, err := d.fetcher.Fetch(m, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return false, fmt.Errorf("fetching %s: %w", m.ManualUrl, err)
	}

	filename := ""
	if info != nil {
		filename = info.Filename
	}
	_, existed, err := d.storeAndRecord(m, tmpPath, filename)
	return existed, err
}

// storeAndRecord stores the file at path, plus a cleaned rendition when the
// cleaner produces a smaller one, then marks the manual downloaded.
func (d *Downloader) storeAndRecord(m *sqlc.Manual, path, originalFilename string) (*model.DownloadedFiles, bool, error) {
	original, err := d.putFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("storing original: %w", err)
	}

	files := &model.DownloadedFiles{
		Final:            fileRecord(original),
		OriginalFilename: originalFilename,
	}

	if d.cleaner != nil {
		stripped, err := d.clean(path, original)
		if err != nil {
			d.logger.Warn("cleaning failed, keeping original", append(manualAttrs(m.ID, m.Brand, m.Model), "error", err)...)
		} else if stripped != nil {
			orig := fileRecord(original)
			files.Original = &orig
			files.Final = fileRecord(stripped)
		}
	}

	if err := d.ledger.MarkDownloaded(m.ID, files); err != nil {
		return nil, false, fmt.Errorf("recording download: %w", err)
	}
	if original.Existed {
		d.logDuplicates(m, original.Digests.SHA1)
	}
	return files, original.Existed, nil
}

// logDuplicates reports the other manuals whose stored renditions have the
// same content as m's download.
func (d *Downloader) logDuplicates(m *sqlc.Manual, sha1 string) {
	attrs := manualAttrs(m.ID, m.Brand, m.Model)
	variants, err := d.ledger.FindVariantsByDigest(sha1)
	if err != nil {
		d.logger.Warn("duplicate lookup failed", append(attrs, "sha1", sha1, "error", err)...)
		return
	}

	seen := map[int64]bool{m.ID: true}
	var others []int64
	for _, v := range variants {
		if !seen[v.ManualID] {
			seen[v.ManualID] = true
			others = append(others, v.ManualID)
		}
	}
	if len(others) > 0 {
		d.logger.Info("content shared with other manuals", append(attrs, "sha1", sha1, "shared_with", others)...)
	}
}

// clean runs the cleaner and stores its output when it is strictly smaller
// than the original. Returns nil when the original should stay primary.
func (d *Downloader) clean(path string, original *model.StoredObject) (*model.StoredObject, error) {
	out := path + ".clean.pdf"
	defer os.Remove(out)

	if err := d.cleaner.Clean(path, out); err != nil {
		return nil, err
	}
	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("stat cleaned file: %w", err)
	}
	if info.Size() >= original.Size {
		return nil, nil
	}

	stripped, err := d.putFile(out)
	if err != nil {
		return nil, fmt.Errorf("storing cleaned file: %w", err)
	}
	if stripped.Digests.SHA1 == original.Digests.SHA1 {
		return nil, nil
	}
	return stripped, nil
}

func (d *Downloader) putFile(path string) (*model.StoredObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return d.store.Put(f, DocumentExt)
}

func fileRecord(obj *model.StoredObject) model.FileRecord {
	return model.FileRecord{
		Path: obj.Path,
		SHA1: obj.Digests.SHA1,
		MD5:  obj.Digests.MD5,
		Size: obj.Size,
	}
}
