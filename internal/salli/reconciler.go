package salli

import (
	"fmt"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// Reconciler promotes downloaded manuals to the remote archive. Every item
// is checked before upload so reruns after a partial failure only record
// what is already there.
type Reconciler struct {
	ledger   Ledger
	store    ContentStore
	checker  ExistenceChecker
	uploader Uploader
	pacer    *Pacer
	host     string
	logger   Logger
}

// NewReconciler creates a Reconciler. pacer may be nil to run without
// delays between items.
func NewReconciler(ledger Ledger, store ContentStore, checker ExistenceChecker, uploader Uploader, host string, pacer *Pacer, logger Logger) *Reconciler {
	if host == "" {
		host = DefaultArchiveHost
	}
	return &Reconciler{
		ledger:   ledger,
		store:    store,
		checker:  checker,
		uploader: uploader,
		pacer:    pacer,
		host:     host,
		logger:   logger,
	}
}

// Run uploads up to limit manuals from source (empty for all). With dryRun
// the pre-check still runs and records items already archived, but nothing
// is uploaded.
func (r *Reconciler) Run(source model.Source, limit int, dryRun bool) (*model.UploadStats, error) {
	manuals, err := r.ledger.PendingForUpload(source, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching uploadable manuals: %w", err)
	}

	r.logger.Info("upload started", "pending", len(manuals), "source", string(source), "dry_run", dryRun)

	stats := &model.UploadStats{}
	for i, m := range manuals {
		if i > 0 && r.pacer != nil {
			r.pacer.Wait()
		}
		stats.Considered++
		if err := r.reconcile(m, dryRun, stats); err != nil {
			return stats, err
		}
	}

	r.logger.Info("upload finished",
		"uploaded", stats.Uploaded,
		"already_present", stats.AlreadyPresent,
		"failed", stats.Failed,
		"skipped", stats.Skipped)
	return stats, nil
}

// reconcile handles one manual. Only ledger errors are returned.
func (r *Reconciler) reconcile(m *sqlc.Manual, dryRun bool, stats *model.UploadStats) error {
	attrs := manualAttrs(m.ID, m.Brand, m.Model)

	file, err := r.ledger.ResolvePrimaryFile(m.ID)
	if err != nil {
		return fmt.Errorf("resolving file for manual %d: %w", m.ID, err)
	}
	req, err := BuildUploadRequest(m, file)
	if err != nil {
		stats.Skipped++
		r.logger.Warn("skipping upload", append(attrs, "error", err)...)
		return nil
	}

	itemURL := ArchiveItemURL(r.host, req.Identifier)
	attrs = append(attrs, "identifier", req.Identifier)

	exists, err := r.checker.Exists(itemURL)
	if err != nil {
		r.logger.Warn("pre-upload check failed, assuming absent", append(attrs, "error", err)...)
	}
	if exists {
		if err := r.ledger.MarkArchived(m.ID, itemURL); err != nil {
			return fmt.Errorf("marking manual %d archived: %w", m.ID, err)
		}
		stats.AlreadyPresent++
		r.logger.Info("item already in archive", append(attrs, "url", itemURL)...)
		return nil
	}

	if dryRun {
		stats.Skipped++
		r.logger.Info("would upload", append(attrs, "title", req.Title, "file", req.LocalPath, "remote_filename", req.RemoteFilename)...)
		return nil
	}

	if err := r.upload(req); err != nil {
		stats.Failed++
		r.logger.Error("upload failed", append(attrs, "error", err)...)
		return nil
	}

	// The archive indexes new items asynchronously, so a miss here is not
	// a failure.
	if ok, err := r.checker.Exists(itemURL); err != nil || !ok {
		r.logger.Warn("uploaded item not yet visible", append(attrs, "url", itemURL, "error", err)...)
	}

	if err := r.ledger.MarkArchived(m.ID, itemURL); err != nil {
		return fmt.Errorf("marking manual %d archived: %w", m.ID, err)
	}
	stats.Uploaded++
	r.logger.Info("manual uploaded", append(attrs, "url", itemURL)...)
	return nil
}

func (r *Reconciler) upload(req *model.UploadRequest) error {
	rc, err := r.store.Open(req.LocalPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", req.LocalPath, err)
	}
	defer rc.Close()
	return r.uploader.Upload(req, rc)
}

// Audit re-checks every archived manual. Items the archive no longer has
// are counted as missing and, with fix, returned to the pending pool.
// Check errors leave the manual untouched.
func (r *Reconciler) Audit(fix bool) (*model.AuditStats, error) {
	manuals, err := r.ledger.ListArchived()
	if err != nil {
		return nil, fmt.Errorf("listing archived manuals: %w", err)
	}

	stats := &model.AuditStats{}
	for i, m := range manuals {
		if i > 0 && r.pacer != nil {
			r.pacer.Wait()
		}
		stats.Checked++
		attrs := manualAttrs(m.ID, m.Brand, m.Model)

		itemURL := m.ArchiveUrl.String
		if itemURL == "" {
			itemURL = ArchiveItemURL(r.host, ArchiveIdentifier(m))
		}

		exists, err := r.checker.Exists(itemURL)
		if err != nil {
			r.logger.Warn("audit check failed", append(attrs, "url", itemURL, "error", err)...)
			continue
		}
		if exists {
			stats.Verified++
			continue
		}

		stats.Missing++
		r.logger.Warn("archived manual missing from archive", append(attrs, "url", itemURL)...)
		if fix {
			if err := r.ledger.UnmarkArchived(m.ID); err != nil {
				return stats, fmt.Errorf("unmarking manual %d: %w", m.ID, err)
			}
			stats.Unmarked++
		}
	}

	return stats, nil
}
