package salli

import (
	"fmt"
	"io"
	"os"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// Cleanup produces stripped renditions for manuals downloaded without one.
// The new rendition becomes primary only when it is smaller than the
// original; the original is never removed.
type Cleanup struct {
	ledger  Ledger
	store   ContentStore
	cleaner Cleaner
	logger  Logger
	tempDir string
}

// NewCleanup creates a Cleanup pass.
func NewCleanup(ledger Ledger, store ContentStore, cleaner Cleaner, tempDir string, logger Logger) *Cleanup {
	return &Cleanup{
		ledger:  ledger,
		store:   store,
		cleaner: cleaner,
		logger:  logger,
		tempDir: tempDir,
	}
}

// Run cleans up to limit manuals (0 means all). Per-manual failures are
// logged and skipped; ledger errors abort the pass.
func (c *Cleanup) Run(limit int) (*model.CleanupStats, error) {
	manuals, err := c.ledger.PendingForCleanup(limit)
	if err != nil {
		return nil, fmt.Errorf("fetching manuals to clean: %w", err)
	}

	stats := &model.CleanupStats{}
	for _, m := range manuals {
		stats.Considered++
		attrs := manualAttrs(m.ID, m.Brand, m.Model)

		original, err := c.ledger.VariantByKind(m.ID, model.VariantOriginal)
		if err != nil {
			return stats, fmt.Errorf("finding original variant: %w", err)
		}
		if original == nil {
			continue
		}

		stripped, err := c.produce(original)
		if err != nil {
			stats.Failed++
			c.logger.Warn("cleanup failed", append(attrs, "path", original.FilePath, "error", err)...)
			continue
		}

		promote := stripped.Size < original.FileSize && stripped.Digests.SHA1 != original.FileSha1
		if _, _, err := c.ledger.RegisterVariant(&model.NewVariant{
			ManualID:  m.ID,
			Kind:      model.VariantStripped,
			File:      fileRecord(stripped),
			IsPrimary: promote,
		}); err != nil {
			return stats, fmt.Errorf("registering stripped variant: %w", err)
		}

		stats.Produced++
		if promote {
			stats.Promoted++
			c.logger.Info("stripped rendition promoted", append(attrs, "original_size", original.FileSize, "stripped_size", stripped.Size)...)
		} else {
			stats.Unchanged++
			c.logger.Debug("stripped rendition kept as secondary", attrs...)
		}
	}

	return stats, nil
}

// produce copies the original out of the store, cleans it, and stores the
// result.
func (c *Cleanup) produce(original *sqlc.FileVariant) (*model.StoredObject, error) {
	in, err := os.CreateTemp(c.tempDir, "salli-clean-in-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	inPath := in.Name()
	defer os.Remove(inPath)

	rc, err := c.store.Open(original.FilePath)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("opening original: %w", err)
	}
	_, err = io.Copy(in, rc)
	rc.Close()
	if cerr := in.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("copying original: %w", err)
	}

	outPath := inPath + ".out.pdf"
	defer os.Remove(outPath)
	if err := c.cleaner.Clean(inPath, outPath); err != nil {
		return nil, fmt.Errorf("cleaning: %w", err)
	}

	out, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("opening cleaned file: %w", err)
	}
	defer out.Close()
	return c.store.Put(out, DocumentExt)
}
