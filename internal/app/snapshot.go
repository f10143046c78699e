package app

import (
	"fmt"
	"os"
	"path/filepath"

	"salli-go/internal/config"
	"salli-go/internal/encryption"
	"salli-go/internal/store"
)

// SetupKeys generates the snapshot encryption key pair named in cfg.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	return enc.Setup(passphrase)
}

// SnapshotNeedsPassphrase reports whether restoring requires unlocking a
// private key.
func SnapshotNeedsPassphrase(cfg *config.Config) (bool, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return false, fmt.Errorf("creating encryptor: %w", err)
	}
	_, plain := snapshotEncryptor(enc).(encryption.PlainEncryptor)
	return !plain, nil
}

// RestoreSnapshot fetches the latest ledger snapshot for this host from the
// store, decrypts it, and writes it to destPath. It returns the snapshot
// version. It does not open the local ledger, so it works when the ledger
// is missing or behind.
func RestoreSnapshot(cfg *config.Config, destPath, passphrase string) (int64, error) {
	st, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		return 0, fmt.Errorf("creating store: %w", err)
	}

	version, err := st.GetMetadataVersion(cfg.HostID, SnapshotName)
	if err != nil {
		return 0, fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no ledger snapshot stored for host %s", cfg.HostID)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := snapshotEncryptor(enc).Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	sealed, err := tempPath("salli-restore-*.snap")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(sealed)

	f, err := os.OpenFile(sealed, os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("opening temp file: %w", err)
	}
	err = st.GetMetadata(cfg.HostID, SnapshotName, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("fetching ledger snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}
	tmpDest := destPath + ".restore"
	if err := encryption.OpenFile(dc, sealed, tmpDest); err != nil {
		os.Remove(tmpDest)
		return 0, fmt.Errorf("decrypting ledger snapshot: %w", err)
	}
	if err := os.Rename(tmpDest, destPath); err != nil {
		os.Remove(tmpDest)
		return 0, fmt.Errorf("installing restored ledger: %w", err)
	}
	return version, nil
}

// LedgerPath returns the file the sqlite ledger lives in.
func LedgerPath(cfg *config.Config) (string, error) {
	if cfg.Database.Type != "sqlite" {
		return "", fmt.Errorf("database type %q has no ledger file", cfg.Database.Type)
	}
	return filepath.Join(cfg.Database.DataDir, cfg.HostID+".db"), nil
}
