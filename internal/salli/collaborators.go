package salli

import (
	"io"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// ExistenceChecker asks the remote archive whether an item page exists
// without transferring its content.
type ExistenceChecker interface {
	// Exists returns true for a present item, false for a definite miss,
	// and an error for anything it cannot classify.
	Exists(itemURL string) (bool, error)
}

// Uploader sends one manual to the remote archive. Uploading an identifier
// that already exists must not fail.
type Uploader interface {
	Upload(req *model.UploadRequest, content io.Reader) error
}

// FetchInfo describes a fetched document.
type FetchInfo struct {
	Filename    string
	ContentType string
}

// Fetcher downloads a manual's document and writes its bytes to w.
type Fetcher interface {
	Fetch(m *sqlc.Manual, w io.Writer) (*FetchInfo, error)
}

// Cleaner produces a transformed rendition of the file at inPath and writes
// it to outPath.
type Cleaner interface {
	Clean(inPath, outPath string) error
}

// Encryptor handles encryption of ledger snapshots and unlocking for
// decryption. Encryption uses the public key only; decryption requires a
// passphrase to unlock the private key.
type Encryptor interface {
	// Setup generates a key pair, stores the public key in plaintext, and
	// encrypts the private key with the passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a DecryptionContext.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the
// duration of a session.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
