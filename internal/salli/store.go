package salli

import (
	"io"

	"salli-go/internal/model"
)

// ContentStore is a content-addressed object store for manual files.
// Objects live at ContentPath(sha1, ext); writing bytes that are already
// present is a no-op, so identical downloads from different sources share
// one object.
type ContentStore interface {
	// Put stages r in a private location, digests it, and moves it to its
	// content path unless an object is already there. The returned
	// StoredObject has Existed set when the staged copy was discarded.
	Put(r io.Reader, ext string) (*model.StoredObject, error)

	// Open returns a reader for the object at a store-relative path.
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether an object is present at path.
	Exists(path string) (bool, error)

	// PutMetadata stores a named metadata item for a host, along with a
	// version used for consistency checks. Known names: "ledger".
	PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error

	// GetMetadata retrieves a named metadata item for a host and writes it to w.
	GetMetadata(hostID string, name string, w io.Writer) error

	// GetMetadataVersion returns the version stored with a metadata item.
	// Returns 0 if nothing has been stored.
	GetMetadataVersion(hostID string, name string) (int64, error)

	// ValidateSetup verifies that the store is accessible.
	ValidateSetup() error
}
