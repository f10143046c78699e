package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"salli-go/internal/model"
	"salli-go/internal/salli"
)

// FileSystemStore is a filesystem-based implementation of salli.ContentStore.
//
//	<root>/
//	  objects/
//	    ab/cd/<sha1>.pdf      (content, named by SHA-1)
//	  staging/                (private temp files for in-flight Puts)
//	  metadata/
//	    <hostID>.<name>       (ledger snapshots)
//	    <hostID>.<name>.version
type FileSystemStore struct {
	root        string
	objectsDir  string
	stagingDir  string
	metadataDir string
	maxSize     int64
}

// NewFileSystemStore creates a store rooted at root. maxSize of zero means
// objects of any size are accepted.
func NewFileSystemStore(root string, maxSize int64) (*FileSystemStore, error) {
	s := &FileSystemStore{
		root:        root,
		objectsDir:  filepath.Join(root, "objects"),
		stagingDir:  filepath.Join(root, "staging"),
		metadataDir: filepath.Join(root, "metadata"),
		maxSize:     maxSize,
	}

	for _, dir := range []string{s.objectsDir, s.stagingDir, s.metadataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return s, nil
}

// Put stages r, then hard-links the staged file to its content path. The
// link fails if the path is taken, which makes placement atomic and
// create-if-absent even with concurrent writers of the same bytes.
func (s *FileSystemStore) Put(r io.Reader, ext string) (*model.StoredObject, error) {
	staged, digests, size, err := stageObject(s.stagingDir, r, s.maxSize)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	rel, err := salli.ContentPath(digests.SHA1, ext)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(s.objectsDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	existed := false
	if err := os.Link(staged, dest); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to place object %s: %w", rel, err)
		}
		existed = true
	}

	return &model.StoredObject{
		Path:    rel,
		Digests: digests,
		Size:    size,
		Existed: existed,
	}, nil
}

func (s *FileSystemStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.objectPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", path, err)
	}
	return f, nil
}

func (s *FileSystemStore) Exists(path string) (bool, error) {
	full, err := s.objectPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking object %s: %w", path, err)
	}
	return true, nil
}

// objectPath resolves a store-relative path, refusing anything that would
// leave the objects directory.
func (s *FileSystemStore) objectPath(path string) (string, error) {
	local := filepath.FromSlash(path)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("invalid object path: %q", path)
	}
	return filepath.Join(s.objectsDir, local), nil
}

// PutMetadata stores a named metadata item for a host along with a version marker.
func (s *FileSystemStore) PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error {
	destPath := s.metadataPath(hostID, name)
	if err := writeFile(destPath, r, size); err != nil {
		return err
	}

	versionData := strconv.FormatInt(version, 10)
	return os.WriteFile(destPath+".version", []byte(versionData), 0644)
}

// GetMetadataVersion returns 0 if no version file exists.
func (s *FileSystemStore) GetMetadataVersion(hostID string, name string) (int64, error) {
	data, err := os.ReadFile(s.metadataPath(hostID, name) + ".version")
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

func (s *FileSystemStore) GetMetadata(hostID string, name string, w io.Writer) error {
	f, err := os.Open(s.metadataPath(hostID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("metadata %q not found for host %s: %w", name, hostID, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to open metadata: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	return nil
}

func (s *FileSystemStore) metadataPath(hostID, name string) string {
	return filepath.Join(s.metadataDir, hostID+"."+name)
}

// ValidateSetup verifies that the store directories are accessible.
func (s *FileSystemStore) ValidateSetup() error {
	for _, dir := range []string{s.root, s.objectsDir, s.stagingDir, s.metadataDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("store directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes r to destPath through a temp file and rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

var _ salli.ContentStore = (*FileSystemStore)(nil)
