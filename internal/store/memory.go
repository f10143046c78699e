package store

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"salli-go/internal/model"
	"salli-go/internal/salli"
)

// MemoryStore is an in-memory implementation of salli.ContentStore.
// It is safe for concurrent use.
type MemoryStore struct {
	objects         map[string][]byte // content path -> bytes
	metadata        map[string][]byte // "hostID/name" -> snapshot
	metadataVersion map[string]int64
	maxSize         int64
	mu              sync.RWMutex
}

func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		objects:         make(map[string][]byte),
		metadata:        make(map[string][]byte),
		metadataVersion: make(map[string]int64),
		maxSize:         maxSize,
	}
}

func metadataKey(hostID, name string) string {
	return hostID + "/" + name
}

func (m *MemoryStore) Put(r io.Reader, ext string) (*model.StoredObject, error) {
	src := r
	if m.maxSize > 0 {
		src = io.LimitReader(r, m.maxSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if m.maxSize > 0 && int64(len(data)) > m.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrObjectTooLarge, m.maxSize)
	}

	digests, size, err := salli.ComputeDigests(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	rel, err := salli.ContentPath(digests.SHA1, ext)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.objects[rel]
	if !existed {
		m.objects[rel] = data
	}
	return &model.StoredObject{Path: rel, Digests: digests, Size: size, Existed: existed}, nil
}

func (m *MemoryStore) Open(path string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("opening object %s: %w", path, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[path]
	return ok, nil
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryStore) PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := metadataKey(hostID, name)
	m.metadata[key] = data
	m.metadataVersion[key] = version
	return nil
}

func (m *MemoryStore) GetMetadataVersion(hostID string, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.metadataVersion[metadataKey(hostID, name)], nil
}

func (m *MemoryStore) GetMetadata(hostID string, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.metadata[metadataKey(hostID, name)]
	if !ok {
		return fmt.Errorf("metadata %q not found for host %s: %w", name, hostID, fs.ErrNotExist)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

var _ salli.ContentStore = (*MemoryStore)(nil)
