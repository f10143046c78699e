package store

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestMemoryStore_Put(t *testing.T) {
	s := NewMemoryStore(0)

	first, err := s.Put(strings.NewReader("hello world"), ".pdf")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if first.Path != helloPath || first.Existed {
		t.Errorf("first Put() = %+v", first)
	}

	second, err := s.Put(strings.NewReader("hello world"), ".pdf")
	if err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	if !second.Existed || second.Path != first.Path {
		t.Errorf("second Put() = %+v", second)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	rc, err := s.Open(helloPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "hello world" {
		t.Errorf("Open() content = %q", data)
	}

	if _, err := s.Open("aa/bb/aabb.pdf"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing) error = %v", err)
	}
}

func TestMemoryStore_MaxSize(t *testing.T) {
	s := NewMemoryStore(4)
	if _, err := s.Put(strings.NewReader("hello"), ".pdf"); !errors.Is(err, ErrObjectTooLarge) {
		t.Errorf("Put() error = %v, want ErrObjectTooLarge", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestMemoryStore_Metadata(t *testing.T) {
	s := NewMemoryStore(0)
	data := []byte("snap")

	if err := s.PutMetadata("h", "ledger", bytes.NewReader(data), 4, 3); err != nil {
		t.Fatalf("PutMetadata() error = %v", err)
	}
	v, _ := s.GetMetadataVersion("h", "ledger")
	if v != 3 {
		t.Errorf("GetMetadataVersion() = %d, want 3", v)
	}

	var buf bytes.Buffer
	if err := s.GetMetadata("h", "ledger", &buf); err != nil || buf.String() != "snap" {
		t.Errorf("GetMetadata() = %q, %v", buf.String(), err)
	}
}
