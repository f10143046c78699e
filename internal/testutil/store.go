package testutil

import (
	"salli-go/internal/store"
)

// NewTestStore creates an unbounded in-memory content store.
func NewTestStore() *store.MemoryStore {
	return store.NewMemoryStore(0)
}
