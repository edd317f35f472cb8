package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"rawdb/internal/recon"
)

// MemoryArchive is an in-memory implementation of the Archive interface.
// Use in tests.
type MemoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

func (a *MemoryArchive) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.objects[key]; ok {
		return fmt.Errorf("archive already contains %s", key)
	}
	a.objects[key] = data
	return nil
}

func (a *MemoryArchive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, fmt.Errorf("archive does not contain %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *MemoryArchive) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[key]
	return ok, nil
}

func (a *MemoryArchive) Path(key string) string {
	return "mem://" + key
}

// Len returns the number of stored objects. Test helper.
func (a *MemoryArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

// Compile-time check that MemoryArchive implements recon.Archive
var _ recon.Archive = (*MemoryArchive)(nil)
