package testutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"rawdb/internal/model"
	"rawdb/internal/recon"
)

// StubScanner serves a fixed set of files instead of walking a filesystem.
// Files maps path to content; Scan derives names, sizes and ordering from
// it. Safe for concurrent use.
type StubScanner struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

// NewStubScanner creates a scanner serving the given path-to-content map.
func NewStubScanner(files map[string][]byte) *StubScanner {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &StubScanner{Files: files}
}

func (s *StubScanner) Scan(ctx context.Context, root string) ([]model.BasicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var records []model.BasicRecord
	for p, data := range s.Files {
		records = append(records, model.BasicRecord{
			Name: baseName(p),
			Path: p,
			Size: int64(len(data)),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

func (s *StubScanner) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// StubProber serves fixed metadata by path. Paths not in the map yield a
// zero Metadata, like a prober facing an unknown file type.
type StubProber struct {
	Meta map[string]recon.Metadata
	Err  error
}

func NewStubProber() *StubProber {
	return &StubProber{Meta: make(map[string]recon.Metadata)}
}

func (p *StubProber) Probe(ctx context.Context, path string) (recon.Metadata, error) {
	if p.Err != nil {
		return recon.Metadata{}, p.Err
	}
	return p.Meta[path], nil
}

// StubHasher hashes the content it is given with real SHA-256. Sum looks
// the path up in Files; a Delay makes Sum wait so timeout behavior can be
// exercised.
type StubHasher struct {
	Files map[string][]byte
	Delay time.Duration
	Err   error
}

// NewStubHasher creates a hasher over the same path-to-content map the
// scanner serves.
func NewStubHasher(files map[string][]byte) *StubHasher {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &StubHasher{Files: files}
}

func (h *StubHasher) Sum(ctx context.Context, path string) (model.Checksum, error) {
	if h.Err != nil {
		return model.Checksum{}, h.Err
	}
	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return model.Checksum{}, ctx.Err()
		}
	}
	data, ok := h.Files[path]
	if !ok {
		return model.Checksum{}, fmt.Errorf("no such file: %s", path)
	}
	sum := sha256.Sum256(data)
	return model.NewChecksum(sum[:]), nil
}

func (h *StubHasher) SumReader(r io.Reader) (model.Checksum, error) {
	digest := sha256.New()
	if _, err := io.Copy(digest, r); err != nil {
		return model.Checksum{}, err
	}
	return model.NewChecksum(digest.Sum(nil)), nil
}

// Compile-time interface checks
var (
	_ recon.Scanner = (*StubScanner)(nil)
	_ recon.Prober  = (*StubProber)(nil)
	_ recon.Hasher  = (*StubHasher)(nil)
)
