package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rawdb/internal/recon"
)

// FilesystemArchive stores transferred files under a root directory, keyed
// by slash-separated relative paths ("2024-01-01/IMG_0001.jpg"). The layout
// stays a plain browsable image tree; nothing here is opaque to other tools.
type FilesystemArchive struct {
	root string
}

// NewFilesystemArchive creates an archive rooted at the given directory,
// creating it if needed.
func NewFilesystemArchive(root string) (*FilesystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving archive root: %w", err)
	}
	return &FilesystemArchive{root: abs}, nil
}

// Put stores size bytes from r under key. An existing key is an error —
// transfers never overwrite archived files.
//
// The write goes through a temp file in the destination directory and an
// atomic rename, so an interrupted transfer never leaves a half-written
// file under the final name.
func (a *FilesystemArchive) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	destPath := a.Path(key)

	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("archive already contains %s", key)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking destination: %w", err)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".rawdb-*")
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
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Open returns the archived bytes for verification.
func (a *FilesystemArchive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(a.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive does not contain %s", key)
		}
		return nil, fmt.Errorf("failed to open archived file: %w", err)
	}
	return f, nil
}

// Exists reports whether key is already present.
func (a *FilesystemArchive) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := os.Stat(a.Path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

// Path returns the absolute filesystem path for key. This is the path
// recorded in the disk inventory after a transfer.
func (a *FilesystemArchive) Path(key string) string {
	return filepath.Join(a.root, filepath.FromSlash(key))
}

// Root returns the archive root directory.
func (a *FilesystemArchive) Root() string {
	return a.root
}

// Compile-time check that FilesystemArchive implements recon.Archive
var _ recon.Archive = (*FilesystemArchive)(nil)
