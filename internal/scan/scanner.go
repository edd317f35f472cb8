package scan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"rawdb/internal/model"
	"rawdb/internal/recon"
)

// FilesystemScanner walks a directory tree and reports the regular files
// found there. Symlinks, devices and other special files are skipped, as
// are files whose extension is in the ignore set.
type FilesystemScanner struct {
	ignore *IgnoreSet
}

// NewFilesystemScanner creates a scanner that skips files with the given
// extensions (in addition to the built-in sidecar defaults).
func NewFilesystemScanner(ignoreExtensions []string) *FilesystemScanner {
	return &FilesystemScanner{ignore: NewIgnoreSet(ignoreExtensions)}
}

// Scan walks root and returns one record per regular file, ordered by
// absolute path. The root must exist and be a directory.
func (s *FilesystemScanner) Scan(ctx context.Context, root string) ([]model.BasicRecord, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", absRoot)
	}

	var records []model.BasicRecord
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.ignore.Match(p) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		records = append(records, model.BasicRecord{
			Name: d.Name(),
			Path: p,
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	// WalkDir visits entries in lexical order per directory, but the final
	// inventory ordering must hold across the whole tree.
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	return records, nil
}

// Open opens a scanned file for reading.
func (s *FilesystemScanner) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Compile-time check that FilesystemScanner implements recon.Scanner
var _ recon.Scanner = (*FilesystemScanner)(nil)
