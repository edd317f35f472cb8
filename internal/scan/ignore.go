package scan

import (
	"path/filepath"
	"strings"
)

// defaultIgnoreExtensions are sidecar files that edit tools drop next to
// images. They never belong in the inventory.
var defaultIgnoreExtensions = []string{".xmp", ".pp3"}

// IgnoreSet filters scanned files by extension. Extensions are compared
// case-insensitively.
type IgnoreSet struct {
	extensions map[string]struct{}
}

// NewIgnoreSet creates an IgnoreSet from raw extension strings. Entries are
// lowercased and given a leading dot if missing; blank entries are skipped.
// The defaults are always included.
func NewIgnoreSet(raw []string) *IgnoreSet {
	extensions := make(map[string]struct{})
	for _, ext := range append(defaultIgnoreExtensions, raw...) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = struct{}{}
	}
	return &IgnoreSet{extensions: extensions}
}

// Match reports whether the given path should be ignored.
func (s *IgnoreSet) Match(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}
