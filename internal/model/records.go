package model

import (
	"bytes"
	"database/sql"
	"encoding/hex"
)

// DateFormat is the textual timestamp form stored for capture dates.
// Lexicographic order on this form is chronological order, which the
// transfer planner relies on.
const DateFormat = "2006-01-02T15:04:05"

// Side identifies which inventory a record belongs to.
type Side int

const (
	// Disk is the persistent archive inventory.
	Disk Side = iota
	// Camera is the removable-media inventory.
	Camera
)

func (s Side) String() string {
	switch s {
	case Disk:
		return "disk"
	case Camera:
		return "camera"
	default:
		return "unknown"
	}
}

// Checksum is an optional content digest. Valid=false means the digest has
// not been computed yet — a distinct state from an empty digest, which is a
// computed (if degenerate) value.
type Checksum struct {
	Sum   []byte
	Valid bool
}

// NewChecksum wraps a computed digest.
func NewChecksum(sum []byte) Checksum {
	return Checksum{Sum: sum, Valid: true}
}

// Key returns the digest as a lowercase hex string, suitable as a map key.
// Only meaningful when Valid.
func (c Checksum) Key() string {
	return hex.EncodeToString(c.Sum)
}

// Equal reports whether both checksums are present and identical.
func (c Checksum) Equal(other Checksum) bool {
	return c.Valid && other.Valid && bytes.Equal(c.Sum, other.Sum)
}

// Conflicts reports whether both checksums are present and differ.
// Two records with conflicting checksums are content-provably different,
// regardless of what their metadata says.
func (c Checksum) Conflicts(other Checksum) bool {
	return c.Valid && other.Valid && !bytes.Equal(c.Sum, other.Sum)
}

// BasicRecord is what a filesystem scan yields before any file content is
// opened: identity by path, plus name and size from the directory entry.
type BasicRecord struct {
	Name string
	Path string
	Size int64
}

// FileRecord is a fully described inventory entry. Disk and camera
// inventories share the shape; Saved is only meaningful on the camera side.
type FileRecord struct {
	Name     string
	Path     string // unique within its inventory
	Size     int64
	Checksum Checksum       // absent until hashed
	Date     sql.NullString // capture/modification time in DateFormat
	Duration sql.NullInt64  // media playback length in milliseconds
	Saved    bool           // camera only: represented in the disk inventory
}

// Basic returns the scan-level projection of the record.
func (r *FileRecord) Basic() BasicRecord {
	return BasicRecord{Name: r.Name, Path: r.Path, Size: r.Size}
}
