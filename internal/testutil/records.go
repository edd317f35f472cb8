package testutil

import (
	"database/sql"

	"rawdb/internal/model"
)

// Record builds a FileRecord with just the basic identity fields set.
// Checksum and date start absent.
func Record(name, path string, size int64) model.FileRecord {
	return model.FileRecord{Name: name, Path: path, Size: size}
}

// Date wraps a date string in the nullable form records carry.
func Date(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// WithDate returns a copy of rec with the given capture date.
func WithDate(rec model.FileRecord, date string) model.FileRecord {
	rec.Date = Date(date)
	return rec
}

// WithChecksum returns a copy of rec with the checksum of data.
func WithChecksum(rec model.FileRecord, data []byte) model.FileRecord {
	rec.Checksum = ChecksumOf(data)
	return rec
}
