package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:   "/home/user/.local/share/rawdb",
		LogDir:    "/home/user/.local/share/rawdb/log",
		SourceDir: "/media/camera/DCIM",
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/rawdb"},
		Archive: ArchiveConfig{
			Type:     "s3",
			S3Bucket: "raw-archive",
			S3Prefix: "photos",
			S3Region: "us-east-1",
		},
		Scan: ScanConfig{
			Ignore:      []string{".xmp", ".pp3"},
			FFProbePath: "/usr/bin/ffprobe",
		},
		Hash: HashConfig{Workers: 8, TimeoutSeconds: 60},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.SourceDir != original.SourceDir {
		t.Errorf("SourceDir = %q, want %q", got.SourceDir, original.SourceDir)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Archive.Type != "s3" {
		t.Errorf("Archive.Type = %q, want %q", got.Archive.Type, "s3")
	}
	if got.Archive.S3Bucket != "raw-archive" {
		t.Errorf("Archive.S3Bucket = %q, want %q", got.Archive.S3Bucket, "raw-archive")
	}
	if len(got.Scan.Ignore) != 2 {
		t.Fatalf("len(Scan.Ignore) = %d, want 2", len(got.Scan.Ignore))
	}
	if got.Hash.Workers != 8 {
		t.Errorf("Hash.Workers = %d, want %d", got.Hash.Workers, 8)
	}
	if got.Hash.TimeoutSeconds != 60 {
		t.Errorf("Hash.TimeoutSeconds = %d, want %d", got.Hash.TimeoutSeconds, 60)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/rawdb", "/media/camera")

	if cfg.BaseDir != "/data/rawdb" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/rawdb")
	}
	if cfg.LogDir != "/data/rawdb/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/rawdb/log")
	}
	if cfg.SourceDir != "/media/camera" {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, "/media/camera")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Archive.Type != "filesystem" {
		t.Errorf("Archive.Type = %q, want %q", cfg.Archive.Type, "filesystem")
	}
	if cfg.Archive.Root != "/data/rawdb/archive" {
		t.Errorf("Archive.Root = %q, want %q", cfg.Archive.Root, "/data/rawdb/archive")
	}
	if cfg.Hash.Workers != 4 {
		t.Errorf("Hash.Workers = %d, want %d", cfg.Hash.Workers, 4)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rawdb.toml")
		cfg := NewConfig(dir, "/media/camera")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rawdb.toml")
		cfg := NewConfig(dir, "/media/camera")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rawdb.toml")
		cfg := NewConfig(dir, "/media/camera/DCIM")
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.SourceDir != "/media/camera/DCIM" {
			t.Errorf("SourceDir = %q, want %q", got.SourceDir, "/media/camera/DCIM")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/rawdb.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
