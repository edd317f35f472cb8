package archive

import (
	"context"
	"testing"

	"rawdb/internal/config"
)

func TestNewArchiveFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		wantErr bool
	}{
		{
			name: "filesystem archive",
			cfg: config.ArchiveConfig{
				Type: "filesystem",
				Root: t.TempDir(),
			},
			wantErr: false,
		},
		{
			name:    "filesystem archive without root",
			cfg:     config.ArchiveConfig{Type: "filesystem"},
			wantErr: true,
		},
		{
			name:    "memory archive",
			cfg:     config.ArchiveConfig{Type: "memory"},
			wantErr: false,
		},
		{
			name:    "s3 archive without bucket",
			cfg:     config.ArchiveConfig{Type: "s3", S3Region: "us-east-1"},
			wantErr: true,
		},
		{
			name:    "unknown archive type",
			cfg:     config.ArchiveConfig{Type: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewArchiveFromConfig(context.Background(), tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewArchiveFromConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got == nil {
				t.Error("NewArchiveFromConfig() returned nil archive")
			}
		})
	}
}
