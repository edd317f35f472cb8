package archive

import (
	"context"
	"fmt"

	"rawdb/internal/config"
	"rawdb/internal/recon"
)

// NewArchiveFromConfig creates the archive backend described by the
// configuration.
func NewArchiveFromConfig(ctx context.Context, cfg config.ArchiveConfig) (recon.Archive, error) {
	switch cfg.Type {
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem archive requires a root directory")
		}
		return NewFilesystemArchive(cfg.Root)
	case "s3":
		return NewS3Archive(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
	case "memory":
		return NewMemoryArchive(), nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
