package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// Options selects a Blobs backend.
type Options struct {
	Backend      string
	DataDir      string
	DatabasePath string
	S3           S3Config
}

// Open creates the configured Blobs backend.
func Open(ctx context.Context, o Options) (Blobs, error) {
	switch o.Backend {
	case BackendFS, "":
		return NewFS(o.DataDir)

	case BackendSQLite:
		if dir := filepath.Dir(o.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		return NewSQLite(o.DatabasePath)

	case BackendS3:
		client, err := NewS3Client(ctx, o.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(client, o.S3.Bucket, o.S3.Prefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", o.Backend)
}
