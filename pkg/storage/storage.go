// Package storage keeps uploaded files on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"connectsphere/config"

	"github.com/google/uuid"
)

// Storage saves an object and returns the URL clients fetch it from.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// New picks the backend named by cfg.Backend.
func New(ctx context.Context, cfg config.UploadConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Dir, cfg.URLPrefix)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}

// ObjectName is a fresh random name keeping the extension of original.
func ObjectName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}
