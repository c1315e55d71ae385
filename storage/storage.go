package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("stored object not found")

// Storage interface for file storage operations
type Storage interface {
	// Upload stores a file under a namespace (the owning session) and returns the storage path
	Upload(ctx context.Context, namespace string, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error

	// DeleteNamespace removes every file stored under a namespace
	DeleteNamespace(ctx context.Context, namespace string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// generateStoragePath generates a unique storage path for a file
func generateStoragePath(namespace string, fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := sanitize(strings.TrimSuffix(filepath.Base(filename), ext))
	if baseName == "" {
		baseName = "file"
	}

	ns := sanitize(namespace)
	if ns == "" {
		ns = fileID.String()[:2]
	}

	// fileID keeps paths unique even for identical filenames
	return fmt.Sprintf("%s/%s_%s%s", ns, fileID.String(), baseName, sanitize(ext))
}

// namespacePrefix is the directory or key prefix that holds a namespace
func namespacePrefix(namespace string) (string, error) {
	ns := sanitize(namespace)
	if ns == "" {
		return "", errors.New("empty storage namespace")
	}
	return ns + "/", nil
}

func sanitize(s string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_")
	return r.Replace(s)
}

// ContentType determines content type from filename
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
