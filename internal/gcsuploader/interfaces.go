package gcsuploader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/deposit-matcher/internal/gcs"
)

// Re-export interface from shared package
type StorageService = gcs.StorageService

// GCSStorageService implements StorageService for local paths and gs:// URIs.
type GCSStorageService struct {
	opts Options
}

// NewGCSStorageService creates a new instance of GCSStorageService.
func NewGCSStorageService(opts Options) *GCSStorageService {
	return &GCSStorageService{opts: opts}
}

// Fetch reads a local file or downloads a GCS object.
func (s *GCSStorageService) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !gcs.IsURI(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", location, err)
		}
		return data, nil
	}

	bucket, object, err := gcs.ParseURI(location)
	if err != nil {
		return nil, err
	}
	return DownloadFile(ctx, s.opts, bucket, object)
}

// Put writes a local file, creating parent directories, or uploads a GCS object.
func (s *GCSStorageService) Put(ctx context.Context, location string, data []byte, contentType string) error {
	if !gcs.IsURI(location) {
		if dir := filepath.Dir(location); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", dir, err)
			}
		}
		if err := os.WriteFile(location, data, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", location, err)
		}
		return nil
	}

	bucket, object, err := gcs.ParseURI(location)
	if err != nil {
		return err
	}
	return upload(ctx, s.opts, bucket, object, contentType, bytes.NewReader(data))
}

// UploadFile delegates to the package-level UploadFile.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return UploadFile(ctx, s.opts, bucketName, objectName, filePath)
}
