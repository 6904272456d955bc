package gcs

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Scheme prefixes every Cloud Storage URI.
const Scheme = "gs://"

// StorageService reads and writes the files a matching run consumes and
// produces. Locations are either local paths or gs://bucket/object URIs.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// Fetch returns the bytes stored at location.
	Fetch(ctx context.Context, location string) ([]byte, error)

	// Put stores data at location, replacing any existing content.
	Put(ctx context.Context, location string, data []byte, contentType string) error

	// UploadFile uploads a local file to a bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error
}

// IsURI reports whether location names a Cloud Storage object.
func IsURI(location string) bool {
	return strings.HasPrefix(location, Scheme)
}

// ParseURI splits gs://bucket/path/to/object into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// URI builds gs://bucket/object.
func URI(bucket, object string) string {
	return Scheme + bucket + "/" + strings.TrimPrefix(object, "/")
}

// Filename returns the last path element of a local path or GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func Filename(location string) string {
	if !IsURI(location) {
		return path.Base(strings.ReplaceAll(location, "\\", "/"))
	}
	trimmed := strings.TrimPrefix(location, Scheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
