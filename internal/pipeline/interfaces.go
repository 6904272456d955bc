package pipeline

import "context"

// Store is the part of gcs.StorageService the pipeline needs: reading inputs
// and writing exports. Locations are local paths or gs:// URIs.
type Store interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
	Put(ctx context.Context, location string, data []byte, contentType string) error
}
