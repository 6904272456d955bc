package gcsuploader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ StorageService = (*GCSStorageService)(nil)

func TestGCSStorageService_LocalRoundTrip(t *testing.T) {
	svc := NewGCSStorageService(Options{})
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "nested", "matches.csv")

	require.NoError(t, svc.Put(ctx, path, []byte("a,b\n1,2\n"), "text/csv"))

	got, err := svc.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))
}

func TestGCSStorageService_FetchMissingLocal(t *testing.T) {
	svc := NewGCSStorageService(Options{})
	_, err := svc.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGCSStorageService_InvalidURI(t *testing.T) {
	svc := NewGCSStorageService(Options{})
	_, err := svc.Fetch(context.Background(), "gs://bucket-only")
	assert.ErrorContains(t, err, "invalid GCS URI")

	err = svc.Put(context.Background(), "gs://", nil, "")
	assert.ErrorContains(t, err, "invalid GCS URI")
}

func TestUploadFile_MissingLocalFile(t *testing.T) {
	err := UploadFile(context.Background(), Options{}, "bucket", "object", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "open file")
}

func TestOptions_ClientOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"application default credentials", Options{}, 0},
		{"credentials file", Options{CredentialsFile: "creds.json"}, 1},
		{"emulator", Options{Endpoint: "http://localhost:4443/storage/v1/"}, 2},
		{"endpoint with credentials", Options{CredentialsFile: "creds.json", Endpoint: "https://example.test"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.opts.clientOptions(), tt.want)
		})
	}
}
