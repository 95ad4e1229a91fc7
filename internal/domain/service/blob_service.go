package service

import "context"

// UploadHandle is a one-shot target the client PUTs bytes to directly. The
// storage ref is what gets persisted; the URL is never stored.
type UploadHandle struct {
	UploadURL  string `json:"upload_url"`
	StorageRef string `json:"storage_ref"`
}

// BlobStorageService abstracts the external blob store. Refs are resolved to
// short-lived fetchable URLs at read time.
type BlobStorageService interface {
	GenerateUploadHandle(ctx context.Context, contentType string) (*UploadHandle, error)
	Resolve(ctx context.Context, storageRef string) (string, error)
	Delete(ctx context.Context, storageRef string) error
	Close() error
}
