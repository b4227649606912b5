package storage

import "context"

// StoredFile identifies an uploaded object and its public address.
type StoredFile struct {
	StorageKey string
	PublicURL  string
}

// FileStorage persists listing images.
type FileStorage interface {
	Save(ctx context.Context, content []byte, folder, filename string) (*StoredFile, error)
	Delete(ctx context.Context, storageKey string) error
}
