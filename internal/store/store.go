// Package store provides access to the document store that bill uploads land
// in: a bucket of blobs keyed by filename, supporting list, download, delete.
package store

import "context"

// Object describes one stored document.
type Object struct {
	Name string
	Size int64
}

// Store defines the interface the batch pipeline requires from blob storage.
type Store interface {
	// List returns every object currently in the bucket.
	List(ctx context.Context) ([]Object, error)

	// Download retrieves the raw bytes for a filename.
	Download(ctx context.Context, name string) ([]byte, error)

	// Delete removes an object by filename.
	Delete(ctx context.Context, name string) error
}
