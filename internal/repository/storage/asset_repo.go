package storage

import (
	"context"
	"errors"
	"io"
)

// ErrKeyExists is returned when an upload targets a key that already exists.
// Keys are freshly generated per upload, so hitting this means a collision or
// a duplicated request, and the mutation that triggered the upload must abort.
var ErrKeyExists = errors.New("asset key already exists")

// AssetRepository defines the contract to the object store: upload bytes under
// a key, delete a key, and resolve a key to a retrievable URL.
type AssetRepository interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
	Delete(ctx context.Context, key string) error
	ResolveURL(ctx context.Context, key string) (string, error)
}
