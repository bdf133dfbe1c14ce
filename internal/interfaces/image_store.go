package interfaces

import "context"

// ImageStore archives uploaded recognition photos.
type ImageStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}
