package storage

import (
	"context"
)

// Store persists uploaded blobs (resumes, chat attachments) and hands back a
// stable URL. Keys are caller-chosen and unique per object.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Load(ctx context.Context, key string) ([]byte, error)
}
