package application

import (
	"context"
	"io"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
)

// JobPublisher enqueues background jobs (RabbitMQ in production).
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserIndexer keeps the searchable user documents in sync.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// AvatarStore persists uploaded avatar images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
