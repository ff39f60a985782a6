package ports

import "context"

// KeyValueStore returns domain.ErrKeyNotFound (wrapped) from Get when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
