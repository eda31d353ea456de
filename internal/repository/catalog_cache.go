package repository

import (
	"context"
	"time"
)

// CatalogCache holds marshaled coupon definitions keyed by coupon ID.
// Implementations: Redis (production) or in-memory (local dev / single
// instance). A nil result from Get means miss, not error.
type CatalogCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
