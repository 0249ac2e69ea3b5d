package services

import (
	"context"
	"time"
)

// CacheService interface for caching operations
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// Current document feed per property
	CurrentDocumentsKeyPattern = "tecdoc_current:%s"

	// Derived regularization readiness per property
	ReadinessKeyPattern = "property_readiness:%s"
)

// Cache TTLs
const (
	CurrentDocumentsTTL = 5 * time.Minute
	ReadinessTTL        = 10 * time.Minute
)
