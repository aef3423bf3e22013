package domain

import (
	"context"
	"time"
)

// RecipeRepository defines the interface for recipe persistence.
// ReplaceAll swaps the entire table in one transaction so concurrent
// readers observe either the old generation or the new one, never a
// partially emptied store.
type RecipeRepository interface {
	ReplaceAll(ctx context.Context, recipes []Recipe) error
	GetByID(ctx context.Context, id int64) (*Recipe, error)
	GetAll(ctx context.Context) ([]Recipe, error)
	GetAllPage(ctx context.Context, page, size int) (*PagedRecipes, error)
	Search(ctx context.Context, query string) ([]Recipe, error)
	SearchPage(ctx context.Context, query string, page, size int) (*PagedRecipes, error)
	Count(ctx context.Context) (int, error)
}

// CacheRepository defines the interface for caching operations.
// Flush drops every entry across all regions; the loader calls it after
// each successful replace.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}

// ExternalClient defines the interface for fetching the upstream
// recipe dataset. Fetch absorbs every transport failure and returns the
// empty payload instead of an error.
type ExternalClient interface {
	Fetch(ctx context.Context) *RawPayload
}
