package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/recipehub/backend/internal/domain"
	"github.com/recipehub/backend/internal/infrastructure/external"
)

// LoaderService drives one ingestion cycle: fetch the upstream dataset,
// normalize it, atomically replace the store, then flush every cache
// region.
type LoaderService struct {
	client domain.ExternalClient
	repo   domain.RecipeRepository
	cache  domain.CacheRepository
}

// NewLoaderService creates a new loader service with dependencies
func NewLoaderService(
	client domain.ExternalClient,
	repo domain.RecipeRepository,
	cache domain.CacheRepository,
) *LoaderService {
	return &LoaderService{
		client: client,
		repo:   repo,
		cache:  cache,
	}
}

// LoadRecipes runs one ingestion cycle. A missing or empty upstream
// dataset is a soft no-op that preserves existing data; a malformed
// entry or a storage failure aborts the whole call with the store left
// in its prior state.
func (s *LoaderService) LoadRecipes(ctx context.Context) error {
	payload := s.client.Fetch(ctx)

	if payload == nil || payload.Recipes == nil {
		log.Printf("[loader] external API returned no recipes data")
		return nil
	}
	if len(payload.Recipes) == 0 {
		log.Printf("[loader] external API returned an empty recipes list")
		return nil
	}

	recipes, err := external.MapRecipes(payload.Recipes)
	if err != nil {
		return fmt.Errorf("map recipes: %w", err)
	}

	if err := s.repo.ReplaceAll(ctx, recipes); err != nil {
		return fmt.Errorf("replace recipes: %w", err)
	}

	if err := s.cache.Flush(ctx); err != nil {
		// The store already holds the new generation; a flush failure
		// only extends staleness up to the TTL bound
		log.Printf("[loader] cache flush failed: %v", err)
	}

	log.Printf("[loader] loaded %d recipes into store", len(recipes))
	return nil
}
