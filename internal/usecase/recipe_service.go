package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/recipehub/backend/internal/domain"
)

// Cache key regions. The search key uses the raw query string: two
// queries differing only in surrounding whitespace are cached apart even
// though the store trims before matching. Kept for parity with the
// upstream behaviour; collapsing them would be a (harmless) improvement.
const (
	keyAllRecipes = "recipes:all"
)

func keyRecipeByID(id int64) string {
	return fmt.Sprintf("recipe:%d", id)
}

func keyRecipesPage(page, size int) string {
	return fmt.Sprintf("recipes:page:%d:%d", page, size)
}

func keySearch(query string) string {
	return "recipes:search:" + query
}

// keySearchPage puts page and size before the query so a query that
// happens to contain ":<digits>:<digits>" cannot alias another
// page/size combination, and uses its own prefix so it never collides
// with keySearch.
func keySearchPage(query string, page, size int) string {
	return fmt.Sprintf("recipes:searchpage:%d:%d:%s", page, size, query)
}

// RecipeServiceConfig holds configuration for the recipe service
type RecipeServiceConfig struct {
	CacheTTL time.Duration
}

// RecipeService is the single entry point the delivery layer calls. It
// memoizes every read against the cache and delegates reloads to the
// loader.
type RecipeService struct {
	repo     domain.RecipeRepository
	cache    domain.CacheRepository
	loader   *LoaderService
	cacheTTL time.Duration
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(
	repo domain.RecipeRepository,
	cache domain.CacheRepository,
	loader *LoaderService,
	config RecipeServiceConfig,
) *RecipeService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &RecipeService{
		repo:     repo,
		cache:    cache,
		loader:   loader,
		cacheTTL: cacheTTL,
	}
}

// Reload triggers one ingestion cycle
func (s *RecipeService) Reload(ctx context.Context) error {
	return s.loader.LoadRecipes(ctx)
}

// GetAllRecipes returns every stored recipe
func (s *RecipeService) GetAllRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return getOrCompute(ctx, s, keyAllRecipes, func(ctx context.Context) ([]domain.Recipe, error) {
		log.Printf("[recipes] fetching all recipes")
		return s.repo.GetAll(ctx)
	})
}

// GetAllRecipesPage returns one page of recipes
func (s *RecipeService) GetAllRecipesPage(ctx context.Context, page, size int) (*domain.PagedRecipes, error) {
	return getOrCompute(ctx, s, keyRecipesPage(page, size), func(ctx context.Context) (*domain.PagedRecipes, error) {
		log.Printf("[recipes] fetching all recipes page:%d size:%d", page, size)
		return s.repo.GetAllPage(ctx, page, size)
	})
}

// SearchRecipes returns every recipe whose name, cuisine or tags contain
// the query, case-insensitively
func (s *RecipeService) SearchRecipes(ctx context.Context, query string) ([]domain.Recipe, error) {
	return getOrCompute(ctx, s, keySearch(query), func(ctx context.Context) ([]domain.Recipe, error) {
		log.Printf("[recipes] searching recipes with query: %q", query)
		return s.repo.Search(ctx, query)
	})
}

// SearchRecipesPage returns one page of matching recipes
func (s *RecipeService) SearchRecipesPage(ctx context.Context, query string, page, size int) (*domain.PagedRecipes, error) {
	return getOrCompute(ctx, s, keySearchPage(query, page, size), func(ctx context.Context) (*domain.PagedRecipes, error) {
		log.Printf("[recipes] searching recipes with query: %q page:%d size:%d", query, page, size)
		return s.repo.SearchPage(ctx, query, page, size)
	})
}

// GetRecipeByID returns the recipe with the given id, or
// domain.ErrRecipeNotFound. A not-found result is never cached, so a
// later ingestion that introduces the id is observed on the next call.
func (s *RecipeService) GetRecipeByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", domain.ErrInvalidRequest)
	}

	return getOrCompute(ctx, s, keyRecipeByID(id), func(ctx context.Context) (*domain.Recipe, error) {
		log.Printf("[recipes] fetching recipe by id: %d", id)
		return s.repo.GetByID(ctx, id)
	})
}

// CountRecipes returns the number of stored recipes. Uncached; it backs
// the health endpoint only.
func (s *RecipeService) CountRecipes(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// getOrCompute memoizes a store read under the given key. Concurrent
// misses on the same key may run the loader more than once; store reads
// are pure, so the duplicate work is accepted.
func getOrCompute[T any](ctx context.Context, s *RecipeService, key string, load func(context.Context) (T, error)) (T, error) {
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Printf("[recipes] cache set failed for %s: %v", key, err)
	}

	return value, nil
}
