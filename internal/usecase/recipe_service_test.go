package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipehub/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data        map[string]interface{}
	flushCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Flush(ctx context.Context) error {
	m.flushCalled = true
	m.data = make(map[string]interface{})
	return nil
}

// MockRecipeRepository is an in-memory mock of domain.RecipeRepository
// that counts how often each read operation reaches the store
type MockRecipeRepository struct {
	recipes []domain.Recipe

	replaceCalls int
	replaceErr   error
	getByIDCalls int
	getAllCalls  int
	searchCalls  int
}

func NewMockRecipeRepository(recipes ...domain.Recipe) *MockRecipeRepository {
	return &MockRecipeRepository{recipes: recipes}
}

func (m *MockRecipeRepository) ReplaceAll(ctx context.Context, recipes []domain.Recipe) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.recipes = recipes
	return nil
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	m.getByIDCalls++
	for _, r := range m.recipes {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, domain.ErrRecipeNotFound
}

func (m *MockRecipeRepository) GetAll(ctx context.Context) ([]domain.Recipe, error) {
	m.getAllCalls++
	return append([]domain.Recipe{}, m.recipes...), nil
}

func (m *MockRecipeRepository) GetAllPage(ctx context.Context, page, size int) (*domain.PagedRecipes, error) {
	m.getAllCalls++
	return &domain.PagedRecipes{Items: append([]domain.Recipe{}, m.recipes...), TotalCount: len(m.recipes), Page: page, Size: size}, nil
}

func (m *MockRecipeRepository) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	m.searchCalls++
	return append([]domain.Recipe{}, m.recipes...), nil
}

func (m *MockRecipeRepository) SearchPage(ctx context.Context, query string, page, size int) (*domain.PagedRecipes, error) {
	m.searchCalls++
	return &domain.PagedRecipes{Items: append([]domain.Recipe{}, m.recipes...), TotalCount: len(m.recipes), Page: page, Size: size}, nil
}

func (m *MockRecipeRepository) Count(ctx context.Context) (int, error) {
	return len(m.recipes), nil
}

// MockExternalClient is a mock implementation of domain.ExternalClient
type MockExternalClient struct {
	payload *domain.RawPayload
	calls   int
}

func (m *MockExternalClient) Fetch(ctx context.Context) *domain.RawPayload {
	m.calls++
	return m.payload
}

func newTestService(repo *MockRecipeRepository, cache *MockCacheRepository, client *MockExternalClient) *RecipeService {
	if client == nil {
		client = &MockExternalClient{payload: &domain.RawPayload{}}
	}
	loader := NewLoaderService(client, repo, cache)
	return NewRecipeService(repo, cache, loader, RecipeServiceConfig{CacheTTL: time.Minute})
}

func TestGetRecipeByID_CachesSuccessfulLookup(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 1, Name: "Classic Margherita Pizza", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		recipe, err := service.GetRecipeByID(ctx, 1)
		if err != nil {
			t.Fatalf("GetRecipeByID() error = %v", err)
		}
		if recipe.Name != "Classic Margherita Pizza" {
			t.Errorf("GetRecipeByID() name = %s, want Classic Margherita Pizza", recipe.Name)
		}
	}

	if repo.getByIDCalls != 1 {
		t.Errorf("store lookups = %d, want 1 (later calls must hit the cache)", repo.getByIDCalls)
	}
}

func TestGetRecipeByID_NotFoundIsNotCached(t *testing.T) {
	repo := NewMockRecipeRepository()
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	// Two misses both reach the store
	for i := 0; i < 2; i++ {
		_, err := service.GetRecipeByID(ctx, 999)
		if !errors.Is(err, domain.ErrRecipeNotFound) {
			t.Fatalf("GetRecipeByID() error = %v, want ErrRecipeNotFound", err)
		}
	}
	if repo.getByIDCalls != 2 {
		t.Errorf("store lookups = %d, want 2 (not-found must not be cached)", repo.getByIDCalls)
	}

	// Once ingestion introduces the id, the very next lookup sees it
	// without any per-id eviction
	repo.recipes = []domain.Recipe{{ID: 999, Name: "New Arrival", Cuisine: "Test"}}
	recipe, err := service.GetRecipeByID(ctx, 999)
	if err != nil {
		t.Fatalf("GetRecipeByID() after ingestion error = %v", err)
	}
	if recipe.Name != "New Arrival" {
		t.Errorf("GetRecipeByID() name = %s, want New Arrival", recipe.Name)
	}
}

func TestGetRecipeByID_RejectsNonPositiveID(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 1, Name: "Margherita", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	for _, id := range []int64{0, -5} {
		_, err := service.GetRecipeByID(ctx, id)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("GetRecipeByID(%d) error = %v, want ErrInvalidRequest", id, err)
		}
	}

	if repo.getByIDCalls != 0 {
		t.Errorf("store lookups = %d, want 0 (validation happens before the store)", repo.getByIDCalls)
	}
}

func TestGetAllRecipes_Memoizes(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 1, Name: "Margherita", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		recipes, err := service.GetAllRecipes(ctx)
		if err != nil {
			t.Fatalf("GetAllRecipes() error = %v", err)
		}
		if len(recipes) != 1 {
			t.Errorf("GetAllRecipes() len = %d, want 1", len(recipes))
		}
	}

	if repo.getAllCalls != 1 {
		t.Errorf("store reads = %d, want 1", repo.getAllCalls)
	}
}

func TestSearchRecipes_RawQueryKeysAreDistinct(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 4, Name: "Chicken Alfredo Pasta", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	// The cache key is the raw query; the store trims. Two queries that
	// differ only in whitespace occupy separate cache entries.
	if _, err := service.SearchRecipes(ctx, "pasta"); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}
	if _, err := service.SearchRecipes(ctx, " pasta "); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}
	if repo.searchCalls != 2 {
		t.Errorf("store searches = %d, want 2 (distinct raw-query keys)", repo.searchCalls)
	}

	// Exact repeats hit the cache
	if _, err := service.SearchRecipes(ctx, "pasta"); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}
	if repo.searchCalls != 2 {
		t.Errorf("store searches = %d, want 2 after cached repeat", repo.searchCalls)
	}
}

func TestSearchRecipes_PagedAndUnpagedKeysNeverCollide(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 4, Name: "Chicken Alfredo Pasta", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	// An unpaged query that happens to end in ":<page>:<size>" must not
	// share a cache entry with the equivalent paged search.
	if _, err := service.SearchRecipes(ctx, "pasta:0:20"); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}
	if _, err := service.SearchRecipesPage(ctx, "pasta", 0, 20); err != nil {
		t.Fatalf("SearchRecipesPage() error = %v", err)
	}
	if repo.searchCalls != 2 {
		t.Fatalf("store searches = %d, want 2 (one per region)", repo.searchCalls)
	}

	// Both entries survive; neither repeat evicts the other
	if _, err := service.SearchRecipes(ctx, "pasta:0:20"); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}
	if _, err := service.SearchRecipesPage(ctx, "pasta", 0, 20); err != nil {
		t.Fatalf("SearchRecipesPage() error = %v", err)
	}
	if repo.searchCalls != 2 {
		t.Errorf("store searches = %d, want 2 after cached repeats", repo.searchCalls)
	}
}

func TestPagedReads_KeyedByPageAndSize(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 1, Name: "Margherita", Cuisine: "Italian"})
	service := newTestService(repo, NewMockCacheRepository(), nil)
	ctx := context.Background()

	if _, err := service.GetAllRecipesPage(ctx, 0, 20); err != nil {
		t.Fatalf("GetAllRecipesPage() error = %v", err)
	}
	if _, err := service.GetAllRecipesPage(ctx, 0, 20); err != nil {
		t.Fatalf("GetAllRecipesPage() error = %v", err)
	}
	if _, err := service.GetAllRecipesPage(ctx, 1, 20); err != nil {
		t.Fatalf("GetAllRecipesPage() error = %v", err)
	}

	if repo.getAllCalls != 2 {
		t.Errorf("store reads = %d, want 2 (one per distinct page key)", repo.getAllCalls)
	}
}

func TestReload_InvalidatesEveryRegion(t *testing.T) {
	repo := NewMockRecipeRepository(domain.Recipe{ID: 1, Name: "Old Margherita", Cuisine: "Italian"})
	cache := NewMockCacheRepository()
	client := &MockExternalClient{payload: &domain.RawPayload{
		Recipes: []domain.RawRecipe{
			{"id": float64(1), "name": "New Margherita", "cuisine": "Italian", "cookTimeMinutes": float64(15)},
			{"id": float64(2), "name": "New Carbonara", "cuisine": "Italian", "cookTimeMinutes": float64(25)},
		},
	}}
	service := newTestService(repo, cache, client)
	ctx := context.Background()

	// Warm every cache region with the old generation
	if _, err := service.GetRecipeByID(ctx, 1); err != nil {
		t.Fatalf("GetRecipeByID() error = %v", err)
	}
	if _, err := service.GetAllRecipes(ctx); err != nil {
		t.Fatalf("GetAllRecipes() error = %v", err)
	}
	if _, err := service.GetAllRecipesPage(ctx, 0, 20); err != nil {
		t.Fatalf("GetAllRecipesPage() error = %v", err)
	}
	if _, err := service.SearchRecipes(ctx, "margherita"); err != nil {
		t.Fatalf("SearchRecipes() error = %v", err)
	}

	if err := service.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !cache.flushCalled {
		t.Fatal("Reload() did not flush the cache")
	}

	// The very next calls reflect the new generation, no stale hits
	recipe, err := service.GetRecipeByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecipeByID() after reload error = %v", err)
	}
	if recipe.Name != "New Margherita" {
		t.Errorf("GetRecipeByID() name = %s, want New Margherita", recipe.Name)
	}

	all, err := service.GetAllRecipes(ctx)
	if err != nil {
		t.Fatalf("GetAllRecipes() after reload error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("GetAllRecipes() len = %d, want 2", len(all))
	}

	paged, err := service.GetAllRecipesPage(ctx, 0, 20)
	if err != nil {
		t.Fatalf("GetAllRecipesPage() after reload error = %v", err)
	}
	if paged.TotalCount != 2 {
		t.Errorf("GetAllRecipesPage() totalCount = %d, want 2", paged.TotalCount)
	}
}
