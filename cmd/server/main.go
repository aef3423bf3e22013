package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/recipehub/backend/config"
	httpDelivery "github.com/recipehub/backend/internal/delivery/http"
	"github.com/recipehub/backend/internal/infrastructure/cache"
	"github.com/recipehub/backend/internal/infrastructure/external"
	"github.com/recipehub/backend/internal/infrastructure/store"
	"github.com/recipehub/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting RecipeHub Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("External API: %s", cfg.External.URL)
	log.Printf("Database: %s", cfg.Database.Path)

	// Initialize infrastructure dependencies
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	recipeStore := store.NewRecipeStore(db)
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	externalClient := external.NewClient(external.Config{
		URL:              cfg.External.URL,
		RetryMaxAttempts: cfg.External.RetryMaxAttempts,
		RetryBaseDelay:   cfg.External.RetryBaseDelay,
		ConnectTimeout:   cfg.External.ConnectTimeout,
		ReadTimeout:      cfg.External.ReadTimeout,
		BreakerFailures:  cfg.External.BreakerFailures,
		BreakerCooldown:  cfg.External.BreakerCooldown,
	})

	// Initialize usecase layer
	loaderService := usecase.NewLoaderService(externalClient, recipeStore, memoryCache)
	recipeService := usecase.NewRecipeService(
		recipeStore,
		memoryCache,
		loaderService,
		usecase.RecipeServiceConfig{CacheTTL: cfg.Cache.TTL},
	)

	// Initial load runs off the request path so retry backoff never
	// delays the listener
	go func() {
		if err := loaderService.LoadRecipes(context.Background()); err != nil {
			log.Printf("Initial recipe load failed: %v", err)
		}
	}()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recipeService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
