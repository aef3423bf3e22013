package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipehub/backend/internal/domain"
	"github.com/recipehub/backend/internal/usecase"
)

const (
	defaultPage = 0
	defaultSize = 20

	listCacheControl   = "public, max-age=300"
	recipeCacheControl = "public, max-age=600"
)

// ApiError is the JSON body returned for every error response
type ApiError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recipes *usecase.RecipeService
}

// NewHandler creates a new HTTP handler
func NewHandler(recipes *usecase.RecipeService) *Handler {
	return &Handler{recipes: recipes}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	count, err := h.recipes.CountRecipes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "recipehub-backend",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "recipehub-backend",
		"version":     "1.0.0",
		"recipeCount": count,
	})
}

// LoadRecipes triggers a manual load of recipes from the external
// provider into the store
func (h *Handler) LoadRecipes(c *gin.Context) {
	log.Printf("[http] manual load triggered via /api/load")

	if err := h.recipes.Reload(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipes loaded successfully!"})
}

// ListRecipes lists or searches recipes. Without page and size it
// returns a bare array; with either of them it returns a page envelope.
// Both query and q select search mode.
func (h *Handler) ListRecipes(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		query = c.Query("q")
	}

	pageStr, hasPage := c.GetQuery("page")
	sizeStr, hasSize := c.GetQuery("size")
	isPaged := hasPage || hasSize

	page, size := defaultPage, defaultSize
	if hasPage {
		n, err := strconv.Atoi(pageStr)
		if err != nil {
			h.validationError(c, "page: must be an integer")
			return
		}
		page = n
	}
	if hasSize {
		n, err := strconv.Atoi(sizeStr)
		if err != nil {
			h.validationError(c, "size: must be an integer")
			return
		}
		size = n
	}

	ctx := c.Request.Context()

	if strings.TrimSpace(query) == "" {
		if !isPaged {
			recipes, err := h.recipes.GetAllRecipes(ctx)
			if err != nil {
				h.writeError(c, err)
				return
			}
			c.Header("Cache-Control", listCacheControl)
			c.JSON(http.StatusOK, recipes)
			return
		}

		paged, err := h.recipes.GetAllRecipesPage(ctx, page, size)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Header("Cache-Control", listCacheControl)
		c.JSON(http.StatusOK, paged)
		return
	}

	if !isPaged {
		recipes, err := h.recipes.SearchRecipes(ctx, query)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Header("Cache-Control", listCacheControl)
		c.JSON(http.StatusOK, recipes)
		return
	}

	paged, err := h.recipes.SearchRecipesPage(ctx, query, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Cache-Control", listCacheControl)
	c.JSON(http.StatusOK, paged)
}

// GetRecipeByID returns a single recipe by numeric id
func (h *Handler) GetRecipeByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.validationError(c, "id: must be a positive integer")
		return
	}

	recipe, err := h.recipes.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			h.notFoundError(c, fmt.Sprintf("Recipe not found with id: %d", id))
			return
		}
		h.writeError(c, err)
		return
	}

	c.Header("Cache-Control", recipeCacheControl)
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) validationError(c *gin.Context, message string) {
	log.Printf("[http] validation failed: %s", message)
	c.JSON(http.StatusBadRequest, ApiError{
		Timestamp: time.Now(),
		Status:    http.StatusBadRequest,
		Error:     "Validation Failed",
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

func (h *Handler) notFoundError(c *gin.Context, message string) {
	log.Printf("[http] resource not found: %s", message)
	c.JSON(http.StatusNotFound, ApiError{
		Timestamp: time.Now(),
		Status:    http.StatusNotFound,
		Error:     "Not Found",
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// writeError maps remaining errors onto the generic error contract. The
// body never includes the upstream URL or wrapped internals beyond the
// top-level message.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		h.validationError(c, err.Error())
	case errors.Is(err, domain.ErrMalformedUpstream):
		log.Printf("[http] upstream data error: %v", err)
		c.JSON(http.StatusInternalServerError, ApiError{
			Timestamp: time.Now(),
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   domain.ErrMalformedUpstream.Error(),
			Path:      c.Request.URL.Path,
		})
	default:
		log.Printf("[http] unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, ApiError{
			Timestamp: time.Now(),
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "an unexpected error occurred",
			Path:      c.Request.URL.Path,
		})
	}
}
