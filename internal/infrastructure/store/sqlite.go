package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/recipehub/backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id                   INTEGER PRIMARY KEY,
	name                 TEXT NOT NULL,
	cuisine              TEXT NOT NULL,
	cook_time_minutes    INTEGER NOT NULL DEFAULT 0,
	tags                 TEXT NOT NULL DEFAULT '',
	instructions         TEXT NOT NULL DEFAULT '',
	image                TEXT NOT NULL DEFAULT '',
	ingredients          TEXT NOT NULL DEFAULT '',
	prep_time_minutes    INTEGER NOT NULL DEFAULT 0,
	servings             INTEGER NOT NULL DEFAULT 0,
	difficulty           TEXT NOT NULL DEFAULT '',
	calories_per_serving INTEGER NOT NULL DEFAULT 0,
	rating               REAL,
	review_count         INTEGER NOT NULL DEFAULT 0,
	meal_type            TEXT NOT NULL DEFAULT '',
	user_id              INTEGER
);`

const recipeColumns = `id, name, cuisine, cook_time_minutes, tags, instructions, image, ingredients,
	prep_time_minutes, servings, difficulty, calories_per_serving, rating, review_count, meal_type, user_id`

// RecipeStore is a sqlite-backed implementation of domain.RecipeRepository
type RecipeStore struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and applies the schema
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

// NewRecipeStore creates a new store over an opened database
func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// ReplaceAll replaces the entire recipes table with the given set in a
// single transaction. Readers see either the previous generation or the
// new one; a failure rolls back to the previous generation untouched.
func (s *RecipeStore) ReplaceAll(ctx context.Context, recipes []domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return fmt.Errorf("clear recipes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recipes {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Name, r.Cuisine, r.CookTimeMinutes, r.Tags, r.Instructions, r.Image, r.Ingredients,
			r.PrepTimeMinutes, r.Servings, r.Difficulty, r.CaloriesPerServing, r.Rating, r.ReviewCount, r.MealType, r.UserID,
		); err != nil {
			return fmt.Errorf("insert recipe %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

// GetByID returns the recipe with the given id, or domain.ErrRecipeNotFound
func (s *RecipeStore) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)

	r, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("scan recipe by id: %w", err)
	}
	return r, nil
}

// GetAll returns every recipe ordered by id
func (s *RecipeStore) GetAll(ctx context.Context) ([]domain.Recipe, error) {
	return s.queryList(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
}

// GetAllPage returns one page of recipes plus the total count
func (s *RecipeStore) GetAllPage(ctx context.Context, page, size int) (*domain.PagedRecipes, error) {
	page, size = clampPage(page, size)

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.queryList(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY id LIMIT ? OFFSET ?`,
		size, page*size)
	if err != nil {
		return nil, err
	}

	return newPage(items, total, page, size), nil
}

// Search returns every recipe whose name, cuisine or tags contain the
// query, case-insensitively. The query is trimmed before matching.
func (s *RecipeStore) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	sqlStr, args := buildSearchSQL(query, false)
	return s.queryList(ctx, sqlStr, args...)
}

// SearchPage returns one page of matching recipes plus the match count
func (s *RecipeStore) SearchPage(ctx context.Context, query string, page, size int) (*domain.PagedRecipes, error) {
	page, size = clampPage(page, size)

	countSQL, countArgs := buildSearchSQL(query, true)
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("search count scan: %w", err)
	}

	sqlStr, args := buildSearchSQL(query, false)
	sqlStr += ` LIMIT ? OFFSET ?`
	args = append(args, size, page*size)

	items, err := s.queryList(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}

	return newPage(items, total, page, size), nil
}

// Count returns the number of stored recipes
func (s *RecipeStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

// buildSearchSQL builds either COUNT(*) or the SELECT list for a
// substring search over name, cuisine and tags, OR-combined.
func buildSearchSQL(query string, countOnly bool) (string, []any) {
	sel := `SELECT ` + recipeColumns + ` FROM recipes`
	if countOnly {
		sel = `SELECT COUNT(*) FROM recipes`
	}

	kw := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	sel += ` WHERE LOWER(name) LIKE ? OR LOWER(cuisine) LIKE ? OR LOWER(tags) LIKE ?`
	if !countOnly {
		sel += ` ORDER BY id`
	}
	return sel, []any{kw, kw, kw}
}

// clampPage floors page at 0 and size at 1
func clampPage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	return page, size
}

func newPage(items []domain.Recipe, total, page, size int) *domain.PagedRecipes {
	totalPages := (total + size - 1) / size
	return &domain.PagedRecipes{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
		Size:       size,
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (*domain.Recipe, error) {
	var (
		r      domain.Recipe
		rating sql.NullFloat64
		userID sql.NullInt64
	)

	if err := row.Scan(
		&r.ID, &r.Name, &r.Cuisine, &r.CookTimeMinutes, &r.Tags, &r.Instructions, &r.Image, &r.Ingredients,
		&r.PrepTimeMinutes, &r.Servings, &r.Difficulty, &r.CaloriesPerServing, &rating, &r.ReviewCount, &r.MealType, &userID,
	); err != nil {
		return nil, err
	}

	if rating.Valid {
		r.Rating = &rating.Float64
	}
	if userID.Valid {
		r.UserID = &userID.Int64
	}
	return &r, nil
}

func (s *RecipeStore) queryList(ctx context.Context, sqlStr string, args ...any) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
