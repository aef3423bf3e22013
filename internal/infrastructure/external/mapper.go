package external

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/recipehub/backend/internal/domain"
)

const (
	maxInstructionsLen = 1000
	maxIngredientsLen  = 2000
)

// MapRecipes converts raw upstream entries into domain recipes. A single
// malformed entry (missing id, id not convertible to a number) fails the
// whole batch; partial ingestion is not permitted.
func MapRecipes(raw []domain.RawRecipe) ([]domain.Recipe, error) {
	recipes := make([]domain.Recipe, 0, len(raw))

	for i, r := range raw {
		id, err := requireInt64(r["id"])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: id: %v", domain.ErrMalformedUpstream, i, err)
		}

		recipe := domain.Recipe{
			ID:                 id,
			Name:               asString(r["name"]),
			Cuisine:            asString(r["cuisine"]),
			CookTimeMinutes:    asInt(r["cookTimeMinutes"]),
			Tags:               joinOrString(r["tags"], ","),
			Instructions:       truncate(joinOrString(r["instructions"], " "), maxInstructionsLen),
			Image:              asString(r["image"]),
			Ingredients:        truncate(joinOrString(r["ingredients"], ", "), maxIngredientsLen),
			PrepTimeMinutes:    asInt(r["prepTimeMinutes"]),
			Servings:           asInt(r["servings"]),
			Difficulty:         asString(r["difficulty"]),
			CaloriesPerServing: asInt(r["caloriesPerServing"]),
			Rating:             asFloatPtr(r["rating"]),
			ReviewCount:        asInt(r["reviewCount"]),
			MealType:           joinOrString(r["mealType"], ", "),
			UserID:             asInt64Ptr(r["userId"]),
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

// joinOrString flattens a source field: a sequence is joined with the
// delimiter, a scalar is stringified, an absent value becomes "".
func joinOrString(v any, delimiter string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, delimiter)
	default:
		return stringify(v)
	}
}

// stringify renders a scalar the way the upstream document wrote it,
// dropping the ".0" float artifact JSON decoding introduces on integers
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// requireInt64 converts a mandatory numeric field, failing on absence or
// on values that do not parse as a whole number
func requireInt64(v any) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing")
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("not a number: %v", v)
	}
	return n, nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return stringify(v)
}

func asInt(v any) int {
	if n, ok := toInt64(v); ok {
		return int(n)
	}
	return 0
}

func asFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func asInt64Ptr(v any) *int64 {
	if v == nil {
		return nil
	}
	if n, ok := toInt64(v); ok {
		return &n
	}
	return nil
}

// truncate caps s at max characters, never cutting a rune in half
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := 0
	for i := range s {
		if runes == max {
			return s[:i]
		}
		runes++
	}
	return s
}
