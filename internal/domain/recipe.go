package domain

// Recipe is one normalized entry of the upstream dataset. List-shaped
// upstream fields (tags, instructions, ingredients, mealType) are
// flattened into single delimited strings before storage.
type Recipe struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Cuisine            string   `json:"cuisine"`
	CookTimeMinutes    int      `json:"cookTimeMinutes"`
	Tags               string   `json:"tags"`
	Instructions       string   `json:"instructions"`
	Image              string   `json:"image"`
	Ingredients        string   `json:"ingredients"`
	PrepTimeMinutes    int      `json:"prepTimeMinutes"`
	Servings           int      `json:"servings"`
	Difficulty         string   `json:"difficulty"`
	CaloriesPerServing int      `json:"caloriesPerServing"`
	Rating             *float64 `json:"rating"`
	ReviewCount        int      `json:"reviewCount"`
	MealType           string   `json:"mealType"`
	UserID             *int64   `json:"userId"`
}

// PagedRecipes is the envelope returned by the paged read operations.
type PagedRecipes struct {
	Items      []Recipe `json:"items"`
	TotalCount int      `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
}

// RawRecipe is one upstream entry before normalization. The provider's
// schema is loose, so every field stays untyped until MapRecipes
// converts it.
type RawRecipe map[string]any

// RawPayload is the decoded upstream response. Recipes is nil when the
// "recipes" field was absent from the document and non-nil (possibly
// empty) when it was present; the loader treats the two cases the same
// way but logs them apart.
type RawPayload struct {
	Recipes []RawRecipe `json:"recipes"`
}
