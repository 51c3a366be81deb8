package recipes

// IngredientAmountRequest references an ingredient with a quantity.
type IngredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount int32 `json:"amount"`
}

// RecipeRequest is the create/update payload. Field validation is collected
// per field rather than via struct tags, so no message is lost.
type RecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       string                    `json:"image"` // base64 data URI
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int32                     `json:"cooking_time"`
}
