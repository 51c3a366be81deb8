// Package recipe implements the recipe aggregate: validated writes that
// replace ingredient and tag associations atomically, read projections
// resolved against a viewing user, and the shopping-list export.
package recipe

import (
	"context"

	"github.com/mkarev/kulinaria/internal/database"
)

// AnonymousViewer marks projections and filters evaluated without an
// authenticated user.
const AnonymousViewer int64 = 0

// Bounds carries the configured limits for cooking time and ingredient
// amounts.
type Bounds struct {
	MinCookingTime int32
	MaxCookingTime int32
	MinAmount      int32
	MaxAmount      int32
}

// WriteStore is the persistence surface of the aggregate writer.
type WriteStore interface {
	ListIngredientIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListTagIDs(ctx context.Context, ids []int64) ([]int64, error)
	CreateRecipeAggregate(ctx context.Context, arg database.CreateRecipeAggregateParams) (int64, error)
	UpdateRecipeAggregate(ctx context.Context, arg database.UpdateRecipeAggregateParams) error
}

// ReadStore is the lookup surface of the projector.
type ReadStore interface {
	GetUserByID(ctx context.Context, id int64) (database.User, error)
	GetRecipeTags(ctx context.Context, recipeID int64) ([]database.Tag, error)
	GetRecipeIngredients(ctx context.Context, recipeID int64) ([]database.IngredientInRecipe, error)
	IsFavorited(ctx context.Context, arg database.FavoriteParams) (bool, error)
	IsInShoppingCart(ctx context.Context, arg database.ShoppingCartParams) (bool, error)
	IsSubscribed(ctx context.Context, arg database.SubscriptionParams) (bool, error)
}

// ImageStore persists recipe images and returns the URL path they will be
// served from.
type ImageStore interface {
	WriteRecipeImage(ctx context.Context, name string, data []byte) (string, error)
}
