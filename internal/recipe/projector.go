package recipe

import (
	"context"
	"fmt"

	"github.com/mkarev/kulinaria/internal/database"
)

// AuthorView is a user profile resolved relative to the viewer.
type AuthorView struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type TagView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int32  `json:"amount"`
}

// View is the full read projection of a recipe.
type View struct {
	ID                int64            `json:"id"`
	Tags              []TagView        `json:"tags"`
	Author            AuthorView       `json:"author"`
	Ingredients       []IngredientView `json:"ingredients"`
	IsFavorited       bool             `json:"is_favorited"`
	IsInShoppingCart  bool             `json:"is_in_shopping_cart"`
	Name              string           `json:"name"`
	Image             string           `json:"image"`
	Text              string           `json:"text"`
	CookingTime       int32            `json:"cooking_time"`
}

// ShortView is the compact projection used in membership responses and
// subscription listings.
type ShortView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int32  `json:"cooking_time"`
}

// Project assembles the read view of a recipe for the given viewer. It only
// reads; calling it repeatedly or concurrently is safe. The membership flags
// are false for AnonymousViewer.
func Project(ctx context.Context, s ReadStore, rec database.Recipe, viewer int64) (View, error) {
	author, err := s.GetUserByID(ctx, rec.AuthorID)
	if err != nil {
		return View{}, fmt.Errorf("resolving author: %w", err)
	}

	authorView, err := ProjectAuthor(ctx, s, author, viewer)
	if err != nil {
		return View{}, err
	}

	tags, err := s.GetRecipeTags(ctx, rec.ID)
	if err != nil {
		return View{}, fmt.Errorf("resolving tags: %w", err)
	}
	tagViews := make([]TagView, 0, len(tags))
	for _, t := range tags {
		tagViews = append(tagViews, TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
	}

	ingredients, err := s.GetRecipeIngredients(ctx, rec.ID)
	if err != nil {
		return View{}, fmt.Errorf("resolving ingredients: %w", err)
	}
	ingredientViews := make([]IngredientView, 0, len(ingredients))
	for _, item := range ingredients {
		ingredientViews = append(ingredientViews, IngredientView{
			ID:              item.IngredientID,
			Name:            item.Name,
			MeasurementUnit: item.MeasurementUnit,
			Amount:          item.Amount,
		})
	}

	view := View{
		ID:          rec.ID,
		Tags:        tagViews,
		Author:      authorView,
		Ingredients: ingredientViews,
		Name:        rec.Name,
		Image:       rec.ImageURL,
		Text:        rec.Text,
		CookingTime: rec.CookingTime,
	}

	if viewer == AnonymousViewer {
		return view, nil
	}

	view.IsFavorited, err = s.IsFavorited(ctx, database.FavoriteParams{
		UserID:   viewer,
		RecipeID: rec.ID,
	})
	if err != nil {
		return View{}, fmt.Errorf("checking favorite membership: %w", err)
	}
	view.IsInShoppingCart, err = s.IsInShoppingCart(ctx, database.ShoppingCartParams{
		UserID:   viewer,
		RecipeID: rec.ID,
	})
	if err != nil {
		return View{}, fmt.Errorf("checking cart membership: %w", err)
	}

	return view, nil
}

// ProjectAuthor resolves a user's profile relative to the viewer.
func ProjectAuthor(ctx context.Context, s ReadStore, user database.User, viewer int64) (AuthorView, error) {
	view := AuthorView{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if viewer == AnonymousViewer {
		return view, nil
	}

	subscribed, err := s.IsSubscribed(ctx, database.SubscriptionParams{
		UserID:   viewer,
		AuthorID: user.ID,
	})
	if err != nil {
		return AuthorView{}, fmt.Errorf("checking subscription: %w", err)
	}
	view.IsSubscribed = subscribed
	return view, nil
}

// ProjectShort returns the compact recipe projection.
func ProjectShort(rec database.Recipe) ShortView {
	return ShortView{
		ID:          rec.ID,
		Name:        rec.Name,
		Image:       rec.ImageURL,
		CookingTime: rec.CookingTime,
	}
}
