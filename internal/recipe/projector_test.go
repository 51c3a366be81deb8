package recipe

import (
	"context"
	"testing"

	"github.com/mkarev/kulinaria/internal/database"
)

func projectorStore() (*fakeStore, database.Recipe) {
	s := seededStore()
	rec := database.Recipe{
		ID:          1,
		AuthorID:    100,
		Name:        "Pancakes",
		ImageURL:    "/files/recipes/abc.png",
		Text:        "Mix and fry.",
		CookingTime: 20,
	}
	s.recipes[1] = rec
	s.recipeIngredients[1] = []database.IngredientAmount{
		{IngredientID: 2, Amount: 300},
		{IngredientID: 1, Amount: 200},
	}
	s.recipeTags[1] = []int64{10}
	return s, rec
}

func TestProject(t *testing.T) {
	store, rec := projectorStore()
	store.users[200] = database.User{ID: 200, Email: "viewer@example.com", Username: "viewer"}
	store.favorites[[2]int64{200, 1}] = true
	store.subscriptions[[2]int64{200, 100}] = true

	view, err := Project(context.Background(), store, rec, 200)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	if view.ID != rec.ID || view.Name != rec.Name || view.Text != rec.Text ||
		view.Image != rec.ImageURL || view.CookingTime != rec.CookingTime {
		t.Errorf("scalar fields do not round-trip: %+v", view)
	}
	if view.Author.ID != 100 || view.Author.Username != "cook" {
		t.Errorf("unexpected author: %+v", view.Author)
	}
	if !view.Author.IsSubscribed {
		t.Error("expected is_subscribed true for subscribed viewer")
	}
	if !view.IsFavorited {
		t.Error("expected is_favorited true")
	}
	if view.IsInShoppingCart {
		t.Error("expected is_in_shopping_cart false")
	}

	if len(view.Tags) != 1 || view.Tags[0].Slug != "breakfast" {
		t.Errorf("unexpected tags: %+v", view.Tags)
	}

	// ingredient order follows association order
	if len(view.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(view.Ingredients))
	}
	if view.Ingredients[0].ID != 2 || view.Ingredients[0].Name != "milk" ||
		view.Ingredients[0].Amount != 300 {
		t.Errorf("unexpected first ingredient: %+v", view.Ingredients[0])
	}
	if view.Ingredients[1].ID != 1 || view.Ingredients[1].MeasurementUnit != "g" {
		t.Errorf("unexpected second ingredient: %+v", view.Ingredients[1])
	}
}

func TestProjectAnonymousViewer(t *testing.T) {
	store, rec := projectorStore()
	// membership rows exist for some user, but the anonymous viewer never
	// sees them as their own
	store.favorites[[2]int64{200, 1}] = true
	store.shoppingCart[[2]int64{200, 1}] = true

	view, err := Project(context.Background(), store, rec, AnonymousViewer)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if view.IsFavorited || view.IsInShoppingCart {
		t.Error("expected both membership flags false for anonymous viewer")
	}
	if view.Author.IsSubscribed {
		t.Error("expected is_subscribed false for anonymous viewer")
	}
}

func TestProjectShort(t *testing.T) {
	_, rec := projectorStore()
	short := ProjectShort(rec)
	if short.ID != rec.ID || short.Name != rec.Name ||
		short.Image != rec.ImageURL || short.CookingTime != rec.CookingTime {
		t.Errorf("short projection does not match recipe: %+v", short)
	}
}
