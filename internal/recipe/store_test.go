package recipe

import (
	"context"
	"fmt"

	"github.com/mkarev/kulinaria/internal/database"
)

// fakeStore is an in-memory stand-in for the database, implementing
// WriteStore, ReadStore and CartStore with the same replace semantics.
type fakeStore struct {
	ingredients map[int64]database.Ingredient
	tags        map[int64]database.Tag
	users       map[int64]database.User

	recipes           map[int64]database.Recipe
	recipeIngredients map[int64][]database.IngredientAmount
	recipeTags        map[int64][]int64

	favorites     map[[2]int64]bool
	shoppingCart  map[[2]int64]bool
	subscriptions map[[2]int64]bool

	// cartOrder tracks cart insertion order per user.
	cartOrder map[int64][]int64

	nextRecipeID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ingredients:       make(map[int64]database.Ingredient),
		tags:              make(map[int64]database.Tag),
		users:             make(map[int64]database.User),
		recipes:           make(map[int64]database.Recipe),
		recipeIngredients: make(map[int64][]database.IngredientAmount),
		recipeTags:        make(map[int64][]int64),
		favorites:         make(map[[2]int64]bool),
		shoppingCart:      make(map[[2]int64]bool),
		subscriptions:     make(map[[2]int64]bool),
		cartOrder:         make(map[int64][]int64),
	}
}

func (s *fakeStore) ListIngredientIDs(_ context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if _, ok := s.ingredients[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (s *fakeStore) ListTagIDs(_ context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if _, ok := s.tags[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (s *fakeStore) CreateRecipeAggregate(_ context.Context, arg database.CreateRecipeAggregateParams) (int64, error) {
	s.nextRecipeID++
	id := s.nextRecipeID
	s.recipes[id] = database.Recipe{
		ID:          id,
		AuthorID:    arg.AuthorID,
		Name:        arg.Name,
		ImageURL:    arg.ImageURL,
		Text:        arg.Text,
		CookingTime: arg.CookingTime,
	}
	s.recipeIngredients[id] = append([]database.IngredientAmount(nil), arg.Ingredients...)
	s.recipeTags[id] = append([]int64(nil), arg.TagIDs...)
	return id, nil
}

func (s *fakeStore) UpdateRecipeAggregate(_ context.Context, arg database.UpdateRecipeAggregateParams) error {
	rec, ok := s.recipes[arg.RecipeID]
	if !ok {
		return fmt.Errorf("recipe %d not found", arg.RecipeID)
	}
	rec.Name = arg.Name
	rec.Text = arg.Text
	rec.CookingTime = arg.CookingTime
	if arg.ImageURL != nil {
		rec.ImageURL = *arg.ImageURL
	}
	s.recipes[arg.RecipeID] = rec

	delete(s.recipeIngredients, arg.RecipeID)
	delete(s.recipeTags, arg.RecipeID)
	s.recipeIngredients[arg.RecipeID] = append([]database.IngredientAmount(nil), arg.Ingredients...)
	s.recipeTags[arg.RecipeID] = append([]int64(nil), arg.TagIDs...)
	return nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (database.User, error) {
	u, ok := s.users[id]
	if !ok {
		return database.User{}, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

func (s *fakeStore) GetRecipeTags(_ context.Context, recipeID int64) ([]database.Tag, error) {
	var tags []database.Tag
	for _, tagID := range s.recipeTags[recipeID] {
		tags = append(tags, s.tags[tagID])
	}
	return tags, nil
}

func (s *fakeStore) GetRecipeIngredients(_ context.Context, recipeID int64) ([]database.IngredientInRecipe, error) {
	var items []database.IngredientInRecipe
	for _, assoc := range s.recipeIngredients[recipeID] {
		ingredient := s.ingredients[assoc.IngredientID]
		items = append(items, database.IngredientInRecipe{
			IngredientID:    assoc.IngredientID,
			Name:            ingredient.Name,
			MeasurementUnit: ingredient.MeasurementUnit,
			Amount:          assoc.Amount,
		})
	}
	return items, nil
}

func (s *fakeStore) IsFavorited(_ context.Context, arg database.FavoriteParams) (bool, error) {
	return s.favorites[[2]int64{arg.UserID, arg.RecipeID}], nil
}

func (s *fakeStore) IsInShoppingCart(_ context.Context, arg database.ShoppingCartParams) (bool, error) {
	return s.shoppingCart[[2]int64{arg.UserID, arg.RecipeID}], nil
}

func (s *fakeStore) IsSubscribed(_ context.Context, arg database.SubscriptionParams) (bool, error) {
	return s.subscriptions[[2]int64{arg.UserID, arg.AuthorID}], nil
}

func (s *fakeStore) addToCart(userID, recipeID int64) {
	s.shoppingCart[[2]int64{userID, recipeID}] = true
	s.cartOrder[userID] = append(s.cartOrder[userID], recipeID)
}

func (s *fakeStore) ListShoppingCartItems(ctx context.Context, userID int64) ([]database.IngredientInRecipe, error) {
	var items []database.IngredientInRecipe
	for _, recipeID := range s.cartOrder[userID] {
		rows, err := s.GetRecipeIngredients(ctx, recipeID)
		if err != nil {
			return nil, err
		}
		items = append(items, rows...)
	}
	return items, nil
}

// fakeImageStore records written images under a fixed URL prefix.
type fakeImageStore struct {
	written map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{written: make(map[string][]byte)}
}

func (f *fakeImageStore) WriteRecipeImage(_ context.Context, name string, data []byte) (string, error) {
	f.written[name] = data
	return "/files/recipes/" + name, nil
}
