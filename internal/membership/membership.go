// Package membership manages the favorites, shopping-cart and subscription
// sets. Duplicate adds and missing removes are user-facing errors, not
// silent no-ops; the store's uniqueness constraints arbitrate races between
// concurrent identical requests.
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarev/kulinaria/internal/database"
)

var (
	ErrAlreadyExists    = errors.New("membership already exists")
	ErrNotFound         = errors.New("membership does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
)

// Store is the persistence surface of the manager. Add methods report
// whether a row was inserted; Remove methods whether one was deleted.
type Store interface {
	AddFavorite(ctx context.Context, arg database.FavoriteParams) (bool, error)
	RemoveFavorite(ctx context.Context, arg database.FavoriteParams) (bool, error)
	AddToShoppingCart(ctx context.Context, arg database.ShoppingCartParams) (bool, error)
	RemoveFromShoppingCart(ctx context.Context, arg database.ShoppingCartParams) (bool, error)
	AddSubscription(ctx context.Context, arg database.SubscriptionParams) (bool, error)
	RemoveSubscription(ctx context.Context, arg database.SubscriptionParams) (bool, error)
}

type Manager struct {
	Store Store
}

func (m *Manager) AddFavorite(ctx context.Context, userID, recipeID int64) error {
	added, err := m.Store.AddFavorite(ctx, database.FavoriteParams{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	if !added {
		return ErrAlreadyExists
	}
	return nil
}

func (m *Manager) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	removed, err := m.Store.RemoveFavorite(ctx, database.FavoriteParams{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (m *Manager) AddToShoppingCart(ctx context.Context, userID, recipeID int64) error {
	added, err := m.Store.AddToShoppingCart(ctx, database.ShoppingCartParams{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err != nil {
		return fmt.Errorf("adding to shopping cart: %w", err)
	}
	if !added {
		return ErrAlreadyExists
	}
	return nil
}

func (m *Manager) RemoveFromShoppingCart(ctx context.Context, userID, recipeID int64) error {
	removed, err := m.Store.RemoveFromShoppingCart(ctx, database.ShoppingCartParams{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err != nil {
		return fmt.Errorf("removing from shopping cart: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Subscribe adds authorID to userID's subscription set. Self-subscription
// is rejected regardless of prior state.
func (m *Manager) Subscribe(ctx context.Context, userID, authorID int64) error {
	if userID == authorID {
		return ErrSelfSubscription
	}
	added, err := m.Store.AddSubscription(ctx, database.SubscriptionParams{
		UserID:   userID,
		AuthorID: authorID,
	})
	if err != nil {
		return fmt.Errorf("adding subscription: %w", err)
	}
	if !added {
		return ErrAlreadyExists
	}
	return nil
}

func (m *Manager) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if userID == authorID {
		return ErrSelfSubscription
	}
	removed, err := m.Store.RemoveSubscription(ctx, database.SubscriptionParams{
		UserID:   userID,
		AuthorID: authorID,
	})
	if err != nil {
		return fmt.Errorf("removing subscription: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
