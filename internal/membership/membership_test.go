package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarev/kulinaria/internal/database"
)

// fakeStore mimics the database's ON CONFLICT DO NOTHING semantics: adds
// report false when the row exists, removes report false when it does not.
type fakeStore struct {
	favorites     map[[2]int64]bool
	cart          map[[2]int64]bool
	subscriptions map[[2]int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		favorites:     make(map[[2]int64]bool),
		cart:          make(map[[2]int64]bool),
		subscriptions: make(map[[2]int64]bool),
	}
}

func addRow(set map[[2]int64]bool, a, b int64) (bool, error) {
	key := [2]int64{a, b}
	if set[key] {
		return false, nil
	}
	set[key] = true
	return true, nil
}

func removeRow(set map[[2]int64]bool, a, b int64) (bool, error) {
	key := [2]int64{a, b}
	if !set[key] {
		return false, nil
	}
	delete(set, key)
	return true, nil
}

func (s *fakeStore) AddFavorite(_ context.Context, arg database.FavoriteParams) (bool, error) {
	return addRow(s.favorites, arg.UserID, arg.RecipeID)
}

func (s *fakeStore) RemoveFavorite(_ context.Context, arg database.FavoriteParams) (bool, error) {
	return removeRow(s.favorites, arg.UserID, arg.RecipeID)
}

func (s *fakeStore) AddToShoppingCart(_ context.Context, arg database.ShoppingCartParams) (bool, error) {
	return addRow(s.cart, arg.UserID, arg.RecipeID)
}

func (s *fakeStore) RemoveFromShoppingCart(_ context.Context, arg database.ShoppingCartParams) (bool, error) {
	return removeRow(s.cart, arg.UserID, arg.RecipeID)
}

func (s *fakeStore) AddSubscription(_ context.Context, arg database.SubscriptionParams) (bool, error) {
	return addRow(s.subscriptions, arg.UserID, arg.AuthorID)
}

func (s *fakeStore) RemoveSubscription(_ context.Context, arg database.SubscriptionParams) (bool, error) {
	return removeRow(s.subscriptions, arg.UserID, arg.AuthorID)
}

func TestFavorites(t *testing.T) {
	m := &Manager{Store: newFakeStore()}
	ctx := context.Background()

	if err := m.AddFavorite(ctx, 1, 10); err != nil {
		t.Fatalf("first AddFavorite returned error: %v", err)
	}
	if err := m.AddFavorite(ctx, 1, 10); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("second AddFavorite: expected ErrAlreadyExists, got %v", err)
	}
	if err := m.RemoveFavorite(ctx, 1, 10); err != nil {
		t.Fatalf("RemoveFavorite returned error: %v", err)
	}
	if err := m.RemoveFavorite(ctx, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveFavorite: expected ErrNotFound, got %v", err)
	}
}

func TestRemoveNeverFavorited(t *testing.T) {
	m := &Manager{Store: newFakeStore()}
	if err := m.RemoveFavorite(context.Background(), 1, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShoppingCart(t *testing.T) {
	m := &Manager{Store: newFakeStore()}
	ctx := context.Background()

	if err := m.AddToShoppingCart(ctx, 1, 10); err != nil {
		t.Fatalf("AddToShoppingCart returned error: %v", err)
	}
	if err := m.AddToShoppingCart(ctx, 1, 10); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if err := m.RemoveFromShoppingCart(ctx, 1, 10); err != nil {
		t.Fatalf("RemoveFromShoppingCart returned error: %v", err)
	}
	if err := m.RemoveFromShoppingCart(ctx, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptions(t *testing.T) {
	m := &Manager{Store: newFakeStore()}
	ctx := context.Background()

	if err := m.Subscribe(ctx, 1, 2); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if err := m.Subscribe(ctx, 1, 2); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if err := m.Unsubscribe(ctx, 1, 2); err != nil {
		t.Fatalf("Unsubscribe returned error: %v", err)
	}
	if err := m.Unsubscribe(ctx, 1, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSelfSubscription(t *testing.T) {
	m := &Manager{Store: newFakeStore()}
	ctx := context.Background()

	// rejected regardless of prior state
	if err := m.Subscribe(ctx, 7, 7); !errors.Is(err, ErrSelfSubscription) {
		t.Errorf("expected ErrSelfSubscription, got %v", err)
	}
	if err := m.Unsubscribe(ctx, 7, 7); !errors.Is(err, ErrSelfSubscription) {
		t.Errorf("expected ErrSelfSubscription, got %v", err)
	}
}
