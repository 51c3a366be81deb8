package database

import "context"

// Membership mutations rely on primary-key constraints instead of
// check-then-insert sequences: ON CONFLICT DO NOTHING plus the affected-row
// count makes the store the final arbiter under concurrent identical
// requests.

type FavoriteParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) AddFavorite(ctx context.Context, arg FavoriteParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) RemoveFavorite(ctx context.Context, arg FavoriteParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) IsFavorited(ctx context.Context, arg FavoriteParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND recipe_id = $2)`,
		arg.UserID, arg.RecipeID).Scan(&exists)
	return exists, err
}

type ShoppingCartParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) AddToShoppingCart(ctx context.Context, arg ShoppingCartParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`INSERT INTO shopping_cart (user_id, recipe_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) RemoveFromShoppingCart(ctx context.Context, arg ShoppingCartParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM shopping_cart WHERE user_id = $1 AND recipe_id = $2`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) IsInShoppingCart(ctx context.Context, arg ShoppingCartParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shopping_cart WHERE user_id = $1 AND recipe_id = $2)`,
		arg.UserID, arg.RecipeID).Scan(&exists)
	return exists, err
}

type SubscriptionParams struct {
	UserID   int64
	AuthorID int64
}

func (q *Queries) AddSubscription(ctx context.Context, arg SubscriptionParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`INSERT INTO subscriptions (user_id, author_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		arg.UserID, arg.AuthorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) RemoveSubscription(ctx context.Context, arg SubscriptionParams) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND author_id = $2`,
		arg.UserID, arg.AuthorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) IsSubscribed(ctx context.Context, arg SubscriptionParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND author_id = $2)`,
		arg.UserID, arg.AuthorID).Scan(&exists)
	return exists, err
}

type ListSubscriptionsParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

func (q *Queries) ListSubscriptions(ctx context.Context, arg ListSubscriptionsParams) ([]User, error) {
	rows, err := q.db.Query(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.created_at
		 FROM subscriptions s
		 JOIN users u ON u.id = s.author_id
		 WHERE s.user_id = $1
		 ORDER BY u.username
		 LIMIT $2 OFFSET $3`,
		arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) CountSubscriptions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM subscriptions WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
