package database

import (
	"context"
	"fmt"
	"strings"
)

const recipeColumns = `id, author_id, name, image_url, text, cooking_time, pub_date`

func scanRecipe(row interface{ Scan(dest ...any) error }, r *Recipe) error {
	return row.Scan(&r.ID, &r.AuthorID, &r.Name, &r.ImageURL,
		&r.Text, &r.CookingTime, &r.PubDate)
}

func (q *Queries) GetRecipe(ctx context.Context, id int64) (Recipe, error) {
	var r Recipe
	err := scanRecipe(q.db.QueryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id), &r)
	return r, err
}

type CheckRecipeOwnershipParams struct {
	ID       int64
	AuthorID int64
}

func (q *Queries) CheckRecipeOwnership(ctx context.Context, arg CheckRecipeOwnershipParams) (bool, error) {
	var owns bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1 AND author_id = $2)`,
		arg.ID, arg.AuthorID).Scan(&owns)
	return owns, err
}

func (q *Queries) DeleteRecipe(ctx context.Context, id int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecipeFilter narrows recipe listings. Nil pointer fields are absent
// filters; Favorited/InCart carry the include-or-exclude decision for the
// respective membership set of the referenced user.
type RecipeFilter struct {
	AuthorID *int64
	TagSlugs []string

	FavoritedBy     *int64
	FavoritedWanted bool
	InCartOf        *int64
	InCartWanted    bool
}

// buildRecipeFilter assembles WHERE conditions from the present filters
// only. Placeholders start at $startArg+1.
func buildRecipeFilter(f RecipeFilter, startArg int) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", startArg+len(args))
	}

	if f.AuthorID != nil {
		conds = append(conds, "r.author_id = "+arg(*f.AuthorID))
	}
	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM recipe_tags rt
			JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+arg(f.TagSlugs)+`))`)
	}
	if f.FavoritedBy != nil {
		cond := `EXISTS (SELECT 1 FROM favorites f
			WHERE f.recipe_id = r.id AND f.user_id = ` + arg(*f.FavoritedBy) + `)`
		if !f.FavoritedWanted {
			cond = "NOT " + cond
		}
		conds = append(conds, cond)
	}
	if f.InCartOf != nil {
		cond := `EXISTS (SELECT 1 FROM shopping_cart sc
			WHERE sc.recipe_id = r.id AND sc.user_id = ` + arg(*f.InCartOf) + `)`
		if !f.InCartWanted {
			cond = "NOT " + cond
		}
		conds = append(conds, cond)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type ListRecipesParams struct {
	Filter RecipeFilter
	Limit  int32
	Offset int32
}

func (q *Queries) ListRecipes(ctx context.Context, arg ListRecipesParams) ([]Recipe, error) {
	where, args := buildRecipeFilter(arg.Filter, 2)
	query := `SELECT r.` + strings.ReplaceAll(recipeColumns, ", ", ", r.") +
		` FROM recipes r` + where +
		` ORDER BY r.pub_date DESC LIMIT $1 OFFSET $2`
	rows, err := q.db.Query(ctx, query, append([]any{arg.Limit, arg.Offset}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		if err := scanRecipe(rows, &r); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (q *Queries) CountRecipes(ctx context.Context, filter RecipeFilter) (int64, error) {
	where, args := buildRecipeFilter(filter, 0)
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM recipes r`+where, args...).Scan(&count)
	return count, err
}

type ListRecipesByAuthorParams struct {
	AuthorID int64
	Limit    int32 // zero lists everything
}

func (q *Queries) ListRecipesByAuthor(ctx context.Context, arg ListRecipesByAuthorParams) ([]Recipe, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+recipeColumns+` FROM recipes
		 WHERE author_id = $1 ORDER BY pub_date DESC LIMIT NULLIF($2::int, 0)`,
		arg.AuthorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		if err := scanRecipe(rows, &r); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (q *Queries) CountRecipesByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

func (q *Queries) GetRecipeTags(ctx context.Context, recipeID int64) ([]Tag, error) {
	rows, err := q.db.Query(ctx,
		`SELECT t.id, t.name, t.color, t.slug
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = $1
		 ORDER BY t.name`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetRecipeIngredients returns the resolved ingredient associations of a
// recipe in association order.
func (q *Queries) GetRecipeIngredients(ctx context.Context, recipeID int64) ([]IngredientInRecipe, error) {
	rows, err := q.db.Query(ctx,
		`SELECT i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = $1
		 ORDER BY ri.position`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []IngredientInRecipe
	for rows.Next() {
		var item IngredientInRecipe
		if err := rows.Scan(&item.IngredientID, &item.Name,
			&item.MeasurementUnit, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListShoppingCartItems returns every ingredient association of every recipe
// in the user's shopping cart, in cart-insertion order.
func (q *Queries) ListShoppingCartItems(ctx context.Context, userID int64) ([]IngredientInRecipe, error) {
	rows, err := q.db.Query(ctx,
		`SELECT i.id, i.name, i.measurement_unit, ri.amount
		 FROM shopping_cart sc
		 JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sc.user_id = $1
		 ORDER BY sc.created_at, ri.position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []IngredientInRecipe
	for rows.Next() {
		var item IngredientInRecipe
		if err := rows.Scan(&item.IngredientID, &item.Name,
			&item.MeasurementUnit, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type insertRecipeParams struct {
	AuthorID    int64
	Name        string
	ImageURL    string
	Text        string
	CookingTime int32
}

func (q *Queries) insertRecipe(ctx context.Context, arg insertRecipeParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		`INSERT INTO recipes (author_id, name, image_url, text, cooking_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		arg.AuthorID, arg.Name, arg.ImageURL, arg.Text, arg.CookingTime,
	).Scan(&id)
	return id, err
}

func (q *Queries) insertAssociations(ctx context.Context, recipeID int64,
	ingredients []IngredientAmount, tagIDs []int64) error {

	for pos, item := range ingredients {
		if _, err := q.db.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, position)
			 VALUES ($1, $2, $3, $4)`,
			recipeID, item.IngredientID, item.Amount, pos); err != nil {
			return fmt.Errorf("inserting recipe ingredient: %w", err)
		}
	}
	for _, tagID := range tagIDs {
		if _, err := q.db.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`,
			recipeID, tagID); err != nil {
			return fmt.Errorf("inserting recipe tag: %w", err)
		}
	}
	return nil
}

type CreateRecipeAggregateParams struct {
	AuthorID    int64
	Name        string
	ImageURL    string
	Text        string
	CookingTime int32
	Ingredients []IngredientAmount
	TagIDs      []int64
}

// CreateRecipeAggregate persists a recipe with its ingredient and tag
// associations as one transaction.
func (d *Database) CreateRecipeAggregate(ctx context.Context, arg CreateRecipeAggregateParams) (int64, error) {
	var recipeID int64
	err := d.InTx(ctx, func(q *Queries) error {
		var err error
		recipeID, err = q.insertRecipe(ctx, insertRecipeParams{
			AuthorID:    arg.AuthorID,
			Name:        arg.Name,
			ImageURL:    arg.ImageURL,
			Text:        arg.Text,
			CookingTime: arg.CookingTime,
		})
		if err != nil {
			return fmt.Errorf("inserting recipe: %w", err)
		}
		return q.insertAssociations(ctx, recipeID, arg.Ingredients, arg.TagIDs)
	})
	return recipeID, err
}

type UpdateRecipeAggregateParams struct {
	RecipeID    int64
	Name        string
	ImageURL    *string // nil keeps the stored image
	Text        string
	CookingTime int32
	Ingredients []IngredientAmount
	TagIDs      []int64
}

// UpdateRecipeAggregate rewrites a recipe's scalar fields and replaces its
// association rows in one transaction, so readers never observe a partial
// association set.
func (d *Database) UpdateRecipeAggregate(ctx context.Context, arg UpdateRecipeAggregateParams) error {
	return d.InTx(ctx, func(q *Queries) error {
		if _, err := q.db.Exec(ctx,
			`UPDATE recipes
			 SET name = $2, text = $3, cooking_time = $4,
			     image_url = COALESCE($5, image_url)
			 WHERE id = $1`,
			arg.RecipeID, arg.Name, arg.Text, arg.CookingTime, arg.ImageURL); err != nil {
			return fmt.Errorf("updating recipe: %w", err)
		}
		if _, err := q.db.Exec(ctx,
			`DELETE FROM recipe_ingredients WHERE recipe_id = $1`, arg.RecipeID); err != nil {
			return fmt.Errorf("deleting recipe ingredients: %w", err)
		}
		if _, err := q.db.Exec(ctx,
			`DELETE FROM recipe_tags WHERE recipe_id = $1`, arg.RecipeID); err != nil {
			return fmt.Errorf("deleting recipe tags: %w", err)
		}
		return q.insertAssociations(ctx, arg.RecipeID, arg.Ingredients, arg.TagIDs)
	})
}
