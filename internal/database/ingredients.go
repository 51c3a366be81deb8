package database

import (
	"context"
	"strings"
)

// escapeLike escapes LIKE metacharacters in user-supplied search input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

type ListIngredientsParams struct {
	NamePrefix string
	Limit      int32
	Offset     int32
}

// ListIngredients returns ingredients whose name starts with the given
// prefix, case-insensitively. An empty prefix matches everything.
func (q *Queries) ListIngredients(ctx context.Context, arg ListIngredientsParams) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE name ILIKE $1
		 ORDER BY name
		 LIMIT $2 OFFSET $3`,
		escapeLike(arg.NamePrefix)+"%", arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, i)
	}
	return ingredients, rows.Err()
}

func (q *Queries) CountIngredients(ctx context.Context, namePrefix string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM ingredients WHERE name ILIKE $1`,
		escapeLike(namePrefix)+"%").Scan(&count)
	return count, err
}

func (q *Queries) GetIngredient(ctx context.Context, id int64) (Ingredient, error) {
	var i Ingredient
	err := q.db.QueryRow(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id,
	).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	return i, err
}

// ListIngredientIDs returns the subset of ids that exist in the
// ingredients table.
func (q *Queries) ListIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id FROM ingredients WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

type CreateIngredientParams struct {
	Name            string
	MeasurementUnit string
}

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`,
		arg.Name, arg.MeasurementUnit,
	).Scan(&id)
	return id, err
}
