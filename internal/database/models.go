package database

import "github.com/jackc/pgx/v5/pgtype"

type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

type Tag struct {
	ID    int64
	Name  string
	Color string
	Slug  string
}

type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	ImageURL    string
	Text        string
	CookingTime int32
	PubDate     pgtype.Timestamptz
}

// IngredientInRecipe is a resolved ingredient association row.
type IngredientInRecipe struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int32
}

// IngredientAmount references an ingredient with a quantity, as submitted
// by recipe create/update requests.
type IngredientAmount struct {
	IngredientID int64
	Amount       int32
}
