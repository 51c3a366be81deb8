package users

import "github.com/mkarev/kulinaria/internal/recipe"

type SignupResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SubscriptionView is an author profile extended with their recipes, as
// returned by the subscription endpoints.
type SubscriptionView struct {
	recipe.AuthorView
	Recipes      []recipe.ShortView `json:"recipes"`
	RecipesCount int64              `json:"recipes_count"`
}
