// Package recipes contains handlers for the recipe resource: browsing,
// authoring, favorites, the shopping cart and the shopping list export.
package recipes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	apiError "github.com/mkarev/kulinaria/internal/api/error"
	"github.com/mkarev/kulinaria/internal/api/pagination"
	"github.com/mkarev/kulinaria/internal/api/requestid"
	"github.com/mkarev/kulinaria/internal/api/token"
	"github.com/mkarev/kulinaria/internal/database"
	"github.com/mkarev/kulinaria/internal/env"
	"github.com/mkarev/kulinaria/internal/image"
	mJson "github.com/mkarev/kulinaria/internal/json"
	"github.com/mkarev/kulinaria/internal/membership"
	"github.com/mkarev/kulinaria/internal/recipe"
	"github.com/mkarev/kulinaria/internal/validation"
)

func newWriter(e *env.Env) *recipe.Writer {
	return &recipe.Writer{
		Store:  e.Database,
		Images: e.Images,
		Bounds: recipe.Bounds{
			MinCookingTime: e.Config.Recipes.MinCookingTime,
			MaxCookingTime: e.Config.Recipes.MaxCookingTime,
			MinAmount:      e.Config.Recipes.MinAmount,
			MaxAmount:      e.Config.Recipes.MaxAmount,
		},
	}
}

// buildInput converts the decoded request into a recipe input, decoding the
// image data URI when one was submitted.
func buildInput(request RecipeRequest) (recipe.Input, validation.Errors) {
	input := recipe.Input{
		Name:        request.Name,
		Text:        request.Text,
		CookingTime: request.CookingTime,
		TagIDs:      request.Tags,
	}
	for _, item := range request.Ingredients {
		input.Ingredients = append(input.Ingredients, database.IngredientAmount{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if request.Image != "" {
		file, err := image.DecodeDataURI(request.Image)
		if err != nil {
			return input, validation.Errors{"image": err.Error()}
		}
		input.Image = file
	}
	return input, nil
}

// parseFilter builds the recipe list filter from query parameters. The
// membership filters only apply to authenticated requesters.
func parseFilter(r *http.Request, viewer int64) database.RecipeFilter {
	query := r.URL.Query()
	var filter database.RecipeFilter

	if raw := query.Get("author"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.AuthorID = &id
		}
	}
	filter.TagSlugs = query["tags"]

	if viewer == 0 {
		return filter
	}
	if raw := query.Get("is_favorited"); raw != "" {
		if wanted, err := strconv.ParseBool(raw); err == nil {
			filter.FavoritedBy = &viewer
			filter.FavoritedWanted = wanted
		}
	}
	if raw := query.Get("is_in_shopping_cart"); raw != "" {
		if wanted, err := strconv.ParseBool(raw); err == nil {
			filter.InCartOf = &viewer
			filter.InCartWanted = wanted
		}
	}
	return filter
}

// HandleListRecipes godoc
//
//	@Summary	List recipes.
//	@Tags		Recipe
//
//	@Param		author				query		int		false	"Filter by author ID"
//	@Param		tags				query		[]string	false	"Filter by tag slugs"
//	@Param		is_favorited		query		bool	false	"Filter by the requester's favorites"
//	@Param		is_in_shopping_cart	query		bool	false	"Filter by the requester's shopping cart"
//	@Success	200					{object}	pagination.Page[recipe.View]
//	@Router		/api/recipes/ [GET]
func HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	params := pagination.Parse(r, env.Config.Pagination)
	filter := parseFilter(r, viewer)

	recipes, err := env.Database.ListRecipes(ctx, database.ListRecipesParams{
		Filter: filter,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountRecipes(ctx, filter)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views := make([]recipe.View, 0, len(recipes))
	for _, rec := range recipes {
		view, err := recipe.Project(ctx, env.Database, rec, viewer)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to project recipe", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
		views = append(views, view)
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pagination.NewPage(count, views)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetRecipe godoc
//
//	@Summary	Get a recipe.
//	@Tags		Recipe
//
//	@Param		id	path		int	true	"Recipe ID"
//	@Success	200	{object}	recipe.View
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id} [GET]
func HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return
	}

	view, err := recipe.Project(ctx, env.Database, rec, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to project recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// fetchRecipe resolves the recipe named by the id path parameter, encoding
// the not-found response itself. The boolean reports whether the caller
// should proceed.
func fetchRecipe(w http.ResponseWriter, r *http.Request, requestID string) (database.Recipe, bool) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return database.Recipe{}, false
	}

	rec, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return database.Recipe{}, false
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return database.Recipe{}, false
	}
	return rec, true
}

// HandleCreateRecipe godoc
//
//	@Summary	Create a recipe.
//	@Tags		Recipe
//
//	@Accept		json
//	@Param		request	body	RecipeRequest	true	"Recipe"
//
//	@Success	201	{object}	recipe.View
//	@Failure	400	{object}	apiError.Error	"Validation failed"
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/recipes/ [POST]
func HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	// Decode JSON
	var request RecipeRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	input, fieldErrs := buildInput(request)
	if fieldErrs != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", fieldErrs))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed, fieldErrs, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating recipe")
	id, err := newWriter(env).Create(ctx, viewer, input)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		env.Logger.ErrorContext(ctx, "Recipe validation failed", slog.Any("error", verrs))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed, verrs, requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	rec, err := env.Database.GetRecipe(ctx, id)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	view, err := recipe.Project(ctx, env.Database, rec, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to project recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// requireOwnership resolves the recipe and ensures the viewer authored it,
// encoding the failure response itself.
func requireOwnership(w http.ResponseWriter, r *http.Request, requestID string,
	viewer int64) (database.Recipe, bool) {

	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return database.Recipe{}, false
	}
	if rec.AuthorID != viewer {
		env.Logger.ErrorContext(ctx, "Recipe not owned by requester",
			slog.Int64("recipe_id", rec.ID), slog.Int64("user_id", viewer))
		_ = apiError.EncodeError(w, apiError.RecipeNotOwned, "you do not own this recipe", requestID)
		return database.Recipe{}, false
	}
	return rec, true
}

// HandleUpdateRecipe godoc
//
//	@Summary	Update a recipe. Only the author may update it.
//	@Tags		Recipe
//
//	@Accept		json
//	@Param		id		path	int				true	"Recipe ID"
//	@Param		request	body	RecipeRequest	true	"Recipe"
//
//	@Success	200	{object}	recipe.View
//	@Failure	400	{object}	apiError.Error	"Validation failed"
//	@Failure	403	{object}	apiError.Error	"Forbidden"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id} [PATCH]
func HandleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := requireOwnership(w, r, requestID, viewer)
	if !ok {
		return
	}

	// Decode JSON
	var request RecipeRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	input, fieldErrs := buildInput(request)
	if fieldErrs != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", fieldErrs))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed, fieldErrs, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Updating recipe", slog.Int64("recipe_id", rec.ID))
	err := newWriter(env).Update(ctx, rec.ID, input)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		env.Logger.ErrorContext(ctx, "Recipe validation failed", slog.Any("error", verrs))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed, verrs, requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	updated, err := env.Database.GetRecipe(ctx, rec.ID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	view, err := recipe.Project(ctx, env.Database, updated, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to project recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleDeleteRecipe godoc
//
//	@Summary	Delete a recipe. Only the author may delete it.
//	@Tags		Recipe
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	403	{object}	apiError.Error	"Forbidden"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id} [DELETE]
func HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := requireOwnership(w, r, requestID, viewer)
	if !ok {
		return
	}

	deleted, err := env.Database.DeleteRecipe(ctx, rec.ID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !deleted {
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAddFavorite godoc
//
//	@Summary	Add a recipe to the requester's favorites.
//	@Tags		Favorite
//
//	@Param		id	path		int	true	"Recipe ID"
//	@Success	201	{object}	recipe.ShortView
//	@Failure	400	{object}	apiError.Error	"Already favorited"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id}/favorite [POST]
func HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err := manager.AddFavorite(ctx, viewer, rec.ID)
	if errors.Is(err, membership.ErrAlreadyExists) {
		_ = apiError.EncodeError(w, apiError.MembershipConflict, "recipe already favorited", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to add favorite", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(recipe.ProjectShort(rec)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleRemoveFavorite godoc
//
//	@Summary	Remove a recipe from the requester's favorites.
//	@Tags		Favorite
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not favorited"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id}/favorite [DELETE]
func HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err := manager.RemoveFavorite(ctx, viewer, rec.ID)
	if errors.Is(err, membership.ErrNotFound) {
		_ = apiError.EncodeError(w, apiError.MembershipNotFound, "recipe is not favorited", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to remove favorite", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAddToShoppingCart godoc
//
//	@Summary	Add a recipe to the requester's shopping cart.
//	@Tags		ShoppingCart
//
//	@Param		id	path		int	true	"Recipe ID"
//	@Success	201	{object}	recipe.ShortView
//	@Failure	400	{object}	apiError.Error	"Already in the cart"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id}/shopping_cart [POST]
func HandleAddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err := manager.AddToShoppingCart(ctx, viewer, rec.ID)
	if errors.Is(err, membership.ErrAlreadyExists) {
		_ = apiError.EncodeError(w, apiError.MembershipConflict, "recipe already in shopping cart", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to add to shopping cart", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(recipe.ProjectShort(rec)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleRemoveFromShoppingCart godoc
//
//	@Summary	Remove a recipe from the requester's shopping cart.
//	@Tags		ShoppingCart
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not in the cart"
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/recipes/{id}/shopping_cart [DELETE]
func HandleRemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	rec, ok := fetchRecipe(w, r, requestID)
	if !ok {
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err := manager.RemoveFromShoppingCart(ctx, viewer, rec.ID)
	if errors.Is(err, membership.ErrNotFound) {
		_ = apiError.EncodeError(w, apiError.MembershipNotFound, "recipe is not in the shopping cart", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to remove from shopping cart", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDownloadShoppingCart godoc
//
//	@Summary	Download the aggregated shopping list as CSV.
//	@Tags		ShoppingCart
//
//	@Produce	text/csv
//	@Success	200
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/recipes/download_shopping_cart [GET]
func HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	items, err := recipe.AggregateShoppingList(ctx, env.Database, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to aggregate shopping list", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.csv"`)
	if err := recipe.WriteShoppingListCSV(w, items); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write shopping list", slog.Any("error", err))
	}
}
