package recipe

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/mkarev/kulinaria/internal/database"
	"github.com/mkarev/kulinaria/internal/image"
	"github.com/mkarev/kulinaria/internal/validation"
)

const requiredMessage = "this field is required"

// Input is the submitted recipe payload after JSON and image decoding.
type Input struct {
	Name        string
	Text        string
	CookingTime int32
	Image       *image.File // required on create, optional on update
	Ingredients []database.IngredientAmount
	TagIDs      []int64
}

// Writer persists recipe aggregates. Every write is validated in full
// first: all field violations are collected before anything is persisted,
// and association replacement happens inside one transaction.
type Writer struct {
	Store  WriteStore
	Images ImageStore
	Bounds Bounds
}

// Create validates the input and persists a new recipe owned by authorID.
// Validation failures are returned as validation.Errors keyed by field.
func (w *Writer) Create(ctx context.Context, authorID int64, input Input) (int64, error) {
	if err := w.validate(ctx, input, true); err != nil {
		return 0, err
	}

	imageURL, err := w.storeImage(ctx, input.Image)
	if err != nil {
		return 0, fmt.Errorf("storing recipe image: %w", err)
	}

	id, err := w.Store.CreateRecipeAggregate(ctx, database.CreateRecipeAggregateParams{
		AuthorID:    authorID,
		Name:        input.Name,
		ImageURL:    imageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Ingredients: input.Ingredients,
		TagIDs:      input.TagIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("creating recipe aggregate: %w", err)
	}
	return id, nil
}

// Update validates the input and replaces the recipe's scalar fields and
// associations. A nil input image keeps the stored one.
func (w *Writer) Update(ctx context.Context, recipeID int64, input Input) error {
	if err := w.validate(ctx, input, false); err != nil {
		return err
	}

	var imageURL *string
	if input.Image != nil {
		url, err := w.storeImage(ctx, input.Image)
		if err != nil {
			return fmt.Errorf("storing recipe image: %w", err)
		}
		imageURL = &url
	}

	err := w.Store.UpdateRecipeAggregate(ctx, database.UpdateRecipeAggregateParams{
		RecipeID:    recipeID,
		Name:        input.Name,
		ImageURL:    imageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Ingredients: input.Ingredients,
		TagIDs:      input.TagIDs,
	})
	if err != nil {
		return fmt.Errorf("updating recipe aggregate: %w", err)
	}
	return nil
}

func (w *Writer) storeImage(ctx context.Context, file *image.File) (string, error) {
	name := ulid.Make().String() + file.Suffix
	return w.Images.WriteRecipeImage(ctx, name, file.Data)
}

// validate collects every field violation before returning, so the caller
// sees the full set at once.
func (w *Writer) validate(ctx context.Context, input Input, isCreate bool) error {
	errs := validation.Errors{}

	if input.Name == "" {
		errs.Add("name", requiredMessage)
	}
	if input.Text == "" {
		errs.Add("text", requiredMessage)
	}
	if input.CookingTime < w.Bounds.MinCookingTime || input.CookingTime > w.Bounds.MaxCookingTime {
		errs.Add("cooking_time", fmt.Sprintf("must be between %d and %d minutes",
			w.Bounds.MinCookingTime, w.Bounds.MaxCookingTime))
	}
	if isCreate && input.Image == nil {
		errs.Add("image", requiredMessage)
	}

	w.validateIngredients(ctx, errs, input.Ingredients)
	w.validateTags(ctx, errs, input.TagIDs)

	return errs.OrNil()
}

func (w *Writer) validateIngredients(ctx context.Context, errs validation.Errors,
	ingredients []database.IngredientAmount) {

	if len(ingredients) == 0 {
		errs.Add("ingredients", requiredMessage)
		return
	}

	ids := make([]int64, 0, len(ingredients))
	seen := make(map[int64]bool, len(ingredients))
	for _, item := range ingredients {
		if seen[item.IngredientID] {
			errs.Add("ingredients", "duplicate ingredients are not allowed")
			return
		}
		seen[item.IngredientID] = true
		ids = append(ids, item.IngredientID)

		if item.Amount < w.Bounds.MinAmount || item.Amount > w.Bounds.MaxAmount {
			errs.Add("ingredients", fmt.Sprintf("amount must be between %d and %d",
				w.Bounds.MinAmount, w.Bounds.MaxAmount))
			return
		}
	}

	found, err := w.Store.ListIngredientIDs(ctx, ids)
	if err != nil {
		errs.Add("ingredients", "could not verify ingredients")
		return
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		errs.Add("ingredients", fmt.Sprintf("ingredient %v does not exist", missing))
	}
}

func (w *Writer) validateTags(ctx context.Context, errs validation.Errors, tagIDs []int64) {
	if len(tagIDs) == 0 {
		errs.Add("tags", requiredMessage)
		return
	}

	seen := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			errs.Add("tags", "duplicate tags are not allowed")
			return
		}
		seen[id] = true
	}

	found, err := w.Store.ListTagIDs(ctx, tagIDs)
	if err != nil {
		errs.Add("tags", "could not verify tags")
		return
	}
	if missing := missingIDs(tagIDs, found); len(missing) > 0 {
		errs.Add("tags", fmt.Sprintf("tag %v does not exist", missing))
	}
}

func missingIDs(wanted, found []int64) []int64 {
	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []int64
	for _, id := range wanted {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
