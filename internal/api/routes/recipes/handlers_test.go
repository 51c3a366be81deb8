package recipes

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkarev/kulinaria/internal/database"
)

// A 1x1 transparent PNG.
var pngPixel = func() string {
	raw := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89, 0x00, 0x00, 0x00,
		0x0D, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9C, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}()

func TestBuildInput(t *testing.T) {
	request := RecipeRequest{
		Ingredients: []IngredientAmountRequest{{ID: 3, Amount: 200}, {ID: 7, Amount: 1}},
		Tags:        []int64{1, 2},
		Image:       pngPixel,
		Name:        "Блины",
		Text:        "Смешать и жарить.",
		CookingTime: 20,
	}

	input, fieldErrs := buildInput(request)
	if fieldErrs != nil {
		t.Fatalf("buildInput() field errors: %v", fieldErrs)
	}
	if input.Name != request.Name || input.Text != request.Text || input.CookingTime != 20 {
		t.Errorf("scalar fields not carried over: %+v", input)
	}
	if len(input.Ingredients) != 2 || input.Ingredients[0].IngredientID != 3 ||
		input.Ingredients[0].Amount != 200 {
		t.Errorf("ingredients = %+v", input.Ingredients)
	}
	if input.Image == nil {
		t.Fatal("image was not decoded")
	}
	if input.Image.Suffix != ".png" {
		t.Errorf("image suffix = %q, want .png", input.Image.Suffix)
	}
}

func TestBuildInputWithoutImage(t *testing.T) {
	input, fieldErrs := buildInput(RecipeRequest{Name: "Чай"})
	if fieldErrs != nil {
		t.Fatalf("buildInput() field errors: %v", fieldErrs)
	}
	if input.Image != nil {
		t.Errorf("image = %+v, want nil", input.Image)
	}
}

func TestBuildInputBadImage(t *testing.T) {
	_, fieldErrs := buildInput(RecipeRequest{Image: "not-a-data-uri"})
	if fieldErrs == nil {
		t.Fatal("expected field errors")
	}
	if _, ok := fieldErrs["image"]; !ok {
		t.Errorf("missing image field error, got %v", fieldErrs)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		viewer int64
		check  func(t *testing.T, f database.RecipeFilter)
	}{
		{
			name:   "author and tags",
			url:    "/api/recipes/?author=5&tags=lunch&tags=dinner",
			viewer: 0,
			check: func(t *testing.T, f database.RecipeFilter) {
				if f.AuthorID == nil || *f.AuthorID != 5 {
					t.Errorf("AuthorID = %v, want 5", f.AuthorID)
				}
				if len(f.TagSlugs) != 2 || f.TagSlugs[0] != "lunch" {
					t.Errorf("TagSlugs = %v", f.TagSlugs)
				}
			},
		},
		{
			name:   "membership filters ignored for anonymous",
			url:    "/api/recipes/?is_favorited=1&is_in_shopping_cart=1",
			viewer: 0,
			check: func(t *testing.T, f database.RecipeFilter) {
				if f.FavoritedBy != nil || f.InCartOf != nil {
					t.Errorf("membership filters set for anonymous viewer: %+v", f)
				}
			},
		},
		{
			name:   "favorited include",
			url:    "/api/recipes/?is_favorited=1",
			viewer: 42,
			check: func(t *testing.T, f database.RecipeFilter) {
				if f.FavoritedBy == nil || *f.FavoritedBy != 42 || !f.FavoritedWanted {
					t.Errorf("filter = %+v, want favorited by 42", f)
				}
			},
		},
		{
			name:   "shopping cart exclude",
			url:    "/api/recipes/?is_in_shopping_cart=0",
			viewer: 42,
			check: func(t *testing.T, f database.RecipeFilter) {
				if f.InCartOf == nil || *f.InCartOf != 42 || f.InCartWanted {
					t.Errorf("filter = %+v, want cart of 42 excluded", f)
				}
			},
		},
		{
			name:   "garbage values ignored",
			url:    "/api/recipes/?author=abc&is_favorited=maybe",
			viewer: 42,
			check: func(t *testing.T, f database.RecipeFilter) {
				if f.AuthorID != nil || f.FavoritedBy != nil {
					t.Errorf("filter = %+v, want empty", f)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.url, nil)
			test.check(t, parseFilter(req, test.viewer))
		})
	}
}
