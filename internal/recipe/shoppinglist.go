package recipe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/mkarev/kulinaria/internal/database"
)

// CartStore lists the ingredient associations of a user's cart recipes.
type CartStore interface {
	ListShoppingCartItems(ctx context.Context, userID int64) ([]database.IngredientInRecipe, error)
}

// ShoppingItem is one consolidated row of the shopping-list export.
type ShoppingItem struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int64
}

// shoppingListHeader matches the export format of the original service.
var shoppingListHeader = []string{"Название", "Единица измерения", "Количество"}

// AggregateShoppingList merges the ingredient quantities of every recipe in
// the user's shopping cart. Totals are keyed by ingredient id, so the same
// ingredient across recipes collapses into one row while distinct
// ingredients sharing a name stay separate. Rows are sorted by name, then
// id, so repeated exports of the same cart are identical.
func AggregateShoppingList(ctx context.Context, s CartStore, userID int64) ([]ShoppingItem, error) {
	rows, err := s.ListShoppingCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing shopping cart items: %w", err)
	}

	totals := make(map[int64]*ShoppingItem, len(rows))
	for _, row := range rows {
		if item, ok := totals[row.IngredientID]; ok {
			item.Amount += int64(row.Amount)
			continue
		}
		totals[row.IngredientID] = &ShoppingItem{
			IngredientID:    row.IngredientID,
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          int64(row.Amount),
		}
	}

	items := make([]ShoppingItem, 0, len(totals))
	for _, item := range totals {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].IngredientID < items[j].IngredientID
	})
	return items, nil
}

// WriteShoppingListCSV renders the consolidated list as CSV with the fixed
// three-column header.
func WriteShoppingListCSV(w io.Writer, items []ShoppingItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(shoppingListHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, item := range items {
		record := []string{item.Name, item.MeasurementUnit, strconv.FormatInt(item.Amount, 10)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
