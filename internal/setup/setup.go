// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarev/kulinaria/internal/color"
	"github.com/mkarev/kulinaria/internal/config"
	"github.com/mkarev/kulinaria/internal/database"
	"github.com/mkarev/kulinaria/internal/filestore"
)

// Database connects to Postgres and bootstraps the schema when the tables
// are missing.
func Database(ctx context.Context, conf *config.Config) (*database.Database, error) {
	dbString := fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		conf.Database.User, conf.Database.Password,
		conf.Database.Host, conf.Database.Port, conf.Database.Database)

	pool, err := pgxpool.New(ctx, dbString)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	db := database.NewDatabase(pool)
	if err := database.EnsureSchema(db, ctx); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, nil
}

// ImageStore builds the configured image store backend.
func ImageStore(ctx context.Context, conf *config.Config) (filestore.ImageStore, error) {
	switch conf.ImageStore.Backend {
	case config.ImageStoreS3:
		store, err := filestore.NewS3(filestore.S3Params{
			Endpoint:  conf.S3.Endpoint,
			AccessKey: conf.S3.AccessKey,
			SecretKey: conf.S3.SecretKey,
			Bucket:    conf.S3.Bucket,
			UseSSL:    conf.S3.UseSSL,
			URLPrefix: conf.S3.URLPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensuring s3 bucket: %w", err)
		}
		return store, nil
	default:
		volume, err := filepath.Abs(conf.Fileserver.Volume)
		if err != nil {
			return nil, fmt.Errorf("resolving fileserver volume: %w", err)
		}
		return filestore.NewLocal(volume, conf.Fileserver.URLPrefix), nil
	}
}

type seedTag struct {
	name  string
	color string
	slug  string
}

var baselineTags = []seedTag{
	{name: "Завтрак", color: "orange", slug: "breakfast"},
	{name: "Обед", color: "green", slug: "lunch"},
	{name: "Ужин", color: "purple", slug: "dinner"},
}

// Tags creates the baseline tag set when the catalog is empty. Colors are
// given as CSS names and normalized to hex before insertion.
func Tags(ctx context.Context, db *database.Database, logger *slog.Logger) error {
	existing, err := db.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("listing tags: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("tags already setup, skipping seed")
		return nil
	}

	for _, tag := range baselineTags {
		hex, err := color.ToHex(tag.color)
		if err != nil {
			return fmt.Errorf("normalizing tag color %q: %w", tag.color, err)
		}
		if _, err := db.CreateTag(ctx, database.CreateTagParams{
			Name:  tag.name,
			Color: hex,
			Slug:  tag.slug,
		}); err != nil {
			return fmt.Errorf("creating tag %q: %w", tag.slug, err)
		}
	}
	logger.Info("successfully seeded tags")
	return nil
}

var baselineIngredients = []database.CreateIngredientParams{
	{Name: "мука", MeasurementUnit: "г"},
	{Name: "сахар", MeasurementUnit: "г"},
	{Name: "соль", MeasurementUnit: "г"},
	{Name: "яйца", MeasurementUnit: "шт."},
	{Name: "молоко", MeasurementUnit: "мл"},
	{Name: "масло сливочное", MeasurementUnit: "г"},
}

// Ingredients creates a starter ingredient catalog when it is empty.
func Ingredients(ctx context.Context, db *database.Database, logger *slog.Logger) error {
	count, err := db.CountIngredients(ctx, "")
	if err != nil {
		return fmt.Errorf("counting ingredients: %w", err)
	}
	if count > 0 {
		logger.Info("ingredients already setup, skipping seed")
		return nil
	}

	for _, ingredient := range baselineIngredients {
		if _, err := db.CreateIngredient(ctx, ingredient); err != nil {
			return fmt.Errorf("creating ingredient %q: %w", ingredient.Name, err)
		}
	}
	logger.Info("successfully seeded ingredients")
	return nil
}
