// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/mkarev/kulinaria/internal/config"
	"github.com/mkarev/kulinaria/internal/database"
	"github.com/mkarev/kulinaria/internal/filestore"
	"github.com/mkarev/kulinaria/internal/log"
)

type Env struct {
	Logger   *slog.Logger
	Database *database.Database
	Config   *config.Config
	Images   filestore.ImageStore
}

type envKeyType struct{}

var envKey envKeyType

// WithCtx attaches the environment to the context.
func WithCtx(ctx context.Context, environment *Env) context.Context {
	return context.WithValue(ctx, envKey, environment)
}

// EnvFromCtx retrieves the environment from the context, falling back to a
// null environment so callers never receive a nil pointer.
func EnvFromCtx(ctx context.Context) *Env {
	if e, ok := ctx.Value(envKey).(*Env); ok && e != nil {
		return e
	}
	return Null()
}

func Null() *Env {
	return &Env{
		Logger: log.NullLogger(),
	}
}
