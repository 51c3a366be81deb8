// Package api sets up and starts the API
// server with routing, middleware, and Swagger documentation.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/mkarev/kulinaria/docs"
	"github.com/mkarev/kulinaria/internal/api/middleware"
	"github.com/mkarev/kulinaria/internal/api/routes/auth"
	"github.com/mkarev/kulinaria/internal/api/routes/ingredients"
	"github.com/mkarev/kulinaria/internal/api/routes/recipes"
	"github.com/mkarev/kulinaria/internal/api/routes/tags"
	"github.com/mkarev/kulinaria/internal/api/routes/users"
	"github.com/mkarev/kulinaria/internal/config"
	"github.com/mkarev/kulinaria/internal/env"
)

func addDocs(r *chi.Mux, serverAddr string) {
	swagger := httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/api/swagger/doc.json", serverAddr)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)

	r.Mount("/api/swagger", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Handle preflight
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Allow GET to serve Swagger
		if req.Method == http.MethodGet {
			swagger.ServeHTTP(w, req)
			return
		}

		// Block anything else
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}))
}

func addRoutes(router *chi.Mux) {
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/login", auth.HandleTokenLogin)
			r.Post("/logout", auth.HandleTokenLogout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.HandleSignup)
			r.With(middleware.OptionalAuth).Get("/", users.HandleListUsers)
			r.With(middleware.OptionalAuth).Get("/{id}", users.HandleGetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthorizeRequest)

				r.Get("/me", users.HandleGetMe)
				r.Post("/set_password", users.HandleSetPassword)
				r.Get("/subscriptions", users.HandleListSubscriptions)
				r.Post("/{id}/subscribe", users.HandleSubscribe)
				r.Delete("/{id}/subscribe", users.HandleUnsubscribe)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tags.HandleListTags)
			r.Get("/{id}", tags.HandleGetTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredients.HandleListIngredients)
			r.Get("/{id}", ingredients.HandleGetIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.With(middleware.OptionalAuth).Get("/", recipes.HandleListRecipes)
			r.With(middleware.OptionalAuth).Get("/{id}", recipes.HandleGetRecipe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthorizeRequest)

				r.Post("/", recipes.HandleCreateRecipe)
				r.Get("/download_shopping_cart", recipes.HandleDownloadShoppingCart)
				r.Patch("/{id}", recipes.HandleUpdateRecipe)
				r.Delete("/{id}", recipes.HandleDeleteRecipe)
				r.Post("/{id}/favorite", recipes.HandleAddFavorite)
				r.Delete("/{id}/favorite", recipes.HandleRemoveFavorite)
				r.Post("/{id}/shopping_cart", recipes.HandleAddToShoppingCart)
				r.Delete("/{id}/shopping_cart", recipes.HandleRemoveFromShoppingCart)
			})
		})
	})
}

// addFileserver serves locally stored recipe images. Only mounted when the
// local image store backend is configured.
func addFileserver(router *chi.Mux, conf *config.Config) {
	if conf.ImageStore.Backend != config.ImageStoreLocal {
		return
	}
	prefix := "/" + strings.Trim(conf.Fileserver.URLPrefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(conf.Fileserver.Volume)))
	router.Handle(prefix+"/*", fs)
}

// Start godoc
//
//	@title						Kulinaria API
//	@version					1.0
//	@description				API server for the Kulinaria recipe platform.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//
//	@BasePath					/api
func Start(env *env.Env) error {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(env.Logger))
	router.Use(middleware.InjectEnv(env))
	router.Use(middleware.AddCors)

	addRoutes(router)
	addFileserver(router, env.Config)
	addDocs(router, fmt.Sprintf("0.0.0.0:%d", env.Config.Port))

	env.Logger.Info(fmt.Sprintf("Listening at 0.0.0.0:%d", env.Config.Port))
	env.Logger.Info(fmt.Sprintf("Swagger UI available at http://0.0.0.0:%d/api/swagger/index.html", env.Config.Port))
	return http.ListenAndServe(fmt.Sprintf(":%d", env.Config.Port), router)
}
