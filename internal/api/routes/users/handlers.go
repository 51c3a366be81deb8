// Package users contains handlers for the user resource.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	apiError "github.com/mkarev/kulinaria/internal/api/error"
	"github.com/mkarev/kulinaria/internal/api/pagination"
	"github.com/mkarev/kulinaria/internal/api/requestid"
	"github.com/mkarev/kulinaria/internal/api/token"
	"github.com/mkarev/kulinaria/internal/argon2id"
	"github.com/mkarev/kulinaria/internal/database"
	"github.com/mkarev/kulinaria/internal/env"
	mJson "github.com/mkarev/kulinaria/internal/json"
	"github.com/mkarev/kulinaria/internal/membership"
	"github.com/mkarev/kulinaria/internal/password"
	"github.com/mkarev/kulinaria/internal/recipe"
	"github.com/mkarev/kulinaria/internal/username"
	"github.com/mkarev/kulinaria/internal/validation"
)

// HandleSignup godoc
//
//	@Summary	Register a new user.
//	@Tags		User
//
//	@Accept		json
//	@Param		request	body	SignupRequest	true	"Signup Request"
//
//	@Success	200	{object}	SignupResponse
//	@Failure	400	{object}	apiError.Error	"Validation failed or signup conflict"
//	@Router		/api/users/ [POST]
func HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request SignupRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Validate every field before persisting anything.
	env.Logger.DebugContext(ctx, "Validating signup fields")
	errs := validation.Errors{}
	if request.Email == "" {
		errs.Add("email", "this field is required")
	} else {
		validate := validator.New(validator.WithRequiredStructEnabled())
		if err := validate.Var(request.Email, "email"); err != nil {
			errs.Add("email", "enter a valid email address")
		}
	}
	if err := username.Validate(request.Username); err != nil {
		errs.Add("username", err.Error())
	}
	if request.FirstName == "" {
		errs.Add("first_name", "this field is required")
	}
	if request.LastName == "" {
		errs.Add("last_name", "this field is required")
	}
	if err := password.ValidatePassword(request.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if len(errs) > 0 {
		env.Logger.ErrorContext(ctx, "Signup validation failed", slog.Any("error", errs))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed, errs, requestID)
		return
	}

	// Report collisions per field so the client can highlight both at once.
	env.Logger.DebugContext(ctx, "Checking for signup collisions")
	collisions, err := env.Database.FindUserCollisions(ctx, database.FindUserCollisionsParams{
		Email:    request.Email,
		Username: request.Username,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check signup collisions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if len(collisions) > 0 {
		fields := map[string]string{}
		for _, existing := range collisions {
			if existing.Email == request.Email {
				fields["email"] = "a user with this email already exists"
			}
			if existing.Username == request.Username {
				fields["username"] = "a user with this username already exists"
			}
		}
		env.Logger.ErrorContext(ctx, "Signup collision", slog.Any("fields", fields))
		_ = apiError.EncodeFieldErrors(w, apiError.SignupConflict, fields, requestID)
		return
	}

	// Hash password
	env.Logger.DebugContext(ctx, "Hashing password")
	hash, err := argon2id.EncodeHash(request.Password, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Create user
	env.Logger.DebugContext(ctx, "Creating user")
	userID, err := env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        request.Email,
		Username:     request.Username,
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Writing response")
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SignupResponse{
		Email:     request.Email,
		ID:        userID,
		Username:  request.Username,
		FirstName: request.FirstName,
		LastName:  request.LastName,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleListUsers godoc
//
//	@Summary	List users.
//	@Tags		User
//
//	@Success	200	{object}	pagination.Page[recipe.AuthorView]
//	@Router		/api/users/ [GET]
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	params := pagination.Parse(r, env.Config.Pagination)

	users, err := env.Database.ListUsers(ctx, database.ListUsersParams{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountUsers(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views := make([]recipe.AuthorView, 0, len(users))
	for _, u := range users {
		view, err := recipe.ProjectAuthor(ctx, env.Database, u, viewer)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to project user", slog.Any("error", err))
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

// HandleGetUser godoc
//
//	@Summary	Get a user profile.
//	@Tags		User
//
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	recipe.AuthorView
//	@Failure	404	{object}	apiError.Error	"Not Found"
//	@Router		/api/users/{id} [GET]
func HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}

	user, err := env.Database.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	view, err := recipe.ProjectAuthor(ctx, env.Database, user, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to project user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetMe godoc
//
//	@Summary	Get the authenticated user's profile.
//	@Tags		User
//
//	@Success	200	{object}	recipe.AuthorView
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/users/me [GET]
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	user, err := env.Database.GetUserByID(ctx, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	view, err := recipe.ProjectAuthor(ctx, env.Database, user, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to project user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleSetPassword godoc
//
//	@Summary	Change the authenticated user's password.
//	@Tags		User
//
//	@Accept		json
//	@Param		request	body	SetPasswordRequest	true	"Set Password Request"
//
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Invalid current password or weak new password"
//	@Router		/api/users/set_password [POST]
func HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	// Decode JSON
	var request SetPasswordRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Verify the current password before accepting the new one.
	user, err := env.Database.GetUserByID(ctx, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	match, err := argon2id.VerifyPassword(request.CurrentPassword, user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to verify password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !match {
		env.Logger.ErrorContext(ctx, "Current password is incorrect")
		_ = apiError.EncodeFieldErrors(w, apiError.InvalidPassword,
			map[string]string{"current_password": "current password is incorrect"}, requestID)
		return
	}

	// Ensure new password strength
	if err := password.ValidatePassword(request.NewPassword); err != nil {
		env.Logger.ErrorContext(ctx, "New password too weak", slog.Any("error", err))
		_ = apiError.EncodeFieldErrors(w, apiError.ValidationFailed,
			map[string]string{"new_password": err.Error()}, requestID)
		return
	}

	hash, err := argon2id.EncodeHash(request.NewPassword, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := env.Database.UpdateUserPassword(ctx, database.UpdateUserPasswordParams{
		ID:           viewer,
		PasswordHash: hash,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseRecipesLimit(r *http.Request) int32 {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return 0
	}
	return int32(v)
}

func buildSubscriptionView(ctx context.Context, e *env.Env, author database.User,
	viewer int64, recipesLimit int32) (SubscriptionView, error) {

	authorView, err := recipe.ProjectAuthor(ctx, e.Database, author, viewer)
	if err != nil {
		return SubscriptionView{}, err
	}

	recipes, err := e.Database.ListRecipesByAuthor(ctx, database.ListRecipesByAuthorParams{
		AuthorID: author.ID,
		Limit:    recipesLimit,
	})
	if err != nil {
		return SubscriptionView{}, err
	}
	shorts := make([]recipe.ShortView, 0, len(recipes))
	for _, rec := range recipes {
		shorts = append(shorts, recipe.ProjectShort(rec))
	}

	count, err := e.Database.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return SubscriptionView{}, err
	}

	return SubscriptionView{
		AuthorView:   authorView,
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

// HandleListSubscriptions godoc
//
//	@Summary	List the authors the authenticated user subscribes to.
//	@Tags		Subscription
//
//	@Param		recipes_limit	query		int	false	"Cap the recipes listed per author"
//	@Success	200				{object}	pagination.Page[SubscriptionView]
//	@Failure	401				{object}	apiError.Error	"Unauthorized"
//	@Router		/api/users/subscriptions [GET]
func HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	params := pagination.Parse(r, env.Config.Pagination)
	recipesLimit := parseRecipesLimit(r)

	authors, err := env.Database.ListSubscriptions(ctx, database.ListSubscriptionsParams{
		UserID: viewer,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list subscriptions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountSubscriptions(ctx, viewer)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count subscriptions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views := make([]SubscriptionView, 0, len(authors))
	for _, author := range authors {
		view, err := buildSubscriptionView(ctx, env, author, viewer, recipesLimit)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to build subscription view", slog.Any("error", err))
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

// HandleSubscribe godoc
//
//	@Summary	Subscribe to an author.
//	@Tags		Subscription
//
//	@Param		id	path		int	true	"Author ID"
//	@Success	201	{object}	SubscriptionView
//	@Failure	400	{object}	apiError.Error	"Already subscribed or self-subscription"
//	@Failure	404	{object}	apiError.Error	"Author not found"
//	@Router		/api/users/{id}/subscribe [POST]
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}

	author, err := env.Database.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err = manager.Subscribe(ctx, viewer, id)
	if errors.Is(err, membership.ErrSelfSubscription) {
		_ = apiError.EncodeError(w, apiError.SelfSubscription, "cannot subscribe to yourself", requestID)
		return
	} else if errors.Is(err, membership.ErrAlreadyExists) {
		_ = apiError.EncodeError(w, apiError.MembershipConflict, "already subscribed", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to subscribe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	view, err := buildSubscriptionView(ctx, env, author, viewer, parseRecipesLimit(r))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build subscription view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleUnsubscribe godoc
//
//	@Summary	Unsubscribe from an author.
//	@Tags		Subscription
//
//	@Param		id	path	int	true	"Author ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not subscribed or self-subscription"
//	@Failure	404	{object}	apiError.Error	"Author not found"
//	@Router		/api/users/{id}/subscribe [DELETE]
func HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	viewer := token.UserIDFromCtx(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}

	if _, err := env.Database.GetUserByID(ctx, id); errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	manager := &membership.Manager{Store: env.Database}
	err = manager.Unsubscribe(ctx, viewer, id)
	if errors.Is(err, membership.ErrSelfSubscription) {
		_ = apiError.EncodeError(w, apiError.SelfSubscription, "cannot subscribe to yourself", requestID)
		return
	} else if errors.Is(err, membership.ErrNotFound) {
		_ = apiError.EncodeError(w, apiError.MembershipNotFound, "not subscribed", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to unsubscribe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
