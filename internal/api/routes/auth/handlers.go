// Package auth contains handlers for the auth endpoints
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	apiError "github.com/mkarev/kulinaria/internal/api/error"
	"github.com/mkarev/kulinaria/internal/api/requestid"
	"github.com/mkarev/kulinaria/internal/api/token"
	"github.com/mkarev/kulinaria/internal/argon2id"
	"github.com/mkarev/kulinaria/internal/env"
	mJson "github.com/mkarev/kulinaria/internal/json"
	"github.com/mkarev/kulinaria/internal/jwt"
)

type TokenLoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// HandleTokenLogin godoc
//
//	@Summary	Obtain an auth token.
//	@Tags		Auth
//
//	@Accept		json
//	@Param		request	body	TokenLoginRequest	true	"Token Login Request"
//
//	@Success	200	{object}	TokenLoginResponse
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/auth/token/login [POST]
func HandleTokenLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request TokenLoginRequest
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

	// Retrieve user information
	env.Logger.DebugContext(ctx, "Retrieving user information")
	user, err := env.Database.GetUserByEmail(ctx, request.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User with email does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user information", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Compare passwords
	env.Logger.DebugContext(ctx, "Comparing passwords")
	match, err := argon2id.VerifyPassword(request.Password, user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to verify password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !match {
		env.Logger.ErrorContext(ctx, "Given password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	}

	// Create access token
	env.Logger.DebugContext(ctx, "Generating access token")
	accessToken, err := token.CreateAccessToken(jwt.JWTParams{
		UserID: fmt.Sprintf("%d", user.ID),
	}, env)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to create access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	http.SetCookie(w, token.NewAccessTokenCookie(accessToken, env))
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TokenLoginResponse{AuthToken: accessToken}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleTokenLogout godoc
//
//	@Summary	Discard the auth token.
//	@Tags		Auth
//
//	@Success	204
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/auth/token/logout [POST]
func HandleTokenLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	// Tokens are stateless; logout clears the cookie and the client drops
	// its copy.
	env.Logger.DebugContext(ctx, "Clearing access cookie")
	http.SetCookie(w, token.NewExpiredAccessTokenCookie(env))
	w.WriteHeader(http.StatusNoContent)
}
