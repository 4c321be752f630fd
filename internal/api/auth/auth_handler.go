package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"go.opentelemetry.io/otel"

	"github.com/triplore/triplore/internal/api"
	"github.com/triplore/triplore/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 80 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "username must be between 3 and 80 characters")
		return
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.service.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUserAlreadyExists) {
			api.ErrorResponse(w, r, http.StatusConflict, "username already taken")
			return
		}
		h.logger.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not register user")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login. Unknown usernames and wrong
// passwords get the same 401 so credentials cannot be probed.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	tokens, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) || errors.Is(err, types.ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not log in")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// RefreshSession handles POST /api/v1/auth/refresh.
func (h *HandlerImpl) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshSession")
	defer span.End()
	r = r.WithContext(ctx)

	var req types.RefreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokens, err := h.service.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) || errors.Is(err, types.ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "Token refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "could not refresh session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}
