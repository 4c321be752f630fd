package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/triplore/triplore/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, username, password string) (*types.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockService) Login(ctx context.Context, username, password string) (*types.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	tokens, _ := args.Get(0).(*types.TokenResponse)
	return tokens, args.Error(1)
}

func (m *MockService) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	tokens, _ := args.Get(0).(*types.TokenResponse)
	return tokens, args.Error(1)
}

func newTestHandler(svc Service) *HandlerImpl {
	return NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandlerImpl_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)
		svc.On("Register", mock.Anything, "wanderer", "correct-horse").
			Return(&types.User{ID: 1, Username: "wanderer"}, nil).Once()

		rr := postJSON(t, handler.Register, "/api/v1/auth/register",
			types.RegisterRequest{Username: "wanderer", Password: "correct-horse"})

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("conflict on taken username", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)
		svc.On("Register", mock.Anything, "wanderer", "correct-horse").
			Return(nil, types.ErrUserAlreadyExists).Once()

		rr := postJSON(t, handler.Register, "/api/v1/auth/register",
			types.RegisterRequest{Username: "wanderer", Password: "correct-horse"})

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("short username is rejected before the service", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)

		rr := postJSON(t, handler.Register, "/api/v1/auth/register",
			types.RegisterRequest{Username: "ab", Password: "correct-horse"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short password is rejected before the service", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)

		rr := postJSON(t, handler.Register, "/api/v1/auth/register",
			types.RegisterRequest{Username: "wanderer", Password: "short"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlerImpl_Login(t *testing.T) {
	t.Run("returns token pair", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)
		svc.On("Login", mock.Anything, "wanderer", "correct-horse").
			Return(&types.TokenResponse{AccessToken: "acc", RefreshToken: "ref"}, nil).Once()

		rr := postJSON(t, handler.Login, "/api/v1/auth/login",
			types.LoginRequest{Username: "wanderer", Password: "correct-horse"})

		require.Equal(t, http.StatusOK, rr.Code)
		var resp types.TokenResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "acc", resp.AccessToken)
		assert.Equal(t, "ref", resp.RefreshToken)
	})

	t.Run("unknown user and bad password both get 401", func(t *testing.T) {
		for _, serviceErr := range []error{types.ErrUserNotFound, types.ErrInvalidCredentials} {
			svc := new(MockService)
			handler := newTestHandler(svc)
			svc.On("Login", mock.Anything, "wanderer", "wrong").Return(nil, serviceErr).Once()

			rr := postJSON(t, handler.Login, "/api/v1/auth/login",
				types.LoginRequest{Username: "wanderer", Password: "wrong"})

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		}
	})
}

func TestHandlerImpl_RefreshSession(t *testing.T) {
	t.Run("invalid token gets 401", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)
		svc.On("RefreshSession", mock.Anything, "stale").Return(nil, types.ErrInvalidCredentials).Once()

		rr := postJSON(t, handler.RefreshSession, "/api/v1/auth/refresh",
			types.RefreshRequest{RefreshToken: "stale"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing token gets 400", func(t *testing.T) {
		svc := new(MockService)
		handler := newTestHandler(svc)

		rr := postJSON(t, handler.RefreshSession, "/api/v1/auth/refresh", types.RefreshRequest{})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "RefreshSession", mock.Anything, mock.Anything)
	})
}
