package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/triplore/triplore/config"
	"github.com/triplore/triplore/internal/store"
	"github.com/triplore/triplore/internal/types"
)

// fakeUnitOfWork hands the test's mock stores to fn and reports whether the
// scope ended in commit or rollback.
type fakeUnitOfWork struct {
	stores     store.Stores
	committed  bool
	rolledBack bool
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	err := fn(ctx, f.stores)
	if err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*types.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Add(ctx context.Context, user types.User) (*types.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*types.User)
	return created, args.Error(1)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:        "test-access-secret",
		RefreshSecretKey: "test-refresh-secret",
		AccessExpiry:     15 * time.Minute,
		RefreshExpiry:    24 * time.Hour,
	}
}

func newTestService(users *MockUserStore) (*ServiceImpl, *fakeUnitOfWork) {
	uow := &fakeUnitOfWork{stores: store.Stores{Users: users}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(uow, testJWTConfig(), logger), uow
}

func TestServiceImpl_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		users := new(MockUserStore)
		svc, uow := newTestService(users)

		users.On("FindByUsername", mock.Anything, "wanderer").Return(nil, nil).Once()
		users.On("Add", mock.Anything, mock.MatchedBy(func(u types.User) bool {
			if u.Username != "wanderer" || u.PasswordHash == "correct-horse" {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")) == nil
		})).Return(&types.User{ID: 7, Username: "wanderer"}, nil).Once()

		user, err := svc.Register(ctx, "wanderer", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.True(t, uow.committed)
		users.AssertExpectations(t)
	})

	t.Run("taken username is rejected without insert", func(t *testing.T) {
		users := new(MockUserStore)
		svc, uow := newTestService(users)

		users.On("FindByUsername", mock.Anything, "wanderer").
			Return(&types.User{ID: 1, Username: "wanderer"}, nil).Once()

		_, err := svc.Register(ctx, "wanderer", "correct-horse")
		require.ErrorIs(t, err, types.ErrUserAlreadyExists)
		assert.True(t, uow.rolledBack)
		users.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestServiceImpl_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &types.User{ID: 42, Username: "wanderer", PasswordHash: string(hash)}

	t.Run("issues tokens carrying the user id", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		users.On("FindByUsername", mock.Anything, "wanderer").Return(account, nil).Once()

		tokens, err := svc.Login(ctx, "wanderer", "correct-horse")
		require.NoError(t, err)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(tokens.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-access-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, int64(42), claims.UserID)
	})

	t.Run("unknown username", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		users.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil).Once()

		_, err := svc.Login(ctx, "ghost", "whatever-pass")
		require.ErrorIs(t, err, types.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		users.On("FindByUsername", mock.Anything, "wanderer").Return(account, nil).Once()

		_, err := svc.Login(ctx, "wanderer", "wrong-horse")
		require.ErrorIs(t, err, types.ErrInvalidCredentials)
	})
}

func TestServiceImpl_RefreshSession(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &types.User{ID: 42, Username: "wanderer", PasswordHash: string(hash)}

	login := func(t *testing.T, users *MockUserStore, svc *ServiceImpl) *types.TokenResponse {
		t.Helper()
		users.On("FindByUsername", mock.Anything, "wanderer").Return(account, nil).Once()
		tokens, err := svc.Login(ctx, "wanderer", "correct-horse")
		require.NoError(t, err)
		return tokens
	}

	t.Run("valid refresh token yields a new pair", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		tokens := login(t, users, svc)

		users.On("FindByID", mock.Anything, int64(42)).Return(account, nil).Once()
		fresh, err := svc.RefreshSession(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, fresh.AccessToken)
		assert.NotEmpty(t, fresh.RefreshToken)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		tokens := login(t, users, svc)

		_, err := svc.RefreshSession(ctx, tokens.AccessToken)
		require.ErrorIs(t, err, types.ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)

		_, err := svc.RefreshSession(ctx, "not-a-jwt")
		require.ErrorIs(t, err, types.ErrInvalidCredentials)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		users := new(MockUserStore)
		svc, _ := newTestService(users)
		tokens := login(t, users, svc)

		users.On("FindByID", mock.Anything, int64(42)).Return(nil, nil).Once()
		_, err := svc.RefreshSession(ctx, tokens.RefreshToken)
		require.ErrorIs(t, err, types.ErrUserNotFound)
	})
}
