package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/triplore/triplore/config"
	"github.com/triplore/triplore/internal/store"
	"github.com/triplore/triplore/internal/types"
)

// Service handles account registration and token lifecycle.
type Service interface {
	Register(ctx context.Context, username, password string) (*types.User, error)
	Login(ctx context.Context, username, password string) (*types.TokenResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	logger *slog.Logger
	uow    store.UnitOfWork
	jwtCfg config.JWTConfig
}

func NewServiceImpl(uow store.UnitOfWork, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		uow:    uow,
		jwtCfg: jwtCfg,
	}
}

// Register creates a new account with a bcrypt-hashed password. A taken
// username yields types.ErrUserAlreadyExists.
func (s *ServiceImpl) Register(ctx context.Context, username, password string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *types.User
	err = s.uow.Do(ctx, func(ctx context.Context, st store.Stores) error {
		existing, err := st.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrUserAlreadyExists
		}
		created, err = st.Users.Add(ctx, types.User{
			Username:     username,
			PasswordHash: string(hashed),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", slog.Int64("userID", created.ID))
	return created, nil
}

// Login verifies credentials and issues an access/refresh token pair. An
// unknown username yields types.ErrUserNotFound, a wrong password
// types.ErrInvalidCredentials.
func (s *ServiceImpl) Login(ctx context.Context, username, password string) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	var user *types.User
	err := s.uow.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		user, err = st.Users.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if user == nil {
		return nil, types.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		span.SetStatus(codes.Error, "password mismatch")
		return nil, types.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return tokens, nil
}

// RefreshSession exchanges a valid refresh token for a fresh pair. The user
// must still exist.
func (s *ServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.RefreshSecretKey), nil
	})
	if err != nil || !token.Valid {
		span.SetStatus(codes.Error, "invalid refresh token")
		return nil, types.ErrInvalidCredentials
	}

	var user *types.User
	err = s.uow.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		user, err = st.Users.FindByID(ctx, claims.UserID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if user == nil {
		return nil, types.ErrUserNotFound
	}

	return s.issueTokens(user.ID)
}

func (s *ServiceImpl) issueTokens(userID int64) (*types.TokenResponse, error) {
	access, err := s.signToken(userID, s.jwtCfg.SecretKey, s.jwtCfg.AccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(userID, s.jwtCfg.RefreshSecretKey, s.jwtCfg.RefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &types.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *ServiceImpl) signToken(userID int64, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
