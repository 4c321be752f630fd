package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/triplore/triplore/app/db"
	"github.com/triplore/triplore/config"
	"github.com/triplore/triplore/internal/api/auth"
	"github.com/triplore/triplore/internal/api/chat"
	generativeAI "github.com/triplore/triplore/internal/api/generative_ai"
	"github.com/triplore/triplore/internal/api/geocoding"
	"github.com/triplore/triplore/internal/api/place"
	"github.com/triplore/triplore/internal/api/profile"
	"github.com/triplore/triplore/internal/store"
)

// Container holds all application dependencies.
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	AuthHandler    *auth.HandlerImpl
	PlaceHandler   *place.HandlerImpl
	ProfileHandler *profile.HandlerImpl
	ChatHandler    *chat.HandlerImpl
}

// NewContainer wires repositories, services and handlers together.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	uow := store.NewPgxUnitOfWork(pool, logger)

	aiClient, err := generativeAI.NewAIClient(ctx, os.Getenv(cfg.AI.APIKeyEnv), cfg.AI.Model)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		pool.Close()
		return nil, err
	}
	aiGateway := generativeAI.NewGatewayImpl(aiClient, logger)

	geocoder := geocoding.NewClient(
		cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Email, logger)

	authService := auth.NewServiceImpl(uow, cfg.JWT, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	placeService := place.NewServiceImpl(uow, aiGateway, logger)
	placeHandler := place.NewHandlerImpl(placeService, geocoder, aiGateway, logger)

	profileHandler := profile.NewHandlerImpl(placeService, logger)

	chatHistory := chat.NewCacheHistoryRepository(cfg.Chat.HistoryTTL, cfg.Chat.MaxMessages)
	chatService := chat.NewServiceImpl(aiGateway, chatHistory, placeService, logger)
	chatHandler := chat.NewHandlerImpl(chatService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		AuthHandler:    authHandler,
		PlaceHandler:   placeHandler,
		ProfileHandler: profileHandler,
		ChatHandler:    chatHandler,
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations.
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
