package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/triplore/triplore/internal/api/generative_ai"
	"github.com/triplore/triplore/internal/types"
)

// PlacesReader is the slice of the place service the assistant needs to
// personalize its context.
type PlacesReader interface {
	GetLikedPlaces(ctx context.Context, userID int64) ([]types.LikedPlace, error)
}

// Service is the travel assistant conversation logic.
type Service interface {
	Converse(ctx context.Context, userID int64, sessionID string, incoming []types.ChatMessage) *types.ChatResponse
	Clear(ctx context.Context, sessionID string)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	logger  *slog.Logger
	ai      generativeAI.Gateway
	history HistoryRepository
	places  PlacesReader
}

func NewServiceImpl(ai generativeAI.Gateway, history HistoryRepository, places PlacesReader, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		ai:      ai,
		history: history,
		places:  places,
	}
}

// Converse sends the session history plus the incoming messages to the
// assistant and records both sides of the exchange. A blank session ID starts
// a new session. Like the gateway it never fails; degraded answers are plain
// strings.
func (s *ServiceImpl) Converse(ctx context.Context, userID int64, sessionID string, incoming []types.ChatMessage) *types.ChatResponse {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Converse", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if sessionID == "" {
		sessionID = uuid.NewString()
		span.AddEvent("new chat session")
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	if len(incoming) == 0 {
		return &types.ChatResponse{SessionID: sessionID, Answer: generativeAI.EmptyChatPrompt}
	}

	messages := make([]types.ChatMessage, 0, len(incoming)+8)
	if preamble := s.likedPlacesContext(ctx, userID); preamble != "" {
		messages = append(messages, types.ChatMessage{Role: "system", Content: preamble})
	}
	messages = append(messages, s.history.Get(sessionID)...)
	messages = append(messages, incoming...)

	answer := s.ai.Chat(ctx, messages)

	stored := append(append([]types.ChatMessage{}, incoming...),
		types.ChatMessage{Role: "assistant", Content: answer})
	s.history.Append(sessionID, stored...)

	return &types.ChatResponse{SessionID: sessionID, Answer: answer}
}

// Clear drops the session history.
func (s *ServiceImpl) Clear(ctx context.Context, sessionID string) {
	_, span := otel.Tracer("ChatService").Start(ctx, "Clear", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()
	s.history.Clear(sessionID)
}

// likedPlacesContext builds the personalization preamble. Failures are
// swallowed: a chat without preferences is better than no chat.
func (s *ServiceImpl) likedPlacesContext(ctx context.Context, userID int64) string {
	if userID == 0 {
		return ""
	}
	places, err := s.places.GetLikedPlaces(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Skipping chat personalization",
			slog.Int64("userID", userID), slog.Any("error", err))
		return ""
	}
	if len(places) == 0 {
		return ""
	}
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.CityName
	}
	return "The user's favorite places: " + strings.Join(names, ", ") + "."
}
