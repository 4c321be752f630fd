package generativeAI

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/triplore/triplore/app/observability/metrics"
	"github.com/triplore/triplore/internal/types"
)

// Fixed user-facing texts returned instead of errors. Handlers may match on
// them to degrade a response; the use-case layer never inspects them.
const (
	FallbackPlaceInfo      = "Could not retrieve information about this place."
	FallbackRecommendation = "Could not generate recommendations. Please try again later."
	FallbackChat           = "Could not get a response. Please try again later."
	EmptyChatPrompt        = "Please ask a question."
)

var _ Gateway = (*GatewayImpl)(nil)

// Gateway is the opaque text-generation capability consumed by the use-case
// layer. Methods never fail: any underlying error degrades to one of the
// fixed fallback strings above.
type Gateway interface {
	GetPlaceInfo(ctx context.Context, latitude, longitude float64) string
	GetPlaceInfoWithAddress(ctx context.Context, address string, latitude, longitude float64, likedPlaces string) string
	GetTravelRecommendation(ctx context.Context, likedPlaces string) string
	Chat(ctx context.Context, messages []types.ChatMessage) string
	NormalizeLocationQuery(ctx context.Context, text string) string
}

type GatewayImpl struct {
	gen    TextGenerator
	logger *slog.Logger
}

func NewGatewayImpl(gen TextGenerator, logger *slog.Logger) *GatewayImpl {
	return &GatewayImpl{
		gen:    gen,
		logger: logger,
	}
}

func (g *GatewayImpl) GetPlaceInfo(ctx context.Context, latitude, longitude float64) string {
	ctx, span := otel.Tracer("AIGateway").Start(ctx, "GetPlaceInfo", trace.WithAttributes(
		attribute.Float64("point.latitude", latitude),
		attribute.Float64("point.longitude", longitude),
	))
	defer span.End()

	return g.generate(ctx, span, "GetPlaceInfo",
		placeInfoSystemPrompt, placeInfoPrompt(latitude, longitude), FallbackPlaceInfo)
}

func (g *GatewayImpl) GetPlaceInfoWithAddress(ctx context.Context, address string, latitude, longitude float64, likedPlaces string) string {
	if address == "" {
		return g.GetPlaceInfo(ctx, latitude, longitude)
	}

	ctx, span := otel.Tracer("AIGateway").Start(ctx, "GetPlaceInfoWithAddress", trace.WithAttributes(
		attribute.Float64("point.latitude", latitude),
		attribute.Float64("point.longitude", longitude),
	))
	defer span.End()

	system := placeInfoSystemPrompt
	if likedPlaces != "" {
		system += preferencesSystemSuffix(likedPlaces)
	}
	return g.generate(ctx, span, "GetPlaceInfoWithAddress",
		system, placeInfoWithAddressPrompt(address, latitude, longitude), FallbackPlaceInfo)
}

func (g *GatewayImpl) GetTravelRecommendation(ctx context.Context, likedPlaces string) string {
	ctx, span := otel.Tracer("AIGateway").Start(ctx, "GetTravelRecommendation")
	defer span.End()

	return g.generate(ctx, span, "GetTravelRecommendation",
		recommendationSystemPrompt, recommendationPrompt(likedPlaces), FallbackRecommendation)
}

// NormalizeLocationQuery reduces free text to a short geocodable query (max
// 50 chars). An empty result means the text could not be normalized.
func (g *GatewayImpl) NormalizeLocationQuery(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	ctx, span := otel.Tracer("AIGateway").Start(ctx, "NormalizeLocationQuery")
	defer span.End()

	query := g.generate(ctx, span, "NormalizeLocationQuery", normalizeQuerySystemPrompt, text, "")
	if len(query) > 50 {
		query = query[:50]
	}
	return query
}

func (g *GatewayImpl) Chat(ctx context.Context, messages []types.ChatMessage) string {
	if len(messages) == 0 {
		return EmptyChatPrompt
	}
	ctx, span := otel.Tracer("AIGateway").Start(ctx, "Chat", trace.WithAttributes(
		attribute.Int("messages.count", len(messages)),
	))
	defer span.End()

	metrics.Get().AIRequestsTotal.Add(ctx, 1)
	system := chatSystemPrompt
	// A leading system message from the caller carries user context (liked
	// places); fold it into the instruction instead of the history.
	if messages[0].Role == "system" {
		system += "\n" + messages[0].Content
		messages = messages[1:]
	}
	answer, err := g.gen.GenerateChat(ctx, system, messages)
	if err != nil || answer == "" {
		g.logger.ErrorContext(ctx, "AI chat failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat generation failed")
		metrics.Get().AIFallbacksTotal.Add(ctx, 1)
		return FallbackChat
	}
	span.SetStatus(codes.Ok, "chat reply generated")
	return answer
}

func (g *GatewayImpl) generate(ctx context.Context, span trace.Span, op, system, prompt, fallback string) string {
	metrics.Get().AIRequestsTotal.Add(ctx, 1)
	text, err := g.gen.GenerateText(ctx, system, prompt)
	if err != nil || text == "" {
		g.logger.ErrorContext(ctx, "AI generation failed",
			slog.String("operation", op),
			slog.Any("error", err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		metrics.Get().AIFallbacksTotal.Add(ctx, 1)
		return fallback
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "content generated")
	return text
}
