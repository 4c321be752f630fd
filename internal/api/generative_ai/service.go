package generativeAI

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/triplore/triplore/internal/types"
)

// TextGenerator is the raw model surface the gateway builds on. It returns
// errors; the Gateway above it converts them to fallback strings.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
	GenerateChat(ctx context.Context, system string, messages []types.ChatMessage) (string, error)
}

var _ TextGenerator = (*AIClient)(nil)

type AIClient struct {
	client *genai.Client
	model  string
}

func NewAIClient(ctx context.Context, apiKey, model string) (*AIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &AIClient{
		client: client,
		model:  model,
	}, nil
}

func (ai *AIClient) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), generateConfig(system))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}

// GenerateChat replays the message history into a chat session and sends the
// final user message.
func (ai *AIClient) GenerateChat(ctx context.Context, system string, messages []types.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("empty message history")
	}

	history := make([]*genai.Content, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	chat, err := ai.client.Chats.Create(ctx, ai.model, generateConfig(system), history)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	result, err := chat.SendMessage(ctx, genai.Part{Text: messages[len(messages)-1].Content})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return result.Text(), nil
}

func generateConfig(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return cfg
}
