package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxReflectionsInPrompt caps how many journal entries go into a
	// single insights request
	MaxReflectionsInPrompt = 20

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const insightsSystemPrompt = "Você é um assistente de bem-estar do aplicativo 10 Pequenos Passos. " +
	"Leia as reflexões do usuário e devolva um insight curto e encorajador em português, " +
	"destacando padrões e progressos. Seja conciso: no máximo três frases."

const suggestSystemPrompt = "Você é um assistente de bem-estar do aplicativo 10 Pequenos Passos. " +
	"Sugira uma pergunta de reflexão curta, em português, sobre a área de vida indicada. " +
	"Responda apenas com a pergunta."

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// ReflectionInsights generates a short insight text over recent journal entries
func (p *OpenAIProvider) ReflectionInsights(ctx context.Context, reflections []*models.Reflection) (string, error) {
	if len(reflections) == 0 {
		return "", errors.New("no reflections to analyze")
	}
	if len(reflections) > MaxReflectionsInPrompt {
		reflections = reflections[:MaxReflectionsInPrompt]
	}

	var b strings.Builder
	b.WriteString("Reflexões recentes do usuário:\n")
	for _, r := range reflections {
		fmt.Fprintf(&b, "- [%s] %s (%s): %s\n", r.Date, r.Title, r.Category, r.Text)
	}

	return p.complete(ctx, "reflection_insights", insightsSystemPrompt, b.String())
}

// SuggestPrompt returns a reflection prompt for a life-area category
func (p *OpenAIProvider) SuggestPrompt(ctx context.Context, category string) (string, error) {
	if category == "" {
		return "", errors.New("category is required")
	}
	user := "Área de vida: " + category
	return p.complete(ctx, "suggest_prompt", suggestSystemPrompt, user)
}

func (p *OpenAIProvider) complete(ctx context.Context, operation, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.String("prompt_preview", SanitizePrompt(user, false)),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		// Temperature omitted - use model default to avoid "unsupported_value" errors
	}

	startTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(startTime)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to complete %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to complete %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty response content")
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
