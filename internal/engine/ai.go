package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/youthfin/yofin/internal/inference"
	"github.com/youthfin/yofin/internal/models"
)

// Supported AI providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// OperationRecommendation labels recommendation calls in the inference log.
const OperationRecommendation = "recommendation"

// AIConfig holds configuration for the model provider.
type AIConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     int // seconds
	MaxRetries  int
}

// DefaultAIConfig returns sensible defaults for portfolio generation.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Temperature: 0.3, // Lower temperature for consistent allocations
		MaxTokens:   2000,
		Timeout:     30,
		MaxRetries:  2,
	}
}

// AIClient produces recommendations through one of the supported model
// providers. The provider is fixed at construction.
type AIClient struct {
	config          AIConfig
	openaiClient    *openai.Client
	anthropicClient *anthropic.Client
	geminiClient    *genai.Client
	prompts         *PromptTemplates
	logger          *slog.Logger
	inferenceLogger *inference.Logger
}

// NewAIClient creates a client for the configured provider.
func NewAIClient(ctx context.Context, cfg AIConfig, logger *slog.Logger, inferenceLogger *inference.Logger) (*AIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key not configured", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model not configured", cfg.Provider)
	}

	c := &AIClient{
		config:          cfg,
		prompts:         NewPromptTemplates(),
		logger:          logger,
		inferenceLogger: inferenceLogger,
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		c.openaiClient = openai.NewClient(cfg.APIKey)
	case ProviderAnthropic:
		client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		c.anthropicClient = &client
	case ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		c.geminiClient = client
	default:
		return nil, fmt.Errorf("unsupported ai provider: %q", cfg.Provider)
	}

	logger.Info("initialized ai client",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout_sec", cfg.Timeout)

	return c, nil
}

// GenerateRecommendation asks the model for an allocation and validates the
// parsed result. Any failure is returned to the caller, which is expected to
// recover with the deterministic fallback.
func (c *AIClient) GenerateRecommendation(ctx context.Context, profile models.UserProfile, products []models.Product, policies []models.Policy) (*models.Recommendation, error) {
	generateStart := time.Now()
	prompt := c.prompts.BuildRecommendationPrompt(profile, products, policies)

	policy := DefaultRetryPolicy()
	policy.MaxRetries = c.config.MaxRetries
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	var content string
	attempt := 0
	err := Retry(ctx, policy, func() error {
		attempt++
		callErr := c.complete(ctx, OperationRecommendation, map[string]interface{}{"user_id": profile.UserID},
			attempt, c.prompts.SystemPrompt, prompt, &content)
		if callErr != nil && isTransientError(callErr) {
			return NewRetryableError(callErr)
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	rec, err := ParseRecommendation(content)
	if err != nil {
		return nil, err
	}

	rec.UserID = profile.UserID
	rec.Strategy = models.StrategyAI
	rec.ModelName = c.config.Model
	if rec.TotalInvestmentAmount == 0 {
		rec.TotalInvestmentAmount = profile.TotalAssets
	}

	if !rec.Validate() {
		return nil, fmt.Errorf("model response failed allocation validation")
	}

	c.logger.Info("generated ai recommendation",
		"user_id", profile.UserID,
		"provider", c.config.Provider,
		"items", len(rec.Items),
		"confidence", rec.ConfidenceScore,
		"duration_ms", time.Since(generateStart).Milliseconds())

	return rec, nil
}

// Complete runs one prompt pair through the configured provider with the
// usual retry policy and returns the raw response text. operation labels the
// call in the inference log; callers outside the recommendation flow (seed
// preprocessing) use this entry point.
func (c *AIClient) Complete(ctx context.Context, operation, system, prompt string) (string, error) {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = c.config.MaxRetries
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	var content string
	attempt := 0
	err := Retry(ctx, policy, func() error {
		attempt++
		callErr := c.complete(ctx, operation, nil, attempt, system, prompt, &content)
		if callErr != nil && isTransientError(callErr) {
			return NewRetryableError(callErr)
		}
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	return content, nil
}

// complete performs one provider call with a per-attempt timeout and records
// it in the inference log.
func (c *AIClient) complete(ctx context.Context, operation string, meta map[string]interface{}, attempt int, system, prompt string, content *string) error {
	timeout := 30 * time.Second
	if c.config.Timeout > 0 {
		timeout = time.Duration(c.config.Timeout) * time.Second
	}

	apiCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	callStart := time.Now()
	var (
		text  string
		usage inference.TokenUsage
		err   error
	)

	switch c.config.Provider {
	case ProviderOpenAI:
		text, usage, err = c.completeOpenAI(apiCtx, system, prompt)
	case ProviderAnthropic:
		text, usage, err = c.completeAnthropic(apiCtx, system, prompt)
	case ProviderGemini:
		text, usage, err = c.completeGemini(apiCtx, system, prompt)
	default:
		return fmt.Errorf("unsupported ai provider: %q", c.config.Provider)
	}

	latency := time.Since(callStart)
	c.logger.Info("model call complete",
		"provider", c.config.Provider,
		"operation", operation,
		"attempt", attempt,
		"duration_ms", latency.Milliseconds(),
		"success", err == nil)

	if c.inferenceLogger != nil {
		metadata := map[string]interface{}{"attempt": attempt}
		for k, v := range meta {
			metadata[k] = v
		}
		c.inferenceLogger.LogProviderCall(ctx, c.config.Provider, c.config.Model, operation,
			usage, latency, err, metadata)
	}

	if err != nil {
		return err
	}

	*content = text
	return nil
}

func (c *AIClient) completeOpenAI(ctx context.Context, system, prompt string) (string, inference.TokenUsage, error) {
	var usage inference.TokenUsage

	resp, err := c.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               c.config.Model,
		Temperature:         c.config.Temperature,
		MaxCompletionTokens: c.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", usage, fmt.Errorf("openai api call failed: %w", err)
	}

	usage = inference.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 {
		return "", usage, fmt.Errorf("no completion choices returned from model %s", c.config.Model)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", usage, fmt.Errorf("empty response from model %s (finish_reason: %s)", c.config.Model, resp.Choices[0].FinishReason)
	}

	return content, usage, nil
}

func (c *AIClient) completeAnthropic(ctx context.Context, system, prompt string) (string, inference.TokenUsage, error) {
	var usage inference.TokenUsage

	resp, err := c.anthropicClient.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(float64(c.config.Temperature)),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", usage, fmt.Errorf("anthropic api call failed: %w", err)
	}

	usage = inference.TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	content := sb.String()
	if content == "" {
		return "", usage, fmt.Errorf("empty response from model %s", c.config.Model)
	}

	return content, usage, nil
}

func (c *AIClient) completeGemini(ctx context.Context, system, prompt string) (string, inference.TokenUsage, error) {
	var usage inference.TokenUsage

	// Gemini takes the merged system and user prompt as a single text input.
	merged := system + "\n\n" + prompt

	result, err := c.geminiClient.Models.GenerateContent(ctx, c.config.Model, genai.Text(merged), nil)
	if err != nil {
		return "", usage, fmt.Errorf("gemini api call failed: %w", err)
	}

	if result.UsageMetadata != nil {
		usage = inference.TokenUsage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", usage, fmt.Errorf("no candidates returned from model %s", c.config.Model)
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	content := sb.String()
	if content == "" {
		return "", usage, fmt.Errorf("empty response from model %s", c.config.Model)
	}

	return content, usage, nil
}

// isTransientError reports whether an error looks retryable (rate limits,
// timeouts, upstream overload).
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	markers := []string{
		"429",
		"too many requests",
		"rate limit",
		"rate_limit",
		"overloaded",
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"502",
		"503",
	}
	for _, marker := range markers {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
