package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
)

// geminiClient wraps the genai SDK for chat, completion, and embedding calls.
// A token-bucket limiter paces requests to stay inside the free-tier quota.
type geminiClient struct {
	config  common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	retry   *RetryConfig
	timeout time.Duration
}

func newGeminiClient(cfg common.GeminiConfig, logger arbor.ILogger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, interfaces.ErrMissingCredential
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout '%s': %w", cfg.Timeout, err)
	}

	interval, err := time.ParseDuration(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini rate limit '%s': %w", cfg.RateLimit, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("model", cfg.Model).
		Str("embed_model", cfg.EmbedModel).
		Int("embed_dimension", cfg.EmbedDimension).
		Str("rate_limit", interval.String()).
		Msg("Gemini client initialized")

	return &geminiClient{
		config:  cfg,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retry:   NewDefaultRetryConfig(),
		timeout: timeout,
	}, nil
}

func (c *geminiClient) chat(ctx context.Context, messages []interfaces.Message, model string, temperature float32) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = c.config.Model
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if systemText != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp *genai.GenerateContentResponse
	err = withRetry(timeoutCtx, c.retry, func() error {
		if err := c.limiter.Wait(timeoutCtx); err != nil {
			return err
		}
		var callErr error
		resp, callErr = c.client.Models.GenerateContent(timeoutCtx, model, contents, genConfig)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("gemini chat call failed: %w", err)
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("no response generated from chat model")
	}
	return text, nil
}

func (c *geminiClient) complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	messages := []interfaces.Message{{Role: "user", Content: req.Prompt}}
	if req.SystemInstruction != "" {
		messages = append([]interfaces.Message{{Role: "system", Content: req.SystemInstruction}}, messages...)
	}
	return c.chat(ctx, messages, req.Model, req.Temperature)
}

func (c *geminiClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty for embedding generation")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(c.config.EmbedDimension)
	embedConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()

	var result *genai.EmbedContentResponse
	err := withRetry(timeoutCtx, c.retry, func() error {
		if err := c.limiter.Wait(timeoutCtx); err != nil {
			return err
		}
		var callErr error
		result, callErr = c.client.Models.EmbedContent(timeoutCtx, c.config.EmbedModel, contents, embedConfig)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: requested %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != c.config.EmbedDimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", c.config.EmbedDimension, len(emb.Values))
		}
		vectors[i] = emb.Values
	}

	c.logger.Debug().
		Int("texts", len(texts)).
		Str("duration", time.Since(started).String()).
		Msg("Embedding batch completed")

	return vectors, nil
}

func (c *geminiClient) close() error {
	c.client = nil
	return nil
}

// extractGeminiText concatenates the text parts of the first candidate that
// carries any.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

// convertMessagesToGemini maps messages to Gemini content, extracting the
// first system message for SystemInstruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}
