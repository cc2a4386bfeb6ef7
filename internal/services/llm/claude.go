package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
)

// claudeClient wraps the Anthropic SDK for chat and completion calls. Claude
// has no embedding API; embedding traffic never reaches this client.
type claudeClient struct {
	config  common.ClaudeConfig
	logger  arbor.ILogger
	client  *anthropic.Client
	limiter *rate.Limiter
	retry   *RetryConfig
	timeout time.Duration
}

func newClaudeClient(cfg common.ClaudeConfig, logger arbor.ILogger) (*claudeClient, error) {
	if cfg.APIKey == "" {
		return nil, interfaces.ErrMissingCredential
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout '%s': %w", cfg.Timeout, err)
	}

	interval, err := time.ParseDuration(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid claude rate limit '%s': %w", cfg.RateLimit, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	logger.Info().
		Str("model", cfg.Model).
		Int("max_tokens", cfg.MaxTokens).
		Str("rate_limit", interval.String()).
		Msg("Claude client initialized")

	return &claudeClient{
		config:  cfg,
		logger:  logger,
		client:  &client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retry:   NewDefaultRetryConfig(),
		timeout: timeout,
	}, nil
}

func (c *claudeClient) chat(ctx context.Context, messages []interfaces.Message, model string, temperature float32, maxTokens int) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = c.config.Model
	}
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp *anthropic.Message
	err = withRetry(timeoutCtx, c.retry, func() error {
		if err := c.limiter.Wait(timeoutCtx); err != nil {
			return err
		}
		var callErr error
		resp, callErr = c.client.Messages.New(timeoutCtx, params)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("claude chat call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no response generated from chat model")
	}
	return text, nil
}

func (c *claudeClient) complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	messages := []interfaces.Message{{Role: "user", Content: req.Prompt}}
	if req.SystemInstruction != "" {
		messages = append([]interfaces.Message{{Role: "system", Content: req.SystemInstruction}}, messages...)
	}
	return c.chat(ctx, messages, req.Model, req.Temperature, req.MaxTokens)
}

func (c *claudeClient) close() error {
	c.client = nil
	return nil
}

// convertMessagesToClaude maps messages to the Anthropic message format,
// extracting the first system message for the System parameter.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
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

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}
