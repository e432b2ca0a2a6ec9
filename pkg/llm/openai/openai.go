package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/replykit/pagebot/pkg/llm"
)

type Client struct {
	logger *logrus.Logger
	llm    llms.Model
	config *OpenAIConfig
}

func NewClient(config *OpenAIConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	model, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return &Client{
		logger: config.Logger,
		llm:    model,
		config: config,
	}, nil
}

// GetLLM exposes the underlying langchaingo model
func (c *Client) GetLLM() llms.Model {
	return c.llm
}

// Generate implements llm.LLM. The first choice's message text is
// returned trimmed.
func (c *Client) Generate(ctx context.Context, systemPrompt, userMessage string, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Model:       c.config.Model,
	}

	for _, opt := range opts {
		opt(options)
	}

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"maxTokens":   options.MaxTokens,
		"model":       options.Model,
	}).Debug("Generating completion")

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage),
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithTemperature(options.Temperature),
		llms.WithMaxTokens(options.MaxTokens),
		llms.WithModel(options.Model),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
