package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/kermits/telassist/agent/contract"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client completes prompts through the OpenRouter chat completions API.
type Client struct {
	sdk         *openaisdk.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ contractx.Oracle = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openrouter api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openrouter model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	// OpenRouter attribution headers
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	sdk := openaisdk.NewClient(opts...)
	return &Client{
		sdk:         &sdk,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Complete runs one chat completion. Transport and provider failures come
// back as ErrOracleUnavailable so callers can fall back uniformly.
func (c *Client) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemInstructions != "" {
		messages = append(messages, openaisdk.SystemMessage(req.SystemInstructions))
	}
	messages = append(messages, openaisdk.UserMessage(req.Prompt))

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := c.maxTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openaisdk.Float(float64(temperature)),
		MaxTokens:   openaisdk.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrOracleUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrOracleMalformed)
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
