package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const stylistSystemPrompt = "You are a precise personal stylist assistant. Follow the requested output format exactly."

// OpenAICompleter talks to any OpenAI compatible chat completions endpoint.
type OpenAICompleter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

func NewOpenAICompleter(key, baseURL, model string) *OpenAICompleter {
	// retries belong to RetryingCompleter
	opts := []option.RequestOption{option.WithAPIKey(key), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompleter{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: 4096,
	}
}

func (c *OpenAICompleter) params(prompt string, temperature float32) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(float64(temperature)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(stylistSystemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, c.params(prompt, temperature))
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return trimMessage(response.Choices[0].Message.Content), nil
}

func trimMessage(message string) string {
	return strings.TrimPrefix(strings.TrimSuffix(message, "\n```"), "```json\n")
}
