package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"wardrobeapi/config"
	"wardrobeapi/stylist"
)

// LLMModelName is the Gemini model a call goes to.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
	Flash25Image
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

// ParseLLMModelName accepts the model id as configured in the environment.
func ParseLLMModelName(name string) LLMModelName {
	for _, m := range []LLMModelName{Pro25, Flash25, FlashLite25, Flash20, Flash25Image} {
		if m.String() == name {
			return m
		}
	}
	return Flash25
}

func floatPointer(f float32) *float32 {
	return &f
}

type LLMResponse struct {
	Response           string   `json:"response"`
	Images             [][]byte `json:"images,omitempty"`
	InputTokenCount    int32    `json:"input_token_count"`
	Thoughts           string   `json:"thoughts"`
	ThoughtsTokenCount int32    `json:"thoughts_token_count"`
	OutputTokenCount   int32    `json:"output_token_count"`
	TotalTokenCount    int32    `json:"total_token_count"`
	IsTest             bool     `json:"is_test"`
}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

func GetAllInlineImages(result *genai.GenerateContentResponse) ([][]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("empty response")
	}

	var allImageData [][]byte
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}
		for _, part := range cand.Content.Parts {
			inlineData := part.InlineData
			if inlineData != nil && strings.HasPrefix(inlineData.MIMEType, "image/") && len(inlineData.Data) > 0 {
				allImageData = append(allImageData, inlineData.Data)
			}
		}
	}

	if len(allImageData) == 0 {
		return nil, nil
	}
	return allImageData, nil
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	for _, c := range result.Candidates {
		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content violation: response blocked for %s", rating.Category)
			}
		}
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				thinkingContent = part.Text
			}
		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

func usage(result *genai.GenerateContentResponse) (input, thoughts, output, total int32) {
	if result.UsageMetadata == nil {
		return
	}
	return result.UsageMetadata.PromptTokenCount,
		result.UsageMetadata.ThoughtsTokenCount,
		result.UsageMetadata.CandidatesTokenCount,
		result.UsageMetadata.TotalTokenCount
}

// ErrContentViolation is returned when Gemini blocks the prompt. Retrying
// the same prompt cannot succeed.
var ErrContentViolation = errors.New("content violation")

// GeminiCompleter sends prompts to the Gemini API.
type GeminiCompleter struct {
	client          *genai.Client
	model           LLMModelName
	maxOutputTokens int32
}

func NewGeminiCompleter(ctx context.Context, apiKey string, model LLMModelName) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model, maxOutputTokens: 8192}, nil
}

func (g *GeminiCompleter) Generate(ctx context.Context, prompt string, temperature float32) (*LLMResponse, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model.String(), []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: g.maxOutputTokens,
		Temperature:     floatPointer(temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a precise personal stylist assistant. Follow the requested output format exactly."},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if result.PromptFeedback != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrContentViolation, result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
	}

	text, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		return nil, err
	}
	input, thoughts, output, total := usage(result)
	zerolog.Ctx(ctx).Debug().
		Str("model", g.model.String()).
		Int32("input_tokens", input).
		Int32("output_tokens", output).
		Int32("total_tokens", total).
		Msg("gemini completion")

	return &LLMResponse{
		Response:           text.Text,
		Thoughts:           text.Thoughts,
		InputTokenCount:    input,
		ThoughtsTokenCount: thoughts,
		OutputTokenCount:   output,
		TotalTokenCount:    total,
	}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := g.Generate(ctx, prompt, temperature)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// RetryingCompleter retries transient failures with exponential backoff.
// Context cancellation and deadlines are never retried.
type RetryingCompleter struct {
	Next     stylist.Completer
	Attempts int
	Backoff  time.Duration
}

func NewRetryingCompleter(next stylist.Completer) *RetryingCompleter {
	return &RetryingCompleter{Next: next, Attempts: 3, Backoff: time.Second}
}

func (r *RetryingCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	var lastErr error
	backoff := r.Backoff
	for attempt := 0; attempt < r.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		text, err := r.Next.Complete(ctx, prompt, temperature)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, ErrContentViolation) {
			return "", err
		}
		zerolog.Ctx(ctx).Warn().Err(err).Int("attempt", attempt+1).Msg("completion attempt failed")
	}
	return "", fmt.Errorf("after %d attempts: %w", r.Attempts, lastErr)
}

// NewCompletionBackend builds the completion backend named by
// cfg.LLMProvider. Every call goes upstream exactly once.
func NewCompletionBackend(ctx context.Context, cfg config.StylistConfig) (stylist.Completer, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		gemini, err := NewGeminiCompleter(ctx, cfg.GeminiAPIKey, ParseLLMModelName(cfg.GeminiModel))
		if err != nil {
			return nil, err
		}
		return gemini, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// NewCompleter wraps the configured backend in retries. Background jobs use
// it; the outfit pipeline bounds its own calls and takes the bare backend.
func NewCompleter(ctx context.Context, cfg config.StylistConfig) (*RetryingCompleter, error) {
	next, err := NewCompletionBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r := NewRetryingCompleter(next)
	if cfg.LLMAttempts > 0 {
		r.Attempts = cfg.LLMAttempts
	}
	return r, nil
}
