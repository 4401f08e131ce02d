package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"wardrobeapi/models"
)

var ErrNoImageGenerated = errors.New("no image in model response")

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type GeminiImageGenerator struct {
	client *genai.Client
	model  LLMModelName
}

func NewGeminiImageGenerator(ctx context.Context, apiKey string) (*GeminiImageGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiImageGenerator{client: client, model: Flash25Image}, nil
}

func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model.String(), []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    floatPointer(1),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generation: %w", err)
	}
	if result.PromptFeedback != nil {
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}
	images, err := GetAllInlineImages(result)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImageGenerated
	}
	return images[0], nil
}

func IllustrationPrompt(item models.WardrobeItem) string {
	pattern := item.Pattern
	if pattern == "" {
		pattern = "solid"
	}
	return fmt.Sprintf("Create a minimalist emoji-style illustration of a %s %s %s with a %s pattern. "+
		"The illustration must be simple, glossy, and vector-like, centered on a pure white background. "+
		"Show only the garment. Do not include any logos, text, watermarks, people or other objects.",
		strings.ToLower(item.Color), strings.ToLower(item.Material), strings.ToLower(item.SubType), strings.ToLower(pattern))
}

// ImageAssigner gives every wardrobe item a picture. Items sharing material,
// color, pattern and sub type share one generated image.
type ImageAssigner struct {
	Generator  ImageGenerator
	AWSService AWSServiceProvider
	BucketName string
}

func illustrationKey(item models.WardrobeItem) models.ImageItem {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return models.ImageItem{
		Material: norm(item.Material),
		Color:    norm(item.Color),
		Pattern:  norm(item.Pattern),
		SubType:  norm(item.SubType),
	}
}

func (a *ImageAssigner) Assign(ctx context.Context, db *gorm.DB, item *models.WardrobeItem) error {
	logger := zerolog.Ctx(ctx)
	key := illustrationKey(*item)

	var existing models.ImageItem
	r := db.Where("material = ? AND color = ? AND pattern = ? AND sub_type = ?", key.Material, key.Color, key.Pattern, key.SubType).
		Limit(1).Find(&existing)
	if r.Error != nil {
		return fmt.Errorf("failed to look up image: %w", r.Error)
	}
	if r.RowsAffected > 0 {
		item.ImageKey = existing.ObjectKey
		logger.Info().Uint("item", item.ID).Str("image", existing.ObjectKey).Msg("reusing illustration")
		return nil
	}

	raw, err := a.Generator.GenerateImage(ctx, IllustrationPrompt(*item))
	if err != nil {
		return err
	}
	picture, err := NormalizeIllustration(raw)
	if err != nil {
		return err
	}
	objectKey := fmt.Sprintf("images/%s.png", uuid.NewString())
	if err := a.AWSService.PutObject(ctx, a.BucketName, objectKey, picture, "image/png"); err != nil {
		return fmt.Errorf("failed to upload illustration: %w", err)
	}

	key.ObjectKey = objectKey
	if err := db.Create(&key).Error; err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	item.ImageKey = objectKey
	logger.Info().Uint("item", item.ID).Str("image", objectKey).Msg("generated illustration")
	return nil
}
