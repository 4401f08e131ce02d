package stylist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptIsDeterministic(t *testing.T) {
	b := NewPromptBuilder(DefaultRuleTable(), MaxColors, MaxPatterns)
	in := PromptInput{
		Message:  "dinner with friends",
		Occasion: DinnerParty,
		Weather:  WeatherSnapshot{Temperature: 12, FeelsLike: 10, Description: "Light rain", Humidity: 85, ForecastHigh: 20, ForecastLow: 8},
		Wardrobe: sampleWardrobe(),
	}
	assert.Equal(t, b.Build(in), b.Build(in))
}

func TestPromptSections(t *testing.T) {
	b := NewPromptBuilder(DefaultRuleTable(), 3, 1)
	prompt := b.Build(PromptInput{
		Message:  "dinner with friends",
		Occasion: DinnerParty,
		Weather:  WeatherSnapshot{Temperature: 12, FeelsLike: 10, Description: "Light rain", Humidity: 85, ForecastHigh: 20, ForecastLow: 8, UVIndex: 9},
		Wardrobe: sampleWardrobe(),
	})

	for _, want := range []string{
		"Use only item IDs listed in the user's wardrobe",
		"Do not use a tuxedo or tailcoat",
		"Use at most 3 different colors.",
		"Use at most 1 patterned items",
		"It is cool.",
		"layers that can be removed",
		"Humidity is high.",
		"Rain is expected.",
		"The UV index is very high.",
		"Occasion: dinner party",
		"ex1_1",
		"ex3_4",
		"Item ID: a | Type: top",
		`"styling_tips"`,
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "PREVIOUS ATTEMPT FAILED")
	assert.True(t, strings.HasSuffix(prompt, OutputMarker+"\n"))

	// sections appear in a fixed order
	order := []string{"Constraints:", "Weather:", "Occasion rules:", "Examples:", "The user's wardrobe includes:", "Respond with a single JSON object"}
	last := -1
	for _, section := range order {
		i := strings.Index(prompt, section)
		assert.Greater(t, i, last, section)
		last = i
	}
}

func TestPromptRetryClauseAndPreferences(t *testing.T) {
	b := NewPromptBuilder(DefaultRuleTable(), MaxColors, MaxPatterns)
	prompt := b.Build(PromptInput{
		Message:     "black tie gala",
		Occasion:    BlackTieEvent,
		Wardrobe:    sampleWardrobe(),
		Preferences: &Preferences{Fit: "slim", Colors: []string{"navy", "grey"}},
		RetryReason: "outfit has no shoes",
	})

	assert.Contains(t, prompt, "PREVIOUS ATTEMPT FAILED: outfit has no shoes")
	assert.Contains(t, prompt, "A tuxedo or tailcoat is expected")
	assert.Contains(t, prompt, "Weather data is unavailable")
	assert.Contains(t, prompt, "Preferred colors: navy, grey")
}

func TestWardrobeLineFillsBlanks(t *testing.T) {
	line := WardrobeLine(WardrobeItem{ID: "7", ItemType: Shoes, Color: "black"})
	assert.Equal(t, "Item ID: 7 | Type: shoes | Material: - | Color: black | Formality: - | Pattern: - | Fit: - | Weather Suitability: - | Occasion Suitability: - | Sub Type: -", line)
}
