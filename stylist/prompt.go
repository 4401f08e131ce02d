package stylist

import (
	"fmt"
	"strings"
)

const OutputMarker = "### Output:"

// Preferences are soft hints stored on the user's profile.
type Preferences struct {
	Fit         string   `json:"preferred_fit"`
	Colors      []string `json:"preferred_colors"`
	Formality   string   `json:"preferred_formality"`
	Patterns    []string `json:"preferred_patterns"`
	Temperature string   `json:"preferred_temperature"`
}

func (p *Preferences) empty() bool {
	return p == nil || (p.Fit == "" && len(p.Colors) == 0 && p.Formality == "" && len(p.Patterns) == 0 && p.Temperature == "")
}

type PromptInput struct {
	Message     string
	Occasion    Occasion
	Weather     WeatherSnapshot
	Wardrobe    []WardrobeItem
	Preferences *Preferences
	// RetryReason is set on the second attempt only
	RetryReason string
}

type PromptBuilder struct {
	rules       *RuleTable
	maxColors   int
	maxPatterns int
}

func NewPromptBuilder(rules *RuleTable, maxColors, maxPatterns int) *PromptBuilder {
	return &PromptBuilder{rules: rules, maxColors: maxColors, maxPatterns: maxPatterns}
}

// Build is deterministic: the same input always renders the same text.
func (b *PromptBuilder) Build(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString("Step: Generate and Refine Outfit Suggestion\n")
	sb.WriteString("You are a personal stylist. Build one outfit for the user's request using only items from their wardrobe.\n\n")
	fmt.Fprintf(&sb, "User request: %s\n", strings.TrimSpace(in.Message))
	fmt.Fprintf(&sb, "Occasion: %s\n\n", in.Occasion)

	sb.WriteString("Constraints:\n")
	for i, c := range b.constraints(in.Occasion) {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
	}

	sb.WriteString("\nWeather:\n")
	for _, line := range weatherGuidance(in.Weather) {
		fmt.Fprintf(&sb, "- %s\n", line)
	}

	sb.WriteString("\nOccasion rules:\n")
	sb.WriteString(b.rules.RuleText(in.Occasion))

	if !in.Preferences.empty() {
		sb.WriteString("\nUser preferences (follow them when they do not conflict with the rules):\n")
		sb.WriteString(preferencesText(in.Preferences))
	}

	sb.WriteString("\nExamples:\n")
	sb.WriteString(fewShotExamples)

	sb.WriteString("\nThe user's wardrobe includes:\n")
	for _, it := range in.Wardrobe {
		sb.WriteString(WardrobeLine(it))
		sb.WriteByte('\n')
	}

	sb.WriteString("\n")
	sb.WriteString(outputFormat)

	if in.RetryReason != "" {
		fmt.Fprintf(&sb, "\nPREVIOUS ATTEMPT FAILED: %s. Fix this in the new outfit.\n", in.RetryReason)
	}

	sb.WriteString("\n" + OutputMarker + "\n")
	return sb.String()
}

func (b *PromptBuilder) constraints(o Occasion) []string {
	out := []string{
		"Use only item IDs listed in the user's wardrobe. Never invent items.",
	}
	if o == BlackTieEvent || o == WhiteTieEvent {
		out = append(out, "A tuxedo or tailcoat is expected for this occasion when the wardrobe has one.")
	} else {
		out = append(out, "Do not use a tuxedo or tailcoat, they are reserved for black tie and white tie events.")
	}
	return append(out,
		"Choose between 3 and 6 items in total.",
		"Include exactly one pair of shoes.",
		"Include exactly one bottom, or a dress or suit instead of a bottom, never both.",
		"Include 1 or 2 tops unless a dress or suit covers the upper body.",
		"Include at most 2 outerwear items.",
		"Include at most 2 accessories.",
		fmt.Sprintf("Use at most %d different colors.", b.maxColors),
		fmt.Sprintf("Use at most %d patterned items, the rest should be solid.", b.maxPatterns),
	)
}

func weatherGuidance(w WeatherSnapshot) []string {
	if !w.Available() {
		return []string{"Weather data is unavailable. Suggest a versatile outfit that works in mild conditions."}
	}
	lines := []string{fmt.Sprintf("Currently %.0f°C (feels like %.0f°C), %s.", w.Temperature, w.FeelsLike, w.Description)}

	switch t := w.FeelsLike; {
	case t < 0:
		lines = append(lines, "It is freezing. Prioritise insulated outerwear, warm layers and closed shoes.")
	case t < 10:
		lines = append(lines, "It is cold. A warm coat or jacket and long sleeves are needed.")
	case t < ColdBelow:
		lines = append(lines, "It is cool. Add a light layer such as a jacket or sweater.")
	case t <= HotAbove:
		lines = append(lines, "The temperature is mild. Most fabrics work, a light layer is optional.")
	case t <= 30:
		lines = append(lines, "It is warm. Prefer light, breathable fabrics and skip heavy outerwear.")
	default:
		lines = append(lines, "It is hot. Choose the lightest breathable pieces and avoid outerwear.")
	}

	if w.ForecastHigh-w.ForecastLow >= 10 {
		lines = append(lines, fmt.Sprintf("Temperatures range from %.0f°C to %.0f°C today, so suggest layers that can be removed.", w.ForecastLow, w.ForecastHigh))
	}
	if w.Humidity > HumidAbove {
		lines = append(lines, "Humidity is high. Breathable fabrics like cotton and linen are best.")
	}
	if w.WindSpeed > WindyAboveKmh {
		lines = append(lines, "It is windy. Avoid light flowing garments and consider a wind-resistant layer.")
	}
	if w.Rainy() {
		lines = append(lines, "Rain is expected. Prefer water-resistant outerwear and shoes, avoid suede and silk.")
	}
	if w.Snowy() {
		lines = append(lines, "Snow is expected. Choose boots with grip and a warm waterproof coat.")
	}
	switch {
	case w.UVIndex >= 8:
		lines = append(lines, "The UV index is very high. Recommend sunglasses and a hat.")
	case w.UVIndex >= 6:
		lines = append(lines, "The UV index is high. Sunglasses or a hat are a good idea.")
	}
	return lines
}

func preferencesText(p *Preferences) string {
	var sb strings.Builder
	if p.Fit != "" {
		fmt.Fprintf(&sb, "- Preferred fit: %s\n", p.Fit)
	}
	if len(p.Colors) > 0 {
		fmt.Fprintf(&sb, "- Preferred colors: %s\n", strings.Join(p.Colors, ", "))
	}
	if p.Formality != "" {
		fmt.Fprintf(&sb, "- Preferred formality: %s\n", p.Formality)
	}
	if len(p.Patterns) > 0 {
		fmt.Fprintf(&sb, "- Preferred patterns: %s\n", strings.Join(p.Patterns, ", "))
	}
	if p.Temperature != "" {
		fmt.Fprintf(&sb, "- Temperature preference: %s\n", p.Temperature)
	}
	return sb.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// WardrobeLine renders one item in the format the model sees.
func WardrobeLine(it WardrobeItem) string {
	return fmt.Sprintf("Item ID: %s | Type: %s | Material: %s | Color: %s | Formality: %s | Pattern: %s | Fit: %s | Weather Suitability: %s | Occasion Suitability: %s | Sub Type: %s",
		it.ID, it.ItemType, orDash(it.Material), orDash(it.Color), orDash(it.Formality), orDash(it.Pattern), orDash(it.Fit),
		orDash(strings.Join(it.SuitableForWeather, ", ")), orDash(strings.Join(it.SuitableForOccasion, ", ")), orDash(it.SubType))
}

const fewShotExamples = `Example 1 (wedding):
{"occasion": "wedding", "outfit_items": [
  {"id": "ex1_1", "sub_type": "Dress Shirt", "color": "White", "item_type": "top"},
  {"id": "ex1_2", "sub_type": "Suit Pants", "color": "Navy", "item_type": "bottom"},
  {"id": "ex1_3", "sub_type": "Dress Shoes", "color": "Black", "item_type": "shoes"},
  {"id": "ex1_4", "sub_type": "Suit Jacket", "color": "Navy", "item_type": "outerwear"}
], "description": "An elegant and classic wedding ensemble.", "styling_tips": "Add a silk pocket square in a muted tone."}

Example 2 (dinner party):
{"occasion": "dinner party", "outfit_items": [
  {"id": "ex3_1", "sub_type": "Dress Shirt", "color": "Black", "item_type": "top"},
  {"id": "ex3_2", "sub_type": "Jeans", "color": "Dark Blue", "item_type": "bottom"},
  {"id": "ex3_3", "sub_type": "Loafers", "color": "Brown", "item_type": "shoes"},
  {"id": "ex3_4", "sub_type": "Blazer", "color": "Grey", "item_type": "outerwear"}
], "description": "A stylish and contemporary outfit perfect for a dinner party.", "styling_tips": "Roll the shirt sleeves once under the blazer for a relaxed look."}

The example IDs are illustrations only, never use them.
`

const outputFormat = `Respond with a single JSON object after the "### Output:" line and nothing else:
{"occasion": string, "outfit_items": [{"id": string, "sub_type": string, "color": string, "item_type": "top"|"bottom"|"shoes"|"outerwear"|"accessory"|"dress"|"suit"}], "description": string, "styling_tips": string}
`
