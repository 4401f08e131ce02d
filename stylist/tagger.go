package stylist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const taggerTemperature = 0.3

type ItemOccasionTagger struct {
	completer Completer
}

func NewItemOccasionTagger(completer Completer) *ItemOccasionTagger {
	return &ItemOccasionTagger{completer: completer}
}

func taggerPrompt(it WardrobeItem) string {
	var sb strings.Builder
	sb.WriteString("You are a fashion expert. Here is a clothing item:\n")
	fmt.Fprintf(&sb, "Item type: %s\n", it.ItemType)
	fmt.Fprintf(&sb, "Material: %s\n", orDash(it.Material))
	fmt.Fprintf(&sb, "Color: %s\n", orDash(it.Color))
	fmt.Fprintf(&sb, "Formality: %s\n", orDash(it.Formality))
	fmt.Fprintf(&sb, "Pattern: %s\n", orDash(it.Pattern))
	fmt.Fprintf(&sb, "Fit: %s\n", orDash(it.Fit))
	fmt.Fprintf(&sb, "Suitable for weather: %s\n", orDash(strings.Join(it.SuitableForWeather, ", ")))
	fmt.Fprintf(&sb, "Sub-type: %s\n\n", orDash(it.SubType))
	sb.WriteString("Which occasion(s) is this item most suitable for? Please choose one or more from the following list:\n")
	sb.WriteString(vocabularyList())
	sb.WriteString("\n\nOnly tuxedos, tailcoats, evening gowns and the accessories worn with them belong to \"black tie event\" or \"white tie event\". ")
	sb.WriteString("Never assign those two occasions to ordinary suits or everyday clothes.\n")
	sb.WriteString(`Respond with a JSON object with the key "occasions" holding an array of the chosen values, for example {"occasions": ["work", "dinner party"]}.`)
	return sb.String()
}

// Tag returns a copy of the item with SuitableForOccasion replaced. The result
// always has at least one vocabulary entry.
func (t *ItemOccasionTagger) Tag(ctx context.Context, it WardrobeItem) WardrobeItem {
	it.SuitableForOccasion = t.occasions(ctx, it)
	return it
}

func (t *ItemOccasionTagger) occasions(ctx context.Context, it WardrobeItem) []string {
	fallback := []string{string(AllOccasions)}
	logger := zerolog.Ctx(ctx)
	if t == nil || t.completer == nil {
		return fallback
	}

	raw, err := t.completer.Complete(ctx, taggerPrompt(it), taggerTemperature)
	if err != nil {
		logger.Warn().Err(err).Str("item", it.ID).Msg("occasion tagging failed")
		return fallback
	}
	var parsed struct {
		Occasions []string `json:"occasions"`
	}
	if err := decodeObject(raw, &parsed); err != nil {
		logger.Warn().Err(err).Str("item", it.ID).Msg("could not parse occasion tags")
		return fallback
	}

	seen := map[Occasion]bool{}
	var out []string
	for _, name := range parsed.Occasions {
		o, ok := ParseOccasion(name)
		if !ok || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, string(o))
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
