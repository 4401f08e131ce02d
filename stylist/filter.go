package stylist

import (
	"slices"
	"strings"
)

const (
	MinFilteredItems = 10

	ColdBelow     = 15.0
	HotAbove      = 25.0
	HumidAbove    = 70.0
	WindyAboveKmh = 30.0
	allWeatherTag = "all weather"
	waterproofTag = "waterproof"
)

var (
	coldTags         = []string{"cold", "cool", "winter", "snowy"}
	hotTags          = []string{"hot", "warm", "summer"}
	temperatureTags  = append(append([]string{"mild", "spring", "autumn", "fall"}, coldTags...), hotTags...)
	heavyMaterials   = []string{"wool", "fleece", "cashmere", "velvet", "corduroy", "tweed", "leather"}
	breathableFabric = []string{"moisture-wicking", "moisture wicking", "breathable", "mesh", "dri-fit"}
	rainSensitive    = []string{"suede", "silk", "velvet"}
	flowingMaterials = []string{"chiffon", "silk", "linen"}
)

// occasion tags accepted in place of each other
var occasionNearMatches = map[Occasion][]Occasion{
	GeneralFormalOccasion:   {VeryFormalOccasion},
	VeryFormalOccasion:      {GeneralFormalOccasion},
	CasualOuting:            {GeneralInformalOccasion},
	GeneralInformalOccasion: {CasualOuting},
}

type WardrobeFilter struct {
	rules    *RuleTable
	minItems int
}

func NewWardrobeFilter(rules *RuleTable, minItems int) *WardrobeFilter {
	if minItems <= 0 {
		minItems = MinFilteredItems
	}
	return &WardrobeFilter{rules: rules, minItems: minItems}
}

// Filter keeps items that suit the weather and the occasion. When too few
// survive the whole wardrobe is returned so the model still has choices.
func (f *WardrobeFilter) Filter(items []WardrobeItem, weather WeatherSnapshot, occasion Occasion) []WardrobeItem {
	rule := f.rules.Rule(occasion)
	var kept []WardrobeItem
	for _, it := range items {
		if !SuitsWeather(it, weather) {
			continue
		}
		if !suitsOccasion(it, occasion, rule) {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) < f.minItems {
		return slices.Clone(items)
	}
	return kept
}

func lowerAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}

func containsAny(tags []string, wanted ...string) bool {
	for _, w := range wanted {
		if slices.Contains(tags, w) {
			return true
		}
	}
	return false
}

func mentionsAny(text string, words []string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// SuitsWeather never rejects shoes or accessories, and accepts everything
// when no weather is known.
func SuitsWeather(it WardrobeItem, w WeatherSnapshot) bool {
	if !w.Available() || it.ItemType == Shoes || it.ItemType == Accessory {
		return true
	}
	tags := lowerAll(it.SuitableForWeather)
	if slices.Contains(tags, allWeatherTag) {
		return true
	}

	hasTemperatureTags := containsAny(tags, temperatureTags...)
	switch {
	case w.FeelsLike < ColdBelow || w.Snowy():
		if hasTemperatureTags && !containsAny(tags, coldTags...) {
			return false
		}
	case w.FeelsLike > HotAbove:
		if hasTemperatureTags && !containsAny(tags, hotTags...) {
			return false
		}
	}

	if w.Humidity > HumidAbove && mentionsAny(it.Material, heavyMaterials) {
		if !slices.Contains(tags, "humid") && !mentionsAny(it.Material, breathableFabric) {
			return false
		}
	}

	if (w.Rainy() || w.Snowy()) && mentionsAny(it.Material, rainSensitive) {
		if !containsAny(tags, "rainy", waterproofTag) {
			return false
		}
	}

	if w.WindSpeed > WindyAboveKmh && it.ItemType == Dress && mentionsAny(it.Material, flowingMaterials) {
		if !slices.Contains(tags, "windy") {
			return false
		}
	}
	return true
}

func suitsOccasion(it WardrobeItem, target Occasion, rule OccasionRule) bool {
	if target == AllOccasions {
		return true
	}
	tags := lowerAll(it.SuitableForOccasion)
	if containsAny(tags, string(target), string(AllOccasions)) {
		return true
	}
	for _, near := range occasionNearMatches[target] {
		if slices.Contains(tags, string(near)) {
			return true
		}
	}
	return FormalityCompatible(it.Formality, rule.Formality)
}
