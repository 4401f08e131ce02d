package stylist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownItemType = errors.New("unknown item type")

type ItemType string

const (
	Top       ItemType = "top"
	Bottom    ItemType = "bottom"
	Shoes     ItemType = "shoes"
	Outerwear ItemType = "outerwear"
	Accessory ItemType = "accessory"
	Dress     ItemType = "dress"
	Suit      ItemType = "suit"
)

var ItemTypes = []ItemType{Top, Bottom, Shoes, Outerwear, Accessory, Dress, Suit}

// one-piece garments satisfy the bottom (and top) slot on their own
func (t ItemType) IsOnePiece() bool {
	return t == Dress || t == Suit
}

var itemTypeSynonyms = map[string]ItemType{
	"tops":        Top,
	"shirt":       Top,
	"t-shirt":     Top,
	"tshirt":      Top,
	"blouse":      Top,
	"sweater":     Top,
	"hoodie":      Top,
	"polo":        Top,
	"bottoms":     Bottom,
	"pants":       Bottom,
	"trousers":    Bottom,
	"jeans":       Bottom,
	"shorts":      Bottom,
	"skirt":       Bottom,
	"leggings":    Bottom,
	"shoe":        Shoes,
	"footwear":    Shoes,
	"sneakers":    Shoes,
	"boots":       Shoes,
	"heels":       Shoes,
	"jacket":      Outerwear,
	"coat":        Outerwear,
	"blazer":      Outerwear,
	"outer":       Outerwear,
	"accessories": Accessory,
	"hat":         Accessory,
	"belt":        Accessory,
	"scarf":       Accessory,
	"tie":         Accessory,
	"bag":         Accessory,
	"watch":       Accessory,
	"dresses":     Dress,
	"gown":        Dress,
	"jumpsuit":    Dress,
	"suits":       Suit,
	"tuxedo":      Suit,
	"tailcoat":    Suit,
}

// NormalizeItemType maps free-form input onto the closed item type set:
// exact match first, then known synonyms, then a fuzzy match within two edits.
func NormalizeItemType(raw string) (ItemType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownItemType)
	}
	for _, t := range ItemTypes {
		if s == string(t) {
			return t, nil
		}
	}
	if t, ok := itemTypeSynonyms[s]; ok {
		return t, nil
	}

	best := ItemType("")
	bestDistance := 3
	for _, t := range ItemTypes {
		if d := levenshtein(s, string(t)); d < bestDistance {
			best, bestDistance = t, d
		}
	}
	for syn, t := range itemTypeSynonyms {
		if len(syn) < 4 {
			continue
		}
		if d := levenshtein(s, syn); d < bestDistance {
			best, bestDistance = t, d
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, raw)
	}
	return best, nil
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// WardrobeItem is the read-only view of a garment the pipeline works with.
type WardrobeItem struct {
	ID                  string   `json:"id"`
	ItemType            ItemType `json:"item_type"`
	Material            string   `json:"material"`
	Color               string   `json:"color"`
	Formality           string   `json:"formality"`
	Pattern             string   `json:"pattern"`
	Fit                 string   `json:"fit"`
	SuitableForWeather  []string `json:"suitable_for_weather"`
	SuitableForOccasion []string `json:"suitable_for_occasion"`
	SubType             string   `json:"sub_type"`
	ImageLink           string   `json:"image_link,omitempty"`
	Favorite            bool     `json:"favorite"`
}

// ItemID accepts both JSON strings and numbers, models are not consistent about it.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ItemID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = ItemID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ItemID(n.String())
	return nil
}

type OutfitItemRef struct {
	ID       ItemID   `json:"id"`
	SubType  string   `json:"sub_type"`
	Color    string   `json:"color"`
	ItemType ItemType `json:"item_type"`
}

type OutfitCandidate struct {
	Occasion    Occasion        `json:"occasion"`
	OutfitItems []OutfitItemRef `json:"outfit_items"`
	Description string          `json:"description"`
	StylingTips string          `json:"styling_tips"`
	Warnings    []string        `json:"warnings"`
}

func (c *OutfitCandidate) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// WeatherSnapshot temperatures are Celsius, wind speed km/h.
type WeatherSnapshot struct {
	Temperature  float64 `json:"temperature"`
	FeelsLike    float64 `json:"feels_like"`
	Description  string  `json:"description"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"wind_speed"`
	ForecastHigh float64 `json:"forecast_high"`
	ForecastLow  float64 `json:"forecast_low"`
	UVIndex      float64 `json:"uv_index"`
}

// Available reports whether the snapshot carries any data at all.
func (w WeatherSnapshot) Available() bool {
	return w != WeatherSnapshot{}
}

func (w WeatherSnapshot) hasAny(keywords ...string) bool {
	d := strings.ToLower(w.Description)
	for _, k := range keywords {
		if strings.Contains(d, k) {
			return true
		}
	}
	return false
}

func (w WeatherSnapshot) Rainy() bool {
	return w.hasAny("rain", "drizzle", "shower", "storm", "thunder")
}

func (w WeatherSnapshot) Snowy() bool {
	return w.hasAny("snow", "sleet", "blizzard", "ice pellets")
}

// wardrobeIndex gives O(1) lookup of a user's items by id.
type wardrobeIndex map[string]WardrobeItem

func indexWardrobe(items []WardrobeItem) wardrobeIndex {
	idx := make(wardrobeIndex, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}
