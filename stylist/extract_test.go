package stylist

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{"occasion": "work", "outfit_items": [{"id": "a", "sub_type": "shirt", "color": "white", "item_type": "top"}], "description": "Clean.", "styling_tips": "Tuck it in."}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain json", validResponse},
		{"fenced", "```json\n" + validResponse + "\n```"},
		{"after marker", "Let me think.\n### Output:\n" + validResponse},
		{"wrapped in prose", "Here is your outfit: " + validResponse + " Enjoy!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Extract(tt.raw)
			require.NoError(t, err)
			require.Len(t, c.OutfitItems, 1)
			assert.Equal(t, ItemID("a"), c.OutfitItems[0].ID)
			assert.Equal(t, "Clean.", c.Description)
			assert.Equal(t, "Tuck it in.", c.StylingTips)
		})
	}
}

func TestExtractIgnoresModelWarnings(t *testing.T) {
	c, err := Extract(`{"outfit_items": [], "warnings": ["trust me"]}`)
	require.NoError(t, err)
	assert.Empty(t, c.Warnings)
}

func TestExtractNullItems(t *testing.T) {
	c, err := Extract(`{"outfit_items": null, "description": "nothing fits"}`)
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"outfit_items":[]`)
	assert.Contains(t, string(raw), `"warnings":[]`)
}

func TestExtractFailure(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that", "{not json}", "```json\n{\"outfit_items\": [\n```"} {
		_, err := Extract(raw)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), raw)
		assert.Equal(t, raw, perr.Raw)
	}
}

func TestFailedCandidate(t *testing.T) {
	c := FailedCandidate(Wedding, FailedGenerationDescription, "oops")
	assert.Equal(t, Wedding, c.Occasion)
	assert.NotNil(t, c.OutfitItems)
	assert.Empty(t, c.OutfitItems)
	assert.Equal(t, []string{"oops"}, c.Warnings)
}
