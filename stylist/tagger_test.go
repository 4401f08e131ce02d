package stylist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggerKeepsVocabularyOnly(t *testing.T) {
	completer := (&scriptedCompleter{}).push("```json\n{\"occasions\": [\"Work\", \"brunch\", \"dinner party\", \"work\"]}\n```")
	tagger := NewItemOccasionTagger(completer)
	in := item("blazer", Outerwear, "navy")
	in.SuitableForOccasion = nil

	got := tagger.Tag(context.Background(), in)

	assert.Equal(t, []string{"work", "dinner party"}, got.SuitableForOccasion)
	assert.Nil(t, in.SuitableForOccasion)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Item type: outerwear")
	assert.Contains(t, completer.prompts[0], `"occasions"`)
	assert.Contains(t, completer.prompts[0], "black tie event")
	assert.InDelta(t, 0.3, completer.temperatures[0], 0.0001)
}

func TestTaggerDefaults(t *testing.T) {
	tests := []struct {
		name      string
		completer *scriptedCompleter
	}{
		{"completion error", (&scriptedCompleter{}).fail(errors.New("down"))},
		{"not json", (&scriptedCompleter{}).push("work, party")},
		{"nothing usable", (&scriptedCompleter{}).push(`{"occasions": ["brunch"]}`)},
		{"empty list", (&scriptedCompleter{}).push(`{"occasions": []}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewItemOccasionTagger(tt.completer).Tag(context.Background(), item("x", Top, "red"))
			assert.Equal(t, []string{"all occasions"}, got.SuitableForOccasion)
		})
	}
}
