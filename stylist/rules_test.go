package stylist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleTableCoversVocabulary(t *testing.T) {
	table := DefaultRuleTable()
	for _, o := range Vocabulary {
		rule := table.Rule(o)
		assert.NotEmpty(t, rule.Rules, o)
		assert.GreaterOrEqual(t, rule.Temperature, float32(0), o)
		assert.LessOrEqual(t, rule.Temperature, float32(1), o)
	}
}

func TestRuleTableFormalTier(t *testing.T) {
	table := DefaultRuleTable()
	var tier []Occasion
	for _, o := range Vocabulary {
		if table.IsFormalTier(o) {
			tier = append(tier, o)
		}
	}
	assert.ElementsMatch(t, []Occasion{BlackTieEvent, WhiteTieEvent, VeryFormalOccasion}, tier)
}

func TestRuleTableFallbacks(t *testing.T) {
	table := DefaultRuleTable()
	assert.Equal(t, table.Rule(AllOccasions), table.Rule(Occasion("brunch")))
	assert.Equal(t, DefaultTemperature, table.Temperature(Occasion("brunch")))
}

func TestRuleTextMentionsTuxedoBan(t *testing.T) {
	table := DefaultRuleTable()
	assert.Contains(t, table.RuleText(Wedding), "Do not suggest a tuxedo or tailcoat")
	assert.NotContains(t, table.RuleText(BlackTieEvent), "Do not suggest a tuxedo")
	assert.True(t, strings.HasPrefix(table.RuleText(Gym), "Occasion: gym\n"))
}

func TestLoadRuleTable(t *testing.T) {
	table, err := LoadRuleTable("")
	require.NoError(t, err)
	assert.NotNil(t, table)

	dir := t.TempDir()
	incomplete := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("gym:\n  rules: sport\n  temperature: 0.5\n"), 0o600))
	_, err = LoadRuleTable(incomplete)
	assert.ErrorContains(t, err, "missing occasion")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("brunch:\n  rules: eggs\n"), 0o600))
	_, err = LoadRuleTable(unknown)
	assert.ErrorContains(t, err, "unknown occasion")

	_, err = LoadRuleTable(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestParseRuleTableRejectsTemperature(t *testing.T) {
	data := strings.Replace(string(defaultRulesYAML), "temperature: 0.7", "temperature: 1.7", 1)
	_, err := parseRuleTable([]byte(data))
	assert.ErrorContains(t, err, "outside [0,1]")
}
