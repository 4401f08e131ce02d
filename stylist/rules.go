package stylist

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultTemperature float32 = 0.5

//go:embed rules.yaml
var defaultRulesYAML []byte

type OccasionRule struct {
	Items       []string `yaml:"items" json:"items"`
	Rules       string   `yaml:"rules" json:"rules"`
	Strictness  string   `yaml:"strictness" json:"strictness"`
	Description string   `yaml:"description" json:"description"`
	Formality   string   `yaml:"formality" json:"formality"`
	FormalTier  bool     `yaml:"formal_tier" json:"formal_tier"`
	Temperature float32  `yaml:"temperature" json:"temperature"`
}

type RuleTable struct {
	rules map[Occasion]OccasionRule
}

func parseRuleTable(data []byte) (*RuleTable, error) {
	raw := map[string]OccasionRule{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rule table: %w", err)
	}
	table := &RuleTable{rules: make(map[Occasion]OccasionRule, len(raw))}
	for name, rule := range raw {
		o, ok := ParseOccasion(name)
		if !ok {
			return nil, fmt.Errorf("rule table: unknown occasion %q", name)
		}
		if rule.Temperature < 0 || rule.Temperature > 1 {
			return nil, fmt.Errorf("rule table: temperature %v of %q is outside [0,1]", rule.Temperature, name)
		}
		table.rules[o] = rule
	}
	for _, o := range Vocabulary {
		if _, ok := table.rules[o]; !ok {
			return nil, fmt.Errorf("rule table: missing occasion %q", o)
		}
	}
	return table, nil
}

// DefaultRuleTable returns the built-in table, it panics only if the embedded
// document is broken.
func DefaultRuleTable() *RuleTable {
	table, err := parseRuleTable(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// LoadRuleTable reads a table from path, an empty path gives the built-in one.
func LoadRuleTable(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRuleTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table %s: %w", path, err)
	}
	return parseRuleTable(data)
}

// Rule falls back to the AllOccasions entry.
func (t *RuleTable) Rule(o Occasion) OccasionRule {
	if r, ok := t.rules[o]; ok {
		return r
	}
	return t.rules[AllOccasions]
}

func (t *RuleTable) Temperature(o Occasion) float32 {
	if r, ok := t.rules[o]; ok {
		return r.Temperature
	}
	return DefaultTemperature
}

func (t *RuleTable) IsFormalTier(o Occasion) bool {
	return t.Rule(o).FormalTier
}

// RuleText renders a rule the way it is given to the model.
func (t *RuleTable) RuleText(o Occasion) string {
	r := t.Rule(o)
	var b strings.Builder
	fmt.Fprintf(&b, "Occasion: %s\n", o)
	fmt.Fprintf(&b, "Allowed items: %s\n", strings.Join(r.Items, ", "))
	fmt.Fprintf(&b, "Rules: %s\n", r.Rules)
	fmt.Fprintf(&b, "Strictness: %s\n", r.Strictness)
	fmt.Fprintf(&b, "Description: %s\n", r.Description)
	if o != BlackTieEvent && o != WhiteTieEvent {
		b.WriteString("IMPORTANT: Do not suggest a tuxedo or tailcoat for this occasion.\n")
	}
	return b.String()
}
