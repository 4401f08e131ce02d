package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wardrobeapi/config"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
)

// newCompleter is swapped in tests.
var newCompleter = func(ctx context.Context) (stylist.Completer, error) {
	cfg, err := config.LoadStylist()
	if err != nil {
		return nil, err
	}
	return services.NewCompletionBackend(ctx, cfg)
}

var rulesPath string

// NewRootCommand creates the stylistctl command tree
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stylistctl",
		Short: "Inspect and exercise the outfit pipeline",
		Long: `stylistctl runs the outfit pipeline outside the API:
print the occasion rules, classify requests, validate a stored
candidate against a wardrobe or generate a fresh outfit.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "rule table YAML (defaults to the embedded one)")

	cmd.AddCommand(NewRulesCommand())
	cmd.AddCommand(NewClassifyCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewGenerateCommand())
	return cmd
}

func loadRules() (*stylist.RuleTable, error) {
	if rulesPath == "" {
		return stylist.DefaultRuleTable(), nil
	}
	return stylist.LoadRuleTable(rulesPath)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
