package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wardrobeapi/stylist"
)

func NewRulesCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the occasion rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				table := make(map[string]stylist.OccasionRule, len(stylist.Vocabulary))
				for _, o := range stylist.Vocabulary {
					table[string(o)] = rules.Rule(o)
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(table)
			}

			title := color.New(color.FgCyan, color.Bold)
			dim := color.New(color.FgHiBlack)
			for _, o := range stylist.Vocabulary {
				rule := rules.Rule(o)
				title.Fprintf(out, "%s", o)
				dim.Fprintf(out, "  temperature=%.2f strictness=%s", rules.Temperature(o), rule.Strictness)
				if rules.IsFormalTier(o) {
					color.New(color.FgYellow).Fprint(out, "  formal")
				}
				fmt.Fprintln(out)
				if rule.Description != "" {
					fmt.Fprintf(out, "  %s\n", rule.Description)
				}
				if len(rule.Items) > 0 {
					fmt.Fprintf(out, "  items: %s\n", strings.Join(rule.Items, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the table as YAML")
	return cmd
}
