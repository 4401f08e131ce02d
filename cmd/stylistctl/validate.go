package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wardrobeapi/stylist"
)

func NewValidateCommand() *cobra.Command {
	var (
		wardrobePath  string
		candidatePath string
		occasionName  string
		maxColors     int
		maxPatterns   int
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and repair a candidate outfit offline",
		Long: `Run a stored completion (raw model text or candidate JSON) through
the validation and repair stages against a wardrobe file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			occasion, ok := stylist.ParseOccasion(occasionName)
			if !ok {
				return fmt.Errorf("unknown occasion %q", occasionName)
			}
			rules, err := loadRules()
			if err != nil {
				return err
			}
			var wardrobe []stylist.WardrobeItem
			if err := readJSONFile(wardrobePath, &wardrobe); err != nil {
				return err
			}
			raw, err := os.ReadFile(candidatePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", candidatePath, err)
			}
			candidate, err := stylist.Extract(string(raw))
			if err != nil {
				return err
			}
			candidate.Occasion = occasion

			validator := stylist.NewOutfitValidator(rules, maxColors, maxPatterns)
			result, comp := validator.Validate(candidate, wardrobe, occasion)
			return printCandidate(cmd.OutOrStdout(), result, comp.OK, comp.Reason)
		},
	}
	cmd.Flags().StringVar(&wardrobePath, "wardrobe", "", "wardrobe JSON file")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "candidate file")
	cmd.Flags().StringVar(&occasionName, "occasion", string(stylist.AllOccasions), "occasion to validate for")
	cmd.Flags().IntVar(&maxColors, "max-colors", stylist.MaxColors, "advisory color limit")
	cmd.Flags().IntVar(&maxPatterns, "max-patterns", stylist.MaxPatterns, "advisory pattern limit")
	cmd.MarkFlagRequired("wardrobe")
	cmd.MarkFlagRequired("candidate")
	return cmd
}

func printCandidate(out io.Writer, c stylist.OutfitCandidate, ok bool, reason string) error {
	if ok {
		color.New(color.FgGreen, color.Bold).Fprintln(out, "composition ok")
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(out, "composition invalid: %s\n", reason)
	}
	for _, w := range c.Warnings {
		color.New(color.FgYellow).Fprintf(out, "warning: %s\n", w)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
