package main

import (
	"strings"

	"github.com/spf13/cobra"

	"wardrobeapi/stylist"
)

func NewGenerateCommand() *cobra.Command {
	var (
		wardrobePath string
		weatherPath  string
	)
	cmd := &cobra.Command{
		Use:   "generate <message>",
		Short: "Generate an outfit with the configured completion backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules()
			if err != nil {
				return err
			}
			var wardrobe []stylist.WardrobeItem
			if err := readJSONFile(wardrobePath, &wardrobe); err != nil {
				return err
			}
			var weather stylist.WeatherSnapshot
			if weatherPath != "" {
				if err := readJSONFile(weatherPath, &weather); err != nil {
					return err
				}
			}
			completer, err := newCompleter(cmd.Context())
			if err != nil {
				return err
			}

			st := stylist.New(completer, rules, stylist.DefaultConfig())
			candidate, err := st.GenerateOutfit(cmd.Context(), stylist.Request{
				Message:  strings.Join(args, " "),
				Weather:  weather,
				Wardrobe: wardrobe,
			})
			if err != nil {
				return err
			}
			return printCandidate(cmd.OutOrStdout(), *candidate, len(candidate.OutfitItems) > 0, "no outfit produced")
		},
	}
	cmd.Flags().StringVar(&wardrobePath, "wardrobe", "", "wardrobe JSON file")
	cmd.Flags().StringVar(&weatherPath, "weather", "", "weather snapshot JSON file")
	cmd.MarkFlagRequired("wardrobe")
	return cmd
}
