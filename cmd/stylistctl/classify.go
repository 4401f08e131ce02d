package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wardrobeapi/stylist"
)

func NewClassifyCommand() *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify the occasion of a request",
		Long: `Classify the occasion of a request. Without --live only the
offline phrase matcher runs, with --live the configured completion
backend is asked first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			occasion := stylist.ResolveOccasion(text)
			source := "offline"
			if live {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				completer, err := newCompleter(ctx)
				if err != nil {
					return err
				}
				occasion = stylist.NewOccasionClassifier(completer).Classify(ctx, text)
				source = "live"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString(string(occasion)), color.HiBlackString("(%s)", source))
			return nil
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "ask the completion backend")
	return cmd
}
