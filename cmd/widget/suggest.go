// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/WDD-CODER/ex-witget-v1/internal/suggest"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "List autocomplete suggestions for a partial name",
	Long: `Suggest matches the query against the configured catalog and prints at
most five candidates. Names passed with --selected are treated as already
chosen and left out. Queries shorter than two characters print nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringSlice("selected", nil, "names already in the selection (repeatable)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	printer, err := printerFor(cmd)
	if err != nil {
		return err
	}
	m, release, err := newMatcher()
	if err != nil {
		return err
	}
	defer release()

	selected, _ := cmd.Flags().GetStringSlice("selected")
	sel := types.NewSelection()
	for _, name := range selected {
		sel = sel.Add(suggest.CreateManualEntry(name))
	}

	results, err := m.Suggest(cmd.Context(), strings.Join(args, " "), sel)
	if err != nil {
		return err
	}
	return printer.Candidates(results)
}
