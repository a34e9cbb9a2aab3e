// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WDD-CODER/ex-witget-v1/internal/suggest"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var manualCmd = &cobra.Command{
	Use:   "manual <text>",
	Short: "Print the candidate created for free text not in the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer, err := printerFor(cmd)
		if err != nil {
			return err
		}
		c := suggest.CreateManualEntry(strings.Join(args, " "))
		if c.Name == "" {
			return fmt.Errorf("manual entry text is blank")
		}
		return printer.Candidates([]types.Candidate{c})
	},
}

func init() {
	rootCmd.AddCommand(manualCmd)
}
