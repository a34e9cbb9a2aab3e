// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var itemCmd = &cobra.Command{
	Use:   "item <name>",
	Short: "Look up one catalog item by its exact name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runItem,
}

func init() {
	rootCmd.AddCommand(itemCmd)
}

func runItem(cmd *cobra.Command, args []string) error {
	printer, err := printerFor(cmd)
	if err != nil {
		return err
	}
	c, release, err := openCatalog()
	if err != nil {
		return err
	}
	defer release()

	finder, ok := c.(catalog.Finder)
	if !ok {
		return fmt.Errorf("catalog %s does not support item lookup", c.Name())
	}
	name := strings.Join(args, " ")
	item, err := finder.Find(cmd.Context(), name)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%q is not in the %s catalog", name, c.Name())
	}
	if err != nil {
		return err
	}
	return printer.Candidates([]types.Candidate{item})
}
