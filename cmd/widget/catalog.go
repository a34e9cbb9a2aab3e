// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the offline SQLite catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a catalog table into the SQLite catalog",
	Long: `Import reads a YAML catalog table (the embedded seed unless --seed is
given) and replaces the contents of the SQLite catalog with it. Rows whose
ID repeats an earlier row are skipped. Set catalog.backend to sqlite to
serve suggestions from the result.`,
	Args: cobra.NoArgs,
	RunE: runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write the SQLite catalog back out as a YAML catalog table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			dbPath = cfg.Catalog.DBPath
		}
		db, err := catalog.OpenSQLite(dbPath, catalog.Options{})
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ExportYAML(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d entries from %s to %s\n", n, dbPath, args[0])
		return nil
	},
}

func init() {
	catalogExportCmd.Flags().String("db", "", "SQLite catalog path (default: catalog.db_path)")
	catalogCmd.AddCommand(catalogExportCmd)

	catalogImportCmd.Flags().String("seed", "", "YAML catalog table (default: embedded seed, or catalog.seed_file)")
	catalogImportCmd.Flags().String("db", "", "SQLite catalog path (default: catalog.db_path)")

	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	if seed == "" {
		seed = cfg.Catalog.SeedFile
	}
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Catalog.DBPath
	}

	entries, err := catalog.LoadTable(seed)
	if err != nil {
		return err
	}
	db, err := catalog.OpenSQLite(dbPath, catalog.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.Import(cmd.Context(), entries)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d entries into %s (%d skipped)\n", summary.Imported, dbPath, summary.Skipped)
	return nil
}
