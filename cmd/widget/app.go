// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WDD-CODER/ex-witget-v1/internal/analysis"
	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/internal/render"
	"github.com/WDD-CODER/ex-witget-v1/internal/secrets"
	"github.com/WDD-CODER/ex-witget-v1/internal/suggest"
	"github.com/WDD-CODER/ex-witget-v1/internal/transport"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// newTransport builds the HTTP client for the remote catalog and backend.
func newTransport() (*transport.Client, error) {
	return transport.NewClient(cfg.HTTP,
		transport.WithToken(loadedSecrets.Get(secrets.KeyAPIToken, "")),
		transport.WithLogger(logger.Named("transport")),
	)
}

// openCatalog returns the configured catalog and a function releasing it.
func openCatalog() (catalog.Catalog, func(), error) {
	opts := catalog.Options{Latency: cfg.Catalog.Latency, Mode: cfg.Suggest.MatchMode}
	switch cfg.Catalog.Backend {
	case types.CatalogSQLite:
		db, err := catalog.OpenSQLite(cfg.Catalog.DBPath, opts)
		if err != nil {
			return nil, nil, err
		}
		n, err := db.Count(context.Background())
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if n == 0 {
			db.Close()
			return nil, nil, fmt.Errorf("catalog %s is empty; run \"widget catalog import\" first", cfg.Catalog.DBPath)
		}
		return db, func() { db.Close() }, nil
	case types.CatalogRemote:
		client, err := newTransport()
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewRemote(client, cfg.Paths), func() {}, nil
	default:
		entries, err := catalog.LoadTable(cfg.Catalog.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewStatic(entries, opts), func() {}, nil
	}
}

// newMatcher returns a matcher over the configured catalog.
func newMatcher() (*suggest.Matcher, func(), error) {
	c, release, err := openCatalog()
	if err != nil {
		return nil, nil, err
	}
	return suggest.New(c, cfg.Suggest, logger.Named("suggest")), release, nil
}

// newBackend returns the configured analysis backend.
func newBackend() (analysis.Backend, error) {
	if cfg.Analysis.Backend == types.AnalysisRemote {
		client, err := newTransport()
		if err != nil {
			return nil, err
		}
		return analysis.NewRemoteBackend(client, cfg.Paths, logger.Named("analysis")), nil
	}
	return &analysis.LocalBackend{Latency: cfg.Analysis.Latency}, nil
}

// printerFor returns a printer honoring --format and --json.
func printerFor(cmd *cobra.Command) (*render.Printer, error) {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return render.NewPrinter(os.Stdout, render.FormatJSON), nil
	}
	name, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return render.NewPrinter(os.Stdout, format), nil
}
