// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/internal/mockapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mock interaction API over HTTP",
	Long: `Serve hosts the autocomplete, item, depletions, and optimizations endpoints
backed by the embedded mock data, so the remote catalog and backend can be
used without the real service. Interaction responses are delayed by
--latency. A selection containing "nothing" returns no records.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8089", "listen address")
	serveCmd.Flags().Duration("latency", 0, "delay added to interaction responses")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	latency, _ := cmd.Flags().GetDuration("latency")

	entries, err := catalog.LoadTable(cfg.Catalog.SeedFile)
	if err != nil {
		return err
	}
	handler := mockapi.New(catalog.NewStatic(entries, catalog.Options{Mode: cfg.Suggest.MatchMode}), mockapi.Options{
		Paths:   cfg.Paths,
		Latency: latency,
		Logger:  logger.Named("mockapi"),
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Serving mock API on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.String("addr", addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
