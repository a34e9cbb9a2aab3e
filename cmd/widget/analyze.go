// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/analysis"
	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/internal/render"
	"github.com/WDD-CODER/ex-witget-v1/internal/suggest"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <name> [<name> ...]",
	Short: "Report depletions and optimizations for a selection",
	Long: `Analyze builds a selection from the given names and fetches its nutrient
depletions. Optimizations are fetched in the background once depletions are
in; with --wait (the default) the command waits for them and prints them too.
A background failure is reported but does not fail the command.

Names are resolved against the catalog when it supports item lookup; names
it does not know are kept as manual entries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("wait", true, "wait for the background optimizations")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the JSON and YAML shape of one analysis.
type analyzeOutput struct {
	Token         uint64               `json:"token" yaml:"token"`
	Selection     []types.Candidate    `json:"selection" yaml:"selection"`
	Depletions    []types.Depletion    `json:"depletions" yaml:"depletions"`
	Optimizations []types.Optimization `json:"optimizations,omitempty" yaml:"optimizations,omitempty"`
	Error         string               `json:"optimizationsError,omitempty" yaml:"optimizations_error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	printer, err := printerFor(cmd)
	if err != nil {
		return err
	}
	wait, _ := cmd.Flags().GetBool("wait")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sel, err := resolveSelection(ctx, args)
	if err != nil {
		return err
	}
	backend, err := newBackend()
	if err != nil {
		return err
	}

	results := make(chan analysis.OptimizationResult, 1)
	o := analysis.New(backend, analysis.Options{
		BackgroundTimeout: cfg.Analysis.BackgroundTimeout,
		OnOptimizations:   func(r analysis.OptimizationResult) { results <- r },
		Logger:            logger.Named("analysis"),
	})
	defer o.Close()

	res, err := o.Analyze(ctx, sel)
	if err != nil {
		return err
	}
	if res.Superseded {
		return context.Cause(ctx)
	}

	out := analyzeOutput{Token: res.Token, Selection: sel.Items(), Depletions: res.Depletions}
	if out.Depletions == nil {
		out.Depletions = []types.Depletion{}
	}
	if printer.Format() == render.FormatTable {
		if err := printer.Depletions(out.Depletions); err != nil {
			return err
		}
	}
	if wait && !sel.IsEmpty() {
		o.Wait()
		select {
		case r := <-results:
			out.Optimizations = r.Records
			if r.Err != nil {
				out.Error = r.Err.Error()
			}
		default:
		}
		if printer.Format() == render.FormatTable {
			if out.Error != "" {
				printer.Notice("optimizations unavailable: %s", out.Error)
			} else if err := printer.Optimizations(out.Optimizations); err != nil {
				return err
			}
		}
	}
	if printer.Format() != render.FormatTable {
		return printer.Encode(out)
	}
	return nil
}

// resolveSelection builds the selection from names, using catalog entries
// when the catalog can look them up and manual entries otherwise.
func resolveSelection(ctx context.Context, names []string) (types.Selection, error) {
	sel := types.NewSelection()
	c, release, err := openCatalog()
	if err != nil {
		return sel, err
	}
	defer release()

	finder, _ := c.(catalog.Finder)
	for _, name := range names {
		entry := suggest.CreateManualEntry(name)
		if finder != nil {
			found, err := finder.Find(ctx, name)
			switch {
			case err == nil:
				entry = found
			case !errors.Is(err, catalog.ErrNotFound):
				logger.Debug("item lookup failed; using a manual entry",
					zap.String("name", name), zap.Error(err))
			}
		}
		if entry.Name != "" {
			sel = sel.Add(entry)
		}
	}
	return sel, nil
}
