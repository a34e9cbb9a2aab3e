// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/debounce"
	"github.com/WDD-CODER/ex-witget-v1/internal/render"
	"github.com/WDD-CODER/ex-witget-v1/internal/suggest"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Debounce typed input from stdin and print suggestions",
	Long: `Watch treats every line read from stdin as the field's new content after a
keystroke. Input is debounced (debounce.delay, default 300ms): suggestions
are printed only once input has been quiet for the delay, using whatever the
field holds at that moment. Use --pace to space lines out like typing.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("pace", 0, "pause between input lines")
	watchCmd.Flags().Duration("delay", 0, "debounce delay (overrides debounce.delay)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	printer, err := printerFor(cmd)
	if err != nil {
		return err
	}
	m, release, err := newMatcher()
	if err != nil {
		return err
	}
	defer release()

	pace, _ := cmd.Flags().GetDuration("pace")
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay <= 0 {
		delay = cfg.Debounce.Delay
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watchInput(ctx, os.Stdin, m, printer, delay, pace)
}

// watchInput feeds lines from r into a debounced field and prints the
// suggestions for every fire. It returns once r is exhausted and the last
// fire, if any, has been handled.
func watchInput(ctx context.Context, r io.Reader, m *suggest.Matcher, printer *render.Printer, delay, pace time.Duration) error {
	field := debounce.NewField("")
	fires := make(chan string)
	done := make(chan struct{})
	defer close(done)

	var d debounce.Debouncer
	defer d.Close()
	d.Attach(field, debounce.Options{
		Delay: delay,
		OnFire: func(value string) {
			select {
			case fires <- value:
			case <-done:
			}
		},
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
			if pace > 0 {
				select {
				case <-time.After(pace):
				case <-done:
					return
				}
			}
		}
	}()

	var drained <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				drained = time.After(delay + 100*time.Millisecond)
				continue
			}
			field.Input(line)
		case value := <-fires:
			results, err := m.Suggest(ctx, value, types.Selection{})
			if err != nil {
				logger.Warn("suggest failed", zap.String("query", value), zap.Error(err))
				continue
			}
			printer.Notice("> %s", value)
			if err := printer.Candidates(results); err != nil {
				return err
			}
		case <-drained:
			return nil
		}
	}
}
