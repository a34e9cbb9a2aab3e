// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis fetches interaction records for a selection in two
// stages: depletions, which the caller waits for, then optimizations, which
// load in the background and are delivered through a callback. Every call
// takes an invocation token; results for a token that is no longer the
// latest are discarded.
package analysis

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// DefaultBackgroundTimeout bounds the optimizations stage.
const DefaultBackgroundTimeout = 30 * time.Second

var (
	tracer = otel.Tracer("widget/analysis")
	meter  = otel.GetMeterProvider().Meter("widget/analysis")
)

// Analysis is the result of the depletions stage.
type Analysis struct {
	Token      uint64
	Depletions []types.Depletion

	// Superseded is set when the call was canceled or a newer call was
	// made while it ran. Such results carry no records and start no
	// background stage.
	Superseded bool
}

// OptimizationResult is published when the background stage for Token
// completes and Token is still the latest. Err is set when the fetch failed;
// Records is then empty.
type OptimizationResult struct {
	Token   uint64
	Records []types.Optimization
	Err     error
}

// Options configures an Orchestrator.
type Options struct {
	// BackgroundTimeout bounds the optimizations stage (default 30s).
	BackgroundTimeout time.Duration

	// OnOptimizations receives background results. It runs on the
	// background goroutine.
	OnOptimizations func(OptimizationResult)

	Logger *zap.Logger
}

// Orchestrator runs analyses against a Backend. It is safe for concurrent
// use.
type Orchestrator struct {
	backend Backend
	opts    Options
	logger  *zap.Logger

	token atomic.Uint64
	group singleflight.Group

	// base outlives callers; Close cancels it.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New returns an Orchestrator over backend.
func New(backend Backend, opts Options) *Orchestrator {
	if opts.BackgroundTimeout <= 0 {
		opts.BackgroundTimeout = DefaultBackgroundTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger,
		base:    base,
		cancel:  cancel,
	}
}

// LatestToken returns the most recently issued invocation token.
func (o *Orchestrator) LatestToken() uint64 { return o.token.Load() }

func (o *Orchestrator) isCurrent(token uint64) bool { return o.token.Load() == token }

// Analyze fetches depletions for sel and, once they arrive, starts the
// optimizations stage in the background. An empty selection returns at once
// with no backend call but still takes a token, so results of earlier calls
// are discarded.
//
// A depletions failure is returned as a *FetchError. Cancellation of ctx is
// not an error: the result is marked Superseded.
func (o *Orchestrator) Analyze(ctx context.Context, sel types.Selection) (Analysis, error) {
	token := o.token.Add(1)
	snapshot := sel.Clone()
	if snapshot.IsEmpty() {
		return Analysis{Token: token, Depletions: []types.Depletion{}}, nil
	}

	items := snapshot.Names()
	key := selectionKey(items)

	ctx, span := tracer.Start(ctx, "analysis.depletions", trace.WithAttributes(
		attribute.Int64("widget.token", int64(token)),
		attribute.Int("widget.items", len(items)),
		attribute.String("widget.backend", o.backend.Name()),
	))
	defer span.End()

	val, err := o.shared(ctx, StageDepletions, key, 0, func(fctx context.Context) (any, error) {
		return o.backend.FetchDepletions(fctx, items)
	})
	if err != nil {
		if isCancellation(ctx, err) {
			span.SetAttributes(attribute.Bool("widget.superseded", true))
			return Analysis{Token: token, Superseded: true}, nil
		}
		if errors.Is(err, ErrClosed) {
			return Analysis{Token: token}, ErrClosed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Analysis{Token: token}, &FetchError{Stage: StageDepletions, Err: err}
	}

	if !o.isCurrent(token) {
		o.logger.Debug("depletions superseded", zap.Uint64("token", token))
		span.SetAttributes(attribute.Bool("widget.superseded", true))
		return Analysis{Token: token, Superseded: true}, nil
	}

	// The flight's value is shared with every caller that joined it.
	depletions := cloneDepletions(val.([]types.Depletion))
	o.startOptimizations(token, key, items)
	return Analysis{Token: token, Depletions: depletions}, nil
}

// startOptimizations runs the optimizations stage on a tracked goroutine
// detached from the caller. It publishes only if token is still current.
func (o *Orchestrator) startOptimizations(token uint64, key string, items []string) {
	if !o.track() {
		return
	}
	go func() {
		defer o.wg.Done()

		ctx, span := tracer.Start(o.base, "analysis.optimizations", trace.WithAttributes(
			attribute.Int64("widget.token", int64(token)),
			attribute.Int("widget.items", len(items)),
		))
		defer span.End()

		val, err := o.shared(ctx, StageOptimizations, key, o.opts.BackgroundTimeout, func(fctx context.Context) (any, error) {
			return o.backend.FetchOptimizations(fctx, items)
		})

		records := []types.Optimization{}
		if err != nil {
			if o.base.Err() != nil || errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.logger.Warn("background optimizations fetch failed",
				zap.Uint64("token", token),
				zap.Strings("items", items),
				zap.Error(err))
			if counter, cerr := meter.Int64Counter("widget.analysis.background_failures"); cerr == nil {
				counter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("widget.backend", o.backend.Name())))
			}
			err = &FetchError{Stage: StageOptimizations, Err: err}
		} else if v, ok := val.([]types.Optimization); ok {
			records = cloneOptimizations(v)
		}

		if !o.isCurrent(token) {
			o.logger.Debug("dropping stale optimizations", zap.Uint64("token", token))
			return
		}
		if o.opts.OnOptimizations != nil {
			o.opts.OnOptimizations(OptimizationResult{Token: token, Records: records, Err: err})
		}
	}()
}

// shared runs fn once per stage and selection among concurrent callers. The
// request runs on the orchestrator's context, bounded by timeout when
// positive, so one caller giving up does not cancel it for the others. The
// caller stops waiting when ctx is done.
func (o *Orchestrator) shared(ctx context.Context, stage Stage, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error) {
	if !o.track() {
		return nil, ErrClosed
	}

	ch := o.group.DoChan(string(stage)+"\x00"+key, func() (any, error) {
		fctx := o.base
		if timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(o.base, timeout)
			defer cancel()
		}
		return fn(fctx)
	})

	select {
	case res := <-ch:
		o.wg.Done()
		if res.Shared {
			o.logger.Debug("shared in-flight request", zap.String("stage", string(stage)))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		// Keep the flight tracked until it finishes.
		go func() {
			<-ch
			o.wg.Done()
		}()
		return nil, ctx.Err()
	}
}

// track registers a unit of background work. It reports false after Close.
func (o *Orchestrator) track() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.wg.Add(1)
	return true
}

// Wait blocks until all background work started so far has finished. Do not
// call it while an Analyze call is in progress.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels outstanding background work and waits for it. Later Analyze
// calls return ErrClosed. Close is idempotent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}

// selectionKey identifies a selection for in-flight sharing. Order matters:
// the backend receives names in selection order.
func selectionKey(items []string) string {
	folded := make([]string, len(items))
	for i, n := range items {
		folded[i] = names.Fold(n)
	}
	return strings.Join(folded, "\x1f")
}

// cloneDepletions deep-copies records so callers can modify their own.
// It never returns nil.
func cloneDepletions(in []types.Depletion) []types.Depletion {
	out := make([]types.Depletion, len(in))
	for i, d := range in {
		d.SourceAgents = slices.Clone(d.SourceAgents)
		d.Monitor.LabTests = slices.Clone(d.Monitor.LabTests)
		d.Monitor.Symptoms = slices.Clone(d.Monitor.Symptoms)
		out[i] = d
	}
	return out
}

// cloneOptimizations deep-copies records so callers can modify their own.
// It never returns nil.
func cloneOptimizations(in []types.Optimization) []types.Optimization {
	out := make([]types.Optimization, len(in))
	for i, o := range in {
		o.SourceAgents = slices.Clone(o.SourceAgents)
		o.AlertSymptoms = slices.Clone(o.AlertSymptoms)
		if o.DosageHint != nil {
			hint := *o.DosageHint
			o.DosageHint = &hint
		}
		out[i] = o
	}
	return out
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
