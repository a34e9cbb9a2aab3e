// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/fixtures"
	"github.com/WDD-CODER/ex-witget-v1/internal/normalize"
	"github.com/WDD-CODER/ex-witget-v1/internal/transport"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Backend fetches interaction records for a list of item names. Each
// backend (the offline mock, the remote API) implements this interface and
// returns normalized records.
type Backend interface {
	Name() string
	FetchDepletions(ctx context.Context, items []string) ([]types.Depletion, error)
	FetchOptimizations(ctx context.Context, items []string) ([]types.Optimization, error)
}

// LocalBackend serves the embedded mock payloads after a fixed delay. A
// selection containing the item "nothing" yields no records for either stage.
type LocalBackend struct {
	Latency time.Duration
}

// Name returns the backend identifier.
func (b *LocalBackend) Name() string { return "local" }

// FetchDepletions returns the mock depletions.
func (b *LocalBackend) FetchDepletions(ctx context.Context, items []string) ([]types.Depletion, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if fixtures.SelectsNothing(items) {
		return []types.Depletion{}, nil
	}
	raw, err := normalize.DecodeDepletionPayload(fixtures.DepletionsJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding mock depletions: %w", err)
	}
	return normalize.NormalizeDepletions(raw), nil
}

// FetchOptimizations returns the mock optimizations.
func (b *LocalBackend) FetchOptimizations(ctx context.Context, items []string) ([]types.Optimization, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if fixtures.SelectsNothing(items) {
		return []types.Optimization{}, nil
	}
	groups, err := normalize.DecodeOptimizationPayload(fixtures.OptimizationsJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding mock optimizations: %w", err)
	}
	return normalize.NormalizeOptimizations(groups), nil
}

func (b *LocalBackend) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RemoteBackend posts the selection to the interaction API.
type RemoteBackend struct {
	transport transport.Transport
	paths     types.APIPaths
	logger    *zap.Logger
}

// NewRemoteBackend returns a backend that talks to the API through t.
func NewRemoteBackend(t transport.Transport, paths types.APIPaths, logger *zap.Logger) *RemoteBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteBackend{transport: t, paths: paths, logger: logger}
}

// Name returns the backend identifier.
func (b *RemoteBackend) Name() string { return "remote" }

// interactionQuery is the request body for both interaction endpoints.
type interactionQuery struct {
	Q []string `json:"q"`
}

// FetchDepletions sends POST depletions {"q": items}.
func (b *RemoteBackend) FetchDepletions(ctx context.Context, items []string) ([]types.Depletion, error) {
	var body json.RawMessage
	if err := b.transport.Post(ctx, b.paths.Depletions, interactionQuery{Q: items}, &body); err != nil {
		return nil, err
	}
	raw, stats, err := normalize.DecodeDepletionPayloadStats(body)
	if err != nil {
		return nil, err
	}
	if stats.Malformed > 0 {
		b.logger.Debug("depletions decoded",
			zap.Int("entries", stats.Entries),
			zap.Int("malformed", stats.Malformed))
	}
	return normalize.NormalizeDepletions(raw), nil
}

// FetchOptimizations sends POST optimizations {"q": items}.
func (b *RemoteBackend) FetchOptimizations(ctx context.Context, items []string) ([]types.Optimization, error) {
	var body json.RawMessage
	if err := b.transport.Post(ctx, b.paths.Optimizations, interactionQuery{Q: items}, &body); err != nil {
		return nil, err
	}
	groups, err := normalize.DecodeOptimizationPayload(body)
	if err != nil {
		return nil, err
	}
	records, stats := normalize.NormalizeOptimizationsStats(groups)
	if stats.Malformed > 0 || stats.Duplicates > 0 {
		b.logger.Debug("optimizations normalized",
			zap.Int("entries", stats.Entries),
			zap.Int("malformed", stats.Malformed),
			zap.Int("duplicates", stats.Duplicates))
	}
	return records, nil
}
