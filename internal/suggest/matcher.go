// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suggest turns a typed query into the short candidate list shown
// under the input: matched against a catalog, minus what is already
// selected, minus names unfit for display, deduplicated and capped.
package suggest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/catalog"
	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

const (
	DefaultMinQueryLength = 2
	DefaultMaxResults     = 5
)

// Matcher produces suggestions from a catalog. It is safe for concurrent
// use if the catalog is.
type Matcher struct {
	catalog catalog.Catalog
	cfg     types.SuggestConfig
	logger  *zap.Logger
}

// New returns a Matcher over c. Zero config fields take their defaults; a
// nil logger discards diagnostics.
func New(c catalog.Catalog, cfg types.SuggestConfig, logger *zap.Logger) *Matcher {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = DefaultMinQueryLength
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxNameLength <= 0 {
		cfg.MaxNameLength = names.MaxDisplayLength
	}
	if cfg.MatchMode == "" {
		cfg.MatchMode = types.MatchPrefix
	}
	if cfg.ErrorPolicy == "" {
		cfg.ErrorPolicy = types.PolicyDegrade
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{catalog: c, cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (m *Matcher) Config() types.SuggestConfig { return m.cfg }

// Suggest returns at most MaxResults candidates whose names match query, in
// catalog order. Queries shorter than MinQueryLength runes after trimming
// return an empty list without consulting the catalog. The selection is read
// only.
//
// Under PolicyDegrade a failed lookup is logged and yields an empty list and
// a nil error. Under PolicyPropagate it yields a *LookupError.
func (m *Matcher) Suggest(ctx context.Context, query string, sel types.Selection) ([]types.Candidate, error) {
	q := names.Clean(query)
	if names.Length(q) < m.cfg.MinQueryLength {
		return []types.Candidate{}, nil
	}

	raw, err := m.catalog.Lookup(ctx, q)
	if err != nil {
		return m.lookupFailed(ctx, q, err)
	}
	return m.filter(raw, q, sel), nil
}

func (m *Matcher) lookupFailed(ctx context.Context, query string, err error) ([]types.Candidate, error) {
	canceled := ctx.Err() != nil || errors.Is(err, context.Canceled)
	if m.cfg.ErrorPolicy == types.PolicyPropagate {
		return []types.Candidate{}, &LookupError{Catalog: m.catalog.Name(), Query: query, Err: err}
	}
	if canceled {
		m.logger.Debug("catalog lookup canceled",
			zap.String("catalog", m.catalog.Name()),
			zap.String("query", query))
		return []types.Candidate{}, nil
	}
	m.logger.Warn("catalog lookup failed",
		zap.String("catalog", m.catalog.Name()),
		zap.String("query", query),
		zap.Error(err))
	return []types.Candidate{}, nil
}

// filter applies the matcher's rules to raw catalog output. Catalogs may
// over-return, so matching is checked again here.
func (m *Matcher) filter(raw []types.Candidate, query string, sel types.Selection) []types.Candidate {
	excluded := sel.FoldedNames()
	seen := make(map[string]struct{}, len(raw))
	out := make([]types.Candidate, 0, m.cfg.MaxResults)

	for _, c := range raw {
		if names.IsDegenerate(c.Name, m.cfg.MaxNameLength) {
			continue
		}
		if !catalog.Matches(c.Name, query, m.cfg.MatchMode) {
			continue
		}
		key := names.Fold(c.Name)
		if _, ok := excluded[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == m.cfg.MaxResults {
			break
		}
	}
	return out
}
