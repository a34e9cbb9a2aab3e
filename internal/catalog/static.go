// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Static is an in-memory catalog over an ordered table.
type Static struct {
	entries []types.Candidate
	opts    Options
}

// NewStatic returns a catalog over a copy of entries.
func NewStatic(entries []types.Candidate, opts Options) *Static {
	cp := make([]types.Candidate, len(entries))
	copy(cp, entries)
	return &Static{entries: cp, opts: opts}
}

// Name returns the catalog identifier.
func (s *Static) Name() string { return "local" }

// Lookup returns every entry matching query, in table order, after the
// configured latency.
func (s *Static) Lookup(ctx context.Context, query string) ([]types.Candidate, error) {
	if err := sleep(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	var out []types.Candidate
	for _, c := range s.entries {
		if Matches(c.Name, query, s.opts.Mode) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Find returns the first entry named name, ignoring case.
func (s *Static) Find(ctx context.Context, name string) (types.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return types.Candidate{}, err
	}
	for _, c := range s.entries {
		if names.Equal(c.Name, name) {
			return c, nil
		}
	}
	return types.Candidate{}, ErrNotFound
}

// Entries returns a copy of the table.
func (s *Static) Entries() []types.Candidate {
	out := make([]types.Candidate, len(s.entries))
	copy(out, s.entries)
	return out
}
