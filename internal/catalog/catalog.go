// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog provides the candidate sources behind autocomplete. Each
// source (the in-memory seed table, a SQLite file built from it, the remote
// autocomplete API) implements Catalog; which one is used is decided once at
// construction time.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/WDD-CODER/ex-witget-v1/internal/fixtures"
	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Catalog looks up candidates for a query. Lookup returns entries in catalog
// order and may return more than a caller displays; filtering against the
// selection, the name guard, and the result cap belong to the matcher.
type Catalog interface {
	Name() string
	Lookup(ctx context.Context, query string) ([]types.Candidate, error)
}

// Finder is implemented by catalogs that can resolve one item by name.
type Finder interface {
	Find(ctx context.Context, name string) (types.Candidate, error)
}

// ErrNotFound is returned by Find when no item has the given name.
var ErrNotFound = errors.New("item not found")

// Options configures the offline catalogs.
type Options struct {
	// Latency is an artificial delay applied to every lookup.
	Latency time.Duration

	// Mode selects prefix (default) or substring matching.
	Mode types.MatchMode
}

// Entry is one row of a catalog table file.
type Entry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Table is the on-disk catalog table.
type Table struct {
	Items []Entry `yaml:"items"`
}

// idNamespace derives stable IDs for table rows that carry none.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("widget/catalog"))

// ParseTable decodes a YAML catalog table into candidates in table order.
// Rows without a name are skipped; rows without an ID get one derived from
// the folded name. Names are not length-checked here.
func ParseTable(data []byte) ([]types.Candidate, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing catalog table: %w", err)
	}

	out := make([]types.Candidate, 0, len(t.Items))
	for _, e := range t.Items {
		name := names.Clean(e.Name)
		if name == "" {
			continue
		}
		id := e.ID
		if id == "" {
			id = uuid.NewSHA1(idNamespace, []byte(names.Fold(name))).String()
		}
		out = append(out, types.NewCandidate(id, name, types.ParseKind(e.Kind)))
	}
	return out, nil
}

// LoadTable reads a catalog table from path. An empty path loads the
// embedded seed catalog.
func LoadTable(path string) ([]types.Candidate, error) {
	if path == "" {
		return ParseTable(fixtures.CatalogYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog table %s: %w", path, err)
	}
	return ParseTable(data)
}

// Matches reports whether name matches query under mode, ignoring case.
func Matches(name, query string, mode types.MatchMode) bool {
	if mode == types.MatchSubstring {
		return names.Contains(name, query)
	}
	return names.HasPrefix(name, query)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
