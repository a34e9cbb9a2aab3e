// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// MarshalTable encodes candidates as a YAML catalog table that ParseTable
// reads back unchanged.
func MarshalTable(cs []types.Candidate) ([]byte, error) {
	t := Table{Items: make([]Entry, len(cs))}
	for i, c := range cs {
		t.Items[i] = Entry{ID: c.ID, Name: c.Name, Kind: string(c.Kind)}
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog table: %w", err)
	}
	return data, nil
}

// All returns every stored candidate in table order.
func (s *SQLite) All(ctx context.Context) ([]types.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind FROM candidates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	out := []types.Candidate{}
	for rows.Next() {
		var id, name, kind string
		if err := rows.Scan(&id, &name, &kind); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		out = append(out, types.NewCandidate(id, name, types.Kind(kind)))
	}
	return out, rows.Err()
}

// ExportYAML writes the stored table to path as a catalog table file.
func (s *SQLite) ExportYAML(ctx context.Context, path string) (int, error) {
	cs, err := s.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("querying for export: %w", err)
	}
	data, err := MarshalTable(cs)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(cs), nil
}
