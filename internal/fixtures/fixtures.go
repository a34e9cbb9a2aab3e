// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixtures embeds the seed catalog and the mock interaction payloads
// used by the offline catalog, the local analysis backend, and the mock API.
package fixtures

import (
	_ "embed"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
)

// CatalogYAML is the seed catalog table in catalog order.
//
//go:embed catalog.yaml
var CatalogYAML []byte

// DepletionsJSON is the mock depletions payload (flat array).
//
//go:embed depletions.json
var DepletionsJSON []byte

// OptimizationsJSON is the mock optimizations payload (grouped by label).
//
//go:embed optimizations.json
var OptimizationsJSON []byte

// NothingName is the item name for which the mock backends return no
// interactions at all.
const NothingName = "nothing"

// SelectsNothing reports whether any of the given names is the NothingName
// sentinel.
func SelectsNothing(items []string) bool {
	for _, n := range items {
		if names.Equal(n, NothingName) {
			return true
		}
	}
	return false
}
