// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens and deduplicates interaction payloads into the
// canonical record shapes in pkg/types. Server responses vary in shape
// (flat or grouped arrays, envelopes) and in field names across API
// versions; all of that is resolved here and nowhere else.
package normalize

import (
	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// MaxRecordNameLength bounds optimization names, in runes. Record names are
// short sentences, so the bound is looser than the autocomplete one.
const MaxRecordNameLength = 120

// Stats counts what normalization did to a batch.
type Stats struct {
	Entries    int // entries after flattening
	Malformed  int // entries dropped as undecodable or for lacking a usable primary name
	Duplicates int // entries dropped for repeating an earlier slug
}

// NormalizeOptimizations flattens groups, drops entries without a usable
// primary name (missing, oversized, or carrying control characters), keeps the first entry per slug, and maps the survivors to records.
// It never fails: unusable entries are skipped, not reported as errors.
func NormalizeOptimizations(groups []RawGroup) []types.Optimization {
	out, _ := NormalizeOptimizationsStats(groups)
	return out
}

// NormalizeOptimizationsStats is NormalizeOptimizations that also reports
// what was dropped.
func NormalizeOptimizationsStats(groups []RawGroup) ([]types.Optimization, Stats) {
	var stats Stats
	seen := make(map[string]struct{})
	out := make([]types.Optimization, 0)

	for _, g := range groups {
		stats.Entries += g.Undecodable
		stats.Malformed += g.Undecodable
		for _, entry := range g.Interactions {
			stats.Entries++

			name := primaryName(entry)
			if names.IsDegenerate(name, MaxRecordNameLength) {
				stats.Malformed++
				continue
			}

			slug := names.Clean(entry.Slug)
			if slug == "" {
				slug = names.Slug(name)
			}
			key := slug
			if key == "" {
				key = "name:" + names.Fold(name)
			}
			if _, dup := seen[key]; dup {
				stats.Duplicates++
				continue
			}
			seen[key] = struct{}{}

			out = append(out, types.Optimization{
				ID:            firstNonEmpty(entry.ID, entry.LegacyID),
				Name:          name,
				SourceAgents:  sourceAgents(entry, g.Label),
				Advice:        names.Clean(entry.Advice),
				AlertSymptoms: cleanList(entry.AlertSymptoms),
				EvidenceGrade: types.ParseEvidenceGrade(entry.EvidenceGrade),
				Slug:          slug,
				DosageHint:    cleanOptional(entry.DosageHint),
			})
		}
	}
	return out, stats
}

// primaryName resolves the entry's name across API versions.
func primaryName(e RawOptimization) string {
	return firstNonEmpty(names.Clean(e.Name), names.Clean(e.Txt), names.Clean(e.Title))
}

// sourceAgents resolves what caused the optimization: an explicit agent list,
// else the counter-agent, else the entry's label (or the group's when the
// entry has none), else the plain agent field, else nothing.
func sourceAgents(e RawOptimization, groupLabel *RawName) []string {
	if agents := cleanList(e.SourceAgents); len(agents) > 0 {
		return agents
	}
	label := e.Label
	if label.value() == "" {
		label = groupLabel
	}
	for _, candidate := range []string{e.CounterAgent.value(), label.value(), e.Agent} {
		if c := names.Clean(candidate); c != "" {
			return []string{c}
		}
	}
	return []string{}
}

// NormalizeDepletions maps raw depletions one to one. The source is curated,
// so there is no dedup; missing monitor lists become empty lists.
func NormalizeDepletions(raw []RawDepletion) []types.Depletion {
	out := make([]types.Depletion, 0, len(raw))
	for _, d := range raw {
		agents := d.SourceAgents
		if len(agents) == 0 {
			agents = d.CausedBy
		}

		monitor := types.Monitor{LabTests: []string{}, Symptoms: []string{}}
		if d.Monitor != nil {
			monitor.LabTests = cleanList(d.Monitor.LabTests)
			monitor.Symptoms = cleanList(d.Monitor.Symptoms)
		}

		out = append(out, types.Depletion{
			ID:             firstNonEmpty(d.ID, d.LegacyID),
			NutrientName:   names.Clean(firstNonEmpty(d.LabelName, d.Name)),
			SourceAgents:   cleanList(agents),
			Monitor:        monitor,
			Kind:           types.DepletionKind,
			ConfidenceFlag: d.ConfidenceFlag,
		})
	}
	return out
}

// cleanList trims every element and drops empty ones. It never returns nil,
// so records encode lists as [] rather than null.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := names.Clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	c := names.Clean(*s)
	if c == "" {
		return nil
	}
	return &c
}
