// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the widget pipeline:
// suggestion candidates, the user's selection, interaction records, and the
// per-stage configuration.
package types

import "github.com/WDD-CODER/ex-witget-v1/internal/names"

// Kind classifies a selectable item.
type Kind string

const (
	KindDrug       Kind = "drug"
	KindSupplement Kind = "supplement"

	// KindManual marks a free-text entry the user typed with no catalog match.
	KindManual Kind = "manual"
)

// ParseKind maps the kind labels seen in catalog data onto a Kind.
// Unknown labels are treated as drugs, which is what the catalog holds most.
func ParseKind(s string) Kind {
	switch names.Fold(s) {
	case "supplement", "vitamin", "mineral", "herb", "nutrient":
		return KindSupplement
	case "manual":
		return KindManual
	default:
		return KindDrug
	}
}

// Icon returns the symbol shown next to items of this kind.
func (k Kind) Icon() string {
	switch k {
	case KindSupplement:
		return "🌿"
	default:
		return "💊"
	}
}

// Candidate is a selectable autocomplete suggestion. Candidates are values;
// once produced they are never modified.
type Candidate struct {
	// ID is source-assigned and unique within one matcher response.
	ID string `json:"id" yaml:"id"`

	// Name is the trimmed display text.
	Name string `json:"name" yaml:"name"`

	Kind Kind   `json:"kind" yaml:"kind"`
	Icon string `json:"icon" yaml:"icon"`
}

// NewCandidate builds a Candidate with a cleaned name and the icon for kind.
func NewCandidate(id, name string, kind Kind) Candidate {
	return Candidate{
		ID:   id,
		Name: names.Clean(name),
		Kind: kind,
		Icon: kind.Icon(),
	}
}

// Selection is the user's ordered set of chosen items, unique by folded name.
// The zero value is an empty selection. Methods that change the set return a
// new Selection and leave the receiver untouched, so a Selection handed to
// the matcher or orchestrator can never be modified underneath them.
type Selection struct {
	items []Candidate
}

// NewSelection builds a Selection from items, dropping later duplicates.
func NewSelection(items ...Candidate) Selection {
	var s Selection
	for _, c := range items {
		s = s.Add(c)
	}
	return s
}

// Len returns the number of selected items.
func (s Selection) Len() int { return len(s.items) }

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return len(s.items) == 0 }

// Items returns a copy of the selected items in insertion order.
func (s Selection) Items() []Candidate {
	out := make([]Candidate, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the display names in insertion order.
func (s Selection) Names() []string {
	out := make([]string, len(s.items))
	for i, c := range s.items {
		out[i] = c.Name
	}
	return out
}

// Contains reports whether an item with the same folded name is selected.
func (s Selection) Contains(name string) bool {
	key := names.Fold(name)
	for _, c := range s.items {
		if names.Fold(c.Name) == key {
			return true
		}
	}
	return false
}

// FoldedNames returns the set of folded names, for exclusion checks.
func (s Selection) FoldedNames() map[string]struct{} {
	out := make(map[string]struct{}, len(s.items))
	for _, c := range s.items {
		out[names.Fold(c.Name)] = struct{}{}
	}
	return out
}

// Add returns a Selection with c appended. If an item with the same folded
// name is already selected the result equals s.
func (s Selection) Add(c Candidate) Selection {
	if s.Contains(c.Name) {
		return s
	}
	items := make([]Candidate, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Selection{items: append(items, c)}
}

// Remove returns a Selection without the item named name.
func (s Selection) Remove(name string) Selection {
	key := names.Fold(name)
	items := make([]Candidate, 0, len(s.items))
	for _, c := range s.items {
		if names.Fold(c.Name) != key {
			items = append(items, c)
		}
	}
	return Selection{items: items}
}

// Clone returns an independent snapshot of s.
func (s Selection) Clone() Selection {
	return Selection{items: s.Items()}
}
