// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawName is a name-bearing reference. Servers send it as a bare string or
// as an object whose name field varies by API version (name, txt, title).
type RawName struct {
	Name string
}

// UnmarshalJSON accepts "Magnesium", {"name":"Magnesium"}, {"txt":...}, or
// {"title":...}.
func (n *RawName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &n.Name)
	}
	var obj struct {
		Name  string `json:"name"`
		Txt   string `json:"txt"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	n.Name = firstNonEmpty(obj.Name, obj.Txt, obj.Title)
	return nil
}

func (n *RawName) value() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// RawOptimization is one optimization entry as the server sends it.
type RawOptimization struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`

	// Name, Txt, and Title hold the primary name; which one is set depends
	// on the API version.
	Name  string `json:"name"`
	Txt   string `json:"txt"`
	Title string `json:"title"`

	Slug string `json:"slug"`

	// Cause fields, in fallback order.
	SourceAgents []string `json:"sourceAgents"`
	CounterAgent *RawName `json:"counterAgent"`
	Label        *RawName `json:"label"`
	Agent        string   `json:"agent"`

	Advice        string   `json:"advice"`
	AlertSymptoms []string `json:"alertSymptoms"`
	EvidenceGrade string   `json:"evidenceGrade"`
	DosageHint    *string  `json:"dosageHint"`
}

// RawGroup is a label group of optimization entries. A group without an
// interactions key contributes nothing.
type RawGroup struct {
	Label        *RawName          `json:"label"`
	Interactions []RawOptimization `json:"interactions"`

	// Undecodable counts entries dropped because their fields had the
	// wrong JSON types.
	Undecodable int `json:"-"`
}

// UnmarshalJSON decodes entries one at a time so that a single entry with a
// wrong-typed field is counted in Undecodable instead of failing the group.
// An unreadable label is treated as absent.
func (g *RawGroup) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label        json.RawMessage `json:"label"`
		Interactions json.RawMessage `json:"interactions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Label = decodeLabel(raw.Label)
	g.Interactions, g.Undecodable = decodeEntries[RawOptimization](raw.Interactions)
	return nil
}

// RawMonitor is the monitoring advice attached to a depletion.
type RawMonitor struct {
	LabTests []string `json:"labTests"`
	Symptoms []string `json:"symptoms"`
}

// RawDepletion is one depletion entry as the server sends it.
type RawDepletion struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`

	LabelName string `json:"labelName"`
	Name      string `json:"name"`

	SourceAgents []string `json:"sourceAgents"`
	CausedBy     []string `json:"causedBy"`

	Monitor        *RawMonitor `json:"monitor"`
	ConfidenceFlag bool        `json:"confidenceFlag"`
}

// groupKey marks an array element as a label group.
const groupKey = "interactions"

// DecodeOptimizationPayload turns any optimizations response shape into
// groups: null, a flat array of entries, an array of label groups, a single
// group object, or a {"data": ...} envelope around any of those. A flat entry
// becomes a group of one without a label. Array elements that are not JSON
// objects are skipped.
func DecodeOptimizationPayload(data []byte) ([]RawGroup, error) {
	elems, err := payloadElements(data)
	if err != nil {
		return nil, fmt.Errorf("decoding optimizations payload: %w", err)
	}

	groups := make([]RawGroup, 0, len(elems))
	for _, elem := range elems {
		keys, ok := objectKeys(elem)
		if !ok {
			continue
		}
		if isBareLabel(keys) {
			continue
		}
		if _, isGroup := keys[groupKey]; isGroup {
			var g RawGroup
			if err := json.Unmarshal(elem, &g); err != nil {
				groups = append(groups, RawGroup{Undecodable: 1})
				continue
			}
			groups = append(groups, g)
			continue
		}
		var entry RawOptimization
		if err := json.Unmarshal(elem, &entry); err != nil {
			groups = append(groups, RawGroup{Undecodable: 1})
			continue
		}
		groups = append(groups, RawGroup{Interactions: []RawOptimization{entry}})
	}
	return groups, nil
}

// DecodeDepletionPayload turns any depletions response shape into a flat
// entry list. Grouped arrays are flattened in order; a group's label becomes
// the cause of entries that name none. Entries with wrong-typed fields are
// skipped.
func DecodeDepletionPayload(data []byte) ([]RawDepletion, error) {
	out, _, err := DecodeDepletionPayloadStats(data)
	return out, err
}

// DecodeDepletionPayloadStats is DecodeDepletionPayload that also reports
// how many entries were seen and how many were skipped as undecodable.
func DecodeDepletionPayloadStats(data []byte) ([]RawDepletion, Stats, error) {
	var stats Stats
	elems, err := payloadElements(data)
	if err != nil {
		return nil, stats, fmt.Errorf("decoding depletions payload: %w", err)
	}

	var out []RawDepletion
	for _, elem := range elems {
		keys, ok := objectKeys(elem)
		if !ok {
			continue
		}
		if isBareLabel(keys) {
			continue
		}
		if interactions, isGroup := keys[groupKey]; isGroup {
			label := decodeLabel(keys["label"]).value()
			entries, skipped := decodeEntries[RawDepletion](interactions)
			stats.Entries += len(entries) + skipped
			stats.Malformed += skipped
			for _, d := range entries {
				if len(d.SourceAgents) == 0 && len(d.CausedBy) == 0 && label != "" {
					d.SourceAgents = []string{label}
				}
				out = append(out, d)
			}
			continue
		}
		stats.Entries++
		var d RawDepletion
		if err := json.Unmarshal(elem, &d); err != nil {
			stats.Malformed++
			continue
		}
		out = append(out, d)
	}
	return out, stats, nil
}

// decodeEntries decodes a JSON array element by element, returning the
// entries that decoded and the number that did not. A value that is not an
// array counts as one undecodable entry; null or absent counts as none.
func decodeEntries[T any](raw json.RawMessage) ([]T, int) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, 0
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 1
	}
	out := make([]T, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

// decodeLabel reads a group label, treating an absent or unreadable one as
// no label.
func decodeLabel(raw json.RawMessage) *RawName {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var n RawName
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

// payloadElements unwraps envelopes and returns the array elements of a
// payload. A lone object that is not an envelope is returned as a single
// element.
func payloadElements(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, err
		}
		return elems, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, err
		}
		if inner, ok := envelope["data"]; ok {
			return payloadElements(inner)
		}
		return []json.RawMessage{data}, nil
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", data[0])
	}
}

func objectKeys(elem json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil, false
	}
	return keys, true
}

// isBareLabel reports an object carrying nothing but a label: a label group
// whose interactions key is missing. It contributes no entries.
func isBareLabel(keys map[string]json.RawMessage) bool {
	_, hasLabel := keys["label"]
	return hasLabel && len(keys) == 1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
