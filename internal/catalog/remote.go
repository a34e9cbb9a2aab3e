// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/internal/transport"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Remote queries the autocomplete API. Filtering happens on the server; the
// matcher still applies its own rules to what comes back.
type Remote struct {
	transport transport.Transport
	paths     types.APIPaths
}

// NewRemote returns a catalog that queries the API through t.
func NewRemote(t transport.Transport, paths types.APIPaths) *Remote {
	return &Remote{transport: t, paths: paths}
}

// Name returns the catalog identifier.
func (r *Remote) Name() string { return "remote" }

// remoteItem is an autocomplete entry. Field names differ across API
// versions.
type remoteItem struct {
	ID       itemID `json:"id"`
	LegacyID itemID `json:"_id"`

	Name  string `json:"name"`
	Title string `json:"title"`
	Label string `json:"label"`

	Kind    string `json:"kind"`
	Type    string `json:"type"`
	MetType string `json:"metType"`
}

func (it remoteItem) candidate() (types.Candidate, bool) {
	name := names.Clean(firstOf(it.Name, it.Title, it.Label))
	if name == "" {
		return types.Candidate{}, false
	}
	kind := types.KindDrug
	if k := firstOf(it.Kind, it.Type, it.MetType); k != "" {
		kind = types.ParseKind(k)
	}
	return types.NewCandidate(firstOf(string(it.LegacyID), string(it.ID)), name, kind), true
}

// itemID is an item identifier sent as a JSON string or number.
type itemID string

func (id *itemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = itemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = itemID(n.String())
	return nil
}

// Lookup sends GET autocomplete?q=query and maps the returned items.
func (r *Remote) Lookup(ctx context.Context, query string) ([]types.Candidate, error) {
	var raw json.RawMessage
	if err := r.transport.Get(ctx, r.paths.Autocomplete, url.Values{"q": {query}}, &raw); err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing autocomplete response: %w", err)
	}

	var out []types.Candidate
	for _, it := range items {
		if c, ok := it.candidate(); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Find sends GET item?name=name. A 404 or an empty body is ErrNotFound.
func (r *Remote) Find(ctx context.Context, name string) (types.Candidate, error) {
	var raw json.RawMessage
	err := r.transport.Get(ctx, r.paths.Item, url.Values{"name": {name}}, &raw)
	if transport.IsStatus(err, http.StatusNotFound) {
		return types.Candidate{}, ErrNotFound
	}
	if err != nil {
		return types.Candidate{}, fmt.Errorf("item request: %w", err)
	}
	items, err := decodeItems(raw)
	if err != nil {
		return types.Candidate{}, fmt.Errorf("parsing item response: %w", err)
	}
	for _, it := range items {
		if c, ok := it.candidate(); ok {
			return c, nil
		}
	}
	return types.Candidate{}, ErrNotFound
}

// decodeItems accepts null, an array of items, a single item, or a
// {"data": ...} envelope around either. Array elements that do not decode
// are skipped.
func decodeItems(raw json.RawMessage) ([]remoteItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		items := make([]remoteItem, 0, len(elems))
		for _, elem := range elems {
			var item remoteItem
			if err := json.Unmarshal(elem, &item); err != nil {
				continue
			}
			items = append(items, item)
		}
		return items, nil
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		if envelope.Data != nil {
			return decodeItems(envelope.Data)
		}
		var item remoteItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		return []remoteItem{item}, nil
	default:
		return nil, fmt.Errorf("unexpected response starting with %q", raw[0])
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
