// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WDD-CODER/ex-witget-v1/internal/transport"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

func candidateNames(cs []types.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func seedStatic(t *testing.T, opts Options) *Static {
	t.Helper()
	entries, err := LoadTable("")
	require.NoError(t, err)
	return NewStatic(entries, opts)
}

// --- table loading ---

func TestParseTable(t *testing.T) {
	data := []byte(`items:
  - {id: a, name: "  Aspirin ", kind: drug}
  - {name: Biotin, kind: vitamin}
  - {id: c, name: "", kind: drug}
  - {id: d, name: Dong Quai}
`)
	got, err := ParseTable(data)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.NewCandidate("a", "Aspirin", types.KindDrug), got[0])
	assert.Equal(t, "Biotin", got[1].Name)
	assert.Equal(t, types.KindSupplement, got[1].Kind)
	assert.Len(t, got[1].ID, 36, "missing IDs are derived as UUIDs")
	assert.Equal(t, types.KindDrug, got[2].Kind, "missing kind defaults to drug")
}

func TestParseTableDerivedIDsAreStable(t *testing.T) {
	data := []byte("items:\n  - {name: Biotin}\n")
	first, err := ParseTable(data)
	require.NoError(t, err)
	second, err := ParseTable([]byte("items:\n  - {name: BIOTIN}\n"))
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestParseTableInvalidYAML(t *testing.T) {
	_, err := ParseTable([]byte("items: [unterminated"))
	assert.Error(t, err)
}

func TestLoadTableSeed(t *testing.T) {
	got, err := LoadTable("")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Atorvastatin", got[0].Name)
	assert.Equal(t, "💊", got[0].Icon)
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {id: x, name: Xylitol, kind: supplement}\n"), 0o644))

	got, err := LoadTable(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "🌿", got[0].Icon)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name, entry, query string
		mode               types.MatchMode
		want               bool
	}{
		{"prefix hit", "Magnesium", "mag", types.MatchPrefix, true},
		{"prefix ignores case", "magnesium", "MAG", types.MatchPrefix, true},
		{"prefix miss on inner text", "Magnesium Citrate", "citr", types.MatchPrefix, false},
		{"empty mode is prefix", "Magnesium Citrate", "citr", "", false},
		{"substring hit", "Magnesium Citrate", "citr", types.MatchSubstring, true},
		{"unicode folding", "STRASSE", "straße", types.MatchPrefix, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.entry, tt.query, tt.mode))
		})
	}
}

// --- Static ---

func TestStaticLookupPrefix(t *testing.T) {
	s := seedStatic(t, Options{})
	got, err := s.Lookup(context.Background(), "ma")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Magnesium", "Magnesium Citrate", "Magnesium Glycinate",
		"Manganese", "Maca Root", "Marshmallow Root",
	}, candidateNames(got))
}

func TestStaticLookupSubstring(t *testing.T) {
	s := seedStatic(t, Options{Mode: types.MatchSubstring})
	got, err := s.Lookup(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maca Root", "Marshmallow Root"}, candidateNames(got))

	prefix := seedStatic(t, Options{})
	got, err = prefix.Lookup(context.Background(), "root")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticLookupLatencyHonorsContext(t *testing.T) {
	s := seedStatic(t, Options{Latency: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Lookup(ctx, "ma")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestStaticFind(t *testing.T) {
	s := seedStatic(t, Options{})
	c, err := s.Find(context.Background(), "  vitamin d ")
	require.NoError(t, err)
	assert.Equal(t, "sup-vitamin-d", c.ID)

	_, err = s.Find(context.Background(), "Unobtainium")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticEntriesIsCopy(t *testing.T) {
	s := seedStatic(t, Options{})
	entries := s.Entries()
	entries[0].Name = "changed"
	assert.Equal(t, "Atorvastatin", s.Entries()[0].Name)
}

// --- SQLite ---

func openTestSQLite(t *testing.T, opts Options) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "index", "catalog.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteImportAndCount(t *testing.T) {
	db := openTestSQLite(t, Options{})
	entries, err := LoadTable("")
	require.NoError(t, err)

	dup := append(entries, entries[0])
	summary, err := db.Import(context.Background(), dup)
	require.NoError(t, err)
	assert.Equal(t, len(entries), summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(entries), n)

	// Re-import replaces rather than appends.
	_, err = db.Import(context.Background(), entries[:3])
	require.NoError(t, err)
	n, err = db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLiteMatchesStatic(t *testing.T) {
	for _, mode := range []types.MatchMode{types.MatchPrefix, types.MatchSubstring} {
		t.Run(string(mode), func(t *testing.T) {
			static := seedStatic(t, Options{Mode: mode})
			db := openTestSQLite(t, Options{Mode: mode})
			_, err := db.Import(context.Background(), static.Entries())
			require.NoError(t, err)

			for _, q := range []string{"ma", "MAG", "vit", "c", "root", "st. j", "zz", "me"} {
				want, err := static.Lookup(context.Background(), q)
				require.NoError(t, err)
				got, err := db.Lookup(context.Background(), q)
				require.NoError(t, err)
				assert.Equal(t, want, got, "query %q", q)
			}
		})
	}
}

func TestSQLiteLookupEscapesWildcards(t *testing.T) {
	db := openTestSQLite(t, Options{})
	_, err := db.Import(context.Background(), []types.Candidate{
		types.NewCandidate("1", "50% Solution", types.KindDrug),
		types.NewCandidate("2", "500 mg Tablet", types.KindDrug),
		types.NewCandidate("3", "a_b", types.KindDrug),
		types.NewCandidate("4", "axb", types.KindDrug),
	})
	require.NoError(t, err)

	got, err := db.Lookup(context.Background(), "50%")
	require.NoError(t, err)
	assert.Equal(t, []string{"50% Solution"}, candidateNames(got))

	got, err = db.Lookup(context.Background(), "a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, candidateNames(got))
}

func TestSQLiteFind(t *testing.T) {
	db := openTestSQLite(t, Options{})
	entries, err := LoadTable("")
	require.NoError(t, err)
	_, err = db.Import(context.Background(), entries)
	require.NoError(t, err)

	c, err := db.Find(context.Background(), "CITALOPRAM")
	require.NoError(t, err)
	assert.Equal(t, types.NewCandidate("drg-citalopram", "Citalopram", types.KindDrug), c)

	_, err = db.Find(context.Background(), "Unobtainium")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

// --- Remote ---

func newRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := transport.NewClient(types.HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewRemote(client, types.DefaultAPIPaths())
}

func TestRemoteLookupMapsAlternateFields(t *testing.T) {
	var gotQuery string
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/get-autocomplete", req.URL.Path)
		gotQuery = req.URL.Query().Get("q")
		w.Write([]byte(`[
			{"_id":"a1","title":"Aspirin"},
			{"id":"b2","label":"Biotin","type":"supplement"},
			{"_id":"c3","id":"ignored","name":"Calcium","metType":"mineral"},
			{"id":"d4","name":""},
			{"_id":7,"name":"Cimetidine"},
			{"id":12.5,"name":"Digoxin"},
			{"id":true,"name":"Broken"},
			{"_id":null,"id":"e5","name":"Estradiol"}
		]`))
	})

	got, err := r.Lookup(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", gotQuery)
	assert.Equal(t, []types.Candidate{
		types.NewCandidate("a1", "Aspirin", types.KindDrug),
		types.NewCandidate("b2", "Biotin", types.KindSupplement),
		types.NewCandidate("c3", "Calcium", types.KindSupplement),
		types.NewCandidate("7", "Cimetidine", types.KindDrug),
		types.NewCandidate("12.5", "Digoxin", types.KindDrug),
		types.NewCandidate("e5", "Estradiol", types.KindDrug),
	}, got, "numeric ids are kept; an item that fails to decode is skipped alone")
}

func TestRemoteLookupEnvelopeAndNull(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"null", `null`, 0},
		{"empty body", ``, 0},
		{"envelope", `{"success":true,"data":[{"id":"1","name":"Zinc"}]}`, 1},
		{"envelope null data", `{"success":true,"data":null}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})
			got, err := r.Lookup(context.Background(), "zi")
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRemoteLookupServerError(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := r.Lookup(context.Background(), "zi")
	require.Error(t, err)
	assert.True(t, transport.IsStatus(err, http.StatusInternalServerError))
}

func TestRemoteFind(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/get-item", req.URL.Path)
		if req.URL.Query().Get("name") != "Zinc" {
			http.NotFound(w, req)
			return
		}
		w.Write([]byte(`{"_id":"sup-zinc","name":"Zinc","kind":"supplement"}`))
	})

	c, err := r.Find(context.Background(), "Zinc")
	require.NoError(t, err)
	assert.Equal(t, types.NewCandidate("sup-zinc", "Zinc", types.KindSupplement), c)

	_, err = r.Find(context.Background(), "Unobtainium")
	assert.ErrorIs(t, err, ErrNotFound)
}
