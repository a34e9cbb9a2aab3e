// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WDD-CODER/ex-witget-v1/internal/fixtures"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

func strPtr(s string) *string { return &s }

// --- payload decoding ---

func TestDecodeOptimizationPayloadShapes(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantGroups int
		wantNames  []string
	}{
		{"null", `null`, 0, []string{}},
		{"empty body", ``, 0, []string{}},
		{"empty array", `[]`, 0, []string{}},
		{"flat array", `[{"name":"A","slug":"a"},{"txt":"B","slug":"b"}]`, 2, []string{"A", "B"}},
		{"grouped", `[{"label":"X","interactions":[{"title":"A","slug":"a"}]}]`, 1, []string{"A"}},
		{"envelope", `{"success":true,"data":[{"name":"A","slug":"a"}]}`, 1, []string{"A"}},
		{"envelope with null data", `{"success":true,"data":null}`, 0, []string{}},
		{"single group object", `{"label":{"name":"X"},"interactions":[{"name":"A"}]}`, 1, []string{"A"}},
		{"non-object elements skipped", `[1,"two",{"name":"A","slug":"a"}]`, 1, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := DecodeOptimizationPayload([]byte(tt.payload))
			require.NoError(t, err)
			assert.Len(t, groups, tt.wantGroups)

			var got []string
			for _, r := range NormalizeOptimizations(groups) {
				got = append(got, r.Name)
			}
			if got == nil {
				got = []string{}
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestDecodeOptimizationPayloadRejectsScalars(t *testing.T) {
	_, err := DecodeOptimizationPayload([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestRawNameForms(t *testing.T) {
	var entries []struct {
		Label RawName `json:"label"`
	}
	payload := `[{"label":"Plain"},{"label":{"name":"Obj"}},{"label":{"txt":"Txt"}},{"label":{"title":"Title"}},{"label":null}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &entries))

	var got []string
	for _, e := range entries {
		got = append(got, e.Label.Name)
	}
	assert.Equal(t, []string{"Plain", "Obj", "Txt", "Title", ""}, got)
}

// --- optimizations ---

func TestNormalizeOptimizationsFixture(t *testing.T) {
	groups, err := DecodeOptimizationPayload(fixtures.OptimizationsJSON)
	require.NoError(t, err)

	got, stats := NormalizeOptimizationsStats(groups)

	want := []types.Optimization{
		{
			ID:            "opt-timing-atorvastatin",
			Name:          "Evening dosing",
			SourceAgents:  []string{"Atorvastatin"},
			Advice:        "Take atorvastatin in the evening; cholesterol synthesis peaks overnight.",
			AlertSymptoms: []string{"Unexplained muscle pain", "Dark urine"},
			EvidenceGrade: types.GradeB,
			Slug:          "timing-atorvastatin",
		},
		{
			ID:            "opt-mag-cit-synergy",
			Name:          "Magnesium support",
			SourceAgents:  []string{"Magnesium"},
			Advice:        "Magnesium may support mood stability alongside citalopram.",
			AlertSymptoms: []string{"Diarrhea"},
			EvidenceGrade: types.GradeC,
			Slug:          "mag-cit-synergy",
			DosageHint:    strPtr("200-400 mg magnesium glycinate in the evening"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeOptimizations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Stats{Entries: 4, Malformed: 1, Duplicates: 1}, stats)
}

func TestDedupFirstOccurrenceWins(t *testing.T) {
	groups := []RawGroup{
		{Interactions: []RawOptimization{
			{ID: "1", Name: "First", Slug: "same"},
			{ID: "2", Name: "Other", Slug: "other"},
		}},
		{Interactions: []RawOptimization{
			{ID: "3", Name: "Second", Slug: "same"},
		}},
	}
	got := NormalizeOptimizations(groups)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "other", got[1].Slug)
}

func TestMissingSlugDerivedFromName(t *testing.T) {
	groups := []RawGroup{{Interactions: []RawOptimization{
		{Name: "Take with food"},
		{Name: "take WITH food"},
		{Name: "!!!"},
		{Name: "???"},
	}}}
	got := NormalizeOptimizations(groups)
	require.Len(t, got, 3)
	assert.Equal(t, "take-with-food", got[0].Slug)
	assert.Equal(t, "", got[1].Slug)
	assert.Equal(t, "???", got[2].Name)
}

func TestSourceAgentFallbackChain(t *testing.T) {
	groupLabel := &RawName{Name: "Group label"}
	tests := []struct {
		name  string
		entry RawOptimization
		want  []string
	}{
		{"explicit list wins", RawOptimization{Name: "n", SourceAgents: []string{" A ", "", "B"}, CounterAgent: &RawName{Name: "C"}}, []string{"A", "B"}},
		{"counter agent", RawOptimization{Name: "n", CounterAgent: &RawName{Name: "Counter"}, Label: &RawName{Name: "L"}}, []string{"Counter"}},
		{"entry label", RawOptimization{Name: "n", Label: &RawName{Name: "Entry label"}, Agent: "P"}, []string{"Entry label"}},
		{"group label inherited", RawOptimization{Name: "n", Agent: "P"}, []string{"Group label"}},
		{"plain agent", RawOptimization{Name: "n", Agent: "Plain"}, []string{"Plain"}},
		{"nothing resolvable", RawOptimization{Name: "n"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := groupLabel
			if tt.name == "plain agent" || tt.name == "nothing resolvable" {
				label = nil
			}
			got := NormalizeOptimizations([]RawGroup{{Label: label, Interactions: []RawOptimization{tt.entry}}})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].SourceAgents)
		})
	}
}

func TestMalformedEntriesNeverAbortBatch(t *testing.T) {
	payload := `[
		{"slug":"no-name"},
		{"name":"   ","slug":"blank"},
		{"name":"Good","slug":"good","counterAgent":null,"label":null}
	]`
	groups, err := DecodeOptimizationPayload([]byte(payload))
	require.NoError(t, err)

	got, stats := NormalizeOptimizationsStats(groups)
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Name)
	assert.Equal(t, []string{}, got[0].SourceAgents)
	assert.Equal(t, 2, stats.Malformed)
}

func TestNormalizeOptimizationsIsIdempotent(t *testing.T) {
	groups, err := DecodeOptimizationPayload(fixtures.OptimizationsJSON)
	require.NoError(t, err)
	first := NormalizeOptimizations(groups)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	regrouped, err := DecodeOptimizationPayload(encoded)
	require.NoError(t, err)
	second := NormalizeOptimizations(regrouped)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass changed output (-first +second):\n%s", diff)
	}
}

func TestNormalizeOptimizationsEmptyIsNotNil(t *testing.T) {
	got := NormalizeOptimizations(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// --- depletions ---

func TestNormalizeDepletionsFixture(t *testing.T) {
	raw, err := DecodeDepletionPayload(fixtures.DepletionsJSON)
	require.NoError(t, err)

	got := NormalizeDepletions(raw)
	want := []types.Depletion{
		{
			ID:           "dep-coq10",
			NutrientName: "Coenzyme Q10",
			SourceAgents: []string{"Atorvastatin"},
			Monitor: types.Monitor{
				LabTests: []string{"Serum CoQ10"},
				Symptoms: []string{"Muscle pain", "Fatigue", "Weakness"},
			},
			Kind:           types.DepletionKind,
			ConfidenceFlag: true,
		},
		{
			ID:           "dep-vitd",
			NutrientName: "Vitamin D",
			SourceAgents: []string{"Citalopram"},
			Monitor: types.Monitor{
				LabTests: []string{},
				Symptoms: []string{"Bone pain", "Low mood"},
			},
			Kind: types.DepletionKind,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeDepletions mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeDepletionsDefaultsMonitor(t *testing.T) {
	got := NormalizeDepletions([]RawDepletion{{Name: "Zinc", CausedBy: []string{"Omeprazole"}}})
	require.Len(t, got, 1)
	assert.Equal(t, "Zinc", got[0].NutrientName)
	assert.Equal(t, []string{"Omeprazole"}, got[0].SourceAgents)
	assert.NotNil(t, got[0].Monitor.LabTests)
	assert.NotNil(t, got[0].Monitor.Symptoms)
	assert.Equal(t, types.DepletionKind, got[0].Kind)
}

func TestNormalizeDepletionsKeepsDuplicates(t *testing.T) {
	got := NormalizeDepletions([]RawDepletion{
		{LabelName: "Vitamin B12", SourceAgents: []string{"Metformin"}},
		{LabelName: "Vitamin B12", SourceAgents: []string{"Omeprazole"}},
	})
	assert.Len(t, got, 2)
}

func TestDecodeDepletionPayloadGrouped(t *testing.T) {
	payload := `{"data":[{"label":{"name":"Metformin"},"interactions":[{"labelName":"Vitamin B12"},{"labelName":"Folate","sourceAgents":["Other"]}]}]}`
	raw, err := DecodeDepletionPayload([]byte(payload))
	require.NoError(t, err)

	got := NormalizeDepletions(raw)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Metformin"}, got[0].SourceAgents)
	assert.Equal(t, []string{"Other"}, got[1].SourceAgents)
}

func TestWrongTypedEntriesAreSkipped(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		wantNames     []string
		wantMalformed int
	}{
		{
			"flat",
			`[{"name":"Good","slug":"good"},{"name":"Bad","slug":"bad","alertSymptoms":"Diarrhea"}]`,
			[]string{"Good"}, 1,
		},
		{
			"grouped",
			`[{"label":{"name":"Citalopram"},"interactions":[{"name":"Bad","evidenceGrade":3},{"name":"Good","slug":"good"}]}]`,
			[]string{"Good"}, 1,
		},
		{
			"interactions not an array",
			`[{"label":"X","interactions":"oops"},{"name":"Good","slug":"good"}]`,
			[]string{"Good"}, 1,
		},
		{
			"unreadable group label",
			`[{"label":42,"interactions":[{"name":"Good","slug":"good"}]}]`,
			[]string{"Good"}, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := DecodeOptimizationPayload([]byte(tt.payload))
			require.NoError(t, err)

			got, stats := NormalizeOptimizationsStats(groups)
			var gotNames []string
			for _, r := range got {
				gotNames = append(gotNames, r.Name)
			}
			assert.Equal(t, tt.wantNames, gotNames)
			assert.Equal(t, tt.wantMalformed, stats.Malformed)
		})
	}
}

func TestDegenerateRecordNamesAreDropped(t *testing.T) {
	long := strings.Repeat("a", MaxRecordNameLength+1)
	groups := []RawGroup{{Interactions: []RawOptimization{
		{Name: "Line\nbreak", Slug: "a"},
		{Name: long, Slug: "b"},
		{Name: strings.Repeat("b", MaxRecordNameLength), Slug: "c"},
		{Name: "Take with food", Slug: "d"},
	}}}

	got, stats := NormalizeOptimizationsStats(groups)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Slug, "a name at the bound is kept")
	assert.Equal(t, "Take with food", got[1].Name)
	assert.Equal(t, 2, stats.Malformed)
}

func TestDecodeDepletionPayloadSkipsWrongTypedEntries(t *testing.T) {
	payload := `[
		{"labelName":"Vitamin D","sourceAgents":["Atorvastatin"]},
		{"labelName":"Zinc","confidenceFlag":"yes"},
		{"label":{"name":"Metformin"},"interactions":[{"labelName":"Vitamin B12"},{"labelName":"Folate","monitor":{"labTests":"folate"}}]}
	]`
	raw, stats, err := DecodeDepletionPayloadStats([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 4, Malformed: 2}, stats)

	got := NormalizeDepletions(raw)
	require.Len(t, got, 2)
	assert.Equal(t, "Vitamin D", got[0].NutrientName)
	assert.Equal(t, "Vitamin B12", got[1].NutrientName)
	assert.Equal(t, []string{"Metformin"}, got[1].SourceAgents)

	plain, err := DecodeDepletionPayload([]byte(payload))
	require.NoError(t, err)
	assert.Len(t, plain, 2)
}

func TestGroupWithoutInteractionsContributesNothing(t *testing.T) {
	groups, err := DecodeOptimizationPayload([]byte(`[{"label":{"name":"Grapefruit"}},{"name":"Good","slug":"good"}]`))
	require.NoError(t, err)
	got, stats := NormalizeOptimizationsStats(groups)
	require.Len(t, got, 1)
	assert.Equal(t, Stats{Entries: 1}, stats)

	raw, dstats, err := DecodeDepletionPayloadStats([]byte(`[{"label":"Grapefruit"},{"labelName":"Zinc"}]`))
	require.NoError(t, err)
	assert.Len(t, raw, 1)
	assert.Equal(t, Stats{Entries: 1}, dstats)
}
