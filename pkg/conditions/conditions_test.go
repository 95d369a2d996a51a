package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockView implements GameStateView for testing
type mockView struct {
	trust         map[string]int
	average       int
	timeOfDay     string
	clues         map[string]bool
	photoTypes    map[string]bool
	vars          map[string]string
	previousNode  string
	accused       map[string]bool
	anyAccused    bool
	evidenceShown map[string]bool
	anyEvidence   bool
}

func (m *mockView) TrustLevel(id string) int { return m.trust[id] }
func (m *mockView) AverageTrust() int { return m.average }
func (m *mockView) TimeOfDay() string { return m.timeOfDay }
func (m *mockView) HasClue(id string) bool { return m.clues[id] }
func (m *mockView) HasPhotoType(t string) bool {
	return m.photoTypes[t]
}
func (m *mockView) Var(name string) string { return m.vars[name] }
func (m *mockView) PreviousNode() string { return m.previousNode }
func (m *mockView) HasAccused(id string) bool {
	if id == "" {
		return m.anyAccused
	}
	return m.accused[id]
}
func (m *mockView) EvidenceShown(id string) bool {
	if id == "" {
		return m.anyEvidence
	}
	return m.evidenceShown[id]
}

func intPtr(i int) *int { return &i }
func boolPtr(b bool) *bool { return &b }

func TestEvaluate_EmptySetIsAlwaysTrue(t *testing.T) {
	views := []*mockView{
		{},
		{average: 50, timeOfDay: "night", anyAccused: true},
		{trust: map[string]int{"mrs_finch": 99}},
	}
	for _, v := range views {
		assert.True(t, Evaluate(nil, v))
		assert.True(t, Evaluate(&Requirements{}, v))
	}
}

func TestEvaluate_TrustBounds(t *testing.T) {
	view := &mockView{
		trust:   map[string]int{"mrs_finch": 40, "camille": 10},
		average: 25,
	}

	tests := []struct {
		name     string
		req      *Requirements
		expected bool
	}{
		{"per-character min met", &Requirements{TrustOf: "mrs_finch", TrustMin: intPtr(30)}, true},
		{"per-character min not met", &Requirements{TrustOf: "camille", TrustMin: intPtr(30)}, false},
		{"per-character max met", &Requirements{TrustOf: "camille", TrustMax: intPtr(20)}, true},
		{"per-character max exceeded", &Requirements{TrustOf: "mrs_finch", TrustMax: intPtr(20)}, false},
		{"average min", &Requirements{TrustMin: intPtr(25)}, true},
		{"average max", &Requirements{TrustMax: intPtr(24)}, false},
		{"range satisfied", &Requirements{TrustOf: "mrs_finch", TrustMin: intPtr(30), TrustMax: intPtr(50)}, true},
		{"unknown character treated as zero", &Requirements{TrustOf: "nobody", TrustMin: intPtr(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.req, view))
		})
	}
}

func TestEvaluate_TimeOfDay(t *testing.T) {
	view := &mockView{timeOfDay: "evening"}
	assert.True(t, Evaluate(&Requirements{TimeOfDay: "evening"}, view))
	assert.False(t, Evaluate(&Requirements{TimeOfDay: "morning"}, view))
}

func TestEvaluate_CluesAndPhotos(t *testing.T) {
	view := &mockView{
		clues:      map[string]bool{"iris_journal": true, "torn_photograph": true},
		photoTypes: map[string]bool{"anomaly": true},
	}

	assert.True(t, Evaluate(&Requirements{Clues: []string{"iris_journal"}}, view))
	assert.True(t, Evaluate(&Requirements{Clues: []string{"iris_journal", "torn_photograph"}}, view))
	assert.False(t, Evaluate(&Requirements{Clues: []string{"iris_journal", "bus_ticket"}}, view))
	assert.True(t, Evaluate(&Requirements{PhotoTypes: []string{"anomaly"}}, view))
	assert.False(t, Evaluate(&Requirements{PhotoTypes: []string{"portrait"}}, view))
}

func TestEvaluate_Vars(t *testing.T) {
	view := &mockView{vars: map[string]string{"basement_seen": "true"}}

	assert.True(t, Evaluate(&Requirements{Vars: map[string]string{"basement_seen": "true"}}, view))
	assert.False(t, Evaluate(&Requirements{Vars: map[string]string{"basement_seen": "false"}}, view))
	// Unset vars read as "" and fail equality against non-empty values.
	assert.False(t, Evaluate(&Requirements{Vars: map[string]string{"missing": "x"}}, view))
}

func TestEvaluate_PreviousNode(t *testing.T) {
	view := &mockView{previousNode: "finch_intro"}
	assert.True(t, Evaluate(&Requirements{PreviousNode: "finch_intro"}, view))
	assert.False(t, Evaluate(&Requirements{PreviousNode: "finch_basement"}, view))
}

func TestEvaluate_Accusation(t *testing.T) {
	view := &mockView{
		anyAccused: true,
		accused:    map[string]bool{"mr_arnold": true},
	}

	assert.True(t, Evaluate(&Requirements{Accused: boolPtr(true)}, view))
	assert.True(t, Evaluate(&Requirements{Accused: boolPtr(true), AccusedCharacter: "mr_arnold"}, view))
	assert.False(t, Evaluate(&Requirements{Accused: boolPtr(true), AccusedCharacter: "camille"}, view))
	assert.True(t, Evaluate(&Requirements{Accused: boolPtr(false), AccusedCharacter: "camille"}, view))
	assert.False(t, Evaluate(&Requirements{Accused: boolPtr(false)}, view))
}

func TestEvaluate_EvidenceShown(t *testing.T) {
	view := &mockView{
		anyEvidence:   true,
		evidenceShown: map[string]bool{"mrs_finch": true},
	}

	assert.True(t, Evaluate(&Requirements{EvidenceShown: boolPtr(true), EvidenceCharacter: "mrs_finch"}, view))
	assert.False(t, Evaluate(&Requirements{EvidenceShown: boolPtr(true), EvidenceCharacter: "mr_arnold"}, view))
	assert.True(t, Evaluate(&Requirements{EvidenceShown: boolPtr(true)}, view))
}

func TestEvaluate_Conjunction(t *testing.T) {
	view := &mockView{
		trust:     map[string]int{"mrs_finch": 55},
		timeOfDay: "night",
		clues:     map[string]bool{"iris_journal": true},
	}

	req := &Requirements{
		TrustOf:   "mrs_finch",
		TrustMin:  intPtr(50),
		TimeOfDay: "night",
		Clues:     []string{"iris_journal"},
	}
	assert.True(t, Evaluate(req, view))

	// One failing clause fails the whole set.
	req.TimeOfDay = "morning"
	assert.False(t, Evaluate(req, view))
}

func TestIsEmpty(t *testing.T) {
	var nilReq *Requirements
	assert.True(t, nilReq.IsEmpty())
	assert.True(t, (&Requirements{}).IsEmpty())
	assert.False(t, (&Requirements{TimeOfDay: "night"}).IsEmpty())
	assert.False(t, (&Requirements{TrustMin: intPtr(0)}).IsEmpty())
}
