// Package conditions holds the single authoritative requirement-set
// evaluator. Dialogue nodes, dialogue choices, world events, global triggers
// and ending criteria all gate on a Requirements value and are evaluated
// here, never by re-implemented subsets.
package conditions

// GameStateView is the minimal read surface the evaluator needs.
// This avoids import cycles with the state, trust and clock packages.
type GameStateView interface {
	// TrustLevel returns the trust level for a character id,
	// or 0 for unknown characters.
	TrustLevel(characterID string) int
	// AverageTrust returns the aggregate trust value across all characters.
	AverageTrust() int
	// TimeOfDay returns the current bucket name, e.g. "morning".
	TimeOfDay() string
	HasClue(clueID string) bool
	HasPhotoType(photoType string) bool
	// Var returns a game variable value, or "" if unset.
	Var(name string) string
	// PreviousNode returns the id of the most recently shown dialogue node.
	PreviousNode() string
	// HasAccused reports whether an accusation has been made. With an empty
	// characterID it reports whether any accusation exists.
	HasAccused(characterID string) bool
	// EvidenceShown reports whether any evidence has been presented to the
	// given character.
	EvidenceShown(characterID string) bool
}

// Requirements is a conjunctive predicate bundle. Every populated clause
// must hold; absent clauses are satisfied, so the empty (or nil) set is
// trivially true. Evaluation never errors: malformed or unknown references
// simply fail their clause.
type Requirements struct {
	// TrustMin/TrustMax bound trust for TrustOf, or the aggregate average
	// when TrustOf is empty.
	TrustMin *int   `json:"trust_min,omitempty"`
	TrustMax *int   `json:"trust_max,omitempty"`
	TrustOf  string `json:"trust_of,omitempty"`

	TimeOfDay string `json:"time_of_day,omitempty"`

	Clues      []string `json:"clues,omitempty"`
	PhotoTypes []string `json:"photo_types,omitempty"`

	Vars map[string]string `json:"vars,omitempty"`

	PreviousNode string `json:"previous_node,omitempty"`

	// Accused requires that an accusation has (or has not) been made.
	// AccusedCharacter narrows the check to a specific character.
	Accused          *bool  `json:"accused,omitempty"`
	AccusedCharacter string `json:"accused_character,omitempty"`

	// EvidenceShown requires that evidence has (or has not) been presented
	// to EvidenceCharacter. An empty EvidenceCharacter means any character.
	EvidenceShown     *bool  `json:"evidence_shown,omitempty"`
	EvidenceCharacter string `json:"evidence_character,omitempty"`
}

// IsEmpty reports whether no clauses are populated.
func (r *Requirements) IsEmpty() bool {
	return r == nil || (r.TrustMin == nil &&
		r.TrustMax == nil &&
		r.TimeOfDay == "" &&
		len(r.Clues) == 0 &&
		len(r.PhotoTypes) == 0 &&
		len(r.Vars) == 0 &&
		r.PreviousNode == "" &&
		r.Accused == nil &&
		r.EvidenceShown == nil)
}

// Evaluate checks all clauses of a requirement set against the game state,
// short-circuiting on the first failure. A nil or empty set is satisfied.
func Evaluate(r *Requirements, gs GameStateView) bool {
	if r == nil {
		return true
	}

	if r.TrustMin != nil || r.TrustMax != nil {
		level := gs.AverageTrust()
		if r.TrustOf != "" {
			level = gs.TrustLevel(r.TrustOf)
		}
		if r.TrustMin != nil && level < *r.TrustMin {
			return false
		}
		if r.TrustMax != nil && level > *r.TrustMax {
			return false
		}
	}

	if r.TimeOfDay != "" && gs.TimeOfDay() != r.TimeOfDay {
		return false
	}

	for _, clue := range r.Clues {
		if !gs.HasClue(clue) {
			return false
		}
	}

	for _, pt := range r.PhotoTypes {
		if !gs.HasPhotoType(pt) {
			return false
		}
	}

	for name, expected := range r.Vars {
		if gs.Var(name) != expected {
			return false
		}
	}

	if r.PreviousNode != "" && gs.PreviousNode() != r.PreviousNode {
		return false
	}

	if r.Accused != nil {
		if gs.HasAccused(r.AccusedCharacter) != *r.Accused {
			return false
		}
	}

	if r.EvidenceShown != nil {
		if gs.EvidenceShown(r.EvidenceCharacter) != *r.EvidenceShown {
			return false
		}
	}

	return true
}
