// Package ending classifies accumulated game state into one of several
// narrative endings by ordered first-match evaluation.
package ending

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/maplewoodlane/engine/pkg/conditions"
)

// Criteria is one ending's requirement set. A nil Criteria (or a Criteria
// with nothing set) matches unconditionally.
type Criteria struct {
	// CluePercentMin/Max bound found clues as a percentage of the
	// content pack's total clue count.
	CluePercentMin *int `json:"clue_percent_min,omitempty"`
	CluePercentMax *int `json:"clue_percent_max,omitempty"`

	// Requirements carries clue, photo-type, and single-character trust
	// clauses with the same semantics as dialogue and event gates.
	Requirements *conditions.Requirements `json:"requirements,omitempty"`

	// ForbiddenClues fail the match when any is present.
	ForbiddenClues []string `json:"forbidden_clues,omitempty"`

	// TrustFloors and TrustCeilings bound individual characters beyond
	// what a single-character requirement clause can express.
	TrustFloors   map[string]int `json:"trust_floors,omitempty"`
	TrustCeilings map[string]int `json:"trust_ceilings,omitempty"`

	AverageTrustMin *int `json:"average_trust_min,omitempty"`
	AverageTrustMax *int `json:"average_trust_max,omitempty"`

	// Theory-text signals. Nil means "don't care".
	SupernaturalFocus   *bool `json:"supernatural_focus,omitempty"`
	Contradictory       *bool `json:"contradictory,omitempty"`
	FollowedRedHerrings *bool `json:"followed_red_herrings,omitempty"`
	// MissingKeyClues requires that at least one of the resolver's key
	// clues is absent (true) or that all are present (false).
	MissingKeyClues *bool `json:"missing_key_clues,omitempty"`
}

// IsUnconditional reports whether the criteria match every state.
func (c *Criteria) IsUnconditional() bool {
	if c == nil {
		return true
	}
	return c.CluePercentMin == nil && c.CluePercentMax == nil &&
		(c.Requirements == nil || c.Requirements.IsEmpty()) &&
		len(c.ForbiddenClues) == 0 &&
		len(c.TrustFloors) == 0 && len(c.TrustCeilings) == 0 &&
		c.AverageTrustMin == nil && c.AverageTrustMax == nil &&
		c.SupernaturalFocus == nil && c.Contradictory == nil &&
		c.FollowedRedHerrings == nil && c.MissingKeyClues == nil
}

// Ending is a static narrative classification definition.
type Ending struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tone        string            `json:"tone,omitempty"`
	Criteria    *Criteria         `json:"criteria,omitempty"`
	Epilogues   map[string]string `json:"epilogues,omitempty"`
}

// Snapshot is the read-only view of accumulated state the resolver
// classifies. It is deliberately decoupled from live engine components so
// endings can be resolved from a saved session as easily as a running one.
type Snapshot struct {
	Clues         []string            `json:"clues"`
	PhotoTypes    []string            `json:"photo_types"`
	Trust         map[string]int      `json:"trust"`
	Theory        string              `json:"theory"`
	Accusations   []string            `json:"accusations,omitempty"`
	EvidenceShown map[string][]string `json:"evidence_shown,omitempty"`
}

func (s Snapshot) hasClue(id string) bool {
	for _, c := range s.Clues {
		if c == id {
			return true
		}
	}
	return false
}

func (s Snapshot) averageTrust() int {
	if len(s.Trust) == 0 {
		return 0
	}
	sum := 0
	for _, lvl := range s.Trust {
		sum += lvl
	}
	return int(math.Round(float64(sum) / float64(len(s.Trust))))
}

// snapshotView adapts a Snapshot to the shared condition evaluator.
// Time-of-day, variable, and previous-node clauses have no meaning at
// resolution time and read as zero values.
type snapshotView struct{ s Snapshot }

func (v snapshotView) TrustLevel(id string) int { return v.s.Trust[id] }
func (v snapshotView) AverageTrust() int { return v.s.averageTrust() }
func (v snapshotView) TimeOfDay() string { return "" }
func (v snapshotView) HasClue(id string) bool { return v.s.hasClue(id) }
func (v snapshotView) HasPhotoType(t string) bool {
	for _, pt := range v.s.PhotoTypes {
		if pt == t {
			return true
		}
	}
	return false
}
func (v snapshotView) Var(string) string { return "" }
func (v snapshotView) PreviousNode() string { return "" }
func (v snapshotView) HasAccused(id string) bool {
	if id == "" {
		return len(v.s.Accusations) > 0
	}
	for _, a := range v.s.Accusations {
		if a == id {
			return true
		}
	}
	return false
}
func (v snapshotView) EvidenceShown(id string) bool {
	if id == "" {
		for _, shown := range v.s.EvidenceShown {
			if len(shown) > 0 {
				return true
			}
		}
		return false
	}
	return len(v.s.EvidenceShown[id]) > 0
}

// Stats summarizes the resolved state for the ending payload.
type Stats struct {
	CluesFound   int            `json:"clues_found"`
	TotalClues   int            `json:"total_clues"`
	CluePercent  int            `json:"clue_percent"`
	AverageTrust int            `json:"average_trust"`
	Trust        map[string]int `json:"trust"`
	PhotoCount   int            `json:"photo_count"`
	Theory       Signals        `json:"theory"`
}

// Result is the resolved ending payload handed to the UI.
type Result struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tone        string            `json:"tone,omitempty"`
	Epilogues   map[string]string `json:"epilogues,omitempty"`
	Stats       Stats             `json:"stats"`
}

// Resolver evaluates endings in declaration order and returns the first
// match. The order is the priority specification: overlapping states
// resolve to whichever ending comes first, and the final ending must be
// unconditional so resolution is total.
type Resolver struct {
	endings     []Ending
	totalClues  int
	keyClues    []string
	redHerrings []string
	logger      *slog.Logger
}

// NewResolver builds a resolver over an ordered ending list. totalClues is
// the content pack's full clue count, keyClues feed the missing-key-clues
// signal, and redHerrings feed the theory analysis.
func NewResolver(endings []Ending, totalClues int, keyClues, redHerrings []string, logger *slog.Logger) *Resolver {
	return &Resolver{
		endings:     endings,
		totalClues:  totalClues,
		keyClues:    keyClues,
		redHerrings: redHerrings,
		logger:      logger,
	}
}

// Validate checks the structural invariants content must satisfy: at least
// one ending, and an unconditional final ending so every state resolves.
func (r *Resolver) Validate() error {
	if len(r.endings) == 0 {
		return fmt.Errorf("no endings defined")
	}
	if r.totalClues <= 0 {
		return fmt.Errorf("total clue count must be positive, got %d", r.totalClues)
	}
	last := r.endings[len(r.endings)-1]
	if !last.Criteria.IsUnconditional() {
		return fmt.Errorf("final ending %q must be unconditional", last.Name)
	}
	return nil
}

// Resolve classifies a snapshot. It always returns a result: if no ending
// matches (which Validate rules out for well-formed content), the final
// ending is used as the fallback.
func (r *Resolver) Resolve(snap Snapshot) Result {
	stats := r.stats(snap)
	sig := stats.Theory

	for _, e := range r.endings {
		if r.matches(e.Criteria, snap, stats, sig) {
			if r.logger != nil {
				r.logger.Info("Ending resolved",
					"ending", e.Name,
					"clue_percent", stats.CluePercent,
					"average_trust", stats.AverageTrust)
			}
			return r.result(e, stats)
		}
	}

	last := r.endings[len(r.endings)-1]
	if r.logger != nil {
		r.logger.Warn("No ending matched, falling back to final entry", "ending", last.Name)
	}
	return r.result(last, stats)
}

func (r *Resolver) result(e Ending, stats Stats) Result {
	return Result{
		Name:        e.Name,
		Description: e.Description,
		Tone:        e.Tone,
		Epilogues:   e.Epilogues,
		Stats:       stats,
	}
}

func (r *Resolver) stats(snap Snapshot) Stats {
	pct := 0
	if r.totalClues > 0 {
		pct = int(math.Round(float64(len(snap.Clues)) / float64(r.totalClues) * 100))
	}
	trust := make(map[string]int, len(snap.Trust))
	for id, lvl := range snap.Trust {
		trust[id] = lvl
	}
	return Stats{
		CluesFound:   len(snap.Clues),
		TotalClues:   r.totalClues,
		CluePercent:  pct,
		AverageTrust: snap.averageTrust(),
		Trust:        trust,
		PhotoCount:   len(snap.PhotoTypes),
		Theory:       AnalyzeTheory(snap.Theory, r.redHerrings),
	}
}

func (r *Resolver) missingKeyClues(snap Snapshot) bool {
	for _, id := range r.keyClues {
		if !snap.hasClue(id) {
			return true
		}
	}
	return false
}

func (r *Resolver) matches(c *Criteria, snap Snapshot, stats Stats, sig Signals) bool {
	if c == nil {
		return true
	}
	if c.CluePercentMin != nil && stats.CluePercent < *c.CluePercentMin {
		return false
	}
	if c.CluePercentMax != nil && stats.CluePercent > *c.CluePercentMax {
		return false
	}
	if !conditions.Evaluate(c.Requirements, snapshotView{snap}) {
		return false
	}
	for _, id := range c.ForbiddenClues {
		if snap.hasClue(id) {
			return false
		}
	}
	for id, floor := range c.TrustFloors {
		if snap.Trust[id] < floor {
			return false
		}
	}
	for id, ceiling := range c.TrustCeilings {
		if snap.Trust[id] > ceiling {
			return false
		}
	}
	if c.AverageTrustMin != nil && stats.AverageTrust < *c.AverageTrustMin {
		return false
	}
	if c.AverageTrustMax != nil && stats.AverageTrust > *c.AverageTrustMax {
		return false
	}
	if c.SupernaturalFocus != nil && sig.SupernaturalFocus != *c.SupernaturalFocus {
		return false
	}
	if c.Contradictory != nil && sig.Contradictory != *c.Contradictory {
		return false
	}
	if c.FollowedRedHerrings != nil && sig.FollowedRedHerrings != *c.FollowedRedHerrings {
		return false
	}
	if c.MissingKeyClues != nil && r.missingKeyClues(snap) != *c.MissingKeyClues {
		return false
	}
	return true
}
