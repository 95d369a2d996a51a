// Package trust implements the per-character trust model: a clamped 0-100
// level with personality-weighted adjustment, tier derivation and a full
// change history.
package trust

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Tier is the named bucket derived from a trust level.
type Tier string

const (
	TierSuspicious Tier = "suspicious" // 0-10
	TierCautious   Tier = "cautious"   // 11-30
	TierConfiding  Tier = "confiding"  // 31-60
	TierVulnerable Tier = "vulnerable" // 61-100
)

var tierRank = map[Tier]int{
	TierSuspicious: 0,
	TierCautious:   1,
	TierConfiding:  2,
	TierVulnerable: 3,
}

// TierFor maps a trust level to its tier. Levels are assumed clamped.
func TierFor(level int) Tier {
	switch {
	case level <= 10:
		return TierSuspicious
	case level <= 30:
		return TierCautious
	case level <= 60:
		return TierConfiding
	default:
		return TierVulnerable
	}
}

// AtLeast reports whether t is the same tier as other or higher.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

// HistoryEntry records one trust adjustment.
type HistoryEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	GameMinute    int       `json:"game_time"`
	GameDay       int       `json:"game_day"`
	PreviousLevel int       `json:"previous_level"`
	NewLevel      int       `json:"new_level"`
	Change        int       `json:"change"`
	Reason        string    `json:"reason,omitempty"`
}

// Note is player-authored free text attached to a character.
type Note struct {
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	GameMinute int       `json:"game_time"`
	GameDay    int       `json:"game_day"`
}

// Adjustment is the result of a trust change, shaped for UI notifications.
type Adjustment struct {
	CharacterID   string `json:"character_id"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	Applied       int    `json:"applied"` // effective delta after weighting and clamping
	PreviousTier  Tier   `json:"previous_tier"`
	NewTier       Tier   `json:"new_tier"`
	TierChanged   bool   `json:"tier_changed"`
}

// TimeSource provides the current game time for history entries.
type TimeSource interface {
	Minute() int
	Day() int
}

// record is the mutable per-character trust state.
type record struct {
	Level      int
	LastChange int
	History    []HistoryEntry
	Notes      []Note
}

// Model holds trust state for all characters. Trust levels change only
// through Adjust.
type Model struct {
	characters map[string]*Character
	order      []string
	records    map[string]*record
	average    int
	clock      TimeSource
	logger     *slog.Logger
}

// recentWindow is how many history entries the memory weighting inspects.
const recentWindow = 5

// NewModel builds a trust model for the given characters. Levels start at
// each character's InitialTrust, clamped to [0,100].
func NewModel(characters []Character, clock TimeSource, logger *slog.Logger) *Model {
	m := &Model{
		characters: make(map[string]*Character, len(characters)),
		records:    make(map[string]*record, len(characters)),
		clock:      clock,
		logger:     logger,
	}
	for i := range characters {
		c := characters[i]
		m.characters[c.ID] = &c
		m.order = append(m.order, c.ID)
		m.records[c.ID] = &record{Level: clamp(c.InitialTrust)}
	}
	m.recomputeAverage()
	return m
}

// Character returns a character definition by id.
func (m *Model) Character(id string) (*Character, bool) {
	c, ok := m.characters[id]
	return c, ok
}

// Characters returns all characters in declaration order.
func (m *Model) Characters() []*Character {
	out := make([]*Character, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.characters[id])
	}
	return out
}

// Adjust applies a personality-weighted trust change:
//
//  1. losses scale by (2 - forgiveness)
//  2. gains are suppressed by memory of recent negative history
//  3. everything scales with emotionality
//  4. the result is rounded, applied and clamped to [0,100]
func (m *Model) Adjust(characterID string, rawDelta int, reason string) (*Adjustment, error) {
	ch, ok := m.characters[characterID]
	if !ok {
		return nil, fmt.Errorf("unknown character %q", characterID)
	}
	rec := m.records[characterID]
	p := ch.Personality

	effective := float64(rawDelta)
	if rawDelta < 0 {
		effective = float64(rawDelta) * (2 - p.Forgiveness)
	} else if rawDelta > 0 {
		negatives := 0
		start := len(rec.History) - recentWindow
		if start < 0 {
			start = 0
		}
		for _, h := range rec.History[start:] {
			if h.Change < 0 {
				negatives++
			}
		}
		effective = float64(rawDelta) * (1 - p.Memory*float64(negatives)/10)
	}
	effective *= 1 + (p.Emotionality-0.5)/2

	previous := rec.Level
	previousTier := TierFor(previous)
	rec.Level = clamp(previous + int(math.Round(effective)))
	applied := rec.Level - previous
	rec.LastChange = applied

	entry := HistoryEntry{
		Timestamp:     time.Now(),
		PreviousLevel: previous,
		NewLevel:      rec.Level,
		Change:        applied,
		Reason:        reason,
	}
	if m.clock != nil {
		entry.GameMinute = m.clock.Minute()
		entry.GameDay = m.clock.Day()
	}
	rec.History = append(rec.History, entry)

	m.recomputeAverage()

	adj := &Adjustment{
		CharacterID:   characterID,
		PreviousLevel: previous,
		NewLevel:      rec.Level,
		Applied:       applied,
		PreviousTier:  previousTier,
		NewTier:       TierFor(rec.Level),
	}
	adj.TierChanged = adj.PreviousTier != adj.NewTier

	if m.logger != nil {
		m.logger.Debug("Trust adjusted",
			"character", characterID,
			"raw", rawDelta,
			"applied", applied,
			"level", rec.Level,
			"reason", reason)
	}
	return adj, nil
}

// Level returns the current trust level, or 0 for unknown characters.
func (m *Model) Level(characterID string) int {
	if rec, ok := m.records[characterID]; ok {
		return rec.Level
	}
	return 0
}

// TierOf returns the current tier for a character.
func (m *Model) TierOf(characterID string) Tier {
	return TierFor(m.Level(characterID))
}

// IsAtTierOrHigher reports whether a character's tier is at least the given one.
func (m *Model) IsAtTierOrHigher(characterID string, tier Tier) bool {
	return m.TierOf(characterID).AtLeast(tier)
}

// MeetsMinimumTrust reports whether a character's level is at least min.
func (m *Model) MeetsMinimumTrust(characterID string, min int) bool {
	return m.Level(characterID) >= min
}

// LastChange returns the signed delta of the most recent adjustment.
func (m *Model) LastChange(characterID string) int {
	if rec, ok := m.records[characterID]; ok {
		return rec.LastChange
	}
	return 0
}

// History returns the adjustment history for a character, oldest first.
func (m *Model) History(characterID string) []HistoryEntry {
	if rec, ok := m.records[characterID]; ok {
		return rec.History
	}
	return nil
}

// AddNote attaches player-authored text to a character.
func (m *Model) AddNote(characterID, text string) error {
	rec, ok := m.records[characterID]
	if !ok {
		return fmt.Errorf("unknown character %q", characterID)
	}
	n := Note{Text: text, Timestamp: time.Now()}
	if m.clock != nil {
		n.GameMinute = m.clock.Minute()
		n.GameDay = m.clock.Day()
	}
	rec.Notes = append(rec.Notes, n)
	return nil
}

// Notes returns the player notes for a character, oldest first.
func (m *Model) Notes(characterID string) []Note {
	if rec, ok := m.records[characterID]; ok {
		return rec.Notes
	}
	return nil
}

// Average returns the aggregate trust value: the unweighted mean across all
// characters, rounded to the nearest integer. Maintained after every
// adjustment for single-number display.
func (m *Model) Average() int {
	return m.average
}

// Levels returns a copy of the per-character trust map.
func (m *Model) Levels() map[string]int {
	out := make(map[string]int, len(m.records))
	for id, rec := range m.records {
		out[id] = rec.Level
	}
	return out
}

func (m *Model) recomputeAverage() {
	if len(m.records) == 0 {
		m.average = 0
		return
	}
	sum := 0
	for _, rec := range m.records {
		sum += rec.Level
	}
	m.average = int(math.Round(float64(sum) / float64(len(m.records))))
}

func clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// State is the serializable form of the trust model. Character definitions
// are static content and are not persisted.
type State struct {
	Levels  map[string]int            `json:"character_trust"`
	History map[string][]HistoryEntry `json:"trust_history,omitempty"`
	Notes   map[string][]Note         `json:"notes,omitempty"`
}

// Snapshot captures runtime trust state for persistence.
func (m *Model) Snapshot() State {
	s := State{
		Levels:  make(map[string]int, len(m.records)),
		History: make(map[string][]HistoryEntry),
		Notes:   make(map[string][]Note),
	}
	for id, rec := range m.records {
		s.Levels[id] = rec.Level
		if len(rec.History) > 0 {
			s.History[id] = rec.History
		}
		if len(rec.Notes) > 0 {
			s.Notes[id] = rec.Notes
		}
	}
	return s
}

// Restore replaces runtime state for characters present in the snapshot.
// Unknown ids in the snapshot are ignored.
func (m *Model) Restore(s State) {
	for id, level := range s.Levels {
		rec, ok := m.records[id]
		if !ok {
			continue
		}
		rec.Level = clamp(level)
		rec.History = s.History[id]
		rec.Notes = s.Notes[id]
		if n := len(rec.History); n > 0 {
			rec.LastChange = rec.History[n-1].Change
		} else {
			rec.LastChange = 0
		}
	}
	m.recomputeAverage()
}
