// Package content loads and validates game content packs: characters,
// dialogue trees, routines, world events, clues and endings.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/dialogue"
	"github.com/maplewoodlane/engine/pkg/effects"
	"github.com/maplewoodlane/engine/pkg/ending"
	"github.com/maplewoodlane/engine/pkg/event"
	"github.com/maplewoodlane/engine/pkg/photo"
	"github.com/maplewoodlane/engine/pkg/trust"
)

// Pack is one self-contained game's static content. Packs are immutable
// after load; all runtime lifecycle lives in per-session components.
type Pack struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Characters []trust.Character `json:"characters"`

	// Dialogues maps character id to that character's nodes in
	// declaration order.
	Dialogues map[string][]*dialogue.Node `json:"dialogues,omitempty"`

	// LegacyDialogues is the old flat format, migrated at load time.
	LegacyDialogues json.RawMessage `json:"legacy_dialogues,omitempty"`

	// Schedules maps character id to time-of-day bucket to routine entry.
	Schedules map[string]map[string]event.ScheduleEntry `json:"schedules,omitempty"`

	Events   []*event.WorldEvent       `json:"events,omitempty"`
	Triggers []*dialogue.GlobalTrigger `json:"triggers,omitempty"`

	// Clues maps stable clue id to display text. Its size is the total
	// clue count ending percentages are computed against.
	Clues map[string]string `json:"clues"`

	KeyClues    []string `json:"key_clues,omitempty"`
	RedHerrings []string `json:"red_herrings,omitempty"`

	PhotoRules []photo.AnalysisRule `json:"photo_rules,omitempty"`

	Endings []ending.Ending `json:"endings"`
}

// Load decodes a pack from JSON. Legacy dialogue blocks are migrated into
// the canonical node format and their clue text merged into the clue table.
// On any failure the returned pack is nil and nothing is partially applied.
func Load(r io.Reader) (*Pack, error) {
	var p Pack
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse content pack: %w", err)
	}

	if len(p.LegacyDialogues) > 0 {
		nodes, clueText, err := dialogue.MigrateLegacy(p.LegacyDialogues)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate legacy dialogues: %w", err)
		}
		if p.Dialogues == nil {
			p.Dialogues = make(map[string][]*dialogue.Node, len(nodes))
		}
		for characterID, list := range nodes {
			p.Dialogues[characterID] = append(p.Dialogues[characterID], list...)
		}
		if p.Clues == nil {
			p.Clues = make(map[string]string, len(clueText))
		}
		for id, text := range clueText {
			if _, exists := p.Clues[id]; !exists {
				p.Clues[id] = text
			}
		}
		p.LegacyDialogues = nil
	}

	return &p, nil
}

// LoadFile loads a pack from disk.
func LoadFile(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content pack: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// TotalClues is the pack's full clue count.
func (p *Pack) TotalClues() int { return len(p.Clues) }

// ClueText returns the display text for a clue id, falling back to the id
// itself for unknown clues.
func (p *Pack) ClueText(id string) string {
	if text, ok := p.Clues[id]; ok {
		return text
	}
	return id
}

// Character returns a character definition by id.
func (p *Pack) Character(id string) (trust.Character, bool) {
	for _, ch := range p.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return trust.Character{}, false
}

var validBuckets = map[string]bool{
	string(clock.Morning):   true,
	string(clock.Afternoon): true,
	string(clock.Evening):   true,
	string(clock.Night):     true,
}

// Validate checks referential integrity across the pack: every dialogue,
// schedule, event, trigger and ending must reference characters, nodes and
// clues that exist, and the ending table must end with an unconditional
// entry. All problems are reported, not just the first.
func (p *Pack) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if p.Name == "" {
		fail("pack name is required")
	}
	if len(p.Characters) == 0 {
		fail("pack has no characters")
	}
	chars := make(map[string]bool, len(p.Characters))
	for _, ch := range p.Characters {
		if ch.ID == "" {
			fail("character with empty id")
			continue
		}
		if chars[ch.ID] {
			fail("duplicate character id %q", ch.ID)
		}
		chars[ch.ID] = true
		if ch.InitialTrust < 0 || ch.InitialTrust > 100 {
			fail("character %q initial trust %d out of range", ch.ID, ch.InitialTrust)
		}
	}

	for characterID, nodes := range p.Dialogues {
		if !chars[characterID] {
			fail("dialogues reference unknown character %q", characterID)
		}
		ids := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			if n.ID == "" {
				fail("character %q has a node with empty id", characterID)
				continue
			}
			if ids[n.ID] {
				fail("character %q has duplicate node id %q", characterID, n.ID)
			}
			ids[n.ID] = true
		}
		for _, n := range nodes {
			for i, c := range n.Choices {
				if c.Next == "" || c.Next == dialogue.ExitNode {
					continue
				}
				if !ids[c.Next] {
					fail("character %q node %q choice %d targets unknown node %q",
						characterID, n.ID, i, c.Next)
				}
			}
		}
	}

	for characterID, buckets := range p.Schedules {
		if !chars[characterID] {
			fail("schedules reference unknown character %q", characterID)
		}
		for bucket, entry := range buckets {
			if !validBuckets[bucket] {
				fail("character %q schedule has unknown time bucket %q", characterID, bucket)
			}
			if entry.DialogueNode != "" && !p.nodeExists(characterID, entry.DialogueNode) {
				fail("character %q schedule references unknown node %q",
					characterID, entry.DialogueNode)
			}
		}
	}

	eventIDs := make(map[string]bool, len(p.Events))
	for _, ev := range p.Events {
		if ev.ID == "" {
			fail("event with empty id")
			continue
		}
		if eventIDs[ev.ID] {
			fail("duplicate event id %q", ev.ID)
		}
		eventIDs[ev.ID] = true
	}
	for _, ev := range p.Events {
		if ev.StartTime < 0 || ev.StartTime >= clock.MinutesPerDay {
			fail("event %q start time %d out of range", ev.ID, ev.StartTime)
		}
		if ev.Duration < 0 {
			fail("event %q has negative duration", ev.ID)
		}
		p.checkEffects(ev.Effects, chars, eventIDs, fmt.Sprintf("event %q", ev.ID), fail)
	}
	for characterID, nodes := range p.Dialogues {
		for _, n := range nodes {
			where := fmt.Sprintf("character %q node %q", characterID, n.ID)
			p.checkEffects(n.Effects, chars, eventIDs, where, fail)
			for i, c := range n.Choices {
				p.checkEffects(c.Effects, chars, eventIDs,
					fmt.Sprintf("%s choice %d", where, i), fail)
			}
		}
	}

	for _, tr := range p.Triggers {
		if tr.ID == "" {
			fail("trigger with empty id")
			continue
		}
		p.checkEffects(tr.Effects, chars, eventIDs, fmt.Sprintf("trigger %q", tr.ID), fail)
		if tr.StartCharacter != "" {
			if !chars[tr.StartCharacter] {
				fail("trigger %q starts dialogue with unknown character %q", tr.ID, tr.StartCharacter)
			} else if tr.StartNode != "" && !p.nodeExists(tr.StartCharacter, tr.StartNode) {
				fail("trigger %q starts dialogue at unknown node %q", tr.ID, tr.StartNode)
			}
		}
	}

	for _, id := range p.KeyClues {
		if _, ok := p.Clues[id]; !ok {
			fail("key clue %q is not in the clue table", id)
		}
	}
	for _, rule := range p.PhotoRules {
		if _, ok := p.Clues[rule.Clue]; !ok {
			fail("photo rule for %q unlocks unknown clue %q", rule.Subject, rule.Clue)
		}
	}

	if len(p.Endings) == 0 {
		fail("pack has no endings")
	} else {
		last := p.Endings[len(p.Endings)-1]
		if !last.Criteria.IsUnconditional() {
			fail("final ending %q must be unconditional", last.Name)
		}
		for _, e := range p.Endings {
			if e.Criteria == nil || e.Criteria.Requirements == nil {
				continue
			}
			for _, clue := range e.Criteria.Requirements.Clues {
				if _, ok := p.Clues[clue]; !ok {
					fail("ending %q requires unknown clue %q", e.Name, clue)
				}
			}
		}
	}

	return errors.Join(errs...)
}

func (p *Pack) nodeExists(characterID, nodeID string) bool {
	for _, n := range p.Dialogues[characterID] {
		if n.ID == nodeID {
			return true
		}
	}
	return false
}

// checkEffects validates the references inside an effect block.
func (p *Pack) checkEffects(e *effects.Effects, chars, eventIDs map[string]bool,
	where string, fail func(format string, args ...any)) {
	if e == nil {
		return
	}
	if e.TrustCharacter != "" && !chars[e.TrustCharacter] {
		fail("%s adjusts trust of unknown character %q", where, e.TrustCharacter)
	}
	if e.UnlockClue != "" {
		if _, ok := p.Clues[e.UnlockClue]; !ok {
			fail("%s unlocks unknown clue %q", where, e.UnlockClue)
		}
	}
	if e.TriggerEvent != "" && !eventIDs[e.TriggerEvent] {
		fail("%s triggers unknown event %q", where, e.TriggerEvent)
	}
}
