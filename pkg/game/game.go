// Package game composes the engine components into one playable session.
// The Game object is the explicit context collaborators hold instead of
// globals: built once at session start, torn down on reset.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/content"
	"github.com/maplewoodlane/engine/pkg/dialogue"
	"github.com/maplewoodlane/engine/pkg/effects"
	"github.com/maplewoodlane/engine/pkg/ending"
	"github.com/maplewoodlane/engine/pkg/event"
	"github.com/maplewoodlane/engine/pkg/photo"
	"github.com/maplewoodlane/engine/pkg/state"
	"github.com/maplewoodlane/engine/pkg/trust"
)

// Game is one running session over a content pack. All mutation happens
// synchronously on the caller's goroutine; there is exactly one mutator at
// a time.
type Game struct {
	pack *content.Pack

	gs        *state.GameState
	clk       *clock.Clock
	trust     *trust.Model
	dialogue  *dialogue.Manager
	scheduler *event.Scheduler
	camera    photo.Camera
	resolver  *ending.Resolver

	applicator *effects.Applicator
	logger     *slog.Logger

	position string
}

// view is the composed condition-evaluation surface over all components.
type view struct{ g *Game }

func (v view) TrustLevel(id string) int { return v.g.trust.Level(id) }
func (v view) AverageTrust() int { return v.g.trust.Average() }
func (v view) TimeOfDay() string { return string(v.g.clk.TimeOfDay()) }
func (v view) HasClue(id string) bool { return v.g.gs.HasClue(id) }
func (v view) HasPhotoType(t string) bool { return v.g.gs.HasPhotoType(t) }
func (v view) Var(name string) string { return v.g.gs.Var(name) }
func (v view) PreviousNode() string { return v.g.dialogue.PreviousNode() }
func (v view) HasAccused(id string) bool { return v.g.gs.HasAccused(id) }
func (v view) EvidenceShown(id string) bool { return v.g.gs.EvidenceShownTo(id) }

// New builds a session from validated content. rng seeds the camera; pass
// nil for a time-seeded source. The pack is shared and never mutated;
// trigger and event lifecycle is copied per session.
func New(pack *content.Pack, rng *rand.Rand, logger *slog.Logger) (*Game, error) {
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content pack: %w", err)
	}

	g := &Game{
		pack:   pack,
		gs:     state.New(),
		clk:    clock.New(),
		logger: logger,
	}
	v := view{g}

	g.trust = trust.NewModel(pack.Characters, g.clk, logger)
	g.applicator = effects.NewApplicator(g.trust, g.gs, logger)

	library := dialogue.NewLibrary(pack.Dialogues)
	g.dialogue = dialogue.NewManager(library, g.trust, g.clk, v, g.applicator, g.gs, logger)
	g.dialogue.SetTriggers(copyTriggers(pack.Triggers))

	g.scheduler = event.NewScheduler(pack.Events, pack.Schedules, g.clk, v, g.applicator, logger).
		WithDialogue(g.dialogue).
		WithPosition(func() string { return g.position })
	g.applicator.WithEventSink(g.scheduler)

	base := photo.NewBaseCamera(g.gs, g.clk, rng, logger)
	g.camera = photo.NewAnalyzingCamera(base, g.gs, pack.PhotoRules, nil, logger)

	g.resolver = ending.NewResolver(pack.Endings, pack.TotalClues(),
		pack.KeyClues, pack.RedHerrings, logger)

	return g, nil
}

// copyTriggers clones trigger definitions so fired flags stay per session.
func copyTriggers(defs []*dialogue.GlobalTrigger) []*dialogue.GlobalTrigger {
	out := make([]*dialogue.GlobalTrigger, 0, len(defs))
	for _, def := range defs {
		tr := *def
		out = append(out, &tr)
	}
	return out
}

// OnNotify installs the fire-and-forget UI notification callback for trust
// changes, clue unlocks and item pickups.
func (g *Game) OnNotify(fn func(*effects.Result)) {
	g.applicator.WithObserver(fn)
}

// Advance moves game time forward minute by minute so every scheduled
// trigger is evaluated, then drains fired events.
func (g *Game) Advance(minutes int) []event.Triggered {
	for i := 0; i < minutes; i++ {
		g.clk.Advance(1)
	}
	return g.scheduler.TakeTriggered()
}

// MoveTo updates the player's position for location-gated events.
func (g *Game) MoveTo(location string) { g.position = location }

// Position returns the player's current location.
func (g *Game) Position() string { return g.position }

// StartDialogue opens a conversation, selecting the node from current
// state. Returns nil for unknown characters.
func (g *Game) StartDialogue(characterID string) *dialogue.Prompt {
	return g.dialogue.StartDialogue(characterID, "")
}

// StartDialogueAt opens a conversation at a specific node.
func (g *Game) StartDialogueAt(characterID, nodeID string) *dialogue.Prompt {
	return g.dialogue.StartDialogue(characterID, nodeID)
}

// Choose selects a displayed choice by index.
func (g *Game) Choose(index int) (*dialogue.Prompt, error) {
	return g.dialogue.SelectChoice(index)
}

// EndDialogue closes any active conversation. The returned prompt is
// non-nil when a global trigger force-started a new one.
func (g *Game) EndDialogue() *dialogue.Prompt {
	return g.dialogue.EndDialogue()
}

// TakePhoto captures a photo; analysis rules may unlock clues.
func (g *Game) TakePhoto(photoType, subject, caption string) (state.Photo, error) {
	return g.camera.Capture(photoType, subject, caption)
}

// AddNote attaches player-authored text to a character's file.
func (g *Game) AddNote(characterID, text string) error {
	return g.trust.AddNote(characterID, text)
}

// SetTheory replaces the player's working theory.
func (g *Game) SetTheory(text string) {
	g.gs.Theory = text
	g.gs.UpdatedAt = time.Now()
}

// Accuse records an accusation. Returns true if it was new.
func (g *Game) Accuse(characterID string) bool {
	return g.gs.Accuse(characterID)
}

// ShowEvidence presents a found clue to a character. Unknown or unfound
// clues are benign no-ops.
func (g *Game) ShowEvidence(characterID, clueID string) {
	if !g.gs.HasClue(clueID) {
		if g.logger != nil {
			g.logger.Warn("Evidence not in found clues", "clue", clueID)
		}
		return
	}
	g.gs.ShowEvidence(characterID, clueID)
}

// ResolveEnding classifies the accumulated state into an ending.
func (g *Game) ResolveEnding() ending.Result {
	photoTypes := make([]string, 0, len(g.gs.Photos))
	for _, p := range g.gs.Photos {
		photoTypes = append(photoTypes, p.Type)
	}
	return g.resolver.Resolve(ending.Snapshot{
		Clues:         g.gs.Clues,
		PhotoTypes:    photoTypes,
		Trust:         g.trust.Levels(),
		Theory:        g.gs.Theory,
		Accusations:   g.gs.Accusations,
		EvidenceShown: g.gs.EvidenceShown,
	})
}

// Clock accessors.

func (g *Game) Minute() int { return g.clk.Minute() }
func (g *Game) Day() int { return g.clk.Day() }
func (g *Game) TimeOfDay() clock.TimeOfDay { return g.clk.TimeOfDay() }

// SetTime jumps the clock without ticking the scheduler, for scene setup.
func (g *Game) SetTime(hour, minute int) error { return g.clk.SetTime(hour, minute) }

// Trust returns a character's current trust level.
func (g *Game) Trust(characterID string) int { return g.trust.Level(characterID) }

// TrustTier returns a character's current tier.
func (g *Game) TrustTier(characterID string) trust.Tier { return g.trust.TierOf(characterID) }

// Characters returns the pack's characters in declaration order.
func (g *Game) Characters() []*trust.Character { return g.trust.Characters() }

// Notes returns the player's notes on a character.
func (g *Game) Notes(characterID string) []trust.Note { return g.trust.Notes(characterID) }

// ClueLog returns found clues as display text, in discovery order.
func (g *Game) ClueLog() []string {
	out := make([]string, 0, len(g.gs.Clues))
	for _, id := range g.gs.Clues {
		out = append(out, g.pack.ClueText(id))
	}
	return out
}

// CurrentSchedule reports where a character is right now.
func (g *Game) CurrentSchedule(characterID string) (event.ScheduleEntry, bool) {
	return g.scheduler.CurrentSchedule(characterID)
}

// GameState exposes the raw accumulated state for handlers and persistence.
func (g *Game) GameState() *state.GameState { return g.gs }

// Pack returns the static content this session runs on.
func (g *Game) Pack() *content.Pack { return g.pack }
