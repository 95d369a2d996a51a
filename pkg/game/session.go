package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/dialogue"
	"github.com/maplewoodlane/engine/pkg/event"
	"github.com/maplewoodlane/engine/pkg/state"
	"github.com/maplewoodlane/engine/pkg/trust"
)

// SavedSession is the full serializable form of a session. Static content
// is referenced by pack name, never embedded; non-serializable callbacks
// are re-attached by id against the pack on restore.
type SavedSession struct {
	ID       uuid.UUID `json:"id"`
	PackName string    `json:"pack_name"`
	SavedAt  time.Time `json:"saved_at"`

	GameState *state.GameState `json:"game_state"`
	Clock     clock.State      `json:"clock"`
	Trust     trust.State      `json:"trust"`
	Dialogue  dialogue.State   `json:"dialogue"`
	Events    event.State      `json:"events"`
	Position  string           `json:"position,omitempty"`
}

// ID returns the session id.
func (g *Game) ID() uuid.UUID { return g.gs.ID }

// Snapshot captures the full session for persistence.
func (g *Game) Snapshot() *SavedSession {
	gs := *g.gs
	return &SavedSession{
		ID:        g.gs.ID,
		PackName:  g.pack.Name,
		SavedAt:   time.Now(),
		GameState: &gs,
		Clock:     g.clk.Snapshot(),
		Trust:     g.trust.Snapshot(),
		Dialogue:  g.dialogue.Snapshot(),
		Events:    g.scheduler.Snapshot(),
		Position:  g.position,
	}
}

// Restore loads a saved session into this game. The game must have been
// built from the same pack the session was saved against. An in-progress
// conversation is re-displayed without re-applying its effects; the
// returned prompt is nil when the save was idle.
func (g *Game) Restore(s *SavedSession) (*dialogue.Prompt, error) {
	if s.PackName != g.pack.Name {
		return nil, fmt.Errorf("session was saved against pack %q, not %q", s.PackName, g.pack.Name)
	}
	if s.GameState == nil {
		return nil, fmt.Errorf("session has no game state")
	}

	// Components hold the GameState pointer; copy into it rather than
	// swapping it out.
	*g.gs = *s.GameState
	g.clk.Restore(s.Clock)
	g.trust.Restore(s.Trust)
	g.dialogue.Restore(s.Dialogue)
	g.scheduler.Restore(s.Events)
	g.position = s.Position

	return g.dialogue.Resume(), nil
}
