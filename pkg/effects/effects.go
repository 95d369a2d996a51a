// Package effects applies the side effects attached to dialogue nodes,
// choices, world events and global triggers. There is exactly one
// applicator; every consumer routes through it so trust, clues and
// variables never diverge between systems.
package effects

import (
	"log/slog"

	"github.com/maplewoodlane/engine/pkg/state"
	"github.com/maplewoodlane/engine/pkg/trust"
)

// Effects is the declarative side-effect bundle content can attach to a
// node, choice, event or trigger. All fields are optional.
type Effects struct {
	// TrustDelta routes through the trust model's personality weighting.
	// TrustCharacter defaults to the character the effect fires against.
	TrustDelta     int    `json:"trust_delta,omitempty"`
	TrustCharacter string `json:"trust_character,omitempty"`

	// UnlockClue adds a clue id to the found set, idempotently.
	UnlockClue string `json:"unlock_clue,omitempty"`

	SetVars map[string]string `json:"set_vars,omitempty"`

	AddItems []string `json:"add_items,omitempty"`

	// TriggerEvent forces a world event by id, delegated to the sink.
	TriggerEvent string `json:"trigger_event,omitempty"`
}

// IsEmpty reports whether the bundle carries no effects.
func (e *Effects) IsEmpty() bool {
	return e == nil || (e.TrustDelta == 0 &&
		e.UnlockClue == "" &&
		len(e.SetVars) == 0 &&
		len(e.AddItems) == 0 &&
		e.TriggerEvent == "")
}

// EventSink receives forced event triggers. The scheduler implements it;
// tests may stub it.
type EventSink interface {
	ForceEvent(eventID string)
}

// Result reports what an application actually changed, shaped for UI
// notifications.
type Result struct {
	Trust      *trust.Adjustment `json:"trust,omitempty"`
	NewClue    string            `json:"new_clue,omitempty"`
	AddedItems []string          `json:"added_items,omitempty"`
}

// Applicator applies effect bundles to the trust model and game state.
type Applicator struct {
	trust    *trust.Model
	gs       *state.GameState
	sink     EventSink
	observer func(*Result)
	logger   *slog.Logger
}

// NewApplicator builds the shared applicator.
func NewApplicator(trustModel *trust.Model, gs *state.GameState, logger *slog.Logger) *Applicator {
	return &Applicator{trust: trustModel, gs: gs, logger: logger}
}

// WithEventSink sets the sink for forced event triggers.
// Returns the Applicator for method chaining.
func (a *Applicator) WithEventSink(sink EventSink) *Applicator {
	a.sink = sink
	return a
}

// WithObserver sets a fire-and-forget notification callback invoked with
// every non-empty result. UI collaborators use it for trust-change and
// clue-unlock toasts; it must never gate or sequence core mutations.
func (a *Applicator) WithObserver(fn func(*Result)) *Applicator {
	a.observer = fn
	return a
}

// Apply runs every populated effect. characterID scopes trust changes when
// the bundle names no character; reason is recorded in trust history.
// Effects are applied immediately and are never rolled back.
func (a *Applicator) Apply(e *Effects, characterID, reason string) *Result {
	res := &Result{}
	if e.IsEmpty() {
		return res
	}

	if e.TrustDelta != 0 {
		target := e.TrustCharacter
		if target == "" {
			target = characterID
		}
		adj, err := a.trust.Adjust(target, e.TrustDelta, reason)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("Trust effect skipped", "character", target, "error", err)
			}
		} else {
			res.Trust = adj
		}
	}

	if e.UnlockClue != "" {
		if a.gs.AddClue(e.UnlockClue) {
			res.NewClue = e.UnlockClue
			if a.logger != nil {
				a.logger.Info("Clue unlocked", "clue", e.UnlockClue, "source", reason)
			}
		}
	}

	for name, value := range e.SetVars {
		a.gs.SetVar(name, value)
	}

	for _, item := range e.AddItems {
		if a.gs.AddItem(item) {
			res.AddedItems = append(res.AddedItems, item)
		}
	}

	if e.TriggerEvent != "" {
		if a.sink != nil {
			a.sink.ForceEvent(e.TriggerEvent)
		} else if a.logger != nil {
			a.logger.Warn("No event sink for forced event", "event", e.TriggerEvent)
		}
	}

	if a.observer != nil && (res.Trust != nil || res.NewClue != "" || len(res.AddedItems) > 0) {
		a.observer(res)
	}

	return res
}
