package dialogue

import (
	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
)

// GlobalTrigger is a dialogue-adjacent rule evaluated after any
// conversation closes, independent of the active character. A matching
// trigger applies its effects and may force-start a new dialogue. One-time
// triggers never fire again after matching once.
type GlobalTrigger struct {
	ID      string                   `json:"id"`
	When    *conditions.Requirements `json:"when,omitempty"`
	Effects *effects.Effects         `json:"effects,omitempty"`

	StartCharacter string `json:"start_character,omitempty"`
	StartNode      string `json:"start_node,omitempty"`

	OneTime bool `json:"one_time,omitempty"`

	fired bool
}

// Fired reports whether the trigger has matched at least once.
func (t *GlobalTrigger) Fired() bool { return t.fired }
