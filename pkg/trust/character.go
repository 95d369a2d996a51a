package trust

// Personality weights how a character's trust responds to the player.
// All fields are in [0,1].
type Personality struct {
	// Forgiveness dampens trust loss: losses scale by (2 - forgiveness).
	Forgiveness float64 `json:"forgiveness"`
	// Memory suppresses gains after recent betrayals.
	Memory float64 `json:"memory"`
	// Emotionality multiplies the magnitude of all trust changes.
	Emotionality float64 `json:"emotionality"`
}

// Character is a resident of Maplewood Lane. Created once from the content
// pack and immutable during play; runtime trust state lives in the Model.
type Character struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Portrait    string      `json:"portrait,omitempty"`
	Personality Personality `json:"personality"`
	// Traits tags drive cosmetic dialogue transforms,
	// e.g. "anxious", "secretive", "superstitious".
	Traits       []string `json:"traits,omitempty"`
	InitialTrust int      `json:"initial_trust,omitempty"`
}

// HasTrait reports whether the character carries a trait tag.
func (c *Character) HasTrait(tag string) bool {
	for _, t := range c.Traits {
		if t == tag {
			return true
		}
	}
	return false
}
