// Package state holds the accumulated player state that dialogue and event
// systems mutate and the ending resolver reads.
package state

import (
	"time"

	"github.com/google/uuid"
)

// Photo is a capture in the player's photo collection.
type Photo struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"` // e.g. "evidence", "portrait", "anomaly"
	Subject    string    `json:"subject"`
	Caption    string    `json:"caption,omitempty"`
	Quality    int       `json:"quality"` // 1-100
	GameMinute int       `json:"game_time"`
	GameDay    int       `json:"game_day"`
	TakenAt    time.Time `json:"taken_at"`
}

// GameState is the mutable snapshot of a playthrough: found clues, photos,
// variables, the player's theory text, accusations and evidence shown to
// characters. Trust and time live in their own components; the game context
// composes all three into one view.
type GameState struct {
	ID uuid.UUID `json:"id"`

	// Clues holds found clue ids in discovery order. Membership is
	// idempotent: unlocking a clue twice records it once.
	Clues []string `json:"clues,omitempty"`

	Photos []Photo `json:"photos,omitempty"`

	Vars map[string]string `json:"variables,omitempty"`

	Items []string `json:"items,omitempty"`

	// Theory is the player's free-text working theory of the case.
	Theory string `json:"theory,omitempty"`

	// Accusations holds accused character ids in order.
	Accusations []string `json:"accusations,omitempty"`

	// EvidenceShown maps character id to the clue ids presented to them.
	EvidenceShown map[string][]string `json:"evidence_shown,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty game state with a fresh session id.
func New() *GameState {
	return &GameState{
		ID:        uuid.New(),
		Vars:      make(map[string]string),
		CreatedAt: time.Now(),
	}
}

// AddClue records a found clue. Returns true if the clue was new.
func (gs *GameState) AddClue(clueID string) bool {
	if clueID == "" || gs.HasClue(clueID) {
		return false
	}
	gs.Clues = append(gs.Clues, clueID)
	return true
}

// HasClue reports membership in the found-clues set.
func (gs *GameState) HasClue(clueID string) bool {
	for _, c := range gs.Clues {
		if c == clueID {
			return true
		}
	}
	return false
}

// AddPhoto appends a capture to the collection.
func (gs *GameState) AddPhoto(p Photo) {
	gs.Photos = append(gs.Photos, p)
}

// HasPhotoType reports whether any photo of the given type exists.
func (gs *GameState) HasPhotoType(photoType string) bool {
	for _, p := range gs.Photos {
		if p.Type == photoType {
			return true
		}
	}
	return false
}

// SetVar sets a game variable.
func (gs *GameState) SetVar(name, value string) {
	if gs.Vars == nil {
		gs.Vars = make(map[string]string)
	}
	gs.Vars[name] = value
}

// Var returns a game variable value, or "" if unset.
func (gs *GameState) Var(name string) string {
	return gs.Vars[name]
}

// AddItem adds an inventory item, idempotently.
func (gs *GameState) AddItem(item string) bool {
	if item == "" {
		return false
	}
	for _, it := range gs.Items {
		if it == item {
			return false
		}
	}
	gs.Items = append(gs.Items, item)
	return true
}

// Accuse records an accusation against a character, idempotently.
func (gs *GameState) Accuse(characterID string) bool {
	if characterID == "" || gs.HasAccused(characterID) {
		return false
	}
	gs.Accusations = append(gs.Accusations, characterID)
	return true
}

// HasAccused reports whether an accusation exists. An empty characterID
// asks whether any accusation has been made.
func (gs *GameState) HasAccused(characterID string) bool {
	if characterID == "" {
		return len(gs.Accusations) > 0
	}
	for _, a := range gs.Accusations {
		if a == characterID {
			return true
		}
	}
	return false
}

// ShowEvidence records that a clue was presented to a character.
func (gs *GameState) ShowEvidence(characterID, clueID string) {
	if characterID == "" || clueID == "" {
		return
	}
	if gs.EvidenceShown == nil {
		gs.EvidenceShown = make(map[string][]string)
	}
	for _, c := range gs.EvidenceShown[characterID] {
		if c == clueID {
			return
		}
	}
	gs.EvidenceShown[characterID] = append(gs.EvidenceShown[characterID], clueID)
}

// EvidenceShownTo reports whether any evidence has been presented to the
// character. An empty characterID asks whether evidence was shown to anyone.
func (gs *GameState) EvidenceShownTo(characterID string) bool {
	if characterID == "" {
		return len(gs.EvidenceShown) > 0
	}
	return len(gs.EvidenceShown[characterID]) > 0
}
