// Package dialogue implements the conversation engine: condition-gated node
// selection, choice filtering, effect application, text substitution,
// trait-driven transforms and global triggers.
package dialogue

import (
	"strings"

	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
)

// ExitNode is the sentinel choice target that ends a conversation.
const ExitNode = "exit"

// Node is a single dialogue beat. Static content, never mutated at runtime.
type Node struct {
	ID        string `json:"id"`
	Character string `json:"character,omitempty"` // owner, filled at load
	// Lines are concatenated for display.
	Lines []string `json:"lines"`
	Mood  string   `json:"mood,omitempty"`
	// Priority breaks ties between conditionally-eligible nodes; higher
	// wins, equal priorities keep declaration order.
	Priority   int                      `json:"priority,omitempty"`
	Conditions *conditions.Requirements `json:"conditions,omitempty"`
	// Effects are auto-applied once each time the node is displayed.
	Effects *effects.Effects `json:"effects,omitempty"`
	Choices []Choice         `json:"choices,omitempty"`
}

// Text joins the node's lines for display.
func (n *Node) Text() string {
	return strings.Join(n.Lines, " ")
}

// Choice is a player response option on a node. The shorthand requirement
// fields and the general Requirements set are all conjoined; ineligible
// choices are hidden entirely, never grayed out.
type Choice struct {
	Text string `json:"text"`

	// Shorthand requirements. TrustMin applies to the node's owner.
	TrustMin      *int   `json:"trust_min,omitempty"`
	RequiresClue  string `json:"requires_clue,omitempty"`
	RequiresPhoto string `json:"requires_photo,omitempty"`

	Requirements *conditions.Requirements `json:"requirements,omitempty"`

	// Next is the follow-up node id, or ExitNode (or empty) to end.
	Next string `json:"next,omitempty"`

	Effects *effects.Effects `json:"effects,omitempty"`
}

// Eligible reports whether the choice should be offered, given the node's
// owning character and current state.
func (c *Choice) Eligible(owner string, view conditions.GameStateView) bool {
	if c.TrustMin != nil && view.TrustLevel(owner) < *c.TrustMin {
		return false
	}
	if c.RequiresClue != "" && !view.HasClue(c.RequiresClue) {
		return false
	}
	if c.RequiresPhoto != "" && !view.HasPhotoType(c.RequiresPhoto) {
		return false
	}
	return conditions.Evaluate(c.Requirements, view)
}

// Library is the loaded dialogue content: per-character node lists in
// declaration order, with id lookup. Node ids are unique per character.
type Library struct {
	nodes map[string][]*Node
	byID  map[string]map[string]*Node
}

// NewLibrary indexes per-character node lists. The owner field of each node
// is filled from its map key.
func NewLibrary(nodes map[string][]*Node) *Library {
	l := &Library{
		nodes: nodes,
		byID:  make(map[string]map[string]*Node, len(nodes)),
	}
	for characterID, list := range nodes {
		idx := make(map[string]*Node, len(list))
		for _, n := range list {
			n.Character = characterID
			idx[n.ID] = n
		}
		l.byID[characterID] = idx
	}
	return l
}

// CharacterNodes returns a character's nodes in declaration order.
func (l *Library) CharacterNodes(characterID string) []*Node {
	return l.nodes[characterID]
}

// Node looks up a node by owner and id.
func (l *Library) Node(characterID, nodeID string) (*Node, bool) {
	n, ok := l.byID[characterID][nodeID]
	return n, ok
}
