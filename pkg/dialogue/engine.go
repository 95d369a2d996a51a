package dialogue

import (
	"fmt"
	"log/slog"

	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
	"github.com/maplewoodlane/engine/pkg/state"
	"github.com/maplewoodlane/engine/pkg/trust"
)

// Prompt is the display payload handed to rendering collaborators: the
// resolved node text with its eligible choices.
type Prompt struct {
	CharacterID   string          `json:"character_id"`
	CharacterName string          `json:"character_name"`
	NodeID        string          `json:"node_id"`
	Mood          string          `json:"mood,omitempty"`
	Text          string          `json:"text"`
	Choices       []PromptChoice  `json:"choices"`
	Result        *effects.Result `json:"result,omitempty"`
}

// PromptChoice is one selectable option, addressed by index.
type PromptChoice struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Manager runs conversations. It is a flat state machine: Idle, or Showing
// exactly one node; a selection moves directly to the next node or back to
// Idle. Closing a conversation at any point is legal and discards only
// conversation state, never already-applied effects.
type Manager struct {
	library    *Library
	trust      *trust.Model
	clock      trust.TimeSource
	view       conditions.GameStateView
	applicator *effects.Applicator
	gs         *state.GameState
	logger     *slog.Logger

	triggers  []*GlobalTrigger
	idleNodes map[string]string // character id -> schedule-pushed node id

	current          *Node
	currentCharacter string
	visible          []Choice
	previousNode     string
	history          []string
}

// NewManager builds the dialogue engine. The view is the composed game
// state view used for all condition evaluation.
func NewManager(library *Library, trustModel *trust.Model, clock trust.TimeSource,
	view conditions.GameStateView, applicator *effects.Applicator,
	gs *state.GameState, logger *slog.Logger) *Manager {
	return &Manager{
		library:    library,
		trust:      trustModel,
		clock:      clock,
		view:       view,
		applicator: applicator,
		gs:         gs,
		logger:     logger,
		idleNodes:  make(map[string]string),
	}
}

// SetTriggers installs the global trigger list from content.
func (m *Manager) SetTriggers(triggers []*GlobalTrigger) {
	m.triggers = triggers
}

// SetIdleNode records the node a character offers when approached idly,
// pushed by the scheduler on routine changes.
func (m *Manager) SetIdleNode(characterID, nodeID string) {
	if nodeID == "" {
		delete(m.idleNodes, characterID)
		return
	}
	m.idleNodes[characterID] = nodeID
}

// Active reports whether a conversation is in progress.
func (m *Manager) Active() bool { return m.current != nil }

// PreviousNode returns the id of the most recently displayed node, for the
// prior-node condition clause.
func (m *Manager) PreviousNode() string { return m.previousNode }

// StartDialogue opens a conversation with a character. With an empty nodeID
// the node is chosen by FindAppropriateDialogue. Missing characters or
// nodes are benign: logged, nil prompt, no effects applied.
func (m *Manager) StartDialogue(characterID, nodeID string) *Prompt {
	ch, ok := m.trust.Character(characterID)
	if !ok {
		m.logger.Warn("Dialogue with unknown character", "character", characterID)
		return nil
	}

	var node *Node
	if nodeID == "" {
		node = m.FindAppropriateDialogue(characterID)
	} else {
		node, ok = m.library.Node(characterID, nodeID)
		if !ok {
			m.logger.Warn("Unknown dialogue node", "character", characterID, "node", nodeID)
			return nil
		}
	}
	if node == nil {
		m.logger.Warn("No dialogue available", "character", characterID)
		return nil
	}

	return m.display(ch, node, true)
}

// FindAppropriateDialogue selects a node for a character:
//
//  1. among nodes with conditions that evaluate true, the highest priority
//     (declaration order breaks ties)
//  2. the scheduler-pushed idle node, if set and eligible
//  3. the first node with no conditions
//  4. the character's first node
func (m *Manager) FindAppropriateDialogue(characterID string) *Node {
	nodes := m.library.CharacterNodes(characterID)
	if len(nodes) == 0 {
		return nil
	}

	var best *Node
	for _, n := range nodes {
		if n.Conditions.IsEmpty() {
			continue
		}
		if !conditions.Evaluate(n.Conditions, m.view) {
			continue
		}
		if best == nil || n.Priority > best.Priority {
			best = n
		}
	}
	if best != nil {
		return best
	}

	if idleID, ok := m.idleNodes[characterID]; ok {
		if n, ok := m.library.Node(characterID, idleID); ok {
			if conditions.Evaluate(n.Conditions, m.view) {
				return n
			}
		}
	}

	for _, n := range nodes {
		if n.Conditions.IsEmpty() {
			return n
		}
	}
	return nodes[0]
}

// display shows a node: applies its auto-effects (when applyEffects is
// set), filters choices, substitutes and transforms text. Condition
// evaluation happens before previousNode advances, so prior-node clauses
// see the node shown before this one.
func (m *Manager) display(ch *trust.Character, node *Node, applyEffects bool) *Prompt {
	prompt := &Prompt{
		CharacterID:   ch.ID,
		CharacterName: ch.Name,
		NodeID:        node.ID,
		Mood:          node.Mood,
	}

	if applyEffects && !node.Effects.IsEmpty() {
		prompt.Result = m.applicator.Apply(node.Effects, ch.ID, "dialogue:"+node.ID)
	}

	m.visible = m.visible[:0]
	for _, c := range node.Choices {
		if c.Eligible(ch.ID, m.view) {
			m.visible = append(m.visible, c)
		}
	}
	if len(m.visible) == 0 {
		// Implicit end-conversation choice when everything is gated away.
		m.visible = append(m.visible, Choice{Text: "(End conversation)", Next: ExitNode})
	}

	text := m.substitute(node.Text(), ch)
	prompt.Text = m.transform(text, ch)
	for i, c := range m.visible {
		prompt.Choices = append(prompt.Choices, PromptChoice{
			Index: i,
			Text:  m.substitute(c.Text, ch),
		})
	}

	m.current = node
	m.currentCharacter = ch.ID
	m.previousNode = node.ID
	m.history = append(m.history, node.ID)
	return prompt
}

// SelectChoice applies the effects of a displayed choice, then either ends
// the conversation or moves to the next node. Effects are permanent once
// the choice is selected.
func (m *Manager) SelectChoice(index int) (*Prompt, error) {
	if m.current == nil {
		return nil, fmt.Errorf("no active dialogue")
	}
	if index < 0 || index >= len(m.visible) {
		return nil, fmt.Errorf("choice index %d out of range", index)
	}
	choice := m.visible[index]

	if !choice.Effects.IsEmpty() {
		m.applicator.Apply(choice.Effects, m.currentCharacter, "choice:"+m.current.ID)
	}

	if choice.Next == "" || choice.Next == ExitNode {
		return m.EndDialogue(), nil
	}

	ch, _ := m.trust.Character(m.currentCharacter)
	next, ok := m.library.Node(m.currentCharacter, choice.Next)
	if !ok {
		m.logger.Warn("Choice targets unknown node",
			"character", m.currentCharacter, "node", choice.Next)
		return m.EndDialogue(), nil
	}
	return m.display(ch, next, true), nil
}

// EndDialogue closes any active conversation and evaluates global
// triggers. A matching trigger may force-start a new dialogue; the first
// force-start wins, though every matching trigger's effects apply. The
// returned prompt is non-nil only when a trigger opened a new conversation.
func (m *Manager) EndDialogue() *Prompt {
	m.current = nil
	m.currentCharacter = ""
	m.visible = nil

	var forced *Prompt
	for _, tr := range m.triggers {
		if tr.fired && tr.OneTime {
			continue
		}
		if !conditions.Evaluate(tr.When, m.view) {
			continue
		}
		tr.fired = true
		if !tr.Effects.IsEmpty() {
			m.applicator.Apply(tr.Effects, tr.StartCharacter, "trigger:"+tr.ID)
		}
		if forced == nil && tr.StartNode != "" {
			forced = m.StartDialogue(tr.StartCharacter, tr.StartNode)
		}
	}
	return forced
}

// State is the serializable conversation state. Content (nodes, triggers)
// is static and not persisted; fired one-time triggers are recorded by id.
type State struct {
	CurrentCharacter string            `json:"current_character,omitempty"`
	CurrentNode      string            `json:"current_node,omitempty"`
	PreviousNode     string            `json:"previous_node,omitempty"`
	History          []string          `json:"history,omitempty"`
	IdleNodes        map[string]string `json:"idle_nodes,omitempty"`
	FiredTriggers    []string          `json:"fired_triggers,omitempty"`
}

// Snapshot captures conversation state for persistence.
func (m *Manager) Snapshot() State {
	s := State{
		CurrentCharacter: m.currentCharacter,
		PreviousNode:     m.previousNode,
		History:          m.history,
		IdleNodes:        m.idleNodes,
	}
	if m.current != nil {
		s.CurrentNode = m.current.ID
	}
	for _, tr := range m.triggers {
		if tr.fired {
			s.FiredTriggers = append(s.FiredTriggers, tr.ID)
		}
	}
	return s
}

// Restore re-attaches saved conversation state to the static content. The
// current node, if any, is re-displayed via Resume without re-applying its
// effects.
func (m *Manager) Restore(s State) {
	m.previousNode = s.PreviousNode
	m.history = s.History
	if s.IdleNodes != nil {
		m.idleNodes = s.IdleNodes
	}
	fired := make(map[string]bool, len(s.FiredTriggers))
	for _, id := range s.FiredTriggers {
		fired[id] = true
	}
	for _, tr := range m.triggers {
		tr.fired = fired[tr.ID]
	}

	m.current = nil
	m.currentCharacter = ""
	if s.CurrentCharacter != "" && s.CurrentNode != "" {
		if n, ok := m.library.Node(s.CurrentCharacter, s.CurrentNode); ok {
			m.current = n
			m.currentCharacter = s.CurrentCharacter
		}
	}
}

// Resume rebuilds the prompt for a restored in-progress conversation
// without re-applying node effects. Returns nil when idle.
func (m *Manager) Resume() *Prompt {
	if m.current == nil {
		return nil
	}
	ch, ok := m.trust.Character(m.currentCharacter)
	if !ok {
		return nil
	}
	// Drop the history entry display would duplicate.
	prompt := m.display(ch, m.current, false)
	if n := len(m.history); n > 0 {
		m.history = m.history[:n-1]
	}
	return prompt
}
