package dialogue

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
)

// Legacy flat dialogue format: characters[id][nodeId] = {text, trust, clue,
// options: [...]}. Converted one-shot to the canonical node form:
//
//   - a trust number becomes both a trust_min condition and a trust effect
//   - a free-text clue becomes an unlock_clue effect with a slugified
//     stable id; the original text is preserved as display text
type legacyNode struct {
	Text    string         `json:"text"`
	Trust   int            `json:"trust,omitempty"`
	Clue    string         `json:"clue,omitempty"`
	Options []legacyOption `json:"options,omitempty"`
}

type legacyOption struct {
	Text string `json:"text"`
	Next string `json:"next,omitempty"`
}

// MigrateLegacy converts legacy flat content to canonical per-character
// node lists. The second return value maps generated clue ids to their
// original display text. Node lists are ordered with "start" first, then
// alphabetically, since the flat format has no declaration order.
func MigrateLegacy(data []byte) (map[string][]*Node, map[string]string, error) {
	var legacy map[string]map[string]legacyNode
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, nil, fmt.Errorf("failed to parse legacy dialogue content: %w", err)
	}

	nodes := make(map[string][]*Node, len(legacy))
	clueText := make(map[string]string)

	for characterID, flat := range legacy {
		ids := make([]string, 0, len(flat))
		for id := range flat {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if ids[i] == "start" {
				return true
			}
			if ids[j] == "start" {
				return false
			}
			return ids[i] < ids[j]
		})

		for _, id := range ids {
			old := flat[id]
			n := &Node{
				ID:        id,
				Character: characterID,
				Lines:     []string{old.Text},
			}
			if old.Trust != 0 {
				min := old.Trust
				n.Conditions = &conditions.Requirements{TrustOf: characterID, TrustMin: &min}
				n.Effects = &effects.Effects{TrustDelta: old.Trust}
			}
			if old.Clue != "" {
				clueID := Slugify(old.Clue)
				clueText[clueID] = old.Clue
				if n.Effects == nil {
					n.Effects = &effects.Effects{}
				}
				n.Effects.UnlockClue = clueID
			}
			for _, opt := range old.Options {
				next := opt.Next
				if next == "" {
					next = ExitNode
				}
				n.Choices = append(n.Choices, Choice{Text: opt.Text, Next: next})
			}
			nodes[characterID] = append(nodes[characterID], n)
		}
	}

	return nodes, clueText, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a stable clue id from display text.
func Slugify(text string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(text), "_")
	return strings.Trim(s, "_")
}
