package ending

import "strings"

// supernaturalTerms are the phrases counted toward a supernatural reading
// of the player's theory. Multi-word phrases are matched as substrings.
var supernaturalTerms = []string{
	"ghost",
	"spirit",
	"haunted",
	"haunting",
	"supernatural",
	"paranormal",
	"shadow figure",
	"apparition",
	"seance",
	"curse",
	"possessed",
	"demon",
	"occult",
	"ritual",
	"vanished into thin air",
}

// contradictionMarkers flag a theory that argues against itself.
var contradictionMarkers = []string{
	"but that can't be",
	"can't be both",
	"doesn't add up",
	"makes no sense",
	"contradicts",
	"which is impossible",
}

const supernaturalFocusThreshold = 3

// Signals are the boolean reads derived from the free-text theory.
type Signals struct {
	// SupernaturalFocus is set when supernatural terms appear at least
	// three times across the theory, counting repeats.
	SupernaturalFocus bool `json:"supernatural_focus"`
	// Contradictory is set when any contradiction marker appears.
	Contradictory bool `json:"contradictory"`
	// FollowedRedHerrings is set when the theory leans on any of the
	// resolver's known red-herring phrases.
	FollowedRedHerrings bool `json:"followed_red_herrings"`

	SupernaturalMentions int `json:"supernatural_mentions"`
}

// AnalyzeTheory derives signals from the player's final theory text.
// Matching is case-insensitive. Red-herring phrases come from content.
func AnalyzeTheory(theory string, redHerrings []string) Signals {
	lower := strings.ToLower(theory)
	var sig Signals
	for _, term := range supernaturalTerms {
		sig.SupernaturalMentions += strings.Count(lower, term)
	}
	sig.SupernaturalFocus = sig.SupernaturalMentions >= supernaturalFocusThreshold
	for _, marker := range contradictionMarkers {
		if strings.Contains(lower, marker) {
			sig.Contradictory = true
			break
		}
	}
	for _, phrase := range redHerrings {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			sig.FollowedRedHerrings = true
			break
		}
	}
	return sig
}
