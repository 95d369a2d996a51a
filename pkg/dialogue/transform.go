package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maplewoodlane/engine/pkg/trust"
)

var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// substitute replaces {token} markers in display text with game-state
// values. Unmatched tokens are left verbatim so content typos surface in
// playtesting instead of vanishing.
func (m *Manager) substitute(text string, ch *trust.Character) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		switch name {
		case "name":
			return ch.Name
		case "trust":
			return strconv.Itoa(m.trust.Level(ch.ID))
		case "trust_tier":
			return string(m.trust.TierOf(ch.ID))
		case "time_of_day":
			return m.view.TimeOfDay()
		case "day":
			return strconv.Itoa(m.clock.Day())
		}
		if v := m.gs.Var(name); v != "" {
			return v
		}
		return match
	})
}

// Trait-driven cosmetic transforms, applied after substitution and before
// display.

var knowledgeHedges = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bI know\b`), "I might know"},
	{regexp.MustCompile(`(?i)\bI saw\b`), "I think I saw"},
	{regexp.MustCompile(`(?i)\bI heard\b`), "I may have heard"},
	{regexp.MustCompile(`(?i)\bI remember\b`), "I vaguely remember"},
}

var coincidencePattern = regexp.MustCompile(`(?i)\bcoincidences?\b`)

// secretiveTrustThreshold is the trust level below which secretive
// characters hedge what they know.
const secretiveTrustThreshold = 50

func (m *Manager) transform(text string, ch *trust.Character) string {
	if ch.HasTrait("anxious") && m.view.TimeOfDay() == "night" {
		text = anxiousEllipses(text)
	}
	if ch.HasTrait("secretive") && m.trust.Level(ch.ID) < secretiveTrustThreshold {
		for _, h := range knowledgeHedges {
			text = h.pattern.ReplaceAllStringFunc(text, func(match string) string {
				return preserveCase(match, h.replacement)
			})
		}
	}
	if ch.HasTrait("superstitious") {
		text = coincidencePattern.ReplaceAllStringFunc(text, func(match string) string {
			repl := "sign"
			if strings.HasSuffix(strings.ToLower(match), "s") {
				repl = "signs"
			}
			return preserveCase(match, repl)
		})
	}
	return text
}

// anxiousEllipses stretches sentence breaks into trailing ellipses.
func anxiousEllipses(text string) string {
	text = strings.ReplaceAll(text, ". ", "... ")
	if strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "...") {
		text = text[:len(text)-1] + "..."
	}
	return text
}

var titleCaser = cases.Title(language.English)

// preserveCase applies the case pattern of the original word to the
// replacement: all-upper, all-lower or title case.
func preserveCase(original, replacement string) string {
	switch {
	case original == strings.ToUpper(original):
		return strings.ToUpper(replacement)
	case original == strings.ToLower(original):
		return strings.ToLower(replacement)
	case original == titleCaser.String(strings.ToLower(original)):
		return titleCaser.String(replacement)
	default:
		return replacement
	}
}
