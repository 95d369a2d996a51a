// Package photo implements the photography capability: a base camera that
// scores captures and a decorator that turns good captures into clues.
// The capability is composed at construction, never patched in afterward.
package photo

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/state"
)

// Photo types recognized by the camera. Endings gate on these.
const (
	TypePortrait = "portrait"
	TypeLocation = "location"
	TypeEvidence = "evidence"
	TypeAnomaly  = "anomaly"
)

var validTypes = map[string]bool{
	TypePortrait: true,
	TypeLocation: true,
	TypeEvidence: true,
	TypeAnomaly:  true,
}

// Camera is the photo capability. Implementations record the capture into
// game state and return it.
type Camera interface {
	Capture(photoType, subject, caption string) (state.Photo, error)
}

// BaseCamera rolls a quality score for each capture and stores it. Daylight
// favors portraits and locations; anomalies show up better at night.
type BaseCamera struct {
	gs     *state.GameState
	clk    *clock.Clock
	rng    *rand.Rand
	logger *slog.Logger
}

// NewBaseCamera builds the base capability. rng may be nil, in which case
// a time-seeded source is used; tests inject a seeded one.
func NewBaseCamera(gs *state.GameState, clk *clock.Clock, rng *rand.Rand, logger *slog.Logger) *BaseCamera {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BaseCamera{gs: gs, clk: clk, rng: rng, logger: logger}
}

// Capture takes a photo of the given subject. Unknown photo types error
// without mutating state.
func (c *BaseCamera) Capture(photoType, subject, caption string) (state.Photo, error) {
	if !validTypes[photoType] {
		return state.Photo{}, fmt.Errorf("unknown photo type %q", photoType)
	}
	if subject == "" {
		return state.Photo{}, fmt.Errorf("photo subject is required")
	}

	quality := 40 + c.rng.Intn(41)
	bucket := c.clk.TimeOfDay()
	switch photoType {
	case TypePortrait, TypeLocation:
		if bucket == clock.Morning || bucket == clock.Afternoon {
			quality += 15
		}
	case TypeAnomaly:
		if bucket == clock.Night {
			quality += 15
		} else {
			quality -= 20
		}
	}
	if quality > 100 {
		quality = 100
	}
	if quality < 1 {
		quality = 1
	}

	p := state.Photo{
		ID:         uuid.New(),
		Type:       photoType,
		Subject:    subject,
		Caption:    caption,
		Quality:    quality,
		GameMinute: c.clk.Minute(),
		GameDay:    c.clk.Day(),
		TakenAt:    time.Now(),
	}
	c.gs.AddPhoto(p)

	if c.logger != nil {
		c.logger.Debug("Photo captured",
			"type", photoType, "subject", subject, "quality", quality)
	}
	return p, nil
}

// AnalysisRule unlocks a clue when a capture of the subject meets the
// quality bar.
type AnalysisRule struct {
	Subject    string `json:"subject"`
	MinQuality int    `json:"min_quality"`
	Clue       string `json:"clue"`
}

// AnalyzingCamera decorates a Camera with clue extraction. Composition
// order is fixed at construction; the inner camera is never modified.
type AnalyzingCamera struct {
	inner  Camera
	gs     *state.GameState
	rules  []AnalysisRule
	onClue func(clueID string)
	logger *slog.Logger
}

// NewAnalyzingCamera wraps a camera with analysis rules. onClue is an
// optional fire-and-forget notification for newly unlocked clues.
func NewAnalyzingCamera(inner Camera, gs *state.GameState, rules []AnalysisRule,
	onClue func(clueID string), logger *slog.Logger) *AnalyzingCamera {
	return &AnalyzingCamera{inner: inner, gs: gs, rules: rules, onClue: onClue, logger: logger}
}

// Capture delegates to the inner camera, then runs analysis rules against
// the result. Clue unlocks are idempotent.
func (c *AnalyzingCamera) Capture(photoType, subject, caption string) (state.Photo, error) {
	p, err := c.inner.Capture(photoType, subject, caption)
	if err != nil {
		return p, err
	}
	for _, rule := range c.rules {
		if rule.Subject != p.Subject || p.Quality < rule.MinQuality {
			continue
		}
		if c.gs.AddClue(rule.Clue) {
			if c.logger != nil {
				c.logger.Info("Photo analysis unlocked clue",
					"clue", rule.Clue, "subject", p.Subject, "quality", p.Quality)
			}
			if c.onClue != nil {
				c.onClue(rule.Clue)
			}
		}
	}
	return p, nil
}
