// Package event implements time-driven world events and NPC routines.
package event

import (
	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
)

// Status is a world event's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusTriggered Status = "triggered"
	StatusOngoing   Status = "ongoing"
	StatusEnded     Status = "ended"
)

// WorldEvent is a time/condition-gated occurrence independent of dialogue.
// Definitions are static content; lifecycle fields are runtime state the
// scheduler owns.
type WorldEvent struct {
	ID string `json:"id"`

	// StartTime is the trigger minute-of-day. Repeating events fire on
	// every multiple of StartTime instead of an exact match.
	StartTime   int  `json:"start_time"`
	Day         *int `json:"day,omitempty"` // absolute day gate
	IsRepeating bool `json:"is_repeating,omitempty"`
	// DailyReset clears the triggered flag on day change so the event can
	// refire on subsequent days.
	DailyReset bool `json:"daily_reset,omitempty"`
	// Duration keeps the event ongoing for this many minutes after
	// triggering, with day-wraparound arithmetic.
	Duration int  `json:"duration,omitempty"`
	OneTime  bool `json:"one_time,omitempty"`

	// Location gates the trigger on player proximity.
	Location     string                   `json:"location,omitempty"`
	Requirements *conditions.Requirements `json:"requirements,omitempty"`

	Effects *effects.Effects `json:"effects,omitempty"`

	// OnTrigger is an opaque collaborator cue (visual/audio spawn). Never
	// persisted; re-attached by id against static definitions on load.
	OnTrigger func() `json:"-"`

	status         Status
	triggeredToday bool
	startedMinute  int
	startedDay     int
	removed        bool
}

// Status returns the event's lifecycle state.
func (e *WorldEvent) Status() Status {
	if e.status == "" {
		return StatusPending
	}
	return e.status
}

// ScheduleEntry is one cell of an NPC routine table: where a character is
// and what they are doing during a time-of-day bucket.
type ScheduleEntry struct {
	Location string `json:"location"`
	Activity string `json:"activity"`
	// DialogueNode is pushed to the dialogue engine as the character's
	// idle-approach node for the bucket.
	DialogueNode string `json:"dialogue_node,omitempty"`
}

// EventState is the persisted lifecycle of one event. Trigger callbacks and
// static definition fields are not serialized.
type EventState struct {
	ID             string `json:"id"`
	Status         Status `json:"status"`
	TriggeredToday bool   `json:"triggered_today,omitempty"`
	StartedMinute  int    `json:"started_minute,omitempty"`
	StartedDay     int    `json:"started_day,omitempty"`
	Removed        bool   `json:"removed,omitempty"`
}

// State is the serializable scheduler state.
type State struct {
	Events []EventState `json:"scheduled_events,omitempty"`
}
