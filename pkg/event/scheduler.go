package event

import (
	"log/slog"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/effects"
)

// IdleNodeSetter receives routine-driven idle dialogue updates. The
// dialogue manager implements it.
type IdleNodeSetter interface {
	SetIdleNode(characterID, nodeID string)
}

// Triggered reports one event firing, shaped for UI cues.
type Triggered struct {
	EventID string          `json:"event_id"`
	Result  *effects.Result `json:"result,omitempty"`
}

// Scheduler owns world-event lifecycle and NPC routine lookups. It listens
// to the clock: every tick evaluates pending triggers and ongoing
// durations; day changes reset daily events; bucket changes push routines.
type Scheduler struct {
	events    []*WorldEvent
	schedules map[string]map[string]ScheduleEntry // character id -> bucket -> entry

	clk        *clock.Clock
	view       conditions.GameStateView
	applicator *effects.Applicator
	dialogue   IdleNodeSetter
	// position reports the player's current location for proximity gates.
	position func() string
	// onRoutineChange is an opaque collaborator cue for sprite positioning.
	onRoutineChange func(characterID string, entry ScheduleEntry)
	logger          *slog.Logger

	fired []Triggered
}

// NewScheduler copies the event definitions (lifecycle state is per
// session, definitions are shared content) and registers clock listeners.
func NewScheduler(defs []*WorldEvent, schedules map[string]map[string]ScheduleEntry,
	clk *clock.Clock, view conditions.GameStateView, applicator *effects.Applicator,
	logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		schedules:  schedules,
		clk:        clk,
		view:       view,
		applicator: applicator,
		logger:     logger,
	}
	for _, def := range defs {
		ev := *def
		ev.status = StatusPending
		s.events = append(s.events, &ev)
	}
	clk.OnTick(s.tick)
	clk.OnDayChange(s.onDayChange)
	clk.OnTimeOfDayChange(s.onBucketChange)
	return s
}

// WithDialogue sets the idle-node sink for routine pushes.
// Returns the Scheduler for method chaining.
func (s *Scheduler) WithDialogue(d IdleNodeSetter) *Scheduler {
	s.dialogue = d
	return s
}

// WithPosition sets the player-position source for location gates.
func (s *Scheduler) WithPosition(fn func() string) *Scheduler {
	s.position = fn
	return s
}

// WithRoutineObserver sets a fire-and-forget cue for routine changes.
func (s *Scheduler) WithRoutineObserver(fn func(characterID string, entry ScheduleEntry)) *Scheduler {
	s.onRoutineChange = fn
	return s
}

// TakeTriggered drains the events fired since the last call.
func (s *Scheduler) TakeTriggered() []Triggered {
	out := s.fired
	s.fired = nil
	return out
}

// Event returns a scheduled event by id.
func (s *Scheduler) Event(id string) (*WorldEvent, bool) {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return nil, false
}

// CurrentSchedule is a pure routine-table lookup for the current bucket.
func (s *Scheduler) CurrentSchedule(characterID string) (ScheduleEntry, bool) {
	entry, ok := s.schedules[characterID][string(s.clk.TimeOfDay())]
	return entry, ok
}

func (s *Scheduler) tick(minute, day int) {
	for _, ev := range s.events {
		s.advanceLifecycle(ev, minute, day)
		if s.shouldTrigger(ev, minute, day) {
			s.trigger(ev, minute, day)
		}
	}
}

// advanceLifecycle moves triggered events with a duration through
// ongoing and ended. An event still ongoing into the next day compares
// against current time plus a day per elapsed day boundary.
func (s *Scheduler) advanceLifecycle(ev *WorldEvent, minute, day int) {
	if ev.Duration <= 0 {
		return
	}
	if ev.status != StatusTriggered && ev.status != StatusOngoing {
		return
	}
	effective := minute + clock.MinutesPerDay*(day-ev.startedDay)
	if effective >= ev.startedMinute+ev.Duration {
		ev.status = StatusEnded
		if s.logger != nil {
			s.logger.Debug("Event ended", "event", ev.ID)
		}
		return
	}
	ev.status = StatusOngoing
}

func (s *Scheduler) shouldTrigger(ev *WorldEvent, minute, day int) bool {
	if ev.removed || ev.status == StatusOngoing {
		return false
	}
	// Repeating events refire on later multiples; everything else latches.
	if ev.status == StatusTriggered && !ev.IsRepeating {
		return false
	}
	if ev.status == StatusEnded && !ev.DailyReset && !ev.IsRepeating {
		return false
	}
	if ev.DailyReset && ev.triggeredToday {
		return false
	}
	if ev.Day != nil && *ev.Day != day {
		return false
	}
	if ev.IsRepeating {
		if ev.StartTime <= 0 || minute%ev.StartTime != 0 {
			return false
		}
	} else if minute != ev.StartTime {
		return false
	}
	if ev.Location != "" && s.position != nil && s.position() != ev.Location {
		return false
	}
	return conditions.Evaluate(ev.Requirements, s.view)
}

func (s *Scheduler) trigger(ev *WorldEvent, minute, day int) {
	ev.status = StatusTriggered
	ev.triggeredToday = true
	ev.startedMinute = minute
	ev.startedDay = day
	if ev.OneTime {
		// One-time events leave the pending pool for good.
		ev.removed = true
	}

	t := Triggered{EventID: ev.ID}
	if !ev.Effects.IsEmpty() {
		t.Result = s.applicator.Apply(ev.Effects, "", "event:"+ev.ID)
	}
	if ev.OnTrigger != nil {
		ev.OnTrigger()
	}
	s.fired = append(s.fired, t)

	if s.logger != nil {
		s.logger.Info("Event triggered", "event", ev.ID, "minute", minute, "day", day)
	}
}

// ForceEvent triggers an event by id immediately, bypassing time and
// condition gates. Used by dialogue effects; implements effects.EventSink.
func (s *Scheduler) ForceEvent(id string) {
	ev, ok := s.Event(id)
	if !ok {
		if s.logger != nil {
			s.logger.Warn("Forced trigger for unknown event", "event", id)
		}
		return
	}
	if ev.removed || ev.status == StatusTriggered || ev.status == StatusOngoing {
		return
	}
	s.trigger(ev, s.clk.Minute(), s.clk.Day())
}

func (s *Scheduler) onDayChange(day int) {
	for _, ev := range s.events {
		if !ev.DailyReset {
			continue
		}
		ev.triggeredToday = false
		if ev.status == StatusTriggered || ev.status == StatusEnded {
			ev.status = StatusPending
		}
	}
}

func (s *Scheduler) onBucketChange(bucket clock.TimeOfDay) {
	for characterID, buckets := range s.schedules {
		entry, ok := buckets[string(bucket)]
		if !ok {
			continue
		}
		if s.dialogue != nil {
			s.dialogue.SetIdleNode(characterID, entry.DialogueNode)
		}
		if s.onRoutineChange != nil {
			s.onRoutineChange(characterID, entry)
		}
	}
}

// Snapshot captures lifecycle state for persistence. Definitions and
// trigger callbacks are static content and omitted.
func (s *Scheduler) Snapshot() State {
	st := State{}
	for _, ev := range s.events {
		st.Events = append(st.Events, EventState{
			ID:             ev.ID,
			Status:         ev.Status(),
			TriggeredToday: ev.triggeredToday,
			StartedMinute:  ev.startedMinute,
			StartedDay:     ev.startedDay,
			Removed:        ev.removed,
		})
	}
	return st
}

// Restore re-attaches saved lifecycle state by event id. Events present in
// the snapshot but missing from content are ignored.
func (s *Scheduler) Restore(st State) {
	byID := make(map[string]EventState, len(st.Events))
	for _, es := range st.Events {
		byID[es.ID] = es
	}
	for _, ev := range s.events {
		es, ok := byID[ev.ID]
		if !ok {
			continue
		}
		ev.status = es.Status
		ev.triggeredToday = es.TriggeredToday
		ev.startedMinute = es.StartedMinute
		ev.startedDay = es.StartedDay
		ev.removed = es.Removed
	}
}
