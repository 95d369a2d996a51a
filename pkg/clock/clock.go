package clock

import "fmt"

// TimeOfDay is the named bucket the current minute falls into.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// MinutesPerDay is the length of an in-world day.
const MinutesPerDay = 1440

// BucketFor returns the time-of-day bucket for a minute-of-day value.
// Buckets: morning 360-719, afternoon 720-1019, evening 1020-1199,
// night 1200-359 (wrapping past midnight).
func BucketFor(minute int) TimeOfDay {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	switch {
	case minute >= 360 && minute < 720:
		return Morning
	case minute >= 720 && minute < 1020:
		return Afternoon
	case minute >= 1020 && minute < 1200:
		return Evening
	default:
		return Night
	}
}

// Clock tracks elapsed in-world minutes and derives the day count and
// time-of-day bucket. Listeners are edge-triggered: a time-of-day listener
// fires only when the bucket actually changes, never on every tick.
type Clock struct {
	minute int // minute of day, [0, MinutesPerDay)
	day    int

	tickListeners   []func(minute, day int)
	bucketListeners []func(TimeOfDay)
	dayListeners    []func(day int)
}

// New returns a clock at minute 0 of day 1.
func New() *Clock {
	return &Clock{day: 1}
}

// OnTick registers a listener invoked once per Advance call, after any
// day-change and time-of-day notifications.
func (c *Clock) OnTick(fn func(minute, day int)) {
	c.tickListeners = append(c.tickListeners, fn)
}

// OnTimeOfDayChange registers an edge-triggered bucket listener.
func (c *Clock) OnTimeOfDayChange(fn func(TimeOfDay)) {
	c.bucketListeners = append(c.bucketListeners, fn)
}

// OnDayChange registers a listener fired when the minute counter wraps.
func (c *Clock) OnDayChange(fn func(day int)) {
	c.dayListeners = append(c.dayListeners, fn)
}

// Advance adds minutes to the clock, wrapping the day counter past
// MinutesPerDay and firing day-change, time-of-day-change and tick
// notifications as appropriate.
func (c *Clock) Advance(minutes int) {
	if minutes <= 0 {
		return
	}
	prevBucket := BucketFor(c.minute)

	c.minute += minutes
	for c.minute >= MinutesPerDay {
		c.minute -= MinutesPerDay
		c.day++
		for _, fn := range c.dayListeners {
			fn(c.day)
		}
	}

	if b := BucketFor(c.minute); b != prevBucket {
		for _, fn := range c.bucketListeners {
			fn(b)
		}
	}

	for _, fn := range c.tickListeners {
		fn(c.minute, c.day)
	}
}

// SetTime jumps the clock to an hour and minute of the current day.
// Intended for debugging and tests; it fires bucket notifications if the
// jump crosses a bucket boundary, but never day notifications.
func (c *Clock) SetTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %d:%02d", hour, minute)
	}
	prevBucket := BucketFor(c.minute)
	c.minute = hour*60 + minute
	if b := BucketFor(c.minute); b != prevBucket {
		for _, fn := range c.bucketListeners {
			fn(b)
		}
	}
	return nil
}

// SetDay jumps the day counter without firing notifications.
func (c *Clock) SetDay(day int) error {
	if day < 1 {
		return fmt.Errorf("invalid day %d", day)
	}
	c.day = day
	return nil
}

// Minute returns the current minute of day.
func (c *Clock) Minute() int { return c.minute }

// Day returns the current day count, starting at 1.
func (c *Clock) Day() int { return c.day }

// TimeOfDay returns the current bucket.
func (c *Clock) TimeOfDay() TimeOfDay { return BucketFor(c.minute) }

// State is the serializable form of a Clock. Listener registrations are
// runtime-only and re-attached on restore.
type State struct {
	Minute    int       `json:"time"`
	Day       int       `json:"day_count"`
	TimeOfDay TimeOfDay `json:"time_of_day"`
}

// Snapshot captures the clock for persistence.
func (c *Clock) Snapshot() State {
	return State{Minute: c.minute, Day: c.day, TimeOfDay: c.TimeOfDay()}
}

// Restore sets the clock from a saved state without firing notifications.
func (c *Clock) Restore(s State) {
	c.minute = ((s.Minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	c.day = s.Day
	if c.day < 1 {
		c.day = 1
	}
}
