package clock

import (
	"sort"
	"time"
)

// TestClock advances only through explicit calls to AdvanceTimeTo. While
// advancing, it fires every timer whose next_time_ns <= target, in
// timestamp order then insertion order (ties broken by registration
// sequence), matching the teacher's single-threaded-cooperative discipline:
// firing is reentrant-safe because a callback may itself call SetTimer or
// CancelTimer on this same clock mid-advance.
type TestClock struct {
	now    int64
	seq    uint64
	timers map[string]*testTimer
}

type testTimer struct {
	name       string
	intervalNs int64
	nextTimeNs int64
	stopTimeNs int64
	callback   func(TimeEvent)
	insertSeq  uint64
}

// NewTestClock creates a TestClock starting at the given time.
func NewTestClock(startTimeNs int64) *TestClock {
	return &TestClock{now: startTimeNs, timers: make(map[string]*testTimer)}
}

// TimestampNs returns the clock's current (frozen) time.
func (c *TestClock) TimestampNs() int64 {
	return c.now
}

// SetTimer schedules a named, possibly recurring timer. A duplicate name
// replaces the prior timer with this one, including its insertion order.
func (c *TestClock) SetTimer(name string, interval time.Duration, startTimeNs int64, stopTimeNs int64, callback func(TimeEvent)) {
	c.seq++
	c.timers[name] = &testTimer{
		name:       name,
		intervalNs: int64(interval),
		nextTimeNs: startTimeNs,
		stopTimeNs: stopTimeNs,
		callback:   callback,
		insertSeq:  c.seq,
	}
}

// CancelTimer removes a timer by name.
func (c *TestClock) CancelTimer(name string) {
	delete(c.timers, name)
}

// CancelAllTimers removes every scheduled timer.
func (c *TestClock) CancelAllTimers() {
	c.timers = make(map[string]*testTimer)
}

// Timer returns the named timer's next fire time, if it exists.
func (c *TestClock) Timer(name string) (int64, bool) {
	t, ok := c.timers[name]
	if !ok {
		return 0, false
	}
	return t.nextTimeNs, true
}

// AdvanceTimeTo moves the clock forward to targetNs, firing every timer
// whose next_time_ns <= targetNs in timestamp order (ties by insertion
// order) before returning. While a timer's callback runs, TimestampNs()
// returns that timer's fire time; the clock only rests at targetNs once all
// due timers have fired.
func (c *TestClock) AdvanceTimeTo(targetNs int64) []TimeEvent {
	if targetNs < c.now {
		return nil
	}
	var fired []TimeEvent
	for {
		due := c.dueTimers(targetNs)
		if len(due) == 0 {
			break
		}
		t := due[0]
		c.now = t.nextTimeNs
		ev := TimeEvent{Name: t.name, TsEvent: t.nextTimeNs, TsInit: t.nextTimeNs}
		t.callback(ev)
		fired = append(fired, ev)

		// The callback may have canceled or replaced this timer; only
		// reschedule if it is still present and unchanged.
		current, stillExists := c.timers[t.name]
		if !stillExists || current != t {
			continue
		}
		if t.intervalNs <= 0 {
			delete(c.timers, t.name)
			continue
		}
		next := t.nextTimeNs + t.intervalNs
		if t.stopTimeNs > 0 && next > t.stopTimeNs {
			delete(c.timers, t.name)
			continue
		}
		t.nextTimeNs = next
	}
	c.now = targetNs
	return fired
}

// dueTimers returns the timers due at or before targetNs, sorted by
// next_time_ns then insertion order, without mutating the clock.
func (c *TestClock) dueTimers(targetNs int64) []*testTimer {
	due := make([]*testTimer, 0)
	for _, t := range c.timers {
		if t.nextTimeNs <= targetNs {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].nextTimeNs != due[j].nextTimeNs {
			return due[i].nextTimeNs < due[j].nextTimeNs
		}
		return due[i].insertSeq < due[j].insertSeq
	})
	if len(due) == 0 {
		return due
	}
	return due[:1]
}
