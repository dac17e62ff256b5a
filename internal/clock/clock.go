// Package clock provides the Clock abstraction the core runs on: a real
// wall-clock implementation for live trading and a deterministic test
// clock that only advances via explicit calls, firing due timers inline.
// Grounded on the teacher's single-consumer, single-threaded-cooperative
// discipline (internal/bus.Queue.Run has exactly one goroutine driving
// progress); nothing here needs a mutex because the engine thread is the
// only caller.
package clock

import "time"

// Clock abstracts the passage of time for the engine thread.
type Clock interface {
	// TimestampNs returns the current time as Unix nanoseconds.
	TimestampNs() int64
	// SetTimer schedules a named, possibly recurring timer. A duplicate
	// name replaces the prior timer with this one.
	SetTimer(name string, interval time.Duration, startTimeNs int64, stopTimeNs int64, callback func(TimeEvent))
	// CancelTimer removes a timer by name. A no-op if it does not exist.
	CancelTimer(name string)
	// CancelAllTimers removes every scheduled timer.
	CancelAllTimers()
	// Timer returns the named timer's next fire time, if it exists.
	Timer(name string) (nextTimeNs int64, ok bool)
}

// TimeEvent is emitted to a timer's callback each time it fires.
type TimeEvent struct {
	Name      string
	TsEvent   int64
	TsInit    int64
}
