package value

import "github.com/google/uuid"

// EventId uniquely identifies a single domain event. Every OrderEvent and
// every fill carries one.
type EventId string

// NewEventId generates a fresh random EventId.
func NewEventId() EventId {
	return EventId(uuid.New().String())
}

// NewExecutionId generates a fresh random ExecutionId. Venues that assign
// their own execution identifiers should construct an ExecutionId from
// that string directly instead.
func NewExecutionId() ExecutionId {
	return ExecutionId(uuid.New().String())
}
