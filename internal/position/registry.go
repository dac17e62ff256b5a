package position

import (
	"fmt"

	"main/internal/value"
)

// OmsType governs how fills map to positions, per the glossary: NETTING
// collapses fills into one position per instrument; HEDGING keeps each
// open position separate by PositionId.
type OmsType uint8

const (
	_omsBeg OmsType = iota
	NETTING
	HEDGING
	_omsEnd
)

// IsAvailable reports whether the OMS type is a known, non-sentinel value.
func (o OmsType) IsAvailable() bool { return o > _omsBeg && o < _omsEnd }

// registryKey is the internal lookup key: under NETTING it ignores
// PositionId so every fill on an instrument resolves to the same position;
// under HEDGING it keys on the full pair.
type registryKey struct {
	instrument value.InstrumentId
	position   value.PositionId
}

// Registry owns the Positions a session is tracking, keyed per its
// OmsType; a position stays in it until a caller Removes it. Grounded on the "owning registries" design note (spec.md
// §9): the engine looks positions up here rather than aggregates holding
// direct references to one another.
type Registry struct {
	oms   OmsType
	byKey map[registryKey]*Position
}

// NewRegistry creates an empty position registry under the given OMS type.
func NewRegistry(oms OmsType) *Registry {
	return &Registry{oms: oms, byKey: make(map[registryKey]*Position)}
}

func (r *Registry) key(instrumentId value.InstrumentId, positionId value.PositionId) registryKey {
	if r.oms == NETTING {
		return registryKey{instrument: instrumentId}
	}
	return registryKey{instrument: instrumentId, position: positionId}
}

// Put registers a newly opened position.
func (r *Registry) Put(p *Position) error {
	k := r.key(p.InstrumentId, p.PositionId)
	if _, exists := r.byKey[k]; exists {
		return fmt.Errorf("position registry: position already open for %v", k)
	}
	r.byKey[k] = p
	return nil
}

// Get looks up the open position for an instrument (NETTING) or
// (instrument, position) pair (HEDGING).
func (r *Registry) Get(instrumentId value.InstrumentId, positionId value.PositionId) (*Position, bool) {
	p, ok := r.byKey[r.key(instrumentId, positionId)]
	return p, ok
}

// Remove drops a position from the registry, e.g. once it has returned to
// FLAT and the caller has archived its snapshot.
func (r *Registry) Remove(instrumentId value.InstrumentId, positionId value.PositionId) {
	delete(r.byKey, r.key(instrumentId, positionId))
}

// Count returns the number of positions currently tracked.
func (r *Registry) Count() int {
	return len(r.byKey)
}

// All returns every tracked position. Order is unspecified.
func (r *Registry) All() []*Position {
	out := make([]*Position, 0, len(r.byKey))
	for _, p := range r.byKey {
		out = append(out, p)
	}
	return out
}
