// Package instrument holds the immutable Instrument definition and the
// Registry the rest of the core looks instruments up from. Grounded on the
// teacher's internal/schema.Registry (venue/symbol name-to-id mapping),
// generalized from numeric venue/symbol ids to the spec's InstrumentId and
// full instrument metadata (precision, multiplier, currencies).
package instrument

import (
	"fmt"

	"main/internal/value"
)

// Instrument is an immutable tradable-instrument definition.
type Instrument struct {
	ID             value.InstrumentId
	PricePrecision uint8
	SizePrecision  uint8
	Multiplier     value.Decimal
	IsInverse      bool
	QuoteCurrency  value.Currency
	BaseCurrency   value.Currency // zero value if not set
}

// HasBaseCurrency reports whether the instrument carries a base currency.
func (i Instrument) HasBaseCurrency() bool {
	return !i.BaseCurrency.IsZero()
}

// CostCurrency is the base currency if the instrument is inverse, else the
// quote currency.
func (i Instrument) CostCurrency() value.Currency {
	if i.IsInverse {
		return i.BaseCurrency
	}
	return i.QuoteCurrency
}

// Validate checks the instrument's numeric limits.
func (i Instrument) Validate() error {
	if i.PricePrecision > value.MaxPrecision {
		return fmt.Errorf("instrument %s: price precision %d exceeds maximum %d", i.ID, i.PricePrecision, value.MaxPrecision)
	}
	if i.SizePrecision > value.MaxPrecision {
		return fmt.Errorf("instrument %s: size precision %d exceeds maximum %d", i.ID, i.SizePrecision, value.MaxPrecision)
	}
	if i.IsInverse && !i.HasBaseCurrency() {
		return fmt.Errorf("instrument %s: inverse instrument requires a base currency", i.ID)
	}
	return nil
}

// Registry maps InstrumentId to its definition. Instruments must be
// registered before any tick referencing them arrives; a missing
// registration is a hard error (ErrNotFound), per the external interfaces
// section.
type Registry struct {
	byID map[value.InstrumentId]Instrument
}

// NewRegistry creates an empty instrument registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[value.InstrumentId]Instrument)}
}

// Add registers an instrument. It is an error to register the same
// InstrumentId twice.
func (r *Registry) Add(i Instrument) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if _, exists := r.byID[i.ID]; exists {
		return fmt.Errorf("instrument %s already registered", i.ID)
	}
	r.byID[i.ID] = i
	return nil
}

// Get looks up an instrument by id.
func (r *Registry) Get(id value.InstrumentId) (Instrument, bool) {
	i, ok := r.byID[id]
	return i, ok
}

// MustGet looks up an instrument, returning ErrNotFound if absent.
func (r *Registry) MustGet(id value.InstrumentId) (Instrument, error) {
	i, ok := r.byID[id]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: instrument %s", ErrNotFound, id)
	}
	return i, nil
}

// Count returns the number of registered instruments.
func (r *Registry) Count() int {
	return len(r.byID)
}
