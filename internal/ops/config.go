package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"main/internal/engine"
	"main/internal/instrument"
	"main/internal/position"
	"main/internal/value"

	"github.com/yanun0323/decimal"
)

// FileConfig mirrors the JSON config layout for one trading session.
// Grounded on the teacher's internal/ops.FileConfig (registry + order +
// feature-flags JSON), retargeted from the teacher's venue/symbol scale
// registry to the spec's Instrument catalog and per-instrument book/bar
// session wiring.
type FileConfig struct {
	Oms         string             `json:"oms"`
	Instruments []InstrumentConfig `json:"instruments"`
	Features    FeatureFlagsConfig `json:"features"`
}

// InstrumentConfig describes one instrument to register, plus which book
// fidelity and bar aggregators the session should attach to it.
type InstrumentConfig struct {
	Symbol         string  `json:"symbol"`
	Venue          string  `json:"venue"`
	PricePrecision uint8   `json:"pricePrecision"`
	SizePrecision  uint8   `json:"sizePrecision"`
	Multiplier     float64 `json:"multiplier"`
	IsInverse      bool    `json:"isInverse"`
	QuoteCurrency  string  `json:"quoteCurrency"`
	QuoteScale     int32   `json:"quoteScale"`
	BaseCurrency   string  `json:"baseCurrency"`
	BaseScale      int32   `json:"baseScale"`
	Book           string  `json:"book"` // "L1", "L2", or "L3"
	Bars           []BarConfig `json:"bars"`
}

// BarConfig describes one bar aggregator to attach to an instrument.
type BarConfig struct {
	Kind string `json:"kind"` // "tick", "volume", "value", or "time"
	Step int64  `json:"step"`
	Unit string `json:"unit"` // for "time": "second", "minute", "hour", "day"
	Name string `json:"name"` // timer name, required for "time"
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableOpstore *bool `json:"enableOpstore"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableOpstore bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Oms         position.OmsType
	Instruments []instrument.Instrument
	Books       map[value.InstrumentId]engine.BookKind
	Bars        map[value.InstrumentId][]BarConfig
	Features    FeatureFlags
}

// Load reads a JSON config file and resolves it into instrument
// definitions plus the book/bar wiring each one requests.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}

	oms, err := parseOms(cfg.Oms)
	if err != nil {
		return Loaded{}, err
	}

	instruments := make([]instrument.Instrument, 0, len(cfg.Instruments))
	books := make(map[value.InstrumentId]engine.BookKind, len(cfg.Instruments))
	bars := make(map[value.InstrumentId][]BarConfig, len(cfg.Instruments))
	for _, ic := range cfg.Instruments {
		inst, err := resolveInstrument(ic)
		if err != nil {
			return Loaded{}, fmt.Errorf("instrument %s.%s: %w", ic.Symbol, ic.Venue, err)
		}
		instruments = append(instruments, inst)

		if ic.Book != "" {
			kind, err := parseBookKind(ic.Book)
			if err != nil {
				return Loaded{}, fmt.Errorf("instrument %s.%s: %w", ic.Symbol, ic.Venue, err)
			}
			books[inst.ID] = kind
		}
		if len(ic.Bars) > 0 {
			bars[inst.ID] = ic.Bars
		}
	}

	return Loaded{
		Oms:         oms,
		Instruments: instruments,
		Books:       books,
		Bars:        bars,
		Features:    resolveFeatures(cfg.Features),
	}, nil
}

func parseOms(s string) (position.OmsType, error) {
	switch s {
	case "", "NETTING":
		return position.NETTING, nil
	case "HEDGING":
		return position.HEDGING, nil
	default:
		return 0, fmt.Errorf("unknown oms %q", s)
	}
}

func parseBookKind(s string) (engine.BookKind, error) {
	switch s {
	case "L1":
		return engine.BookL1, nil
	case "L2":
		return engine.BookL2, nil
	case "L3":
		return engine.BookL3, nil
	default:
		return 0, fmt.Errorf("unknown book kind %q", s)
	}
}

func resolveInstrument(ic InstrumentConfig) (instrument.Instrument, error) {
	if ic.Symbol == "" || ic.Venue == "" {
		return instrument.Instrument{}, fmt.Errorf("symbol and venue are required")
	}
	if ic.QuoteCurrency == "" {
		return instrument.Instrument{}, fmt.Errorf("quoteCurrency is required")
	}
	multiplier := ic.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	inst := instrument.Instrument{
		ID:             value.NewInstrumentId(ic.Symbol, ic.Venue),
		PricePrecision: ic.PricePrecision,
		SizePrecision:  ic.SizePrecision,
		Multiplier:     decimal.NewFromFloat(multiplier),
		IsInverse:      ic.IsInverse,
		QuoteCurrency:  value.Currency{Code: ic.QuoteCurrency, Precision: uint8(ic.QuoteScale)},
	}
	if ic.BaseCurrency != "" {
		inst.BaseCurrency = value.Currency{Code: ic.BaseCurrency, Precision: uint8(ic.BaseScale)}
	}
	if err := inst.Validate(); err != nil {
		return instrument.Instrument{}, err
	}
	return inst, nil
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{EnableOpstore: false}
	if cfg.EnableOpstore != nil {
		flags.EnableOpstore = *cfg.EnableOpstore
	}
	return flags
}
