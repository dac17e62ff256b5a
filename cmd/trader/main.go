// Command trader is a demonstration harness wiring internal/engine's
// order/position/book/bar machinery together into a runnable session.
// Grounded on the teacher's cmd/trader/main.go (flag-driven bootstrap,
// pyroscope profiling, periodic runtime-memory reporting), retargeted from
// the teacher's WAL-record/replay harness to a single-process simulation
// that drives an Engine from a config file and prints a metrics snapshot
// on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"main/internal/bar"
	"main/internal/bus"
	"main/internal/clock"
	"main/internal/engine"
	"main/internal/instrument"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/opstore"
	"main/internal/order"
	"main/internal/position"
	"main/internal/value"
	"main/libs/shared/metric"
	"main/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON session config (default: built-in single-instrument demo)")
	snapshotDsn := flag.String("snapshot-dsn", "", "Postgres DSN to persist position snapshots to (opt-in; empty disables opstore)")
	memoryReportInterval := flag.Duration("memory-report-interval", 0, "Runtime memory report interval (0=disable)")
	pyroscopeAddr := flag.String("pyroscope-addr", "", "Pyroscope server address (empty disables profiling)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *pyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer profiler.Stop()
	}

	if *memoryReportInterval > 0 {
		memoryMetric := &metric.RuntimeMemoryMetric{}
		go memoryMetric.RunReportSchedule(ctx, *memoryReportInterval)
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	traceGen := obs.NewTraceGenerator(0)
	sessionTrace := traceGen.Next()
	log.Printf("session trace=%d starting", sessionTrace)

	metrics := obs.NewMetrics()
	eng := engine.New(clock.NewRealClock(), loaded.Oms)
	eng.OnOrderEvent(func(o *order.Order, _ order.Event) {
		metrics.ObserveOrderEvent(o, time.Now().UTC().UnixNano())
		log.Printf("session trace=%d order=%s status=%s", sessionTrace, o.ClientOrderId, o.Status)
	})
	eng.OnPositionChange(func(p *position.Position) {
		if p.Side == position.Flat {
			metrics.ObservePositionClosed(p)
		} else {
			metrics.ObservePositionOpened()
		}
	})

	for _, inst := range loaded.Instruments {
		if err := eng.RegisterInstrument(inst); err != nil {
			log.Fatalf("register instrument %s: %v", inst.ID, err)
		}
		if kind, ok := loaded.Books[inst.ID]; ok {
			if _, err := eng.RegisterBook(inst.ID, kind); err != nil {
				log.Fatalf("register book %s: %v", inst.ID, err)
			}
		}
		for _, bc := range loaded.Bars[inst.ID] {
			agg, err := newBarAggregator(eng, inst.ID, bc, metrics)
			if err != nil {
				log.Fatalf("register bar aggregator %s/%s: %v", inst.ID, bc.Kind, err)
			}
			eng.RegisterBarAggregator(inst.ID, agg)
		}
	}

	var store *opstore.Store
	if *snapshotDsn != "" && loaded.Features.EnableOpstore {
		store, err = opstore.Open(conn.Option{ConnString: *snapshotDsn})
		if err != nil {
			log.Fatalf("opstore open failed: %v", err)
		}
		defer store.Close()
	}

	queue := bus.NewQueue(1024)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		queue.Run(ctx, func(e bus.Event) {
			if err := dispatch(eng, e.Payload); err != nil {
				log.Printf("dispatch error: %v", err)
			}
		})
	}()

	runDemo(queue, loaded)
	queue.Close()
	<-drained

	if store != nil {
		for _, p := range eng.Positions().All() {
			if err := store.Save(context.Background(), p.TakeSnapshot()); err != nil {
				log.Printf("opstore save failed: %v", err)
			}
		}
	}

	snapshot := metrics.Snapshot()
	log.Printf("metrics: order_status=%v positions_opened=%d positions_closed=%d book_integrity_fails=%d bars_emitted=%d order_latency=%+v",
		snapshot.OrderStatusCounts, snapshot.PositionsOpened, snapshot.PositionsClosed,
		snapshot.BookIntegrityFails, snapshot.BarsEmitted, snapshot.OrderLatency)
}

func loadConfig(path string) (ops.Loaded, error) {
	if path != "" {
		return ops.Load(path)
	}
	demo := instrument.Instrument{
		ID:             value.NewInstrumentId("BTC-USD", "SIM"),
		PricePrecision: 2,
		SizePrecision:  6,
		Multiplier:     value.OneDecimal,
		QuoteCurrency:  value.Currency{Code: "USD", Precision: 2},
	}
	return ops.Loaded{
		Oms:         position.NETTING,
		Instruments: []instrument.Instrument{demo},
		Books:       map[value.InstrumentId]engine.BookKind{demo.ID: engine.BookL1},
		Bars: map[value.InstrumentId][]ops.BarConfig{
			demo.ID: {{Kind: "tick", Step: 3}},
		},
		Features: ops.FeatureFlags{EnableOpstore: false},
	}, nil
}

func dispatch(eng *engine.Engine, payload any) error {
	switch p := payload.(type) {
	case value.QuoteTick:
		return eng.HandleQuoteTick(p)
	case value.TradeTick:
		return eng.HandleTradeTick(p)
	default:
		return nil
	}
}

// runDemo publishes a short synthetic tick sequence on the demo
// instrument, exercising the book and bar wiring registered above. A real
// deployment would instead feed market-data adapter output here.
func runDemo(queue *bus.Queue, loaded ops.Loaded) {
	if len(loaded.Instruments) == 0 {
		return
	}
	instId := loaded.Instruments[0].ID
	now := time.Now().UTC().UnixNano()
	prices := []string{"100.00", "100.05", "99.98", "100.10"}
	for i, p := range prices {
		px, err := value.NewPriceFromString(p)
		if err != nil {
			log.Printf("runDemo: %v", err)
			continue
		}
		size, err := value.NewQuantityFromString("1")
		if err != nil {
			log.Printf("runDemo: %v", err)
			continue
		}
		tick := value.TradeTick{
			InstrumentId:  instId,
			Price:         px,
			Size:          size,
			AggressorSide: value.AggressorBuy,
			TsEvent:       now + int64(i)*int64(time.Second),
			TsInit:        now + int64(i)*int64(time.Second),
		}
		if err := queue.TryPublish(bus.Event{TsRecv: tick.TsEvent, Payload: tick}); err != nil {
			log.Printf("runDemo: publish failed: %v", err)
		}
	}
	time.Sleep(10 * time.Millisecond)
}

func newBarAggregator(eng *engine.Engine, instrumentId value.InstrumentId, bc ops.BarConfig, metrics *obs.Metrics) (engine.TradeBarAggregator, error) {
	handler := func(b bar.Bar) {
		metrics.ObserveBarEmitted()
		log.Printf("bar %s %s: o=%s h=%s l=%s c=%s v=%s", instrumentId, bc.Kind, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	switch bc.Kind {
	case "tick":
		return bar.NewTickBarAggregator(int(bc.Step), handler)
	case "volume":
		step, err := value.NewQuantityFromString(fmt.Sprintf("%d", bc.Step))
		if err != nil {
			return nil, err
		}
		return bar.NewVolumeBarAggregator(step, handler)
	case "value":
		step, err := value.NewPriceFromString(fmt.Sprintf("%d", bc.Step))
		if err != nil {
			return nil, err
		}
		return bar.NewValueBarAggregator(step.ToDecimal(), handler)
	case "time":
		unit, err := parseTimeUnit(bc.Unit)
		if err != nil {
			return nil, err
		}
		return bar.NewTimeBarAggregator(eng.Clock(), unit, int(bc.Step), bc.Name, handler)
	default:
		return nil, fmt.Errorf("unknown bar kind %q", bc.Kind)
	}
}

func parseTimeUnit(s string) (bar.TimeUnit, error) {
	switch s {
	case "second":
		return bar.Second, nil
	case "minute":
		return bar.Minute, nil
	case "hour":
		return bar.Hour, nil
	case "day":
		return bar.Day, nil
	default:
		return 0, fmt.Errorf("unknown time unit %q", s)
	}
}
