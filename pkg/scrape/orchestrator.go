package scrape

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/goid"
	"github.com/plugin-exporter/pkg/metrics"
	"github.com/plugin-exporter/pkg/registers"
)

var (
	ErrInvalidTimeout = errors.New("scrape: timeout must be positive")
	ErrNilMetrics     = errors.New("scrape: metrics are required")
)

// Orchestrator runs every collector of a registry concurrently under one
// deadline and projects each outcome into the scrape metrics.
type Orchestrator struct {
	registry *registers.Registry
	timeout  time.Duration
	metrics  *metrics.ScrapeMetrics
	runner   *Runner
	logger   *zap.Logger
	clock    clockwork.Clock

	// one round at a time
	mu sync.Mutex
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces the wall clock used for deadlines and durations.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// New validates its inputs and pre-creates the per-collector series so that
// every loaded collector is visible before the first scrape.
func New(reg *registers.Registry, timeout time.Duration, m *metrics.ScrapeMetrics, opts ...Option) (*Orchestrator, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, registers.ErrNoCollectorsEnabled
	}
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if m == nil {
		return nil, ErrNilMetrics
	}

	o := &Orchestrator{
		registry: reg,
		timeout:  timeout,
		metrics:  m,
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.runner = NewRunner(o.logger)
	m.Init(reg.Names())
	return o, nil
}

func (o *Orchestrator) Names() []string { return o.registry.Names() }

func (o *Orchestrator) Timeout() time.Duration { return o.timeout }

type task struct {
	name string
	goid atomic.Uint64
}

type result struct {
	name string
	err  error
	at   time.Time
}

// Scrape runs one round and returns once every collector has finished or
// the deadline measured from the round start has passed. Collectors still
// running at the deadline are left running and recorded as timed out.
func (o *Orchestrator) Scrape() *Report {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := o.registry.Names()
	report := &Report{
		ID:       uuid.NewString(),
		Start:    o.clock.Now(),
		Outcomes: make([]Outcome, 0, len(names)),
	}
	log := o.logger.With(zap.String("round", report.ID))

	// Buffered to the registry size: an abandoned collector can always
	// deliver its result and exit.
	results := make(chan result, len(names))
	tasks := make(map[string]*task, len(names))
	for _, name := range names {
		unit, _ := o.registry.Get(name)
		t := &task{name: name}
		tasks[name] = t
		go func() {
			t.goid.Store(goid.Get())
			err := o.runner.Run(unit)
			results <- result{name: t.name, err: err, at: o.clock.Now()}
		}()
	}

	timer := o.clock.NewTimer(o.timeout)
	defer timer.Stop()

	collect := func(r result) {
		o.record(log, report, r)
		delete(tasks, r.name)
	}

wait:
	for len(tasks) > 0 {
		select {
		case r := <-results:
			collect(r)
		case <-timer.Chan():
			for len(tasks) > 0 {
				select {
				case r := <-results:
					collect(r)
				default:
					break wait
				}
			}
		}
	}

	if len(tasks) > 0 {
		for _, name := range names {
			if t, ok := tasks[name]; ok {
				o.recordTimeout(log, report, t)
			}
		}
	}

	report.Elapsed = o.clock.Since(report.Start)
	o.metrics.RoundDuration.Observe(report.Elapsed.Seconds())
	log.Info("scrape complete",
		zap.Duration("elapsed", report.Elapsed),
		zap.Int("success", report.Count(StatusSuccess)),
		zap.Int("failure", report.Count(StatusFailure)),
		zap.Int("timeout", report.Count(StatusTimeout)),
	)
	return report
}

func (o *Orchestrator) record(log *zap.Logger, report *Report, r result) {
	if r.err != nil {
		o.metrics.Failures.WithLabelValues(r.name).Inc()
		o.metrics.Up.WithLabelValues(r.name).Set(0)
		report.Outcomes = append(report.Outcomes, Outcome{Collector: r.name, Status: StatusFailure, Err: r.err})
		log.Debug("collector failed", zap.String("collector", r.name))
		return
	}

	d := clampDuration(r.at.Sub(report.Start), o.timeout)
	o.metrics.Duration.WithLabelValues(r.name).Set(d.Seconds())
	o.metrics.Up.WithLabelValues(r.name).Set(1)
	o.metrics.LastSuccess.WithLabelValues(r.name).Set(float64(r.at.UnixNano()) / 1e9)
	report.Outcomes = append(report.Outcomes, Outcome{Collector: r.name, Status: StatusSuccess, Duration: d})
	log.Debug("collector finished", zap.String("collector", r.name), zap.Duration("duration", d))
}

func (o *Orchestrator) recordTimeout(log *zap.Logger, report *Report, t *task) {
	o.metrics.Timeouts.WithLabelValues(t.name).Inc()
	o.metrics.Up.WithLabelValues(t.name).Set(0)
	report.Outcomes = append(report.Outcomes, Outcome{Collector: t.name, Status: StatusTimeout})
	log.Warn("collector timed out",
		zap.String("collector", t.name),
		zap.Duration("timeout", o.timeout),
		zap.Uint64("goroutine", t.goid.Load()),
	)
}
