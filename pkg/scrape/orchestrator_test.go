package scrape_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plugin-exporter/pkg/metrics"
	"github.com/plugin-exporter/pkg/registers"
	"github.com/plugin-exporter/pkg/scrape"
)

func newScrapeMetrics(t *testing.T) (*metrics.ScrapeMetrics, *prometheus.Registry) {
	t.Helper()
	preg := prometheus.NewRegistry()
	return metrics.NewMetricFactory(metrics.NewPromRegistry(preg)).NewScrapeMetrics(), preg
}

func newRegistry(t *testing.T, units ...registers.Collector) *registers.Registry {
	t.Helper()
	reg, err := registers.NewRegistry(units...)
	require.NoError(t, err)
	return reg
}

// blocker returns a collector that only finishes once the test ends.
func blocker(t *testing.T, name string) registers.Collector {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return registers.Func(name, func() error {
		<-release
		return nil
	})
}

func TestNewRejectsInvalidInput(t *testing.T) {
	m, _ := newScrapeMetrics(t)
	reg := newRegistry(t, registers.Func("a", func() error { return nil }))

	_, err := scrape.New(nil, time.Second, m)
	require.ErrorIs(t, err, registers.ErrNoCollectorsEnabled)
	_, err = scrape.New(reg, 0, m)
	require.ErrorIs(t, err, scrape.ErrInvalidTimeout)
	_, err = scrape.New(reg, time.Second, nil)
	require.ErrorIs(t, err, scrape.ErrNilMetrics)
}

func TestNewInitialisesSeries(t *testing.T) {
	m, preg := newScrapeMetrics(t)
	reg := newRegistry(t,
		registers.Func("a", func() error { return nil }),
		registers.Func("b", func() error { return nil }),
	)
	_, err := scrape.New(reg, time.Second, m)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(preg, "exporter_collector_loaded", "exporter_collector_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Failures.WithLabelValues("a")))
}

func TestScrapeAllSucceed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	m, _ := newScrapeMetrics(t)
	reg := newRegistry(t,
		registers.Func("fast", func() error { return nil }),
		registers.Func("slow", func() error {
			clock.Advance(3 * time.Second)
			return nil
		}),
	)
	o, err := scrape.New(reg, 10*time.Second, m, scrape.WithClock(clock))
	require.NoError(t, err)

	rep := o.Scrape()
	require.Len(t, rep.Outcomes, 2)
	assert.Equal(t, 2, rep.Count(scrape.StatusSuccess))
	assert.Zero(t, rep.Count(scrape.StatusTimeout))
	assert.NotEmpty(t, rep.ID)

	slow, ok := rep.Outcome("slow")
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, slow.Duration)
	assert.Equal(t, 3*time.Second, rep.Elapsed)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.Duration.WithLabelValues("slow")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Up.WithLabelValues("slow")))
	assert.Equal(t, float64(1_700_000_003), testutil.ToFloat64(m.LastSuccess.WithLabelValues("slow")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Timeouts.WithLabelValues("slow")))
	assert.Equal(t, uint64(1), histogramCount(t, m.RoundDuration))
}

func TestScrapeTimeout(t *testing.T) {
	m, _ := newScrapeMetrics(t)
	reg := newRegistry(t,
		registers.Func("a", func() error {
			time.Sleep(10 * time.Millisecond)
			return nil
		}),
		blocker(t, "b"),
	)
	timeout := 200 * time.Millisecond
	o, err := scrape.New(reg, timeout, m)
	require.NoError(t, err)

	begin := time.Now()
	rep := o.Scrape()
	elapsed := time.Since(begin)

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, time.Second)

	a, _ := rep.Outcome("a")
	assert.Equal(t, scrape.StatusSuccess, a.Status)
	assert.GreaterOrEqual(t, a.Duration, 10*time.Millisecond)
	assert.LessOrEqual(t, a.Duration, timeout)

	b, _ := rep.Outcome("b")
	assert.Equal(t, scrape.StatusTimeout, b.Status)
	assert.Zero(t, b.Duration)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Timeouts.WithLabelValues("b")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Failures.WithLabelValues("b")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Up.WithLabelValues("b")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Up.WithLabelValues("a")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Timeouts.WithLabelValues("a")))
}

func TestScrapeTimeoutFakeClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	core, logs := observer.New(zap.WarnLevel)
	m, _ := newScrapeMetrics(t)
	reg := newRegistry(t, blocker(t, "b"), blocker(t, "c"))
	o, err := scrape.New(reg, 5*time.Second, m, scrape.WithClock(clock), scrape.WithLogger(zap.New(core)))
	require.NoError(t, err)

	done := make(chan *scrape.Report, 1)
	go func() { done <- o.Scrape() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Second)

	var rep *scrape.Report
	select {
	case rep = <-done:
	case <-time.After(time.Second):
		t.Fatal("scrape did not return after the deadline")
	}

	assert.Equal(t, 5*time.Second, rep.Elapsed)
	require.Len(t, rep.Outcomes, 2)
	assert.Equal(t, "b", rep.Outcomes[0].Collector)
	assert.Equal(t, "c", rep.Outcomes[1].Collector)
	assert.Equal(t, 2, rep.Count(scrape.StatusTimeout))

	entries := logs.FilterMessage("collector timed out").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].ContextMap(), "goroutine")
}

func TestScrapeFailure(t *testing.T) {
	m, preg := newScrapeMetrics(t)
	reg := newRegistry(t,
		registers.Func("c", func() error { return errors.New("boom") }),
		registers.Func("ok", func() error { return nil }),
	)
	o, err := scrape.New(reg, time.Second, m)
	require.NoError(t, err)

	rep := o.Scrape()
	c, _ := rep.Outcome("c")
	assert.Equal(t, scrape.StatusFailure, c.Status)
	assert.Error(t, c.Err)
	assert.Zero(t, c.Duration)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failures.WithLabelValues("c")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Up.WithLabelValues("c")))

	// only the successful collector has a duration series
	n, err := testutil.GatherAndCount(preg, "exporter_collector_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// later rounds keep working
	o.Scrape()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Failures.WithLabelValues("c")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Up.WithLabelValues("ok")))
}

func TestScrapePanicIsolated(t *testing.T) {
	m, _ := newScrapeMetrics(t)
	reg := newRegistry(t,
		registers.Func("panics", func() error { panic("kaboom") }),
		registers.Func("ok", func() error { return nil }),
	)
	o, err := scrape.New(reg, time.Second, m)
	require.NoError(t, err)

	rep := o.Scrape()
	p, _ := rep.Outcome("panics")
	assert.Equal(t, scrape.StatusFailure, p.Status)
	var uf *scrape.UnitFailure
	require.ErrorAs(t, p.Err, &uf)
	assert.True(t, uf.Panicked)

	ok, _ := rep.Outcome("ok")
	assert.Equal(t, scrape.StatusSuccess, ok.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failures.WithLabelValues("panics")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Failures.WithLabelValues("ok")))
}

func TestScrapeFailureKeepsLastDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m, _ := newScrapeMetrics(t)
	fail := false
	reg := newRegistry(t, registers.Func("flaky", func() error {
		if fail {
			return errors.New("flaky")
		}
		clock.Advance(2 * time.Second)
		return nil
	}))
	o, err := scrape.New(reg, 10*time.Second, m, scrape.WithClock(clock))
	require.NoError(t, err)

	o.Scrape()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Duration.WithLabelValues("flaky")))

	fail = true
	o.Scrape()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Duration.WithLabelValues("flaky")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Up.WithLabelValues("flaky")))
}

func TestScrapeExactlyOneOutcomePerCollector(t *testing.T) {
	m, _ := newScrapeMetrics(t)
	var units []registers.Collector
	for i := 0; i < 24; i++ {
		name := fmt.Sprintf("unit%02d", i)
		switch i % 4 {
		case 0:
			units = append(units, registers.Func(name, func() error { return nil }))
		case 1:
			units = append(units, registers.Func(name, func() error { return errors.New("x") }))
		case 2:
			units = append(units, registers.Func(name, func() error { panic(name) }))
		default:
			units = append(units, blocker(t, name))
		}
	}
	o, err := scrape.New(newRegistry(t, units...), 100*time.Millisecond, m)
	require.NoError(t, err)

	rep := o.Scrape()
	require.Len(t, rep.Outcomes, len(units))
	seen := make(map[string]int)
	for _, out := range rep.Outcomes {
		seen[out.Collector]++
	}
	for _, u := range units {
		assert.Equal(t, 1, seen[u.Name()], u.Name())
	}
	assert.Equal(t, 6, rep.Count(scrape.StatusSuccess))
	assert.Equal(t, 12, rep.Count(scrape.StatusFailure))
	assert.Equal(t, 6, rep.Count(scrape.StatusTimeout))
}

func TestGathererRunsRoundPerGather(t *testing.T) {
	m, preg := newScrapeMetrics(t)
	calls := 0
	reg := newRegistry(t, registers.Func("a", func() error {
		calls++
		return nil
	}))
	o, err := scrape.New(reg, time.Second, m)
	require.NoError(t, err)

	g := o.Gatherer(preg)
	n, err := testutil.GatherAndCount(g, "exporter_collector_up")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)

	_, err = g.Gather()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(h))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	return mfs[0].GetMetric()[0].GetHistogram().GetSampleCount()
}
