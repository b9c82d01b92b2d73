// Package watch runs the periodic recompute cycle and serves its metrics.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
)

// Engine is the part of service.RiskEngine a cycle drives.
type Engine interface {
	UpdateAllStatuses(ctx context.Context) (*service.BatchResult, error)
	GenerateAlerts(ctx context.Context, operationID string) (*service.GenerateResult, error)
	RecalculateAllScores(ctx context.Context) (*service.BatchResult, error)
}

// Report summarizes one cycle.
type Report struct {
	StartedAt     time.Time
	Duration      time.Duration
	Statuses      int
	AlertsCreated int
	Scores        int
	// Failures holds the operation IDs that failed in any step, once per step.
	Failures []string
	// Err is set when a whole step could not run.
	Err error
}

// OK reports whether every step ran and no operation failed.
func (r Report) OK() bool { return r.Err == nil && len(r.Failures) == 0 }

// Runner schedules the cycle with cron. Overlapping runs are skipped.
type Runner struct {
	engine   Engine
	interval time.Duration
	logger   *zap.Logger
	metrics  *runnerMetrics

	first sync.WaitGroup

	mu      sync.Mutex
	cron    *cron.Cron
	last    Report
	hasLast bool
}

func NewRunner(engine Engine, interval time.Duration, logger *zap.Logger, reg prometheus.Registerer) (*Runner, error) {
	if interval < time.Second {
		return nil, eris.Wrapf(domain.ErrConfiguration, "watch interval %s is under 1s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := newRunnerMetrics(reg)
	if err != nil {
		return nil, eris.Wrap(err, "registering watch metrics")
	}
	return &Runner{engine: engine, interval: interval, logger: logger, metrics: m}, nil
}

// RunCycle updates all statuses, generates all alerts and recalculates all
// scores, in that order. A failing step is logged and the next one still runs.
func (r *Runner) RunCycle(ctx context.Context) Report {
	rep := Report{StartedAt: time.Now().UTC()}
	log := r.logger.With(zap.Time("started_at", rep.StartedAt))
	log.Info("watch cycle started")

	fail := func(step string, err error) {
		log.Error("watch step failed", zap.String("step", step), zap.Error(err))
		if rep.Err == nil {
			rep.Err = eris.Wrap(err, step)
		}
	}

	if res, err := r.engine.UpdateAllStatuses(ctx); err != nil {
		fail("update-statuses", err)
	} else {
		rep.Statuses = res.Count
		rep.Failures = append(rep.Failures, res.Failures...)
	}

	if res, err := r.engine.GenerateAlerts(ctx, ""); err != nil {
		fail("generate-alerts", err)
	} else {
		rep.AlertsCreated = len(res.Created)
		rep.Failures = append(rep.Failures, res.Failures...)
	}

	if res, err := r.engine.RecalculateAllScores(ctx); err != nil {
		fail("recalculate-scores", err)
	} else {
		rep.Scores = res.Count
		rep.Failures = append(rep.Failures, res.Failures...)
	}

	rep.Duration = time.Since(rep.StartedAt)
	r.metrics.observe(rep)

	r.mu.Lock()
	r.last, r.hasLast = rep, true
	r.mu.Unlock()

	log.Info("watch cycle finished",
		zap.Duration("duration", rep.Duration),
		zap.Int("statuses", rep.Statuses),
		zap.Int("alerts_created", rep.AlertsCreated),
		zap.Int("scores", rep.Scores),
		zap.Int("failures", len(rep.Failures)))
	return rep
}

// Start runs one cycle immediately, then one every interval until Stop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return eris.Wrap(domain.ErrInvalidState, "watch runner already started")
	}

	cl := cronLogger{r.logger}
	// One wrapped job serves both the immediate and the scheduled runs, so
	// they share the skip-if-running guard.
	job := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() { r.RunCycle(ctx) }))
	c := cron.New(cron.WithLogger(cl))
	if _, err := c.AddJob(fmt.Sprintf("@every %s", r.interval), job); err != nil {
		return eris.Wrapf(domain.ErrConfiguration, "scheduling watch cycle: %v", err)
	}
	c.Start()
	r.first.Add(1)
	go func() {
		defer r.first.Done()
		job.Run()
	}()

	r.cron = c
	r.logger.Info("watch scheduler started", zap.Duration("interval", r.interval))
	return nil
}

// Stop halts scheduling and waits for a running cycle, bounded by ctx.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		r.first.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("watch cycle still running at shutdown")
	}
}

// Last returns the most recent cycle report, if any cycle has finished.
func (r *Runner) Last() (Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

type runnerMetrics struct {
	cycles    *prometheus.CounterVec
	failures  prometheus.Counter
	alerts    prometheus.Counter
	duration  prometheus.Histogram
	lastCycle prometheus.Gauge
}

func newRunnerMetrics(reg prometheus.Registerer) (*runnerMetrics, error) {
	m := &runnerMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spic", Subsystem: "watch", Name: "cycles_total",
			Help: "Watch cycles by outcome.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spic", Subsystem: "watch", Name: "operation_failures_total",
			Help: "Operations that failed a watch step.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spic", Subsystem: "watch", Name: "alerts_created_total",
			Help: "Rule alerts created by watch cycles.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spic", Subsystem: "watch", Name: "cycle_duration_seconds",
			Help:    "Duration of watch cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spic", Subsystem: "watch", Name: "last_cycle_timestamp_seconds",
			Help: "Unix time the last watch cycle started.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.cycles, m.failures, m.alerts, m.duration, m.lastCycle} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *runnerMetrics) observe(rep Report) {
	outcome := "ok"
	switch {
	case rep.Err != nil:
		outcome = "error"
	case len(rep.Failures) > 0:
		outcome = "partial"
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.failures.Add(float64(len(rep.Failures)))
	m.alerts.Add(float64(rep.AlertsCreated))
	m.duration.Observe(rep.Duration.Seconds())
	m.lastCycle.Set(float64(rep.StartedAt.Unix()))
}
