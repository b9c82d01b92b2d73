package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *zap.Logger
}

// NewLogUseCaseObserver logs service use-case events at debug level, failures at warn.
func NewLogUseCaseObserver(logger *zap.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	fields := make([]zap.Field, 0, 3+len(event.Fields))
	fields = append(fields,
		zap.String("use_case", event.Name),
		zap.Int64("duration_ms", event.Duration.Milliseconds()),
		zap.Bool("success", event.Success),
	)
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	if event.Err != nil {
		o.logger.Warn("service_use_case", append(fields, zap.Error(event.Err))...)
		return
	}
	o.logger.Debug("service_use_case", fields...)
}

type metricsUseCaseObserver struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewMetricsUseCaseObserver records use-case durations and outcomes on reg.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) (UseCaseObserver, error) {
	o := &metricsUseCaseObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spic",
			Name:      "use_case_duration_seconds",
			Help:      "Duration of service use cases.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spic",
			Name:      "use_case_total",
			Help:      "Service use cases by outcome.",
		}, []string{"use_case", "outcome"}),
	}
	for _, c := range []prometheus.Collector{o.duration, o.total} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
	o.total.WithLabelValues(event.Name, outcome).Inc()
}

// MultiUseCaseObserver fans an event out to every observer.
type MultiUseCaseObserver []UseCaseObserver

func (m MultiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveUseCase(ctx, event)
		}
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// trackUseCase starts timing a use case and returns the func that reports its outcome.
func trackUseCase(ctx context.Context, obs UseCaseObserver, name string, fields map[string]any) func(error) {
	startedAt := time.Now().UTC()
	return func(err error) {
		obs.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}
}
