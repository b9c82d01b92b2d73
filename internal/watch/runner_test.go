package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
)

type fakeEngine struct {
	mu    sync.Mutex
	calls []string

	statusErr error
	alerts    *service.GenerateResult
	scores    *service.BatchResult
}

func (f *fakeEngine) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeEngine) UpdateAllStatuses(context.Context) (*service.BatchResult, error) {
	f.record("statuses")
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &service.BatchResult{Count: 3}, nil
}

func (f *fakeEngine) GenerateAlerts(_ context.Context, operationID string) (*service.GenerateResult, error) {
	f.record("alerts:" + operationID)
	if f.alerts != nil {
		return f.alerts, nil
	}
	return &service.GenerateResult{}, nil
}

func (f *fakeEngine) RecalculateAllScores(context.Context) (*service.BatchResult, error) {
	f.record("scores")
	if f.scores != nil {
		return f.scores, nil
	}
	return &service.BatchResult{Count: 3}, nil
}

func TestRunCycle_RunsStepsInOrder(t *testing.T) {
	eng := &fakeEngine{
		alerts: &service.GenerateResult{Created: []domain.AlertRef{{OperationID: "a"}, {OperationID: "b"}}},
		scores: &service.BatchResult{Count: 2, Failures: []string{"c"}},
	}
	reg := prometheus.NewRegistry()
	r, err := NewRunner(eng, time.Minute, nil, reg)
	require.NoError(t, err)

	rep := r.RunCycle(context.Background())
	assert.Equal(t, []string{"statuses", "alerts:", "scores"}, eng.Calls())
	assert.Equal(t, 3, rep.Statuses)
	assert.Equal(t, 2, rep.AlertsCreated)
	assert.Equal(t, 2, rep.Scores)
	assert.Equal(t, []string{"c"}, rep.Failures)
	assert.False(t, rep.OK())

	assert.Equal(t, 1.0, promtest.ToFloat64(r.metrics.cycles.WithLabelValues("partial")))
	assert.Equal(t, 2.0, promtest.ToFloat64(r.metrics.alerts))
	assert.Equal(t, 1.0, promtest.ToFloat64(r.metrics.failures))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, rep.StartedAt, last.StartedAt)
}

func TestRunCycle_ContinuesAfterFailedStep(t *testing.T) {
	eng := &fakeEngine{statusErr: errors.New("database is locked")}
	r, err := NewRunner(eng, time.Minute, nil, nil)
	require.NoError(t, err)

	rep := r.RunCycle(context.Background())
	assert.Equal(t, []string{"statuses", "alerts:", "scores"}, eng.Calls())
	require.Error(t, rep.Err)
	assert.Contains(t, rep.Err.Error(), "update-statuses")
	assert.Equal(t, 3, rep.Scores)
	assert.Equal(t, 1.0, promtest.ToFloat64(r.metrics.cycles.WithLabelValues("error")))
}

func TestNewRunner_RejectsShortInterval(t *testing.T) {
	_, err := NewRunner(&fakeEngine{}, 500*time.Millisecond, nil, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunner_StartRunsImmediately(t *testing.T) {
	eng := &fakeEngine{}
	r, err := NewRunner(eng, time.Hour, nil, nil)
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), domain.ErrInvalidState)

	require.Eventually(t, func() bool {
		_, ok := r.Last()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	assert.Equal(t, []string{"statuses", "alerts:", "scores"}, eng.Calls())

	r.Stop(ctx)
}
