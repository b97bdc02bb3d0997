package purge_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/purge"
)

type mockPurger struct {
	purgeFn func(ctx context.Context) (int64, error)
	calls   atomic.Int32
}

func (m *mockPurger) PurgeOldDeleted(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.purgeFn != nil {
		return m.purgeFn(ctx)
	}
	return 0, nil
}

type mockLocker struct {
	held     bool
	err      error
	released int
}

func (m *mockLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if m.held {
		return nil, false, nil
	}
	m.held = true
	return func() { m.held = false; m.released++ }, true, nil
}

func newRunner(t *testing.T, p purge.Purger, opts purge.Options) (*purge.Runner, *purge.Metrics) {
	t.Helper()
	m := purge.NewMetrics(prometheus.NewRegistry())
	opts.Metrics = m
	r, err := purge.New(p, opts)
	require.NoError(t, err)
	return r, m
}

func TestRunOnce_ReportsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := purge.NewMetrics(reg)
	p := &mockPurger{purgeFn: func(context.Context) (int64, error) { return 3, nil }}
	locker := &mockLocker{}
	r, err := purge.New(p, purge.Options{Locker: locker, Metrics: metrics})
	require.NoError(t, err)

	n, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, locker.released)
	assert.False(t, locker.held)

	assert.Equal(t, 3.0, counterValue(t, reg, "teamhub_purge_products_removed_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "teamhub_purge_runs_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRunOnce_SkipsWhenLockHeld(t *testing.T) {
	p := &mockPurger{}
	r, _ := newRunner(t, p, purge.Options{Locker: &mockLocker{held: true}})

	n, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, p.calls.Load())
}

func TestRunOnce_LockErrorStillPurges(t *testing.T) {
	p := &mockPurger{purgeFn: func(context.Context) (int64, error) { return 1, nil }}
	r, _ := newRunner(t, p, purge.Options{Locker: &mockLocker{err: errors.New("redis down")}})

	n, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunOnce_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	p := &mockPurger{purgeFn: func(context.Context) (int64, error) { return 0, boom }}
	locker := &mockLocker{}
	r, _ := newRunner(t, p, purge.Options{Locker: locker})

	_, err := r.RunOnce(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, locker.released)
}

func TestRunOnce_AppliesTimeout(t *testing.T) {
	p := &mockPurger{purgeFn: func(ctx context.Context) (int64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	r, _ := newRunner(t, p, purge.Options{Timeout: 10 * time.Millisecond})

	_, err := r.RunOnce(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := purge.New(&mockPurger{}, purge.Options{Schedule: "every tuesday"})
	assert.Error(t, err)
}

func TestStart_WithoutScheduleReturnsImmediately(t *testing.T) {
	r, _ := newRunner(t, &mockPurger{}, purge.Options{})
	assert.False(t, r.Scheduled())

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return when no schedule is configured")
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	r, _ := newRunner(t, &mockPurger{}, purge.Options{Schedule: "@hourly"})
	assert.True(t, r.Scheduled())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	purge.NewMetrics(reg)
	assert.NotPanics(t, func() { purge.NewMetrics(reg) })
}
