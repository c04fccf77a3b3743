package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func(ctx context.Context) error
	onStop  func()
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.onStop != nil {
		m.onStop()
	}
}

func runAsync(lc *Lifecycle, ctx context.Context) chan error {
	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()
	return done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	svc1 := &mockService{}
	svc2 := &mockService{}

	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	// Wait for services to start
	deadline := time.After(2 * time.Second)
	for {
		if svc1.started.Load() && svc2.started.Load() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	// Trigger shutdown
	cancel()

	assert.NoError(t, waitDone(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	lc.Add("first", &mockService{onStop: record("first")})
	lc.Add("second", &mockService{onStop: record("second")})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, waitDone(t, runAsync(lc, ctx)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestLifecycleServiceErrorIsReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	other := &mockService{}

	lc.Add("other", other)
	lc.Add("failing", &mockService{startFn: func(context.Context) error { return boom }})

	err := waitDone(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service failing")
	assert.True(t, other.stopped.Load())
}

func TestLifecycleCleanExitShutsDown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	other := &mockService{}
	lc.Add("other", other)
	lc.Add("stdio", &FuncService{StartFn: func(context.Context) error { return nil }})

	assert.NoError(t, waitDone(t, runAsync(lc, context.Background())))
	assert.True(t, other.stopped.Load())
}

func TestLifecycleCancelsServiceContext(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var sawCancel atomic.Bool
	lc.Add("ctx", &FuncService{StartFn: func(ctx context.Context) error {
		<-ctx.Done()
		sawCancel.Store(true)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	cancel()
	require.NoError(t, waitDone(t, done))
	assert.Eventually(t, sawCancel.Load, time.Second, 10*time.Millisecond)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start(context.Background())
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	assert.NotPanics(t, (&FuncService{}).Stop)
}
