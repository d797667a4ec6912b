package actions

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/scheduler"
)

type fakeDriver struct {
	brightness int32
}

func (f *fakeDriver) Geometry() (int, int, int, int, string)   { return 1, 5, 72, 72, "jpeg" }
func (f *fakeDriver) SetKeyImage(context.Context, int, []byte) error { return nil }
func (f *fakeDriver) SetBrightness(_ context.Context, percent int) error {
	atomic.StoreInt32(&f.brightness, int32(percent))
	return nil
}
func (f *fakeDriver) Reset(context.Context) error            { return nil }
func (f *fakeDriver) Close() error                           { return nil }
func (f *fakeDriver) SetKeyCallback(func(int, bool))         {}
func (f *fakeDriver) Open(context.Context) error             { return nil }
func (f *fakeDriver) Connected() bool                        { return true }
func (f *fakeDriver) Serial() string                         { return "fake" }

func testRuntime(t *testing.T) (*Runtime, *fakeDriver, func()) {
	t.Helper()
	sched := scheduler.New()
	drv := &fakeDriver{}
	rt := NewRuntime(sched, drv, logging.New(logging.LevelError), 300)
	ctx, cancel := context.WithCancel(context.Background())
	go sched.Run(ctx)
	return rt, drv, cancel
}

func pageEvent(t *testing.T, attrs entities.Attrs) *entities.Event {
	t.Helper()
	ev, err := entities.NewEvent("/deck/PAGE_1/KEY_ROW_1_COL_1/ON_PRESS", time.Now(), entities.EventPress, attrs)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestRuntimeRunPageInvokesCallback(t *testing.T) {
	rt, _, cancel := testRuntime(t)
	defer cancel()

	var got PageRequest
	done := make(chan struct{})
	rt.RequestPage = func(req PageRequest) {
		got = req
		close(done)
	}

	ev := pageEvent(t, entities.Attrs{"page": "2"})
	rt.Trigger(ev, entities.SDFSContext{}, nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestPage was never called")
	}
	if got.Target != "2" {
		t.Fatalf("PageRequest.Target = %q, want %q", got.Target, "2")
	}
}

func TestRuntimeBrightnessAbsoluteAndDelta(t *testing.T) {
	rt, drv, cancel := testRuntime(t)
	defer cancel()

	ev := pageEvent(t, entities.Attrs{"brightness": "=40"})
	rt.Trigger(ev, entities.SDFSContext{}, nil)
	waitForBrightness(t, drv, 40)

	ev2 := pageEvent(t, entities.Attrs{"brightness": "+10"})
	rt.Trigger(ev2, entities.SDFSContext{}, nil)
	waitForBrightness(t, drv, 50)
}

func waitForBrightness(t *testing.T, drv *fakeDriver, want int32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&drv.brightness) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("brightness = %d, want %d", atomic.LoadInt32(&drv.brightness), want)
}

func TestRuntimeWaitDelaysRun(t *testing.T) {
	rt, drv, cancel := testRuntime(t)
	defer cancel()

	ev := pageEvent(t, entities.Attrs{"brightness": "=77", "wait": "50"})
	start := time.Now()
	rt.Trigger(ev, entities.SDFSContext{}, nil)

	// Immediately after Trigger, the wait delay should not have fired yet.
	if atomic.LoadInt32(&drv.brightness) == 77 {
		t.Fatal("brightness applied before wait elapsed")
	}
	waitForBrightness(t, drv, 77)
	if time.Since(start) < 40*time.Millisecond {
		t.Fatal("action ran before its wait delay")
	}
}

func TestRuntimeDurationMaxRunsOnEarlyRelease(t *testing.T) {
	rt, drv, cancel := testRuntime(t)
	defer cancel()

	ev := pageEvent(t, entities.Attrs{"brightness": "=33", "duration-max": "10000"})
	released := make(chan struct{})
	rt.Trigger(ev, entities.SDFSContext{}, released)
	close(released) // released immediately: should still run since it beat the duration-max deadline
	waitForBrightness(t, drv, 33)
}
