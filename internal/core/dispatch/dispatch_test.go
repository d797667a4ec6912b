package dispatch

import (
	"testing"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

func testEvent(t *testing.T, kind entities.EventKind) *entities.Event {
	t.Helper()
	ev, err := entities.NewEvent("/deck/PAGE_1/KEY_ROW_1_COL_1/ON_"+string(kind), time.Now(), kind, entities.Attrs{})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestIndexToRowCol(t *testing.T) {
	d := New(3, 5, Handlers{}, logging.New(logging.LevelError))
	row, col := d.IndexToRowCol(7)
	if row != 2 || col != 3 {
		t.Fatalf("IndexToRowCol(7) = (%d,%d), want (2,3)", row, col)
	}
}

func TestPressThenReleaseRunsHandlers(t *testing.T) {
	press := testEvent(t, entities.EventPress)
	release := testEvent(t, entities.EventRelease)

	var pressRan, releaseRan bool
	h := Handlers{
		KeyAt: func(row, col int) (*entities.Event, *entities.Event, *entities.Event, bool) {
			return press, nil, release, true
		},
		RunPress:   func(ev *entities.Event) { pressRan = true },
		RunRelease: func(ev *entities.Event, durationMS int64) { releaseRan = true },
		ArmLongpress: func(ev *entities.Event, fn func()) func() {
			return func() {}
		},
	}
	d := New(1, 5, h, logging.New(logging.LevelError))
	d.HandleKey(0, true)
	if !pressRan {
		t.Fatal("press handler did not run")
	}
	d.HandleKey(0, false)
	if !releaseRan {
		t.Fatal("release handler did not run")
	}
}

func TestSecondPressIgnoredWhileHeld(t *testing.T) {
	press := testEvent(t, entities.EventPress)
	runs := 0
	h := Handlers{
		KeyAt: func(row, col int) (*entities.Event, *entities.Event, *entities.Event, bool) {
			return press, nil, nil, true
		},
		RunPress: func(ev *entities.Event) { runs++ },
		ArmLongpress: func(ev *entities.Event, fn func()) func() {
			return func() {}
		},
	}
	d := New(1, 5, h, logging.New(logging.LevelError))
	d.HandleKey(0, true)
	d.HandleKey(1, true)
	if runs != 1 {
		t.Fatalf("press handler ran %d times, want 1 (second press should be ignored)", runs)
	}
}

func TestReleaseBelowDurationMinSkipped(t *testing.T) {
	release := testEvent(t, entities.EventRelease)
	release.Args.DurationMin = 1000
	ran := false
	h := Handlers{
		KeyAt: func(row, col int) (*entities.Event, *entities.Event, *entities.Event, bool) {
			return nil, nil, release, true
		},
		RunRelease: func(ev *entities.Event, durationMS int64) { ran = true },
		ArmLongpress: func(ev *entities.Event, fn func()) func() {
			return func() {}
		},
	}
	d := New(1, 5, h, logging.New(logging.LevelError))
	d.HandleKey(0, true)
	d.HandleKey(0, false)
	if ran {
		t.Fatal("release should have been skipped: press duration was below duration-min")
	}
}
