// Package dispatch implements the Input Dispatcher of spec.md §4.8: turns
// raw hardware (index, pressed) callbacks into row/col coordinates and runs
// the press/longpress/release pipeline, enforcing the single-pressed-key
// gate. Grounded on the teacher's event-dispatch goroutine shape (one
// channel-fed loop translating low-level callbacks into domain calls).
package dispatch

import (
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// Handlers is supplied by the reconciler/action runtime: the callbacks the
// dispatcher invokes once it has resolved a hardware event to a key and
// verified the single-key gate.
type Handlers struct {
	// KeyAt resolves (row,col) to the key's currently active events, or
	// ok=false if no such key exists in the live tree.
	KeyAt func(row, col int) (press, longpress, release *entities.Event, ok bool)

	// RunPress/RunLongpress/RunRelease execute one event's action pipeline
	// (§4.9); pressDurationMS is only meaningful for release.
	RunPress      func(ev *entities.Event)
	RunLongpress  func(ev *entities.Event)
	RunRelease    func(ev *entities.Event, pressDurationMS int64)

	// ArmLongpress starts a duration-min timer; if it elapses before
	// release, fn is invoked. ArmLongpress returns a cancel func.
	ArmLongpress func(ev *entities.Event, fn func()) (cancel func())
}

// Dispatcher owns the one-key-at-a-time gate of §4.8.
type Dispatcher struct {
	rows, cols int
	h          Handlers
	log        *logging.Logger

	pressedIndex   int
	pressed        bool
	pressedAt      time.Time
	longpressEvent *entities.Event
	cancelLongpress func()
	armed          bool // whether the longpress timer fired before release
}

// New returns a Dispatcher for a deck with the given grid.
func New(rows, cols int, h Handlers, log *logging.Logger) *Dispatcher {
	return &Dispatcher{rows: rows, cols: cols, h: h, log: log, pressedIndex: -1}
}

// IndexToRowCol converts a hardware key index to 1-indexed (row, col), per
// §4.8: `row = index // cols + 1`, `col = index % cols + 1`.
func (d *Dispatcher) IndexToRowCol(index int) (row, col int) {
	return index/d.cols + 1, index%d.cols + 1
}

// HandleKey is the device's key callback, invoked on both press (pressed
// == true) and release (pressed == false).
func (d *Dispatcher) HandleKey(index int, pressed bool) {
	if pressed {
		d.onPress(index)
	} else {
		d.onRelease(index)
	}
}

func (d *Dispatcher) onPress(index int) {
	if d.pressed {
		d.log.Warn("ignoring press while another key is held", "index", index, "held_index", d.pressedIndex)
		return
	}
	row, col := d.IndexToRowCol(index)
	press, longpress, _, ok := d.h.KeyAt(row, col)
	if !ok {
		return
	}

	d.pressed = true
	d.pressedIndex = index
	d.pressedAt = time.Now()
	d.armed = false

	if longpress != nil {
		ev := longpress
		d.longpressEvent = ev
		d.cancelLongpress = d.h.ArmLongpress(ev, func() {
			d.armed = true
			d.h.RunLongpress(ev)
		})
	}
	if press != nil {
		d.h.RunPress(press)
	}
}

func (d *Dispatcher) onRelease(index int) {
	if !d.pressed || d.pressedIndex != index {
		return
	}
	row, col := d.IndexToRowCol(index)
	durationMS := time.Since(d.pressedAt).Milliseconds()

	if d.cancelLongpress != nil {
		d.cancelLongpress()
		d.cancelLongpress = nil
	}

	_, _, release, ok := d.h.KeyAt(row, col)
	d.pressed = false
	d.pressedIndex = -1
	d.longpressEvent = nil
	d.armed = false

	if !ok || release == nil {
		return
	}
	minDuration := int64(release.Args.DurationMin)
	if durationMS >= minDuration {
		d.h.RunRelease(release, durationMS)
	}
}
