package render

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/core/device"
)

// WriteRequest is one `(key_index, image_or_None)` message per §4.6. A nil
// Frame is not used; the sentinel to flush-and-exit is a closed channel,
// matched idiomatically here by cancelling the Writer's context.
type WriteRequest struct {
	KeyIndex int
	Frame    image.Image
	Format   string
}

// Writer is the dedicated background worker of §4.6: it coalesces bursts of
// writes to the same key index behind a short delay, then drains every
// ready message in one critical section under the device's exclusive lock.
type Writer struct {
	drv   device.Driver
	ras   Rasterizer
	delay time.Duration

	in chan WriteRequest

	mu      sync.Mutex
	pending map[int]WriteRequest
	timer   *time.Timer
	wakeCh  chan struct{}
}

// NewWriter returns a Writer that encodes frames with ras and sends them to
// drv, coalescing for delay (§4.6's "~10ms").
func NewWriter(drv device.Driver, ras Rasterizer, delay time.Duration) *Writer {
	return &Writer{
		drv:     drv,
		ras:     ras,
		delay:   delay,
		in:      make(chan WriteRequest, 256),
		pending: make(map[int]WriteRequest),
		wakeCh:  make(chan struct{}, 1),
	}
}

// Submit enqueues a frame for key index. Later calls for the same index
// before the pending write fires replace the earlier one (§4.6 coalescing).
func (w *Writer) Submit(req WriteRequest) {
	select {
	case w.in <- req:
	default:
		// Buffer full: fall back to direct coalescing under the lock so a
		// hot key never blocks the renderer.
		w.mu.Lock()
		w.pending[req.KeyIndex] = req
		w.mu.Unlock()
		w.poke()
	}
}

func (w *Writer) poke() {
	select {
	case w.wakeCh <- struct{}{}:
	default:
	}
}

// Run drains w.in, coalescing into w.pending, and flushes it delay after
// the first message of a quiet period arrives. It returns when ctx is
// cancelled, after a final flush.
func (w *Writer) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	armed := false

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case req := <-w.in:
			w.mu.Lock()
			w.pending[req.KeyIndex] = req
			w.mu.Unlock()
			if !armed {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
				armed = true
			}
		case <-w.wakeCh:
			if !armed {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
				armed = true
			}
		case <-timer.C:
			armed = false
			w.flush()
		}
	}
}

// flush drains every pending message under the device's exclusive lock,
// which device.Driver.SetKeyImage is responsible for holding internally
// (§5: "the device handle is behind an exclusive lock held only by the
// image writer during set_key_image").
func (w *Writer) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[int]WriteRequest)
	w.mu.Unlock()

	ctx := context.Background()
	for idx, req := range batch {
		data, err := w.ras.EncodeNative(req.Frame, req.Format)
		if err != nil {
			continue
		}
		if err := w.drv.SetKeyImage(ctx, idx, data); err != nil {
			// Transport errors are handled upstream as a device-unplug
			// condition (§7 taxonomy item 4); the writer itself just stops
			// trying this batch.
			return
		}
	}
}
