package render

import (
	"sync"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/core/scheduler"
)

// Scroller drives one text line's scroll offset per §4.5's "Scrolling"
// paragraph: ticks every max(RENDER_IMAGE_DELAY, 1/|scroll_pixels|) seconds
// after a 1 second initial pause, advancing by elapsed*scroll_pixels and,
// once the source is exhausted, wrapping to -slotDimension (positive
// scroll) or +slotDimension (negative scroll).
type Scroller struct {
	sched        *scheduler.Scheduler
	renderDelay  time.Duration
	scrollPixels float64 // signed: sign determines direction
	slotDim      int
	sourceDim    int
	onTick       func(offset float64)

	mu       sync.Mutex
	offset   float64
	lastTick time.Time
	token    scheduler.Token
	running  bool
}

// NewScroller builds a Scroller for one text line. onTick is invoked (from
// the scheduler goroutine) with the new offset each time it changes.
func NewScroller(sched *scheduler.Scheduler, renderDelay time.Duration, scrollPixels float64, slotDim, sourceDim int, onTick func(offset float64)) *Scroller {
	return &Scroller{
		sched:        sched,
		renderDelay:  renderDelay,
		scrollPixels: scrollPixels,
		slotDim:      slotDim,
		sourceDim:    sourceDim,
		onTick:       onTick,
	}
}

// Start arms the initial 1-second pause and begins ticking. Safe to call
// once per activation; call Stop before Start if restarting.
func (s *Scroller) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	interval := s.tickInterval()
	s.token = s.sched.Every(time.Now().Add(time.Second), interval, 0, s.tick)
}

func (s *Scroller) tickInterval() time.Duration {
	rate := 1.0
	if s.scrollPixels != 0 {
		abs := s.scrollPixels
		if abs < 0 {
			abs = -abs
		}
		rate = 1.0 / abs
	}
	hz := rate
	if float64(s.renderDelay) > hz*float64(time.Second) {
		hz = float64(s.renderDelay) / float64(time.Second)
	}
	return time.Duration(hz * float64(time.Second))
}

func (s *Scroller) tick() {
	s.mu.Lock()
	now := time.Now()
	if s.lastTick.IsZero() {
		s.lastTick = now
	}
	elapsed := now.Sub(s.lastTick).Seconds()
	s.lastTick = now

	s.offset += elapsed * s.scrollPixels
	// Wrap once the absolute scroll exceeds the source dimension, so the
	// text re-enters from the trailing edge.
	if s.scrollPixels > 0 && s.offset > float64(s.sourceDim) {
		s.offset = float64(-s.slotDim)
	} else if s.scrollPixels < 0 && s.offset < -float64(s.sourceDim) {
		s.offset = float64(s.slotDim)
	}
	offset := s.offset
	s.mu.Unlock()

	s.onTick(offset)
}

// Stop cancels the ticker. Idempotent.
func (s *Scroller) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.token.Cancel()
	s.lastTick = time.Time{}
	s.offset = 0
}
