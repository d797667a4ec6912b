package render

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"
)

type fakeDriver struct {
	mu    sync.Mutex
	calls map[int]int
}

func newFakeDriver() *fakeDriver { return &fakeDriver{calls: make(map[int]int)} }

func (f *fakeDriver) Geometry() (int, int, int, int, string) { return 2, 3, 72, 72, "rgb" }
func (f *fakeDriver) SetKeyImage(ctx context.Context, index int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[index]++
	return nil
}
func (f *fakeDriver) SetBrightness(ctx context.Context, percent int) error { return nil }
func (f *fakeDriver) Reset(ctx context.Context) error                     { return nil }
func (f *fakeDriver) Close() error                                        { return nil }
func (f *fakeDriver) SetKeyCallback(fn func(index int, pressed bool))     {}
func (f *fakeDriver) Open(ctx context.Context) error                      { return nil }
func (f *fakeDriver) Connected() bool                                     { return true }
func (f *fakeDriver) Serial() string                                      { return "fake" }

func (f *fakeDriver) count(index int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[index]
}

func TestWriterCoalescesBurst(t *testing.T) {
	drv := newFakeDriver()
	ras := &fakeRasterizer{}
	w := NewWriter(drv, ras, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 10; i++ {
		w.Submit(WriteRequest{KeyIndex: 2, Frame: frame, Format: "rgb"})
	}

	time.Sleep(100 * time.Millisecond)
	if got := drv.count(2); got != 1 {
		t.Fatalf("SetKeyImage called %d times for key 2, want exactly 1 (coalesced burst)", got)
	}
}
