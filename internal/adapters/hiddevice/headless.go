package hiddevice

import (
	"context"

	"github.com/twidi/streamdeckfs-go/internal/core/device"
)

var _ device.Driver = (*Headless)(nil)

// Headless implements device.Driver without any physical hardware, so the
// daemon can still parse, render, and hold state for a deck whose device is
// absent (SPEC_FULL.md §D: "the daemon runs headless, rendering but not
// writing"). Geometry comes entirely from the `.model` file's device class.
type Headless struct {
	desc       descriptor
	brightness int
	onKey      func(index int, pressed bool)
}

// NewHeadless builds a Headless driver from a `.model` device class name.
func NewHeadless(modelClass string) (*Headless, error) {
	desc, err := descriptorByModelClass(modelClass)
	if err != nil {
		return nil, err
	}
	return &Headless{desc: desc, brightness: 100}, nil
}

func (h *Headless) Geometry() (rows, cols, keyWidth, keyHeight int, nativeFormat string) {
	return h.desc.Rows, h.desc.Cols, h.desc.KeyWidth, h.desc.KeyHeight, h.desc.Format
}

func (h *Headless) SetKeyImage(ctx context.Context, index int, data []byte) error { return nil }

func (h *Headless) SetBrightness(ctx context.Context, percent int) error {
	h.brightness = percent
	return nil
}

func (h *Headless) Reset(ctx context.Context) error { return nil }

func (h *Headless) Close() error { return nil }

func (h *Headless) SetKeyCallback(fn func(index int, pressed bool)) { h.onKey = fn }

func (h *Headless) Open(ctx context.Context) error { return nil }

func (h *Headless) Connected() bool { return false }

func (h *Headless) Serial() string { return "headless" }
