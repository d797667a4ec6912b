// Package hiddevice implements the core/device.Driver port against a real
// Elgato Stream Deck over USB HID, grounded on the report-framing and
// reconnect-loop shape of other_examples/417510a1_kortschak-ardilla's deck.go,
// using the same sstallion/go-hid transport library. The wire protocol
// details (report IDs, header layout) are a deliberately small, best-effort
// rendition — per spec.md §1/§6 the HID driver internals are an external
// collaborator, not something this daemon needs to reimplement exactly.
package hiddevice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/twidi/streamdeckfs-go/internal/core/device"
)

var _ device.Driver = (*Driver)(nil)

// ErrNotConnected mirrors ardilla's sentinel: the device vanished from the
// bus (unplug), which the reconciler treats as §7.4's "treated as unplug".
var ErrNotConnected = errors.New("hiddevice: device not connected")

type hidHandle interface {
	io.Reader
	io.Writer
	io.Closer
	GetFeatureReport([]byte) (int, error)
	SendFeatureReport([]byte) (int, error)
}

// Driver talks to one physical Stream Deck. A zero Driver is not usable;
// build one with New or NewForSerial, then call Open.
type Driver struct {
	desc   descriptor
	serial string

	mu  sync.Mutex // guards dev, onKey and pollStop, per §5's "device handle behind an exclusive lock"
	dev hidHandle

	pollStop chan struct{}
	pollWG   sync.WaitGroup
	onKey    func(index int, pressed bool)
}

// New constructs a Driver bound to a model class (from `.model`) without
// opening the device yet, so geometry is available even headless (§6,
// SPEC_FULL.md §D).
func New(modelClass string) (*Driver, error) {
	desc, err := descriptorByModelClass(modelClass)
	if err != nil {
		return nil, err
	}
	return &Driver{desc: desc}, nil
}

// NewForSerial is like New but also pins the physical device to reconnect
// to by serial number.
func NewForSerial(modelClass, serial string) (*Driver, error) {
	d, err := New(modelClass)
	if err != nil {
		return nil, err
	}
	d.serial = serial
	return d, nil
}

func (d *Driver) Geometry() (rows, cols, keyWidth, keyHeight int, nativeFormat string) {
	return d.desc.Rows, d.desc.Cols, d.desc.KeyWidth, d.desc.KeyHeight, d.desc.Format
}

func (d *Driver) Serial() string { return d.serial }

// Open establishes the HID connection, by serial if known, otherwise the
// first device matching the bound model's PID.
func (d *Driver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		h   *hid.Device
		err error
	)
	if d.serial != "" {
		h, err = hid.Open(vidElGato, uint16(d.desc.PID), d.serial)
	} else {
		h, err = hid.OpenFirst(vidElGato, uint16(d.desc.PID))
	}
	if err != nil {
		return fmt.Errorf("hiddevice: open: %w", err)
	}
	d.dev = h

	if d.serial == "" {
		d.serial, _ = d.readSerialLocked()
	}

	d.startPollingLocked()
	return nil
}

func (d *Driver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dev != nil
}

// Reconnect retries Open every delay until ctx is cancelled or the device
// reappears on the bus, per §7.4 ("unrender, close, wait for reconnect").
func (d *Driver) Reconnect(ctx context.Context, delay time.Duration) error {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Open(ctx); err == nil {
				return nil
			}
		}
	}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	dev := d.dev
	d.dev = nil
	stop := d.pollStop
	d.pollStop = nil
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		d.pollWG.Wait()
	}
	if dev == nil {
		return nil
	}
	return dev.Close()
}

func (d *Driver) SetKeyCallback(fn func(index int, pressed bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onKey = fn
}

func (d *Driver) SetBrightness(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("hiddevice: brightness out of range: %d", percent)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotConnected
	}
	buf := make([]byte, len(d.desc.brightnessCmd)+1)
	copy(buf, d.desc.brightnessCmd)
	buf[len(d.desc.brightnessCmd)] = byte(percent)
	_, err := d.dev.SendFeatureReport(buf)
	return d.checkConnectedLocked(err)
}

func (d *Driver) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotConnected
	}
	_, err := d.dev.SendFeatureReport(d.desc.resetCmd)
	return d.checkConnectedLocked(err)
}

// SetKeyImage streams already-encoded, device-native image bytes to one
// key, split across fixed-size image reports per the descriptor's
// imageReportLen, mirroring ardilla's SetImage page-chunking loop.
func (d *Driver) SetKeyImage(ctx context.Context, index int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotConnected
	}

	chunkLen := d.desc.imageReportLen - d.desc.imageHeaderLen
	if chunkLen <= 0 {
		return fmt.Errorf("hiddevice: invalid report geometry")
	}

	r := bytes.NewReader(data)
	pkt := make([]byte, d.desc.imageReportLen)
	page := 0
	for {
		n, err := r.Read(pkt[d.desc.imageHeaderLen:])
		if err != nil && err != io.EOF {
			return err
		}
		done := r.Len() == 0
		copy(pkt[:d.desc.imageHeaderLen], d.desc.imageHeader(index, page, n, done))
		for i := d.desc.imageHeaderLen + n; i < len(pkt); i++ {
			pkt[i] = 0
		}
		if _, err := d.dev.Write(pkt); err != nil {
			return d.checkConnectedLocked(err)
		}
		page++
		if done {
			return nil
		}
	}
}

func (d *Driver) readSerialLocked() (string, error) {
	buf := make([]byte, 32)
	buf[0] = 0x06
	_, err := d.dev.GetFeatureReport(buf)
	if err != nil {
		return "", err
	}
	idx := bytes.IndexByte(buf[2:], 0)
	if idx < 0 {
		return string(buf[2:]), nil
	}
	return string(buf[2 : 2+idx]), nil
}

func (d *Driver) checkConnectedLocked(err error) error {
	if err == nil {
		return nil
	}
	return ErrNotConnected
}

// startPollingLocked launches the background read loop that translates raw
// key-state reports into (index, pressed) callbacks. Caller must hold mu.
func (d *Driver) startPollingLocked() {
	stop := make(chan struct{})
	d.pollStop = stop
	dev := d.dev
	numKeys := d.desc.Rows * d.desc.Cols
	offset := d.desc.keyStatesOffset

	d.pollWG.Add(1)
	go func() {
		defer d.pollWG.Done()
		prev := make([]bool, numKeys)
		buf := make([]byte, offset+numKeys)
		for {
			select {
			case <-stop:
				return
			default:
			}
			n, err := dev.Read(buf)
			if err != nil || n < offset {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			states := buf[offset:]
			d.mu.Lock()
			cb := d.onKey
			d.mu.Unlock()
			if cb == nil {
				continue
			}
			for i := 0; i < numKeys && i < len(states); i++ {
				pressed := states[i] != 0
				if pressed != prev[i] {
					prev[i] = pressed
					cb(i, pressed)
				}
			}
		}
	}()
}
