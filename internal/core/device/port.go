// Package device declares the hardware abstraction boundary between the
// daemon's core and the physical Stream Deck. Per spec.md §6, the actual
// HID driver — report framing, device-specific image encoding — is a black
// box external collaborator; only this narrow port is specified here.
package device

import "context"

// Driver is the HID device abstraction every physical or headless deck
// driver must implement (spec.md §6).
type Driver interface {
	// Geometry returns the key grid, per-key pixel size, and the device's
	// native key image format name (e.g. "jpeg", "bmp").
	Geometry() (rows, cols, keyWidth, keyHeight int, nativeFormat string)

	// SetKeyImage pushes already-encoded, device-native image bytes to one
	// key, addressed by its flat 0-based index (row*cols+col).
	SetKeyImage(ctx context.Context, index int, data []byte) error

	// SetBrightness sets overall key illumination, 0-100.
	SetBrightness(ctx context.Context, percent int) error

	// Reset clears every key image and returns the device to its standby
	// image.
	Reset(ctx context.Context) error

	// Close releases the underlying HID handle.
	Close() error

	// SetKeyCallback installs the function invoked on every press and
	// release event the device reports. Replacing a previous callback
	// discards it.
	SetKeyCallback(fn func(index int, pressed bool))

	// Open establishes (or re-establishes) the HID connection.
	Open(ctx context.Context) error

	// Connected reports whether the device handle is currently live.
	Connected() bool

	// Serial returns the device's serial number, used to key `.model`
	// reconnection and the SDFS_SERIAL substitution variable.
	Serial() string
}
