package hiddevice

import "fmt"

// vidElGato is the USB vendor ID shared by every Elgato Stream Deck model.
const vidElGato = 0x0fd9

// PID identifies a specific Stream Deck model's USB product ID.
type PID uint16

const (
	PIDOriginal   PID = 0x0060
	PIDOriginalV2 PID = 0x006d
	PIDMK2        PID = 0x0080
	PIDXL         PID = 0x006c
	PIDMini       PID = 0x0063
)

// descriptor captures the per-model protocol constants needed to drive one
// Stream Deck family: grid geometry, key pixel size, native image format,
// and the feature-report layout for brightness/reset/serial. Modeled on
// the per-model descriptor table in the ardilla reference driver
// (other_examples/417510a1_kortschak-ardilla__deck.go.go), trimmed to the
// fields this daemon's rendering and writer paths actually consume.
type descriptor struct {
	PID        PID
	Rows, Cols int
	KeyWidth   int
	KeyHeight  int
	Format     string // "jpeg" or "bmp", native per-key image encoding

	reportID        byte
	brightnessCmd   []byte
	resetCmd        []byte
	imageHeaderLen  int
	imageReportLen  int
	keyStatesOffset int
}

var descriptors = map[PID]descriptor{
	PIDOriginal: {
		PID: PIDOriginal, Rows: 3, Cols: 5, KeyWidth: 72, KeyHeight: 72, Format: "bmp",
		reportID: 0x02, brightnessCmd: []byte{0x05, 0x55, 0xaa, 0xd1, 0x01}, resetCmd: []byte{0x0b, 0x63},
		imageHeaderLen: 16, imageReportLen: 8191, keyStatesOffset: 1,
	},
	PIDOriginalV2: {
		PID: PIDOriginalV2, Rows: 3, Cols: 5, KeyWidth: 72, KeyHeight: 72, Format: "jpeg",
		reportID: 0x02, brightnessCmd: []byte{0x03, 0x08}, resetCmd: []byte{0x03, 0x02},
		imageHeaderLen: 8, imageReportLen: 1024, keyStatesOffset: 4,
	},
	PIDMK2: {
		PID: PIDMK2, Rows: 3, Cols: 5, KeyWidth: 72, KeyHeight: 72, Format: "jpeg",
		reportID: 0x02, brightnessCmd: []byte{0x03, 0x08}, resetCmd: []byte{0x03, 0x02},
		imageHeaderLen: 8, imageReportLen: 1024, keyStatesOffset: 4,
	},
	PIDXL: {
		PID: PIDXL, Rows: 4, Cols: 8, KeyWidth: 96, KeyHeight: 96, Format: "jpeg",
		reportID: 0x02, brightnessCmd: []byte{0x03, 0x08}, resetCmd: []byte{0x03, 0x02},
		imageHeaderLen: 8, imageReportLen: 1024, keyStatesOffset: 4,
	},
	PIDMini: {
		PID: PIDMini, Rows: 2, Cols: 3, KeyWidth: 80, KeyHeight: 80, Format: "bmp",
		reportID: 0x02, brightnessCmd: []byte{0x05, 0x55, 0xaa, 0xd1, 0x01}, resetCmd: []byte{0x0b, 0x63},
		imageHeaderLen: 16, imageReportLen: 1024, keyStatesOffset: 1,
	},
}

// descriptorByModelClass resolves a `.model` file's device class name
// (§6 — used "to reconstruct geometry when the device is absent") to a
// descriptor, for headless rendering without physical hardware attached.
func descriptorByModelClass(class string) (descriptor, error) {
	switch class {
	case "original":
		return descriptors[PIDOriginal], nil
	case "original-v2", "mk2":
		return descriptors[PIDOriginalV2], nil
	case "xl":
		return descriptors[PIDXL], nil
	case "mini":
		return descriptors[PIDMini], nil
	default:
		return descriptor{}, fmt.Errorf("hiddevice: unknown model class %q", class)
	}
}

func (d descriptor) imageHeader(key, page, length int, isLast bool) []byte {
	h := make([]byte, d.imageHeaderLen)
	h[0] = d.reportID
	h[1] = 0x07
	h[2] = byte(key)
	if isLast {
		h[3] = 1
	}
	h[4] = byte(length & 0xff)
	h[5] = byte(length >> 8)
	h[6] = byte(page & 0xff)
	h[7] = byte(page >> 8)
	return h
}
