package bam

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/infinity-engine/ieformats/internal/reader"
)

// buildV1 assembles a minimal, byte-accurate BAM v1 file: a 2-entry
// palette (index 0 is the green transparency color, index 1 is opaque
// red), one RLE-compressed frame, and one cycle referencing it twice.
func buildV1(t *testing.T) []byte {
	t.Helper()

	const (
		headerSize = 24
		frameW     = 4
		frameH     = 4
		rleIndex   = 0
	)

	paletteOffset := uint32(headerSize)
	palette := []color.RGBA{
		{R: 0, G: 255, B: 0, A: 0}, // transparency, index 0
		{R: 200, G: 0, B: 0, A: 255},
	}
	paletteSize := uint32(len(palette) * 4)

	framesOffset := paletteOffset + paletteSize
	const frameCount = 1
	framesSize := uint32(frameCount * 12)

	// the cycle table immediately follows the frame table
	const cyclesSize = 4 // one cycle entry

	lookupOffset := framesOffset + framesSize + cyclesSize
	const lookupEntries = 2 // one cycle referencing frame 0 twice
	lookupSize := uint32(lookupEntries * 2)

	pixelDataOffset := lookupOffset + lookupSize

	var buf bytes.Buffer
	buf.WriteString("BAM V1  ")
	binary.Write(&buf, binary.LittleEndian, uint16(frameCount))
	buf.WriteByte(1) // cycleCount
	buf.WriteByte(rleIndex)
	binary.Write(&buf, binary.LittleEndian, framesOffset)
	binary.Write(&buf, binary.LittleEndian, paletteOffset)
	binary.Write(&buf, binary.LittleEndian, lookupOffset)

	for _, p := range palette {
		buf.WriteByte(p.B)
		buf.WriteByte(p.G)
		buf.WriteByte(p.R)
		buf.WriteByte(p.A)
	}

	// frame entry: width, height, cx, cy, data_bits (compressed: high bit clear)
	binary.Write(&buf, binary.LittleEndian, uint16(frameW))
	binary.Write(&buf, binary.LittleEndian, uint16(frameH))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(3))
	binary.Write(&buf, binary.LittleEndian, pixelDataOffset) // high bit clear => compressed

	// cycle entry: 2 frame indices starting at lookup index 0
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	// lookup table: frame index 0, twice
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	// pixel data: one RLE run of the marker color covering all 16 pixels
	buf.WriteByte(rleIndex)
	buf.WriteByte(15) // run length byte means count-1, so 16 pixels

	return buf.Bytes()
}

func openV1(t *testing.T, data []byte) *V1 {
	t.Helper()
	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	v, err := ParseV1(r)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestParseV1RLEFrame(t *testing.T) {
	v := openV1(t, buildV1(t))

	if len(v.Frames) != 1 {
		t.Fatalf("Frames = %d, want 1", len(v.Frames))
	}
	frame := v.Frames[0]
	if frame.Width != 4 || frame.Height != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4", frame.Width, frame.Height)
	}
	if len(frame.Indices) != 16 {
		t.Fatalf("Indices length = %d, want width*height = 16", len(frame.Indices))
	}
	for i, idx := range frame.Indices {
		if idx != 0 {
			t.Errorf("Indices[%d] = %d, want 0 (RLE marker color)", i, idx)
		}
	}
}

func TestParseV1TransparencyOverwrite(t *testing.T) {
	v := openV1(t, buildV1(t))

	got := v.Palette[0]
	want := color.RGBA{R: 0, G: 255, B: 0, A: 0}
	if got != want {
		t.Errorf("Palette[0] = %+v, want %+v (alpha-zeroed green)", got, want)
	}
}

func TestParseV1Cycle(t *testing.T) {
	v := openV1(t, buildV1(t))

	if len(v.Cycles) != 1 {
		t.Fatalf("Cycles = %d, want 1", len(v.Cycles))
	}
	if len(v.Cycles[0].FrameIndices) != 2 {
		t.Fatalf("cycle frame count = %d, want 2", len(v.Cycles[0].FrameIndices))
	}
	for _, idx := range v.Cycles[0].FrameIndices {
		if idx != 0 {
			t.Errorf("cycle frame index = %d, want 0", idx)
		}
	}
}

func TestMaterializeV1(t *testing.T) {
	v := openV1(t, buildV1(t))
	out := v.Materialize(0)
	if len(out) != 16*4 {
		t.Fatalf("materialized length = %d, want %d", len(out), 16*4)
	}
	// Every pixel resolves to the RLE marker color, which is the
	// green transparency entry (alpha-zeroed).
	for i := 0; i < 16; i++ {
		if out[i*4] != 0 || out[i*4+1] != 255 || out[i*4+2] != 0 || out[i*4+3] != 0 {
			t.Errorf("pixel %d = %v, want transparent green", i, out[i*4:i*4+4])
		}
	}
}
