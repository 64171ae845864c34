package pvrz

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/infinity-engine/ieformats/internal/reader"
)

func buildPvrz(t *testing.T, hdr Header, payload []byte) []byte {
	t.Helper()

	var inflated bytes.Buffer
	binary.Write(&inflated, binary.LittleEndian, hdr.Version)
	binary.Write(&inflated, binary.LittleEndian, hdr.Flags)
	binary.Write(&inflated, binary.LittleEndian, uint64(hdr.PixelFormat))
	binary.Write(&inflated, binary.LittleEndian, hdr.ColorSpace)
	binary.Write(&inflated, binary.LittleEndian, hdr.ChannelType)
	binary.Write(&inflated, binary.LittleEndian, hdr.Height)
	binary.Write(&inflated, binary.LittleEndian, hdr.Width)
	binary.Write(&inflated, binary.LittleEndian, hdr.Depth)
	binary.Write(&inflated, binary.LittleEndian, hdr.Surfaces)
	binary.Write(&inflated, binary.LittleEndian, hdr.Faces)
	binary.Write(&inflated, binary.LittleEndian, hdr.MipMaps)
	binary.Write(&inflated, binary.LittleEndian, hdr.MetadataSize)
	inflated.Write(make([]byte, hdr.MetadataSize))
	inflated.Write(payload)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(inflated.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(0x50565203))
	out.Write(compressed.Bytes())
	return out.Bytes()
}

// solidBC1Block returns an 8-byte BC1 block that decodes to a single
// solid color (both reference colors identical, indices all zero).
func solidBC1Block(r, g, b uint8) []byte {
	c := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	block := make([]byte, 8)
	block[0] = byte(c)
	block[1] = byte(c >> 8)
	block[2] = byte(c)
	block[3] = byte(c >> 8)
	return block
}

func TestParsePvrzDxt1Header(t *testing.T) {
	hdr := Header{
		Version: 55727696, Flags: 0, PixelFormat: DXT1,
		ColorSpace: 0, ChannelType: 0,
		Height: 4, Width: 4, Depth: 1,
		Surfaces: 1, Faces: 1, MipMaps: 1, MetadataSize: 0,
	}
	payload := solidBC1Block(200, 100, 50)
	data := buildPvrz(t, hdr, payload)

	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	img, err := Parse(r)
	if err != nil {
		t.Fatal(err)
	}
	if img.Header.Width != 4 || img.Header.Height != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4", img.Header.Width, img.Header.Height)
	}
	if img.Header.PixelFormat != DXT1 {
		t.Errorf("PixelFormat = %v, want DXT1", img.Header.PixelFormat)
	}
	if img.Pixels.Bounds().Dx() != 4 || img.Pixels.Bounds().Dy() != 4 {
		t.Fatalf("Pixels bounds = %v, want 4x4", img.Pixels.Bounds())
	}

	got := img.Pixels.RGBAAt(0, 0)
	want := color.RGBA{R: 206, G: 101, B: 49, A: 255}
	if got != want {
		t.Errorf("RGBAAt(0,0) = %+v, want %+v", got, want)
	}
}

func TestParsePvrzRejectsUnknownPixelFormat(t *testing.T) {
	hdr := Header{Version: 1, PixelFormat: PixelFormat(99), Height: 4, Width: 4, Depth: 1, Surfaces: 1, Faces: 1, MipMaps: 1}
	data := buildPvrz(t, hdr, make([]byte, 8))

	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = Parse(r)
	if err == nil {
		t.Fatal("expected decode error for unknown pixel_format")
	}
}

func TestDecodeBC1FourColorBlock(t *testing.T) {
	block := make([]byte, 8)
	c0 := uint16(0x1F<<11 | 0<<5 | 0) // pure red
	c1 := uint16(0)                   // black
	block[0], block[1] = byte(c0), byte(c0>>8)
	block[2], block[3] = byte(c1), byte(c1>>8)
	// indices: pixel 0 -> color0, pixel 1 -> color1, rest -> color0
	block[4] = 0b00000100

	var out [16]color.RGBA
	decodeBC1Block(block, &out)

	if out[0].R < 250 {
		t.Errorf("pixel 0 = %+v, want near-pure red", out[0])
	}
	if out[1].R != 0 || out[1].G != 0 || out[1].B != 0 {
		t.Errorf("pixel 1 = %+v, want black", out[1])
	}
}

func TestDecodeBC3AlphaBlock(t *testing.T) {
	block := make([]byte, 16)
	block[0] = 255 // alpha0
	block[1] = 0   // alpha1 -> interpolated 8-value ramp
	// all alpha indices 0 -> alpha0 everywhere
	color0 := solidBC1Block(255, 255, 255)
	copy(block[8:], color0)

	var out [16]color.RGBA
	decodeBC3Block(block, &out)

	for i, px := range out {
		if px.A != 255 {
			t.Errorf("pixel %d alpha = %d, want 255", i, px.A)
		}
		// color0 == color1 (both white): BC3's embedded color block must
		// always interpolate as four-color, never fall back to BC1's
		// punch-through (transparent black) mode.
		if px.R < 250 || px.G < 250 || px.B < 250 {
			t.Errorf("pixel %d rgb = %+v, want near-white", i, px)
		}
	}
}
