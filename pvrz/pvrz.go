// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package pvrz parses zlib-wrapped PVR texture containers and decodes
// their BC1/BC3 block-compressed payload into RGBA images.
package pvrz

import (
	"fmt"
	"image"
	"image/color"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
)

// PixelFormat names the block-compression scheme of a PVR payload.
// Infinity Engine games only ever use two of the many formats the PVR
// container can describe.
type PixelFormat uint64

// Recognized pixel formats.
const (
	DXT1 PixelFormat = 7  // BC1, 1-bit alpha
	DXT5 PixelFormat = 11 // BC3, 8-bit alpha
)

func (p PixelFormat) String() string {
	switch p {
	case DXT1:
		return "DXT1/BC1"
	case DXT5:
		return "DXT5/BC3"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(p))
	}
}

// headerSize is the fixed size, in bytes, of the inflated PVR header
// (everything from version through metadata_size).
const headerSize = 52

// Header is the inflated PVR container header.
type Header struct {
	Version      uint32
	Flags        uint32
	PixelFormat  PixelFormat
	ColorSpace   uint32
	ChannelType  uint32
	Height       uint32
	Width        uint32
	Depth        uint32
	Surfaces     uint32
	Faces        uint32
	MipMaps      uint32
	MetadataSize uint32
}

// Image is a fully decoded PVRZ texture.
type Image struct {
	Header Header
	Pixels *image.RGBA
}

// Parse reads a PVRZ file (a leading u32 that is ignored, then a zlib
// stream wrapping a PVR header and its BCn payload) and decodes it to
// RGBA.
func Parse(r *reader.Reader) (*Image, error) {
	if err := r.Seek(0); err != nil {
		return nil, err
	}

	// Leading u32: in other engines this may signal endianness, but no
	// fixture in this domain exercises anything but little-endian PVR
	// payloads, so it is read and discarded.
	if _, err := r.ReadU32(); err != nil {
		return nil, err
	}

	zr, err := r.ZlibView()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	hdr, err := readHeader(zr)
	if err != nil {
		return nil, err
	}

	if err := zr.Skip(int64(hdr.MetadataSize)); err != nil {
		return nil, err
	}

	payload, err := zr.ReadAll()
	if err != nil {
		return nil, err
	}

	pixels, err := decode(hdr, payload)
	if err != nil {
		return nil, err
	}

	return &Image{Header: hdr, Pixels: pixels}, nil
}

type headerReader interface {
	ReadU32() (uint32, error)
	ReadU64() (uint64, error)
}

func readHeader(zr headerReader) (Header, error) {
	var h Header
	var err error

	if h.Version, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Flags, err = zr.ReadU32(); err != nil {
		return h, err
	}
	rawFormat, err := zr.ReadU64()
	if err != nil {
		return h, err
	}
	if h.ColorSpace, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.ChannelType, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Height, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Width, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Depth, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Surfaces, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.Faces, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.MipMaps, err = zr.ReadU32(); err != nil {
		return h, err
	}
	if h.MetadataSize, err = zr.ReadU32(); err != nil {
		return h, err
	}

	switch PixelFormat(rawFormat) {
	case DXT1, DXT5:
		h.PixelFormat = PixelFormat(rawFormat)
	default:
		return h, &dispatch.DecodeError{
			What:   "pvrz.readHeader",
			Offset: -1,
			Reason: fmt.Sprintf("unexpected pixel_format %d, want 7 (DXT1) or 11 (DXT5)", rawFormat),
		}
	}

	return h, nil
}

func decode(hdr Header, payload []byte) (*image.RGBA, error) {
	width, height := int(hdr.Width), int(hdr.Height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	blocksWide := (width + 3) / 4
	blocksHigh := (height + 3) / 4

	var blockSize int
	switch hdr.PixelFormat {
	case DXT1:
		blockSize = 8
	case DXT5:
		blockSize = 16
	}

	idx := 0
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			end := idx + blockSize
			if end > len(payload) {
				return nil, &dispatch.DecodeError{
					What:   "pvrz.decode",
					Offset: int64(idx),
					Reason: "block-compressed payload shorter than width/height implies",
				}
			}
			block := payload[idx:end]
			idx = end

			var pixels [16]color.RGBA
			switch hdr.PixelFormat {
			case DXT1:
				decodeBC1Block(block, &pixels)
			case DXT5:
				decodeBC3Block(block, &pixels)
			}

			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= height {
					continue
				}
				for px := 0; px < 4; px++ {
					x := bx*4 + px
					if x >= width {
						continue
					}
					img.SetRGBA(x, y, pixels[py*4+px])
				}
			}
		}
	}

	return img, nil
}
