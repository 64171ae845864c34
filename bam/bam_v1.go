// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bam decodes the three Infinity Engine sprite container
// variants: BAM v1 (palettized, RLE-compressed), BAMC (zlib-wrapped
// BAM v1), and BAM v2 (tile-composited from external PVRZ pages).
package bam

import (
	"fmt"
	"image/color"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
)

// V1Frame is one palettized, possibly RLE-compressed sprite frame.
type V1Frame struct {
	Width, Height    uint16
	CenterX, CenterY uint16
	// Indices holds one palette index per pixel, row-major, length
	// exactly Width*Height.
	Indices []uint8
}

// V1Cycle is an ordered sequence of frame indices resolved through the
// frame lookup table at parse time.
type V1Cycle struct {
	FrameIndices []uint16
}

// V1 is a fully parsed BAM v1 sprite: a shared palette, a frame list
// storing palette indices (not colors), and a cycle list.
type V1 struct {
	Palette []color.RGBA
	Frames  []V1Frame
	Cycles  []V1Cycle
	// RLEIndex is the palette index whose occurrences introduce a
	// run-length byte in a compressed frame.
	RLEIndex uint8
}

// ParseV1 reads a BAM v1 body from r. r must be positioned at the
// start of the 8-byte "BAM V1  " signature.
func ParseV1(r *reader.Reader) (*V1, error) {
	rawSig, err := r.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "BAM V1  " {
		return nil, &dispatch.DecodeError{What: "bam.ParseV1", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", rawSig)}
	}
	return parseV1Body(r)
}

// parseV1Body parses the BAM v1 header and tables; the caller has
// already consumed the 8-byte signature.
func parseV1Body(r *reader.Reader) (*V1, error) {
	frameCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	cycleCount, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	rleIndex, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	framesOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	paletteOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	lookupOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	palette, err := parsePalette(r, int64(paletteOffset), int64(lookupOffset))
	if err != nil {
		return nil, err
	}

	frames := make([]V1Frame, frameCount)
	for i := uint16(0); i < frameCount; i++ {
		frame, err := parseV1Frame(r, int64(framesOffset)+int64(i)*12, rleIndex)
		if err != nil {
			return nil, err
		}
		frames[i] = frame
	}

	cycles := make([]V1Cycle, cycleCount)
	for i := uint8(0); i < cycleCount; i++ {
		cycle, err := parseV1Cycle(r, int64(lookupOffset))
		if err != nil {
			return nil, err
		}
		cycles[i] = cycle
	}

	return &V1{Palette: palette, Frames: frames, Cycles: cycles, RLEIndex: rleIndex}, nil
}

// parsePalette reads up to 256 BGRA palette entries between
// paletteOffset and lookupOffset. The first entry whose RGB is
// (0,255,0) is treated as the transparency index and rewritten to
// (0,255,0,0): a kept, intentional normalization (see the package's
// DESIGN.md entry on the green-transparency overwrite).
func parsePalette(r *reader.Reader, paletteOffset, lookupOffset int64) ([]color.RGBA, error) {
	count := int((lookupOffset - paletteOffset) / 4)
	if count > 256 {
		count = 256
	}
	if count < 0 {
		count = 0
	}

	if err := r.Seek(paletteOffset); err != nil {
		return nil, err
	}

	palette := make([]color.RGBA, count)
	transparencyIndex := 0
	foundTransparency := false

	for i := 0; i < count; i++ {
		raw, err := r.ReadExact(4)
		if err != nil {
			return nil, err
		}
		b, g, rr, a := raw[0], raw[1], raw[2], raw[3]
		if a == 0 {
			a = 255 // alpha 0 is backwards-compat full opacity, not transparency
		}
		if !foundTransparency && rr == 0 && g == 255 && b == 0 {
			transparencyIndex = i
			foundTransparency = true
		}
		palette[i] = color.RGBA{R: rr, G: g, B: b, A: a}
	}

	if count > 0 {
		palette[transparencyIndex] = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	}

	return palette, nil
}

func parseV1Frame(r *reader.Reader, offset int64, rleIndex uint8) (V1Frame, error) {
	if err := r.Seek(offset); err != nil {
		return V1Frame{}, err
	}
	width, err := r.ReadU16()
	if err != nil {
		return V1Frame{}, err
	}
	height, err := r.ReadU16()
	if err != nil {
		return V1Frame{}, err
	}
	centerX, err := r.ReadU16()
	if err != nil {
		return V1Frame{}, err
	}
	centerY, err := r.ReadU16()
	if err != nil {
		return V1Frame{}, err
	}
	dataBits, err := r.ReadU32()
	if err != nil {
		return V1Frame{}, err
	}

	dataOffset := int64(dataBits & 0x7fffffff)
	// The high bit being SET means uncompressed; this inversion is
	// intentional and kept as observed (see DESIGN.md open question).
	compressed := dataBits&0x80000000 == 0

	// Save the cursor here (just past this frame's 12-byte header) so it
	// can be restored after decoding pixels, which seeks elsewhere
	// entirely. Leaving it there means a full pass over the frame table
	// lands the cursor exactly at the cycle table that follows it.
	position, err := r.Position()
	if err != nil {
		return V1Frame{}, err
	}

	size := int(width) * int(height)
	indices, err := decodeV1Pixels(r, dataOffset, size, compressed, rleIndex)
	if err != nil {
		return V1Frame{}, err
	}

	if err := r.Seek(position); err != nil {
		return V1Frame{}, err
	}

	return V1Frame{Width: width, Height: height, CenterX: centerX, CenterY: centerY, Indices: indices}, nil
}

// decodeV1Pixels decodes a palette-index bitmap from dataOffset. When
// compressed, an occurrence of rleIndex is followed by a run-length
// byte n meaning n+1 repetitions of rleIndex; the final run is
// truncated to not exceed size.
func decodeV1Pixels(r *reader.Reader, dataOffset int64, size int, compressed bool, rleIndex uint8) ([]uint8, error) {
	if err := r.Seek(dataOffset); err != nil {
		return nil, err
	}

	indices := make([]uint8, 0, size)
	for len(indices) < size {
		pixelIndex, err := r.ReadU8()
		if err != nil {
			return nil, err
		}

		if compressed && pixelIndex == rleIndex {
			runLength, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			count := int(runLength) + 1
			if len(indices)+count > size {
				count = size - len(indices)
			}
			for i := 0; i < count; i++ {
				indices = append(indices, pixelIndex)
			}
		} else {
			indices = append(indices, pixelIndex)
		}
	}

	return indices, nil
}

func parseV1Cycle(r *reader.Reader, lookupOffset int64) (V1Cycle, error) {
	count, err := r.ReadU16()
	if err != nil {
		return V1Cycle{}, err
	}
	lookupIndex, err := r.ReadU16()
	if err != nil {
		return V1Cycle{}, err
	}

	position, err := r.Position()
	if err != nil {
		return V1Cycle{}, err
	}

	indices := make([]uint16, count)
	if err := r.Seek(lookupOffset + 2*int64(lookupIndex)); err != nil {
		return V1Cycle{}, err
	}
	for i := uint16(0); i < count; i++ {
		v, err := r.ReadU16()
		if err != nil {
			return V1Cycle{}, err
		}
		indices[i] = v
	}

	if err := r.Seek(position); err != nil {
		return V1Cycle{}, err
	}

	return V1Cycle{FrameIndices: indices}, nil
}

// Materialize renders a V1 frame to an RGBA pixel buffer (row-major,
// 4 bytes per pixel) by resolving each palette index through the
// shared palette.
func (v *V1) Materialize(frameIndex int) []byte {
	frame := v.Frames[frameIndex]
	out := make([]byte, len(frame.Indices)*4)
	for i, idx := range frame.Indices {
		c := v.Palette[idx]
		out[i*4] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = c.A
	}
	return out
}
