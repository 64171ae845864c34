// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pvrz

import "image/color"

// decodeBC1Block decodes one 8-byte BC1 (DXT1) block into 16 RGBA
// pixels in row-major order. Two reference colors are unpacked from
// RGB565, and two intermediate colors are interpolated according to
// the standard rule: a four-color block when color0 > color1, or a
// three-color-plus-transparent block otherwise.
func decodeBC1Block(block []byte, out *[16]color.RGBA) {
	decodeColorBlock(block, out, false)
}

// decodeColorBlock decodes an 8-byte BC1-style color block (two RGB565
// reference colors plus a 2-bit-per-pixel index table). forceFourColor
// selects always-four-color interpolation regardless of the color0/
// color1 ordering, as BC3's embedded color block requires: BC3 carries
// its alpha explicitly, so it has no use for BC1's punch-through mode.
func decodeColorBlock(block []byte, out *[16]color.RGBA, forceFourColor bool) {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	indices := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	var palette [4]color.RGBA
	palette[0] = rgb565to888(c0)
	palette[1] = rgb565to888(c1)

	if forceFourColor || c0 > c1 {
		palette[2] = lerpColor(palette[0], palette[1], 1, 3)
		palette[3] = lerpColor(palette[0], palette[1], 2, 3)
	} else {
		palette[2] = lerpColor(palette[0], palette[1], 1, 2)
		palette[3] = color.RGBA{} // transparent black
	}

	for i := 0; i < 16; i++ {
		sel := (indices >> uint(2*i)) & 0x3
		out[i] = palette[sel]
	}
}

// decodeBC3Block decodes one 16-byte BC3 (DXT5) block: an 8-byte
// explicit alpha block (two reference alphas plus a 3-bit-per-pixel
// index table) followed by an 8-byte BC1-style color block whose own
// alpha channel is ignored in favor of the explicit one.
func decodeBC3Block(block []byte, out *[16]color.RGBA) {
	var alphas [8]uint8
	alphas[0] = block[0]
	alphas[1] = block[1]
	if alphas[0] > alphas[1] {
		for i := 2; i < 8; i++ {
			alphas[i] = uint8((uint32(8-i)*uint32(alphas[0]) + uint32(i-1)*uint32(alphas[1])) / 7)
		}
	} else {
		for i := 2; i < 6; i++ {
			alphas[i] = uint8((uint32(6-i)*uint32(alphas[0]) + uint32(i-1)*uint32(alphas[1])) / 5)
		}
		alphas[6] = 0
		alphas[7] = 255
	}

	var alphaIndices uint64
	for i := 0; i < 6; i++ {
		alphaIndices |= uint64(block[2+i]) << uint(8*i)
	}

	var alphaSel [16]uint8
	for i := 0; i < 16; i++ {
		alphaSel[i] = uint8((alphaIndices >> uint(3*i)) & 0x7)
	}

	decodeColorBlock(block[8:16], out, true)
	for i := 0; i < 16; i++ {
		out[i].A = alphas[alphaSel[i]]
	}
}

func rgb565to888(v uint16) color.RGBA {
	r5 := (v >> 11) & 0x1F
	g6 := (v >> 5) & 0x3F
	b5 := v & 0x1F

	r := uint8((r5*527 + 23) >> 6)
	g := uint8((g6*259 + 33) >> 6)
	b := uint8((b5*527 + 23) >> 6)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func lerpColor(a, b color.RGBA, weightB, total uint32) color.RGBA {
	weightA := total - weightB
	return color.RGBA{
		R: uint8((uint32(a.R)*weightA + uint32(b.R)*weightB) / total),
		G: uint8((uint32(a.G)*weightA + uint32(b.G)*weightB) / total),
		B: uint8((uint32(a.B)*weightA + uint32(b.B)*weightB) / total),
		A: 255,
	}
}
