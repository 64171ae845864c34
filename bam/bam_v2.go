// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
	"github.com/infinity-engine/ieformats/pvrz"
)

// V2Frame names a window into the shared data-block table; its pixels
// are composited on demand from one or more external PVRZ pages.
type V2Frame struct {
	Width, Height    uint32
	CenterX, CenterY uint32
	BlocksStart      int
	BlocksCount      int
}

// V2Cycle is a contiguous range into the frame table.
type V2Cycle struct {
	FramesStart int
	FramesCount int
}

// V2DataBlock names a source window on a PVRZ page and the target
// offset it is copied to on its owning frame.
type V2DataBlock struct {
	PvrzPage         uint32
	SourceX, SourceY uint32
	Width, Height    uint32
	TargetX, TargetY uint32
}

// PvrzName returns the zero-padded MOS####.PVRZ filename for a data
// block's page number.
func (b V2DataBlock) PvrzName() string {
	return fmt.Sprintf("MOS%04d.PVRZ", b.PvrzPage)
}

// V2 is a fully parsed BAM v2 sprite: frames reference ranges of data
// blocks, each of which windows into an external PVRZ page.
type V2 struct {
	Frames     []V2Frame
	Cycles     []V2Cycle
	DataBlocks []V2DataBlock
}

// ParseV2 reads a BAM v2 body from r. r must be positioned at the
// start of the 8-byte "BAM V2  " signature.
func ParseV2(r *reader.Reader) (*V2, error) {
	rawSig, err := r.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "BAM V2  " {
		return nil, &dispatch.DecodeError{What: "bam.ParseV2", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", rawSig)}
	}

	frameCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	cycleCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	blockCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	framesOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	cyclesOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	blocksOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	v := &V2{}

	v.Frames = make([]V2Frame, frameCount)
	if err := r.Seek(int64(framesOffset)); err != nil {
		return nil, err
	}
	for i := uint32(0); i < frameCount; i++ {
		frame, err := readV2Frame(r)
		if err != nil {
			return nil, err
		}
		v.Frames[i] = frame
	}

	v.Cycles = make([]V2Cycle, cycleCount)
	if err := r.Seek(int64(cyclesOffset)); err != nil {
		return nil, err
	}
	for i := uint32(0); i < cycleCount; i++ {
		cycle, err := readV2Cycle(r)
		if err != nil {
			return nil, err
		}
		v.Cycles[i] = cycle
	}

	v.DataBlocks = make([]V2DataBlock, blockCount)
	if err := r.Seek(int64(blocksOffset)); err != nil {
		return nil, err
	}
	for i := uint32(0); i < blockCount; i++ {
		block, err := readV2DataBlock(r)
		if err != nil {
			return nil, err
		}
		v.DataBlocks[i] = block
	}

	return v, nil
}

func readV2Frame(r *reader.Reader) (V2Frame, error) {
	width, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	height, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	centerX, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	centerY, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	blocksStart, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	blocksCount, err := r.ReadU16()
	if err != nil {
		return V2Frame{}, err
	}
	return V2Frame{
		Width: uint32(width), Height: uint32(height),
		CenterX: uint32(centerX), CenterY: uint32(centerY),
		BlocksStart: int(blocksStart), BlocksCount: int(blocksCount),
	}, nil
}

func readV2Cycle(r *reader.Reader) (V2Cycle, error) {
	count, err := r.ReadU16()
	if err != nil {
		return V2Cycle{}, err
	}
	start, err := r.ReadU16()
	if err != nil {
		return V2Cycle{}, err
	}
	return V2Cycle{FramesCount: int(count), FramesStart: int(start)}, nil
}

func readV2DataBlock(r *reader.Reader) (V2DataBlock, error) {
	page, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	sx, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	sy, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	w, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	h, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	tx, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	ty, err := r.ReadU32()
	if err != nil {
		return V2DataBlock{}, err
	}
	return V2DataBlock{PvrzPage: page, SourceX: sx, SourceY: sy, Width: w, Height: h, TargetX: tx, TargetY: ty}, nil
}

// PageSource resolves a PVRZ page number to its decoded image. A
// *CifsPageSource satisfies this by name-formatting and decoding on
// demand, optionally through a *pvrz.PageCache.
type PageSource interface {
	Page(pvrzPage uint32) (*pvrz.Image, error)
}

// Materialize composites a V2 frame's RGBA pixels by copying each data
// block's source window, row by row, onto the target frame buffer — a
// direct byte copy rather than an alpha-blended draw, since Infinity
// Engine tile composition is opaque placement, not blending.
func (v *V2) Materialize(frameIndex int, pages PageSource) ([]byte, error) {
	frame := v.Frames[frameIndex]
	out := make([]byte, int(frame.Width)*int(frame.Height)*4)

	blocks := v.DataBlocks[frame.BlocksStart : frame.BlocksStart+frame.BlocksCount]
	for _, block := range blocks {
		page, err := pages.Page(block.PvrzPage)
		if err != nil {
			return nil, err
		}

		pageWidth := uint32(page.Header.Width)
		pageHeight := uint32(page.Header.Height)
		if block.SourceX+block.Width > pageWidth || block.SourceY+block.Height > pageHeight {
			return nil, &dispatch.DecodeError{
				What:   "bam.V2.Materialize",
				Offset: -1,
				Reason: fmt.Sprintf("data block window (%d,%d)+%dx%d exceeds PVRZ page %dx%d", block.SourceX, block.SourceY, block.Width, block.Height, pageWidth, pageHeight),
			}
		}

		srcPixels := page.Pixels.Pix
		srcStride := page.Pixels.Stride

		for row := uint32(0); row < block.Height; row++ {
			srcRow := block.SourceY + row
			dstRow := block.TargetY + row

			srcStart := int(srcRow)*srcStride + int(block.SourceX)*4
			srcEnd := srcStart + int(block.Width)*4

			dstStart := (int(dstRow)*int(frame.Width) + int(block.TargetX)) * 4
			dstEnd := dstStart + int(block.Width)*4

			copy(out[dstStart:dstEnd], srcPixels[srcStart:srcEnd])
		}
	}

	return out, nil
}
