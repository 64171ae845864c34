// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package wed reads the WED tiled-area header and its door table. Full
// overlay, tilemap, and polygon decoding is out of scope; see the TODO
// on Parse.
package wed

import (
	"fmt"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
)

// doorEntrySize is the fixed on-disk size of a door entry: an 8-byte
// name, a 2-byte state, and 16 bytes of tilemap/polygon linkage fields
// not decoded by this package.
const doorEntrySize = 26

// DoorState is a door's open/closed flag. Only 0 (open) and 1 (closed)
// are valid; any other stored value is a decode error.
type DoorState uint16

// Valid door states.
const (
	DoorOpen   DoorState = 0
	DoorClosed DoorState = 1
)

func (s DoorState) String() string {
	switch s {
	case DoorOpen:
		return "open"
	case DoorClosed:
		return "closed"
	default:
		return fmt.Sprintf("invalid(%d)", uint16(s))
	}
}

// Door names one door entry in the door table.
type Door struct {
	Name  string
	State DoorState
}

// Header is the fixed WED header: overlay and door counts, plus the
// four table offsets carried in every area WED.
type Header struct {
	OverlayCount            uint32
	DoorCount               uint32
	OverlaysOffset          uint32
	SecondaryHeaderOffset   uint32
	DoorsOffset             uint32
	DoorTileCellIndexOffset uint32
}

// File is a minimally parsed WED: the header plus the door table. The
// overlay, tilemap, and polygon tables are not decoded.
type File struct {
	Header Header
	Doors  []Door
}

// Parse reads a WED header and door table from r. r must be positioned
// at the start of the 8-byte "WED V1.3" signature.
//
// TODO: decode the overlay/tilemap/polygon tables (§4.11 scope); no
// BAM/BIF/KEY/PVRZ/2DA operation needs them, so they are left unread.
func Parse(r *reader.Reader) (*File, error) {
	rawSig, err := r.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "WED V1.3" {
		return nil, &dispatch.DecodeError{What: "wed.Parse", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", rawSig)}
	}

	h, err := parseHeader(r)
	if err != nil {
		return nil, err
	}

	doors := make([]Door, h.DoorCount)
	for i := uint32(0); i < h.DoorCount; i++ {
		off := int64(h.DoorsOffset) + int64(i)*doorEntrySize
		d, err := parseDoor(r, off)
		if err != nil {
			return nil, err
		}
		doors[i] = d
	}

	return &File{Header: h, Doors: doors}, nil
}

func parseHeader(r *reader.Reader) (Header, error) {
	overlayCount, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	doorCount, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	overlaysOffset, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	secondaryHeaderOffset, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	doorsOffset, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	doorTileCellIndexOffset, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	return Header{
		OverlayCount:            overlayCount,
		DoorCount:               doorCount,
		OverlaysOffset:          overlaysOffset,
		SecondaryHeaderOffset:   secondaryHeaderOffset,
		DoorsOffset:             doorsOffset,
		DoorTileCellIndexOffset: doorTileCellIndexOffset,
	}, nil
}

func parseDoor(r *reader.Reader, offset int64) (Door, error) {
	if err := r.Seek(offset); err != nil {
		return Door{}, err
	}
	name, err := r.ReadString(8)
	if err != nil {
		return Door{}, err
	}
	rawState, err := r.ReadU16()
	if err != nil {
		return Door{}, err
	}
	state := DoorState(rawState)
	if state != DoorOpen && state != DoorClosed {
		return Door{}, &dispatch.DecodeError{
			What:   "wed.parseDoor",
			Offset: offset + 8,
			Reason: fmt.Sprintf("door state %d is outside {0,1}", rawState),
		}
	}
	if err := r.Skip(doorEntrySize - 8 - 2); err != nil {
		return Door{}, err
	}
	return Door{Name: name, State: state}, nil
}
