// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package archive parses the three BIFF container variants (plain,
// zlib-compressed BIF, and block-zlib-compressed BIFC) into a single
// unified resource table.
package archive

import (
	"fmt"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
	"github.com/infinity-engine/ieformats/restype"
)

// Kind identifies which of the three container variants produced an
// Archive.
type Kind int

// Recognized archive variants.
const (
	KindBiff Kind = iota // plain, uncompressed BIFF body
	KindBif              // zlib-compressed, wraps a BIFF body
	KindBifc             // block-zlib streamed, wraps a BIFF body
)

func (k Kind) String() string {
	switch k {
	case KindBiff:
		return "BIFF"
	case KindBif:
		return "BIF"
	case KindBifc:
		return "BIFC"
	default:
		return "unknown"
	}
}

// locatorMask keeps only the intra-archive index bits of a 32-bit
// locator; the remaining bits are reserved for the engine's own use.
const locatorMask = 0xFFFFF

// File is an embedded, uncompressed single resource.
type File struct {
	Locator uint32
	Offset  uint32
	Size    uint32
	Type    restype.Type
}

// Tileset is an embedded contiguous array of fixed-size tiles.
type Tileset struct {
	Locator uint32
	Offset  uint32
	Count   uint32
	Size    uint32
	Type    restype.Type
}

// Archive is the unified result of parsing any of the three BIFF
// container variants: a tag naming which variant produced it, and the
// file and tileset entries in file-then-tileset order.
type Archive struct {
	Kind     Kind
	Files    []File
	Tilesets []Tileset
}

// the fixed size, in bytes, of an inflated BIFFV1 header
// (signature + file_count + tileset_count + files_offset).
const inflatedHeaderSize = 20

const (
	fileEntrySize    = 16
	tilesetEntrySize = 20
)

// Parse reads a BIFF, BIF, or BIFC archive from r, dispatching on its
// signature.
func Parse(r *reader.Reader) (*Archive, error) {
	if err := r.Seek(0); err != nil {
		return nil, err
	}

	format, err := dispatch.Sniff(r)
	if err != nil {
		return nil, err
	}

	switch format {
	case dispatch.Biff:
		return parseBiffBody(r, KindBiff)
	case dispatch.Bif:
		return parseBif(r)
	case dispatch.Bifc:
		return parseBifc(r)
	default:
		sig, _ := r.ReadExact(8)
		r.Seek(0)
		return nil, &dispatch.DecodeError{
			What:     "archive.Parse",
			Offset:   0,
			Observed: sig,
			Reason:   fmt.Sprintf("expected a BIFF/BIF/BIFC signature, got format %v", format),
		}
	}
}

// parseBiffBody parses an uncompressed BIFFV1 body starting at the
// reader's current position (offset 0 relative to the body, not the
// containing file).
func parseBiffBody(r *reader.Reader, kind Kind) (*Archive, error) {
	rawSig, err := r.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "BIFFV1  " {
		return nil, &dispatch.DecodeError{
			What:   "archive.parseBiffBody",
			Offset: 0,
			Reason: fmt.Sprintf("unexpected BIFF signature %q", rawSig),
		}
	}

	fileCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	tilesetCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	filesOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	a := &Archive{Kind: kind}

	a.Files = make([]File, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		off := int64(filesOffset) + int64(i)*fileEntrySize
		f, err := parseFileEntry(r, off)
		if err != nil {
			return nil, err
		}
		a.Files = append(a.Files, f)
	}

	tilesetsOffset := int64(filesOffset) + int64(fileCount)*fileEntrySize
	a.Tilesets = make([]Tileset, 0, tilesetCount)
	for i := uint32(0); i < tilesetCount; i++ {
		off := tilesetsOffset + int64(i)*tilesetEntrySize
		ts, err := parseTilesetEntry(r, off)
		if err != nil {
			return nil, err
		}
		a.Tilesets = append(a.Tilesets, ts)
	}

	return a, nil
}

func parseFileEntry(r *reader.Reader, offset int64) (File, error) {
	if err := r.Seek(offset); err != nil {
		return File{}, err
	}
	locator, err := r.ReadU32()
	if err != nil {
		return File{}, err
	}
	off, err := r.ReadU32()
	if err != nil {
		return File{}, err
	}
	size, err := r.ReadU32()
	if err != nil {
		return File{}, err
	}
	typeCode, err := r.ReadU16()
	if err != nil {
		return File{}, err
	}
	if _, err := r.ReadU16(); err != nil { // reserved, discarded
		return File{}, err
	}
	return File{
		Locator: locator & locatorMask,
		Offset:  off,
		Size:    size,
		Type:    restype.FromCode(typeCode),
	}, nil
}

func parseTilesetEntry(r *reader.Reader, offset int64) (Tileset, error) {
	if err := r.Seek(offset); err != nil {
		return Tileset{}, err
	}
	locator, err := r.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	off, err := r.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	size, err := r.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	typeCode, err := r.ReadU16()
	if err != nil {
		return Tileset{}, err
	}
	if _, err := r.ReadU16(); err != nil { // reserved, discarded
		return Tileset{}, err
	}
	return Tileset{
		Locator: locator & locatorMask,
		Offset:  off,
		Count:   count,
		Size:    size,
		Type:    restype.FromCode(typeCode),
	}, nil
}

// parseBif handles the zlib-compressed BIF V1.0 container: a small
// plaintext header naming the archive and the inflated size, followed
// by a single zlib stream whose payload is a BIFFV1 body.
func parseBif(r *reader.Reader) (*Archive, error) {
	sig, err := r.ReadString(8)
	if err != nil {
		return nil, err
	}
	if sig != "BIF V1.0" {
		return nil, &dispatch.DecodeError{What: "archive.parseBif", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", sig)}
	}

	nameLength, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadExact(int(nameLength)); err != nil { // embedded name, discarded
		return nil, err
	}
	if _, err := r.ReadU32(); err != nil { // uncompressed_len, unused (advisory)
		return nil, err
	}
	if _, err := r.ReadU32(); err != nil { // compressed_len, advisory only
		return nil, err
	}

	zr, err := r.ZlibView()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return parseCompressedBiffBody(zr, KindBif)
}

// parseBifc handles the block-compressed BIFC V1.0 container: a
// declared total uncompressed size followed by a sequence of
// (uncompressed_size, compressed_size, zlib_payload) blocks whose
// concatenated decoded bytes form a BIFFV1 body.
func parseBifc(r *reader.Reader) (*Archive, error) {
	sig, err := r.ReadString(8)
	if err != nil {
		return nil, err
	}
	if sig != "BIFCV1.0" {
		return nil, &dispatch.DecodeError{What: "archive.parseBifc", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", sig)}
	}

	if _, err := r.ReadU32(); err != nil { // uncompressed_total, advisory only
		return nil, err
	}

	bzr, err := r.BlockZlibView()
	if err != nil {
		return nil, err
	}

	return parseCompressedBiffBody(bzr, KindBifc)
}

// compressedBody is the minimal surface parseCompressedBiffBody needs
// from either the zlib or block-zlib streaming adapter: sequential
// little-endian reads plus an absolute skip.
type compressedBody interface {
	ReadU32() (uint32, error)
	ReadU16() (uint16, error)
	ReadExact(n int) ([]byte, error)
	Skip(n int64) error
}

// parseCompressedBiffBody parses the inflated BIFFV1 body shared by
// BIF and BIFC: the first 20 bytes are the fixed header
// (signature/file_count/tileset_count/files_offset); the file and
// tileset tables begin at files_offset, so the remaining
// files_offset-20 bytes are skipped before reading them.
func parseCompressedBiffBody(body compressedBody, kind Kind) (*Archive, error) {
	sig, err := body.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(sig) != "BIFFV1  " {
		return nil, &dispatch.DecodeError{What: "archive.parseCompressedBiffBody", Offset: 0, Reason: fmt.Sprintf("unexpected inflated signature %q", sig)}
	}

	fileCount, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	tilesetCount, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	filesOffset, err := body.ReadU32()
	if err != nil {
		return nil, err
	}

	if filesOffset < inflatedHeaderSize {
		return nil, &dispatch.DecodeError{
			What:   "archive.parseCompressedBiffBody",
			Offset: int64(filesOffset),
			Reason: fmt.Sprintf("files_offset %d is smaller than the fixed %d-byte header", filesOffset, inflatedHeaderSize),
		}
	}
	if err := body.Skip(int64(filesOffset) - inflatedHeaderSize); err != nil {
		return nil, err
	}

	a := &Archive{Kind: kind}

	a.Files = make([]File, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		f, err := readFileEntry(body)
		if err != nil {
			return nil, err
		}
		a.Files = append(a.Files, f)
	}

	a.Tilesets = make([]Tileset, 0, tilesetCount)
	for i := uint32(0); i < tilesetCount; i++ {
		ts, err := readTilesetEntry(body)
		if err != nil {
			return nil, err
		}
		a.Tilesets = append(a.Tilesets, ts)
	}

	return a, nil
}

func readFileEntry(body compressedBody) (File, error) {
	locator, err := body.ReadU32()
	if err != nil {
		return File{}, err
	}
	off, err := body.ReadU32()
	if err != nil {
		return File{}, err
	}
	size, err := body.ReadU32()
	if err != nil {
		return File{}, err
	}
	typeCode, err := body.ReadU16()
	if err != nil {
		return File{}, err
	}
	if _, err := body.ReadU16(); err != nil { // reserved
		return File{}, err
	}
	return File{Locator: locator & locatorMask, Offset: off, Size: size, Type: restype.FromCode(typeCode)}, nil
}

func readTilesetEntry(body compressedBody) (Tileset, error) {
	locator, err := body.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	off, err := body.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	count, err := body.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	size, err := body.ReadU32()
	if err != nil {
		return Tileset{}, err
	}
	typeCode, err := body.ReadU16()
	if err != nil {
		return Tileset{}, err
	}
	if _, err := body.ReadU16(); err != nil { // reserved
		return Tileset{}, err
	}
	return Tileset{Locator: locator & locatorMask, Offset: off, Count: count, Size: size, Type: restype.FromCode(typeCode)}, nil
}
