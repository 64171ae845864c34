// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import "io"

// DataSource pairs a byte Source with a text encoding and an optional
// base offset that pre-shifts the logical origin every Reader opened from
// it uses for absolute seeks.
type DataSource struct {
	Src        Source
	Encoding   Encoding
	BaseOffset int64
}

// NewFileDataSource returns a DataSource backed by the file at path, using
// the default Windows-1252 encoding and no base offset.
func NewFileDataSource(path string) DataSource {
	return DataSource{Src: NewFileSource(path), Encoding: EncodingWindows1252}
}

// NewMemDataSource returns a DataSource backed by an in-memory buffer,
// using the default Windows-1252 encoding and no base offset.
func NewMemDataSource(data []byte) DataSource {
	return DataSource{Src: NewMemSource(data), Encoding: EncodingWindows1252}
}

// Open opens a fresh Reader positioned at the DataSource's base offset.
func (ds DataSource) Open() (*Reader, error) {
	h, err := ds.Src.Open()
	if err != nil {
		return nil, err
	}
	if ds.BaseOffset != 0 {
		if _, err := h.Seek(ds.BaseOffset, io.SeekStart); err != nil {
			h.Close()
			return nil, err
		}
	}
	return &Reader{h: h, enc: ds.Encoding, base: ds.BaseOffset}, nil
}

// Reader wraps a seekable Handle and an encoding, adding fixed-width
// little-endian integer reads and charset-aware string reads. Every
// operation advances the cursor exactly by the number of bytes it claims
// to have read; *At variants advance from the seeked offset.
type Reader struct {
	h    Handle
	enc  Encoding
	base int64
}

// Close releases the underlying handle.
func (r *Reader) Close() error { return r.h.Close() }

// Read satisfies io.Reader by delegating to the underlying handle,
// letting a Reader be handed directly to stdlib/third-party decoders
// (e.g. golang.org/x/image/bmp) that expect a plain io.Reader.
func (r *Reader) Read(p []byte) (int, error) { return r.h.Read(p) }

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) { return readU8(r.h) }

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) { return readU16(r.h) }

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) { return readU32(r.h) }

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) { return readU64(r.h) }

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) { return readI32(r.h) }

// ReadExact reads exactly n bytes into a freshly allocated buffer.
func (r *Reader) ReadExact(n int) ([]byte, error) { return readExact(r.h, n) }

// ReadAtMost reads up to n bytes, returning the buffer and count actually
// read.
func (r *Reader) ReadAtMost(n int) ([]byte, int, error) { return readAtMost(r.h, n) }

// ReadString reads exactly n bytes and decodes them with the configured
// encoding, stripping trailing NUL bytes.
func (r *Reader) ReadString(n int) (string, error) {
	raw, err := readExact(r.h, n)
	if err != nil {
		return "", err
	}
	return decodeString(r.enc, raw)
}

// ReadLine reads up to and including a line terminator. It returns the
// decoded line and the number of raw bytes consumed (0 on EOF).
func (r *Reader) ReadLine() (string, int, error) {
	raw, n, err := readLine(r.h)
	if err != nil {
		return "", n, err
	}
	s, err := decodeString(r.enc, raw)
	if err != nil {
		return "", n, err
	}
	return s, n, nil
}

// Skip discards n bytes forward. Cost is O(n); Seek is preferred when the
// target offset is known.
func (r *Reader) Skip(n int64) error {
	_, err := io.CopyN(io.Discard, r.h, n)
	return err
}

// Seek moves the cursor to an absolute offset measured from the
// DataSource's base offset.
func (r *Reader) Seek(offset int64) error {
	_, err := r.h.Seek(r.base+offset, io.SeekStart)
	return err
}

// Position returns the current offset, relative to the DataSource's base
// offset.
func (r *Reader) Position() (int64, error) {
	pos, err := r.h.Position()
	if err != nil {
		return 0, err
	}
	return pos - r.base, nil
}

// Take bounds subsequent reads to the next n bytes, returning a plain
// io.Reader view; it does not advance the cursor itself — the caller
// advances it by reading from (or discarding) the view.
func (r *Reader) Take(n int64) io.Reader {
	return io.LimitReader(r.h, n)
}

// ZlibView attaches a zlib sub-reader at the current cursor position; it
// inflates bytes from that point on demand and is not itself seekable.
func (r *Reader) ZlibView() (*ZlibReader, error) {
	return newZlibReader(r.h, r.enc)
}

// BlockZlibView attaches a block-zlib streaming reader (BIFC framing) at
// the current cursor position.
func (r *Reader) BlockZlibView() (*BlockZlibReader, error) {
	return newBlockZlibReader(r.h, r.enc)
}

// --- *_at convenience variants: atomic seek-then-read ---

// ReadU8At seeks to offset then reads one byte.
func (r *Reader) ReadU8At(offset int64) (uint8, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.ReadU8()
}

// ReadU16At seeks to offset then reads a little-endian uint16.
func (r *Reader) ReadU16At(offset int64) (uint16, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.ReadU16()
}

// ReadU32At seeks to offset then reads a little-endian uint32.
func (r *Reader) ReadU32At(offset int64) (uint32, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.ReadU32()
}

// ReadI32At seeks to offset then reads a little-endian int32.
func (r *Reader) ReadI32At(offset int64) (int32, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.ReadI32()
}

// ReadExactAt seeks to offset then reads exactly n bytes.
func (r *Reader) ReadExactAt(offset int64, n int) ([]byte, error) {
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r.ReadExact(n)
}

// ReadStringAt seeks to offset then reads and decodes an n-byte string.
func (r *Reader) ReadStringAt(offset int64, n int) (string, error) {
	if err := r.Seek(offset); err != nil {
		return "", err
	}
	return r.ReadString(n)
}
