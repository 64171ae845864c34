// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import (
	"compress/zlib"
	"io"
)

// ZlibReader inflates a zlib stream from an underlying reader on demand.
// It is a thin adapter: it is not seekable, and the wrapped reader's
// cursor advances by the amount of compressed input consumed, not by the
// amount of inflated output produced.
type ZlibReader struct {
	zr  io.ReadCloser
	enc Encoding
}

func newZlibReader(src io.Reader, enc Encoding) (*ZlibReader, error) {
	zr, err := zlib.NewReader(src)
	if err != nil {
		return nil, err
	}
	return &ZlibReader{zr: zr, enc: enc}, nil
}

// Read implements io.Reader.
func (z *ZlibReader) Read(p []byte) (int, error) { return z.zr.Read(p) }

// Close releases the inflater.
func (z *ZlibReader) Close() error { return z.zr.Close() }

// ReadU8 reads one inflated byte.
func (z *ZlibReader) ReadU8() (uint8, error) { return readU8(z.zr) }

// ReadU16 reads a little-endian uint16 from the inflated stream.
func (z *ZlibReader) ReadU16() (uint16, error) { return readU16(z.zr) }

// ReadU32 reads a little-endian uint32 from the inflated stream.
func (z *ZlibReader) ReadU32() (uint32, error) { return readU32(z.zr) }

// ReadU64 reads a little-endian uint64 from the inflated stream.
func (z *ZlibReader) ReadU64() (uint64, error) { return readU64(z.zr) }

// ReadI32 reads a little-endian int32 from the inflated stream.
func (z *ZlibReader) ReadI32() (int32, error) { return readI32(z.zr) }

// ReadExact reads exactly n inflated bytes.
func (z *ZlibReader) ReadExact(n int) ([]byte, error) { return readExact(z.zr, n) }

// ReadString reads exactly n inflated bytes and decodes them.
func (z *ZlibReader) ReadString(n int) (string, error) {
	raw, err := readExact(z.zr, n)
	if err != nil {
		return "", err
	}
	return decodeString(z.enc, raw)
}

// Skip discards n inflated bytes forward.
func (z *ZlibReader) Skip(n int64) error {
	_, err := io.CopyN(io.Discard, z.zr, n)
	return err
}

// ReadAll inflates every remaining byte.
func (z *ZlibReader) ReadAll() ([]byte, error) {
	return io.ReadAll(z.zr)
}
