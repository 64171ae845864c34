// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import (
	"bytes"
	"compress/zlib"
	"io"
)

// BlockZlibReader presents a contiguous decoded byte stream over a
// compressed stream that is a concatenation of blocks, each framed as
// (uncompressed_size uint32, compressed_size uint32, zlib_payload
// [compressed_size]bytes) — the BIFC block-compression scheme. It pulls
// one block at a time into an internal decoded buffer and serves reads
// from it, refilling on demand.
//
// The full decoded history is retained, so a seek backward over already
// produced bytes is served from the buffer directly rather than by
// re-decoding from the start; only a seek beyond what has been produced
// triggers pulling further blocks.
type BlockZlibReader struct {
	src  io.Reader
	enc  Encoding
	buf  []byte
	pos  int64
	done bool // no more blocks remain in src
}

func newBlockZlibReader(src io.Reader, enc Encoding) (*BlockZlibReader, error) {
	return &BlockZlibReader{src: src, enc: enc}, nil
}

// pullBlock reads and inflates the next block, appending it to buf. It
// returns io.EOF when the underlying stream has no further blocks.
func (b *BlockZlibReader) pullBlock() error {
	uncompressedSize, err := readU32(b.src)
	if err != nil {
		if err == io.EOF {
			b.done = true
			return io.EOF
		}
		return err
	}
	compressedSize, err := readU32(b.src)
	if err != nil {
		return err
	}
	payload, err := readExact(b.src, int(compressedSize))
	if err != nil {
		return err
	}

	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return err
	}
	decoded := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(decoded)
	if _, err := io.Copy(buf, zr); err != nil {
		zr.Close()
		return err
	}
	zr.Close()

	b.buf = append(b.buf, buf.Bytes()...)
	return nil
}

// fillTo pulls blocks until at least n decoded bytes are buffered, or the
// stream is exhausted.
func (b *BlockZlibReader) fillTo(n int64) error {
	for int64(len(b.buf)) < n && !b.done {
		if err := b.pullBlock(); err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}

// Read implements io.Reader over the logical decoded stream.
func (b *BlockZlibReader) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		if err := b.fillTo(b.pos + int64(len(p))); err != nil {
			return 0, err
		}
		if b.pos >= int64(len(b.buf)) {
			return 0, io.EOF
		}
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Seek moves the logical read position to offset, pulling additional
// blocks if offset lies beyond what has been decoded so far.
func (b *BlockZlibReader) Seek(offset int64) error {
	if offset > int64(len(b.buf)) {
		if err := b.fillTo(offset); err != nil {
			return err
		}
		if offset > int64(len(b.buf)) {
			return io.ErrUnexpectedEOF
		}
	}
	b.pos = offset
	return nil
}

// Position returns the current logical offset into the decoded stream.
func (b *BlockZlibReader) Position() int64 { return b.pos }

// ReadU8 reads one decoded byte.
func (b *BlockZlibReader) ReadU8() (uint8, error) { return readU8(b) }

// ReadU16 reads a little-endian uint16 from the decoded stream.
func (b *BlockZlibReader) ReadU16() (uint16, error) { return readU16(b) }

// ReadU32 reads a little-endian uint32 from the decoded stream.
func (b *BlockZlibReader) ReadU32() (uint32, error) { return readU32(b) }

// ReadExact reads exactly n decoded bytes.
func (b *BlockZlibReader) ReadExact(n int) ([]byte, error) { return readExact(b, n) }

// ReadString reads exactly n decoded bytes and decodes them as text.
func (b *BlockZlibReader) ReadString(n int) (string, error) {
	raw, err := readExact(b, n)
	if err != nil {
		return "", err
	}
	return decodeString(b.enc, raw)
}

// Skip discards n decoded bytes forward.
func (b *BlockZlibReader) Skip(n int64) error {
	return b.Seek(b.pos + n)
}

// ReadAll decodes every remaining block and returns the full buffered
// decoded stream from the current position onward.
func (b *BlockZlibReader) ReadAll() ([]byte, error) {
	for !b.done {
		if err := b.pullBlock(); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	out := b.buf[b.pos:]
	b.pos = int64(len(b.buf))
	return out, nil
}
