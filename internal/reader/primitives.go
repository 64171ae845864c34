// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrShortRead is returned when fewer bytes than requested could be read
// before EOF.
var ErrShortRead = errors.New("reader: short read before EOF")

// readU8 reads one byte from r.
func readU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shorten(err)
	}
	return b[0], nil
}

// readU16 reads a little-endian uint16 from r.
func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shorten(err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// readU32 reads a little-endian uint32 from r.
func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shorten(err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// readU64 reads a little-endian uint64 from r.
func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shorten(err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// readI32 reads a little-endian int32 from r.
func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

// readExact reads exactly n bytes from r.
func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, shorten(err)
	}
	return buf, nil
}

// readAtMost reads up to n bytes from r, returning however many were read
// before hitting EOF.
func readAtMost(r io.Reader, n int) ([]byte, int, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return buf[:read], read, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return buf, read, nil
}

// readLine reads up to and including a '\n' line terminator, or to EOF.
// It returns the decoded line (terminator stripped) and the number of raw
// bytes consumed; a count of 0 signals EOF with nothing read.
func readLine(r io.Reader) ([]byte, int, error) {
	var line []byte
	var one [1]byte
	for {
		n, err := r.Read(one[:])
		if n == 1 {
			line = append(line, one[0])
			if one[0] == '\n' {
				return trimCR(line), len(line), nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return trimCR(line), len(line), nil
			}
			return nil, len(line), err
		}
	}
}

func trimCR(b []byte) []byte {
	b = trimSuffix(b, '\n')
	b = trimSuffix(b, '\r')
	return b
}

func trimSuffix(b []byte, c byte) []byte {
	if len(b) > 0 && b[len(b)-1] == c {
		return b[:len(b)-1]
	}
	return b
}

func shorten(err error) error {
	if err == io.ErrUnexpectedEOF {
		return ErrShortRead
	}
	return err
}
