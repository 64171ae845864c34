// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package reader implements the layered byte-reader stack used by every
// format parser in this module: a polymorphic seekable byte source, an
// encoding-aware Reader built on top of it, and zlib / block-zlib adapters
// for the compressed archive variants.
package reader

import (
	"bytes"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Handle is a seekable, positionable byte stream obtained from a Source.
type Handle interface {
	io.Reader
	io.Seeker
	// Position returns the current absolute offset.
	Position() (int64, error)
	// Close releases any OS resources held by the handle.
	Close() error
}

// Source is a byte source that can be opened repeatedly; each Open call
// yields an independent handle over the same underlying bytes.
type Source interface {
	Open() (Handle, error)
}

// fileSource is a filesystem-path-backed Source. Each Open memory-maps
// the file read-only, the same way the teacher's pe.New avoids
// read/write syscalls for random-access binary parsing.
type fileSource struct {
	path string
}

// NewFileSource returns a Source backed by the file at path.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Open() (Handle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &fileHandle{f: f, data: data, r: bytes.NewReader(data)}, nil
}

type fileHandle struct {
	f    *os.File
	data mmap.MMap
	r    *bytes.Reader
}

func (h *fileHandle) Read(p []byte) (int, error) { return h.r.Read(p) }

func (h *fileHandle) Seek(offset int64, whence int) (int64, error) {
	return h.r.Seek(offset, whence)
}

func (h *fileHandle) Position() (int64, error) {
	return h.r.Seek(0, io.SeekCurrent)
}

func (h *fileHandle) Close() error {
	unmapErr := h.data.Unmap()
	closeErr := h.f.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

// memSource is a Source backed by an in-memory buffer shared by reference
// across every handle it opens.
type memSource struct {
	data []byte
}

// NewMemSource returns a Source backed by an owned, shared byte buffer.
func NewMemSource(data []byte) Source {
	return &memSource{data: data}
}

func (s *memSource) Open() (Handle, error) {
	return &memHandle{r: bytes.NewReader(s.data)}, nil
}

type memHandle struct {
	r *bytes.Reader
}

func (h *memHandle) Read(p []byte) (int, error) { return h.r.Read(p) }

func (h *memHandle) Seek(offset int64, whence int) (int64, error) {
	return h.r.Seek(offset, whence)
}

func (h *memHandle) Position() (int64, error) {
	return h.r.Seek(0, io.SeekCurrent)
}

func (h *memHandle) Close() error { return nil }
