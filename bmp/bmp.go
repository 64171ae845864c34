// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bmp delegates BMP decoding to golang.org/x/image/bmp; the
// format is not redesigned here.
package bmp

import (
	"image"

	xbmp "golang.org/x/image/bmp"

	"github.com/infinity-engine/ieformats/internal/reader"
)

// Decode reads a BMP image from r's current position to the end of the
// stream.
func Decode(r *reader.Reader) (image.Image, error) {
	return xbmp.Decode(r)
}
