// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bam

import "github.com/infinity-engine/ieformats/internal/reader"

// Fuzz exercises ParseV1 (header, palette, and RLE decode) against
// arbitrary input for the go-fuzz harness.
func Fuzz(data []byte) int {
	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		return 0
	}
	defer r.Close()

	v, err := ParseV1(r)
	if err != nil {
		return 0
	}
	for i := range v.Frames {
		v.Materialize(i)
	}
	return 1
}
