// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/reader"
)

// ParseBamc reads a BAMC container: an 8-byte "BAMCV1  " signature, a
// declared uncompressed length, and a zlib stream whose payload is a
// full BAM v1 body (including its own "BAM V1  " signature). The
// result is structurally identical to parsing that decompressed body
// directly with ParseV1.
func ParseBamc(r *reader.Reader) (*V1, error) {
	rawSig, err := r.ReadExact(8)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "BAMCV1  " {
		return nil, &dispatch.DecodeError{What: "bam.ParseBamc", Offset: 0, Reason: fmt.Sprintf("unexpected signature %q", rawSig)}
	}

	if _, err := r.ReadU32(); err != nil { // uncompressed_length, advisory only
		return nil, err
	}

	zr, err := r.ZlibView()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	decoded, err := zr.ReadAll()
	if err != nil {
		return nil, err
	}

	ds := reader.NewMemDataSource(decoded)
	inner, err := ds.Open()
	if err != nil {
		return nil, err
	}
	defer inner.Close()

	return ParseV1(inner)
}
