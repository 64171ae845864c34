// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dispatch

import "github.com/infinity-engine/ieformats/internal/reader"

// Fuzz exercises Sniff against arbitrary input for the go-fuzz harness.
func Fuzz(data []byte) int {
	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		return 0
	}
	defer r.Close()

	if _, err := Sniff(r); err != nil {
		return 0
	}
	return 1
}
