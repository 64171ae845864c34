// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/infinity-engine/ieformats/cifs"
	"github.com/infinity-engine/ieformats/internal/reader"
	"github.com/infinity-engine/ieformats/pvrz"
)

// CifsPageSource resolves BAM v2 data-block PVRZ pages by name through
// a CIFS snapshot, decoding (and optionally caching) each page on
// demand.
type CifsPageSource struct {
	fs    *cifs.FS
	cache *pvrz.PageCache
}

// NewCifsPageSource returns a PageSource resolving pages through fs.
// cache may be nil, in which case every Page call decodes from disk.
func NewCifsPageSource(fs *cifs.FS, cache *pvrz.PageCache) *CifsPageSource {
	return &CifsPageSource{fs: fs, cache: cache}
}

// Page implements PageSource.
func (s *CifsPageSource) Page(pvrzPage uint32) (*pvrz.Image, error) {
	name := V2DataBlock{PvrzPage: pvrzPage}.PvrzName()
	path, ok := s.fs.Search(name)
	if !ok {
		return nil, fmt.Errorf("bam: PVRZ page not found: %s", name)
	}

	if s.cache != nil {
		return s.cache.Get(path)
	}

	ds := reader.NewFileDataSource(path)
	r, err := ds.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return pvrz.Parse(r)
}
