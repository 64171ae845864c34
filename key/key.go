// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package key parses the KEY catalog: the top-level index naming every
// BIF archive and every resource in an Infinity Engine installation.
package key

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/infinity-engine/ieformats/cifs"
	"github.com/infinity-engine/ieformats/dispatch"
	"github.com/infinity-engine/ieformats/internal/log"
	"github.com/infinity-engine/ieformats/internal/reader"
	"github.com/infinity-engine/ieformats/restype"
)

// logger receives informational messages about non-fatal oddities this
// package detects, such as the demo-variant BIF entry layout (logged at
// Info). Discarded by default;
// override with SetLogger.
var logger = log.Discard()

// SetLogger installs h as the destination for this package's log
// messages.
func SetLogger(h *log.Helper) { logger = h }

// searchPrefixes are tried, in order, relative to the game root, when
// resolving a BIF's stored filename through the CIFS snapshot.
var searchPrefixes = []string{
	"", "data/", "cache/",
	"cd1/", "cd2/", "cd3/", "cd4/", "cd5/", "cd6/", "cd7/",
}

// DiskTag identifies the logical disk/location a BIF entry's "location"
// field refers to. It preserves unrecognized values verbatim.
type DiskTag struct {
	code uint16
}

// Known disk tags.
var (
	DiskRoot  = DiskTag{0}
	DiskCache = DiskTag{1}
	DiskCd1   = DiskTag{2}
	DiskCd2   = DiskTag{3}
	DiskCd3   = DiskTag{4}
	DiskCd4   = DiskTag{5}
	DiskCd5   = DiskTag{6}
	DiskCd6   = DiskTag{7}
	DiskCd7   = DiskTag{8}
)

var diskNames = map[uint16]string{
	0: "Root", 1: "Cache",
	2: "Cd1", 3: "Cd2", 4: "Cd3", 5: "Cd4", 6: "Cd5", 7: "Cd6", 8: "Cd7",
}

// DiskFromCode resolves a raw location code to a DiskTag.
func DiskFromCode(code uint16) DiskTag { return DiskTag{code: code} }

// Code returns the raw location code; round-trips with DiskFromCode for
// every uint16 value.
func (d DiskTag) Code() uint16 { return d.code }

func (d DiskTag) String() string {
	if name, ok := diskNames[d.code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", d.code)
}

// MarshalJSON renders a DiskTag by its name rather than its bare code.
func (d DiskTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// BifEntry describes one archive named by the KEY catalog.
type BifEntry struct {
	Index int
	// Name is the normalized (lowercased, forward-slash) stored filename.
	Name string
	// Size is the declared archive size; nil in the 8-byte "demo" layout.
	Size *uint32
	// Location is the disk tag decoded from the entry's location field.
	Location DiskTag
	// ResolvedPath is the absolute path found via the CIFS snapshot, or
	// empty if none of the search prefixes resolved.
	ResolvedPath string
}

// ResourceEntry names one resource indexed by the catalog.
type ResourceEntry struct {
	Name    string
	Type    restype.Type
	Locator uint32
}

// File is a fully parsed KEY catalog.
type File struct {
	BifEntries      []BifEntry
	ResourceEntries []ResourceEntry
	Anomalies       []string
}

const (
	bifEntrySizeDemo    = 8
	bifEntrySizeDefault = 12
	resourceEntrySize   = 14
)

// Parse reads a KEY catalog from r, resolving each named BIF archive
// through fs (which may be nil to skip resolution).
func Parse(r *reader.Reader, fs *cifs.FS) (*File, error) {
	if err := r.Seek(0); err != nil {
		return nil, err
	}

	rawSig, err := r.ReadExact(4)
	if err != nil {
		return nil, err
	}
	rawVersion, err := r.ReadExact(4)
	if err != nil {
		return nil, err
	}
	if string(rawSig) != "KEY " || string(rawVersion) != "V1  " {
		return nil, &dispatch.DecodeError{
			What:   "key.Parse",
			Offset: 0,
			Reason: fmt.Sprintf("unexpected signature %q version %q", rawSig, rawVersion),
		}
	}

	bifCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	resourceCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	bifOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	resourcesOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	entrySize, err := detectBifEntrySize(r, int64(bifOffset), bifCount)
	if err != nil {
		return nil, err
	}

	kf := &File{}

	kf.BifEntries = make([]BifEntry, 0, bifCount)
	for i := uint32(0); i < bifCount; i++ {
		entry, err := parseBifEntry(r, int64(bifOffset)+int64(i)*int64(entrySize), int(i), entrySize, fs)
		if err != nil {
			return nil, err
		}
		kf.BifEntries = append(kf.BifEntries, entry)
	}
	if len(kf.BifEntries) != int(bifCount) {
		return nil, &dispatch.DecodeError{What: "key.Parse", Reason: "bif entry count mismatch", Offset: -1}
	}

	kf.ResourceEntries = make([]ResourceEntry, 0, resourceCount)
	for i := uint32(0); i < resourceCount; i++ {
		entry, err := parseResourceEntry(r, int64(resourcesOffset)+int64(i)*resourceEntrySize)
		if err != nil {
			return nil, err
		}
		kf.ResourceEntries = append(kf.ResourceEntries, entry)
	}
	if len(kf.ResourceEntries) != int(resourceCount) {
		return nil, &dispatch.DecodeError{What: "key.Parse", Reason: "resource entry count mismatch", Offset: -1}
	}

	return kf, nil
}

// detectBifEntrySize implements the heuristic "demo" variant detection:
// read u32 at bifOffset and bifOffset+4; if the first looks like a
// difference of bifCount*8 and the second does not look like
// bifCount*12, entries are the 8-byte demo layout (no file_size field).
func detectBifEntrySize(r *reader.Reader, bifOffset int64, bifCount uint32) (int, error) {
	v0, err := r.ReadU32At(bifOffset)
	if err != nil {
		return 0, err
	}
	v1, err := r.ReadU32At(bifOffset + 4)
	if err != nil {
		return 0, err
	}

	d0 := int64(v0) - bifOffset
	d1 := int64(v1) - bifOffset
	if d0 == int64(bifCount)*8 && d1 != int64(bifCount)*12 {
		logger.Infof("key.Parse: detected demo-variant 8-byte BIF entry layout (%d entries)", bifCount)
		return bifEntrySizeDemo, nil
	}
	return bifEntrySizeDefault, nil
}

func parseBifEntry(r *reader.Reader, offset int64, index, entrySize int, fs *cifs.FS) (BifEntry, error) {
	if err := r.Seek(offset); err != nil {
		return BifEntry{}, err
	}

	var size *uint32
	if entrySize == bifEntrySizeDefault {
		v, err := r.ReadU32()
		if err != nil {
			return BifEntry{}, err
		}
		size = &v
	}

	stringOffset, err := r.ReadU32()
	if err != nil {
		return BifEntry{}, err
	}
	stringLength, err := r.ReadU16()
	if err != nil {
		return BifEntry{}, err
	}
	location, err := r.ReadU16()
	if err != nil {
		return BifEntry{}, err
	}

	nameLen := 0
	if stringLength > 0 {
		nameLen = int(stringLength) - 1
	}
	rawName, err := r.ReadStringAt(int64(stringOffset), nameLen)
	if err != nil {
		return BifEntry{}, err
	}

	entry := BifEntry{
		Index:    index,
		Name:     normalizeBifName(rawName),
		Size:     size,
		Location: DiskFromCode(location),
	}

	if fs != nil {
		entry.ResolvedPath = resolveBif(fs, entry.Name)
	}

	return entry, nil
}

func normalizeBifName(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.ReplaceAll(s, ":", "/")
	s = strings.TrimPrefix(s, "/")
	return s
}

func resolveBif(fs *cifs.FS, name string) string {
	for _, prefix := range searchPrefixes {
		if path, ok := fs.Search(prefix + name); ok {
			return path
		}
	}
	if strings.HasSuffix(name, ".bif") {
		cbfName := strings.TrimSuffix(name, ".bif") + ".cbf"
		for _, prefix := range searchPrefixes {
			if path, ok := fs.Search(prefix + cbfName); ok {
				return path
			}
		}
	}
	return ""
}

func parseResourceEntry(r *reader.Reader, offset int64) (ResourceEntry, error) {
	name, err := r.ReadStringAt(offset, 8)
	if err != nil {
		return ResourceEntry{}, err
	}
	typeCode, err := r.ReadU16()
	if err != nil {
		return ResourceEntry{}, err
	}
	locator, err := r.ReadU32()
	if err != nil {
		return ResourceEntry{}, err
	}
	return ResourceEntry{
		Name:    strings.TrimSpace(name),
		Type:    restype.FromCode(typeCode),
		Locator: locator,
	}, nil
}
