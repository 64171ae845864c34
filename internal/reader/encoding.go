// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects the text encoding a DataSource uses to decode embedded
// fixed-width string fields. The default is Windows-1252, correct for
// legacy (non-Enhanced-Edition) fixtures; Enhanced Edition installs use
// UTF-8 in a handful of text resources and may override per DataSource.
type Encoding int

const (
	// EncodingWindows1252 is the legacy single-byte Western-European code
	// page used by the original engine releases.
	EncodingWindows1252 Encoding = iota
	// EncodingUTF8 is used by a handful of Enhanced Edition text resources.
	EncodingUTF8
)

// decodeString decodes raw bytes per enc, stripping trailing NUL bytes.
// It fails if the encoding reports an error decoding the bytes.
func decodeString(enc Encoding, raw []byte) (string, error) {
	raw = bytes.TrimRight(raw, "\x00")

	switch enc {
	case EncodingUTF8:
		if !utf8.Valid(raw) {
			return "", ErrInvalidEncoding
		}
		return string(raw), nil
	case EncodingWindows1252:
		fallthrough
	default:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", ErrInvalidEncoding
		}
		return string(decoded), nil
	}
}
