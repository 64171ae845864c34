// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package dispatch reads the 8-byte signature at the current reader
// position and routes to the family of format it names, restoring the
// cursor to where it found it.
package dispatch

import (
	"fmt"

	"github.com/infinity-engine/ieformats/internal/reader"
)

// Format identifies which parser family a signature routes to.
type Format int

// Recognized format families.
const (
	Unknown Format = iota
	BamV1
	BamV2
	Bamc
	Biff
	Bif
	Bifc
	Key
	Wed
	TwoDA
)

func (f Format) String() string {
	switch f {
	case BamV1:
		return "BAM V1"
	case BamV2:
		return "BAM V2"
	case Bamc:
		return "BAMC"
	case Biff:
		return "BIFF"
	case Bif:
		return "BIF (zlib)"
	case Bifc:
		return "BIFC (block-zlib)"
	case Key:
		return "KEY"
	case Wed:
		return "WED"
	case TwoDA:
		return "2DA"
	default:
		return "unknown"
	}
}

var signatures = map[string]Format{
	"BAM V1  ": BamV1,
	"BAM V2  ": BamV2,
	"BAMCV1  ": Bamc,
	"BIFFV1  ": Biff,
	"BIF V1.0": Bif,
	"BIFCV1.0": Bifc,
	"WED V1.3": Wed,
	"2DA V1.0": TwoDA,
}

// DecodeError is returned whenever a parser rejects malformed or
// unexpected input: a wrong signature, an out-of-range enum value, or an
// internally inconsistent offset. It carries enough context to name the
// offending bytes or offset in a human-readable message.
type DecodeError struct {
	// What names the parser/operation that detected the problem.
	What string
	// Offset is the byte offset at which the problem was detected, or -1
	// if not applicable.
	Offset int64
	// Observed holds the raw bytes that failed to match, if any.
	Observed []byte
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.What, e.Reason)
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (at offset %d)", msg, e.Offset)
	}
	if len(e.Observed) > 0 {
		msg = fmt.Sprintf("%s, observed %q", msg, e.Observed)
	}
	return msg
}

// Sniff reads the 8-byte signature at the reader's current position,
// resolves it to a Format, and restores the cursor to the pre-read
// position regardless of outcome. An unrecognized signature yields a
// *DecodeError naming the observed bytes.
func Sniff(r *reader.Reader) (Format, error) {
	start, err := r.Position()
	if err != nil {
		return Unknown, err
	}

	raw, err := r.ReadExact(8)
	if err != nil {
		return Unknown, err
	}

	if seekErr := r.Seek(start); seekErr != nil {
		return Unknown, seekErr
	}

	sig := string(raw)
	format, ok := signatures[sig]
	if !ok {
		// The KEY signature is split into two 4-byte fields ("KEY " +
		// "V1  "); it still reads as the same 8 bytes at offset 0.
		if sig == "KEY V1  " {
			return Key, nil
		}
		return Unknown, &DecodeError{
			What:     "dispatch.Sniff",
			Offset:   start,
			Observed: raw,
			Reason:   "unrecognized signature",
		}
	}
	return format, nil
}
