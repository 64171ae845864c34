// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package reader

import "errors"

// ErrInvalidEncoding is returned when decoding a fixed-width string field
// under the configured encoding reports an error.
var ErrInvalidEncoding = errors.New("reader: string decode reported had_errors")

// ErrNotSeekable reports a stream that does not support random access.
// No reader in this package returns it: ZlibReader has no Seek or
// Position, and BlockZlibReader supports both over its decoded buffer.
var ErrNotSeekable = errors.New("reader: underlying stream is not seekable")
