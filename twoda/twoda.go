// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package twoda parses 2DA fixed-column text tables: a small header
// naming a default cell value and a header line whose column start
// offsets are inferred by scanning whitespace runs, followed by rows
// keyed by their leading token.
package twoda

import (
	"strings"

	"github.com/infinity-engine/ieformats/internal/log"
	"github.com/infinity-engine/ieformats/internal/reader"
)

// logger receives a warning when a table's signature does not match
// "2DA V1.0"; discarded by default, override with SetLogger.
var logger = log.Discard()

// SetLogger installs h as the destination for this package's log
// messages.
func SetLogger(h *log.Helper) { logger = h }

// Table is a fully parsed 2DA file: ordered column headers, their byte
// start offsets within a data line (parallel to Headers), and an
// unordered key-to-values mapping.
type Table struct {
	Headers []string
	Columns []int
	Rows    map[string][]string
	// Anomalies records non-fatal oddities, such as a signature that
	// does not match "2DA V1.0"; the signature check is advisory only.
	Anomalies []string
}

// Parse reads a 2DA table from r. The leading signature line is logged
// as an anomaly on mismatch but never rejected, per the format's
// documented looseness.
func Parse(r *reader.Reader) (*Table, error) {
	sig, _, err := r.ReadLine()
	if err != nil {
		return nil, err
	}

	t := &Table{Rows: make(map[string][]string)}

	if strings.TrimSpace(sig) != "2DA V1.0" {
		msg := "unexpected signature \"" + strings.TrimSpace(sig) + "\""
		t.Anomalies = append(t.Anomalies, msg)
		logger.Warnf("twoda.Parse: %s, continuing anyway", msg)
	}

	defaultLine, _, err := r.ReadLine()
	if err != nil {
		return nil, err
	}
	defaultValue := strings.TrimSpace(defaultLine)

	headerLine, _, err := r.ReadLine()
	if err != nil {
		return nil, err
	}
	t.Headers, t.Columns = parseHeaders(headerLine)

	for {
		line, n, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		key, values := parseDataRow(line, t.Columns, defaultValue)
		t.Rows[key] = values
	}

	return t, nil
}

// parseHeaders splits a header line into words and records the byte
// offset each word starts at; those offsets become the column
// boundaries data rows are sliced on.
func parseHeaders(line string) ([]string, []int) {
	var headers []string
	var columns []int

	inWord := false
	start := 0
	for i, c := range []byte(line) {
		if isSpace(c) {
			if inWord {
				headers = append(headers, line[start:i])
				columns = append(columns, start)
				inWord = false
			}
			continue
		}
		if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		headers = append(headers, line[start:])
		columns = append(columns, start)
	}

	return headers, columns
}

// parseDataRow slices a data line at the precomputed column offsets.
// The key is everything before the first column. A cell past the end
// of the line, or trimming to empty, is replaced by the default value.
func parseDataRow(line string, columns []int, defaultValue string) (string, []string) {
	maxLen := len(line)

	keyEnd := maxLen
	if len(columns) > 0 && columns[0] < keyEnd {
		keyEnd = columns[0]
	}
	key := strings.TrimSpace(line[:keyEnd])

	values := make([]string, 0, len(columns))
	for i, start := range columns {
		end := maxLen
		if i+1 < len(columns) {
			end = columns[i+1]
		}
		if start >= maxLen {
			values = append(values, defaultValue)
			continue
		}
		word := strings.TrimSpace(line[start:end])
		if word == "" {
			values = append(values, defaultValue)
		} else {
			values = append(values, word)
		}
	}

	return key, values
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}
