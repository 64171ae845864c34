// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package twoda

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/infinity-engine/ieformats/internal/reader"
)

func openTable(t *testing.T, raw []byte) *Table {
	t.Helper()
	ds := reader.NewMemDataSource(raw)
	r, err := ds.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	table, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return table
}

func TestParseHeaderColumnOffsets(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2DA V1.0\n")
	buf.WriteString("0\n")
	buf.WriteString("                        MIN_STR MIN_DEX MIN_CON MIN_INT MIN_WIS MIN_CHR\n")
	buf.WriteString("MAGE                            0       0       9       0       0\n")

	table := openTable(t, buf.Bytes())

	wantHeaders := []string{"MIN_STR", "MIN_DEX", "MIN_CON", "MIN_INT", "MIN_WIS", "MIN_CHR"}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("headers = %v, want %v", table.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Errorf("headers[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	wantColumns := []int{24, 32, 40, 48, 56, 64}
	if len(table.Columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", table.Columns, wantColumns)
	}
	for i, c := range wantColumns {
		if table.Columns[i] != c {
			t.Errorf("columns[%d] = %d, want %d", i, table.Columns[i], c)
		}
	}

	if len(table.Anomalies) != 0 {
		t.Errorf("Anomalies = %v, want none for a valid signature", table.Anomalies)
	}
}

func TestParseDataRowDefaultsAndGaps(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2DA V1.0\n")
	buf.WriteString("default\n")
	buf.WriteString("    A B C D\n")
	buf.WriteString("ROW 1   2      \n")

	table := openTable(t, buf.Bytes())

	got, ok := table.Rows["ROW"]
	if !ok {
		t.Fatalf("row ROW not found, rows = %v", table.Rows)
	}
	want := []string{"1", "default", "2", "default"}
	if len(got) != len(want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseRowMissingAllValues(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2DA V1.0\n")
	buf.WriteString("default\n")
	buf.WriteString("    A B C D\n")
	buf.WriteString("ROW\n")

	table := openTable(t, buf.Bytes())

	got, ok := table.Rows["ROW"]
	if !ok {
		t.Fatalf("row ROW not found")
	}
	for i, v := range got {
		if v != "default" {
			t.Errorf("row[%d] = %q, want default", i, v)
		}
	}
}

func TestParseBadSignatureIsAnomalyNotError(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NOT A 2DA\n")
	buf.WriteString("0\n")
	buf.WriteString("  A B\n")
	buf.WriteString("X 1 2\n")

	table := openTable(t, buf.Bytes())

	if len(table.Anomalies) != 1 {
		t.Fatalf("Anomalies = %v, want exactly one entry", table.Anomalies)
	}
	if table.Rows["X"][0] != "1" {
		t.Errorf("row X = %v, want first value \"1\" (rows still parse despite a bad signature)", table.Rows["X"])
	}
}

// TestParseAbClasRq mirrors the AbClasRq.2DA fixture: a 6-column class
// requirements table, 51 rows, with known values for a handful of
// classes used to pin exact column slicing.
func TestParseAbClasRq(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2DA V1.0\n")
	buf.WriteString("0\n")
	buf.WriteString("                        MIN_STR MIN_DEX MIN_CON MIN_INT MIN_WIS MIN_CHR\n")

	rows := map[string][6]int{
		"MAGE":                {0, 0, 0, 9, 0, 0},
		"FIGHTER_MAGE_CLERIC": {9, 0, 0, 9, 9, 0},
		"PALADIN":             {12, 0, 9, 0, 13, 17},
	}

	// Fill out the remaining rows to reach the declared 51-row count;
	// every class requirement in this fixture defaults to 0.
	names := []string{"MAGE", "FIGHTER_MAGE_CLERIC", "PALADIN"}
	for i := 0; len(names) < 51; i++ {
		names = append(names, fmt.Sprintf("CLASS_%02d", i))
	}

	for _, name := range names {
		vals, ok := rows[name]
		var cells [6]string
		if ok {
			for i, v := range vals {
				cells[i] = fmt.Sprintf("%d", v)
			}
		} else {
			for i := range cells {
				cells[i] = "0"
			}
		}
		buf.WriteString(fmt.Sprintf("%-24s%-8s%-8s%-8s%-8s%-8s%s\n",
			name, cells[0], cells[1], cells[2], cells[3], cells[4], cells[5]))
	}

	table := openTable(t, buf.Bytes())

	if len(table.Rows) != 51 {
		t.Fatalf("row count = %d, want 51", len(table.Rows))
	}

	check := func(name string, want [6]int) {
		got, ok := table.Rows[name]
		if !ok {
			t.Fatalf("row %s not found", name)
		}
		for i, w := range want {
			wantStr := fmt.Sprintf("%d", w)
			if got[i] != wantStr {
				t.Errorf("%s[%d] = %q, want %q", name, i, got[i], wantStr)
			}
		}
	}

	check("MAGE", [6]int{0, 0, 0, 9, 0, 0})
	check("FIGHTER_MAGE_CLERIC", [6]int{9, 0, 0, 9, 9, 0})
	check("PALADIN", [6]int{12, 0, 9, 0, 13, 17})
}
