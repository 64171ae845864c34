package dispatch

import (
	"strings"
	"testing"

	"github.com/infinity-engine/ieformats/internal/reader"
)

func open(t *testing.T, data []byte) *reader.Reader {
	t.Helper()
	ds := reader.NewMemDataSource(data)
	r, err := ds.Open()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSniffKnownSignatures(t *testing.T) {
	tests := []struct {
		sig  string
		want Format
	}{
		{"BAM V1  ", BamV1},
		{"BAM V2  ", BamV2},
		{"BAMCV1  ", Bamc},
		{"BIFFV1  ", Biff},
		{"BIF V1.0", Bif},
		{"BIFCV1.0", Bifc},
		{"KEY V1  ", Key},
		{"WED V1.3", Wed},
		{"2DA V1.0", TwoDA},
	}

	for _, tt := range tests {
		r := open(t, []byte(tt.sig+"trailing payload bytes"))
		got, err := r.Position()
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Fatalf("unexpected initial position %d", got)
		}

		format, err := Sniff(r)
		if err != nil {
			t.Fatalf("Sniff(%q) error = %v", tt.sig, err)
		}
		if format != tt.want {
			t.Errorf("Sniff(%q) = %v, want %v", tt.sig, format, tt.want)
		}

		pos, err := r.Position()
		if err != nil {
			t.Fatal(err)
		}
		if pos != 0 {
			t.Errorf("Sniff did not restore cursor: position = %d, want 0", pos)
		}
	}
}

func TestSniffUnknownSignature(t *testing.T) {
	r := open(t, []byte("NOTREAL!padding"))
	_, err := Sniff(r)
	if err == nil {
		t.Fatal("expected error for unknown signature")
	}
	if !strings.Contains(err.Error(), "NOTREAL!") {
		t.Errorf("error %q does not name observed bytes", err.Error())
	}
}
