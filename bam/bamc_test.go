package bam

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/infinity-engine/ieformats/internal/reader"
)

func buildBamc(t *testing.T, v1Body []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(v1Body); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.WriteString("BAMCV1  ")
	binary.Write(&buf, binary.LittleEndian, uint32(len(v1Body)))
	buf.Write(compressed.Bytes())
	return buf.Bytes()
}

// TestBamcMatchesDecompressedV1 checks the scenario from the testable
// properties: parsing a BAMC container yields the same structural
// result as decompressing it and parsing the BAM v1 body directly.
func TestBamcMatchesDecompressedV1(t *testing.T) {
	v1Body := buildV1(t)
	bamcData := buildBamc(t, v1Body)

	direct := openV1(t, v1Body)

	ds := reader.NewMemDataSource(bamcData)
	r, err := ds.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	viaBamc, err := ParseBamc(r)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(direct, viaBamc) {
		t.Errorf("BAMC-decoded structure diverges from direct BAM v1 parse:\ndirect=%+v\nbamc=%+v", direct, viaBamc)
	}
}
