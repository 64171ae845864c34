package restype

import "testing"

func TestKnownCodesRoundTrip(t *testing.T) {
	for code := range table {
		ty := FromCode(uint16(code))
		if ty.Code() != uint16(code) {
			t.Errorf("FromCode(%#x).Code() = %#x, want %#x", code, ty.Code(), code)
		}
		if ty.Extension() == "" {
			t.Errorf("FromCode(%#x).Extension() is empty", code)
		}
		if !ty.Known() {
			t.Errorf("FromCode(%#x).Known() = false, want true", code)
		}
	}
}

func TestUnknownCodePreserved(t *testing.T) {
	const raw = uint16(0xBEEF)
	ty := FromCode(raw)
	if ty.Known() {
		t.Fatalf("code %#x unexpectedly known", raw)
	}
	if ty.Code() != raw {
		t.Errorf("Code() = %#x, want %#x", ty.Code(), raw)
	}
	if ty.String() != "UNKNOWN(0xBEEF)" {
		t.Errorf("String() = %q", ty.String())
	}
}

func TestParseNameRoundTrip(t *testing.T) {
	ty, ok := ParseName("BAM")
	if !ok {
		t.Fatal("ParseName(BAM) not found")
	}
	if ty.Code() != uint16(Bam) {
		t.Errorf("ParseName(BAM).Code() = %#x, want %#x", ty.Code(), Bam)
	}
}
