package codec

import (
	"bytes"
	"strconv"
	"testing"
)

func TestEncodeUnsigned(t *testing.T) {
	cases := []struct {
		bits int
		text string
		want []byte
	}{
		{8, "255", []byte{0xff}},
		{16, "0x1234", []byte{0x34, 0x12}},
		{32, "1", []byte{0x01, 0x00, 0x00, 0x00}},
		{64, "0", []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		got, err := Encode(false, c.bits, c.text)
		if err != nil {
			t.Fatalf("Encode(false, %d, %q): %v", c.bits, c.text, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("Encode(false, %d, %q) = % x, want % x", c.bits, c.text, got, c.want)
		}
	}
}

func TestEncodeSignedNegative(t *testing.T) {
	got, err := Encode(true, 32, "-1")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(-1, i32) = % x, want % x", got, want)
	}
}

func TestEncodeOctal(t *testing.T) {
	got, err := Encode(false, 8, "010")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, []byte{8}) {
		t.Errorf("Encode(010, u8) = % x, want [08]", got)
	}
}

func TestEncodeInvalidWidth(t *testing.T) {
	if _, err := Encode(false, 24, "1"); err == nil {
		t.Error("Encode with bits=24: expected error, got nil")
	}
}

func TestEncodeInvalidText(t *testing.T) {
	if _, err := Encode(false, 32, "not-a-number"); err == nil {
		t.Error("Encode with garbage text: expected error, got nil")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		bits   int
		signed bool
		text   string
	}{
		{8, false, "200"},
		{16, true, "-100"},
		{32, false, "4000000000"},
		{64, true, "-1"},
	}
	for _, c := range cases {
		buf, err := Encode(c.signed, c.bits, c.text)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		signedValue, unsignedValue := Decode(buf)
		if c.signed {
			want, err := strconv.ParseInt(c.text, 0, 64)
			if err != nil {
				t.Fatalf("ParseInt(%q): %v", c.text, err)
			}
			if signedValue != want {
				t.Errorf("Decode(%q) signed = %d, want %d", c.text, signedValue, want)
			}
		} else if unsignedValue == 0 && c.text != "0" {
			t.Errorf("Decode(%q) unsigned = 0, want nonzero", c.text)
		}
	}
}
