package rdb

import (
	"bytes"
	"testing"
)

func TestReadLength(t *testing.T) {
	cases := []struct {
		name      string
		input     []byte
		wantValue uint64
		wantEnc   bool
		wantTag   uint64
	}{
		{"6-bit", []byte{0x0A}, 10, false, 0},
		{"14-bit", []byte{0x42, 0x01}, 0x0201, false, 0}, // 01|000010 00000001
		{"32-bit big-endian", []byte{0x80, 0x00, 0x01, 0x02, 0x03}, 0x00010203, false, 0},
		{"64-bit big-endian", []byte{0x81, 0, 0, 0, 0, 0, 0, 0, 0x2A}, 0x2A, false, 0},
		{"special tag", []byte{0xC3}, 0, true, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tc.input))
			got, err := r.ReadLength()
			if err != nil {
				t.Fatalf("ReadLength: %v", err)
			}
			if got.IsEncoded != tc.wantEnc {
				t.Fatalf("IsEncoded = %v, want %v", got.IsEncoded, tc.wantEnc)
			}
			if tc.wantEnc {
				if got.Encoding != tc.wantTag {
					t.Fatalf("Encoding = %d, want %d", got.Encoding, tc.wantTag)
				}
				return
			}
			if got.Value != tc.wantValue {
				t.Fatalf("Value = %d, want %d", got.Value, tc.wantValue)
			}
		})
	}
}

func TestReadLength32BitIsBigEndian(t *testing.T) {
	// A length whose little-endian misreading would silently produce a
	// tiny, wrong value must come out as the large big-endian one.
	r := NewReader(bytes.NewReader([]byte{0x80, 0x00, 0x10, 0x00, 0x00}))
	got, err := r.ReadLength()
	if err != nil {
		t.Fatalf("ReadLength: %v", err)
	}
	const want = 0x00100000
	if got.Value != want {
		t.Fatalf("Value = %#x, want %#x (length must be read big-endian)", got.Value, want)
	}
}

func TestReadPlainLengthRejectsEncodedTag(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xC0}))
	if _, err := r.ReadPlainLength(); err == nil {
		t.Fatal("expected an error for a special-encoding tag where a plain length was required")
	}
}
