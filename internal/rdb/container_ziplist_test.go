package rdb

import (
	"encoding/binary"
	"reflect"
	"testing"
)

// buildZiplist assembles a minimal-but-valid ziplist: a 10-byte header
// (zlbytes/zltail/zllen, none of which this decoder trusts) followed
// by raw entry bytes and the 0xFF terminator.
func buildZiplist(entries ...[]byte) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, e...)
	}
	buf := make([]byte, ziplistHeaderSize+len(body)+1)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(ziplistHeaderSize))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(len(entries)))
	copy(buf[ziplistHeaderSize:], body)
	buf[len(buf)-1] = 0xFF
	return buf
}

// zlEntry builds one ziplist entry with a 1-byte prevlen (the value
// doesn't matter to the decoder) followed by the given encoding and
// payload bytes.
func zlEntry(prevlen byte, encodingAndPayload ...byte) []byte {
	return append([]byte{prevlen}, encodingAndPayload...)
}

func zl6BitString(s string) []byte {
	return zlEntry(0, append([]byte{byte(len(s))}, s...)...)
}

func TestDecodeZiplistEncodings(t *testing.T) {
	var raw []byte
	raw = append(raw, zl6BitString("hi")...)                       // 6-bit string "hi"
	raw = append(raw, zlEntry(0, 0x40, 0x03, 'f', 'o', 'o')...)     // 14-bit string "foo"
	be := []byte{0x80, 0, 0, 0, 2}                                 // 32-bit BE length = 2
	raw = append(raw, zlEntry(0, append(be, 'o', 'k')...)...)       // 32-bit string "ok"
	raw = append(raw, zlEntry(0, 0xC0, 0x2A, 0x00)...)              // int16 LE = 42
	raw = append(raw, zlEntry(0, 0xF0, 0x01, 0x00, 0x00)...)        // 24-bit = 1
	raw = append(raw, zlEntry(0, 0xFE, 0x7B)...)                    // int8 = 123
	raw = append(raw, zlEntry(0, 0xF1)...)                          // 4-bit immediate: (1)-1=0

	buf := make([]byte, ziplistHeaderSize+len(raw)+1)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint16(buf[8:10], 7)
	copy(buf[ziplistHeaderSize:], raw)
	buf[len(buf)-1] = 0xFF

	got, err := DecodeZiplist(buf)
	if err != nil {
		t.Fatalf("DecodeZiplist: %v", err)
	}
	want := []string{"hi", "foo", "ok", "42", "1", "123", "0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeZiplistTruncatesAtOverlongEntry(t *testing.T) {
	var raw []byte
	raw = append(raw, zl6BitString("first")...)
	// 0x81 reads as a 32-bit-string-length encoding whose following 4
	// bytes (borrowed from the next entry: its prevlen, its encoding
	// byte and two payload bytes) decode to a length far larger than
	// anything left in the buffer, so the bounds check fails and
	// decoding stops here.
	raw = append(raw, zlEntry(0, 0x81)...)
	raw = append(raw, zl6BitString("never-reached")...)

	buf := buildZiplist(raw)
	got, err := DecodeZiplist(buf)
	if err != nil {
		t.Fatalf("DecodeZiplist: %v", err)
	}
	want := []string{"first"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v (decoding should stop at the bad entry, not abort)", got, want)
	}
}

func TestDecodeZiplistRejectsShortHeader(t *testing.T) {
	if _, err := DecodeZiplist([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a too-short ziplist payload")
	}
}
