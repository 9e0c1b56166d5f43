package rdb

import (
	"math"
	"reflect"
	"testing"
)

func plainString(s string) []byte {
	return append([]byte{plainLen(len(s))}, s...)
}

func TestDecodeString(t *testing.T) {
	d := newTestValueDecoder(plainString("hello"))
	v, err := d.Decode(TypeString)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindStr || v.Str != "hello" {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeListPlain(t *testing.T) {
	var raw []byte
	raw = append(raw, plainLen(2))
	raw = append(raw, plainString("a")...)
	raw = append(raw, plainString("b")...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeList)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindList || !reflect.DeepEqual(v.List, []string{"a", "b"}) {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeSetPlainDedups(t *testing.T) {
	var raw []byte
	raw = append(raw, plainLen(3))
	raw = append(raw, plainString("x")...)
	raw = append(raw, plainString("x")...)
	raw = append(raw, plainString("y")...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeSet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindSet || !reflect.DeepEqual(v.Set, []string{"x", "y"}) {
		t.Fatalf("got %+v, want deduplicated [x y]", v)
	}
}

func TestDecodeHashPlainPreservesFieldOrder(t *testing.T) {
	var raw []byte
	raw = append(raw, plainLen(2))
	raw = append(raw, plainString("f2")...)
	raw = append(raw, plainString("v2")...)
	raw = append(raw, plainString("f1")...)
	raw = append(raw, plainString("v1")...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeHash)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := map[string]string{"f1": "v1", "f2": "v2"}
	if v.Kind != KindHash || !reflect.DeepEqual(v.Hash, want) {
		t.Fatalf("got %+v", v)
	}
	if !reflect.DeepEqual(v.HashOrder, []string{"f2", "f1"}) {
		t.Fatalf("HashOrder = %v, want insertion order [f2 f1]", v.HashOrder)
	}
}

func TestDecodeZSetCompactDoubles(t *testing.T) {
	var raw []byte
	raw = append(raw, plainLen(2))
	raw = append(raw, plainString("alice")...)
	raw = append(raw, byte(4))
	raw = append(raw, "3.50"...)
	raw = append(raw, plainString("bob")...)
	raw = append(raw, byte(253)) // NaN sentinel

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeZSet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindZSet || len(v.ZSet) != 2 {
		t.Fatalf("got %+v", v)
	}
	if v.ZSet[0].Member != "alice" || v.ZSet[0].Score != 3.50 {
		t.Fatalf("got %+v", v.ZSet[0])
	}
	if v.ZSet[1].Member != "bob" || !math.IsNaN(v.ZSet[1].Score) {
		t.Fatalf("got %+v, want NaN score", v.ZSet[1])
	}
}

func TestDecodeZSet2BinaryDoubles(t *testing.T) {
	var raw []byte
	raw = append(raw, plainLen(1))
	raw = append(raw, plainString("m")...)
	raw = append(raw, u64le(math.Float64bits(-2.25))...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeZSet2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindZSet || len(v.ZSet) != 1 || v.ZSet[0].Score != -2.25 {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeModulePlaceholder(t *testing.T) {
	d := newTestValueDecoder(nil)
	v, err := d.Decode(TypeModule)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindStr || v.Str != "<module data>" {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeZipmapPlaceholder(t *testing.T) {
	d := newTestValueDecoder(plainString("xxxxx"))
	v, err := d.Decode(TypeHashZipmap)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindHash || v.Str != "<zipmap: 5 bytes>" {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeListZiplistContainer(t *testing.T) {
	zl := buildZiplist(zl6BitString("one"), zl6BitString("two"))
	raw := append([]byte{plainLen(len(zl))}, zl...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeListZiplist)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindList || !reflect.DeepEqual(v.List, []string{"one", "two"}) {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeSetIntsetContainer(t *testing.T) {
	is := buildIntset(2, []int64{-1, 2, 30000})
	raw := append([]byte{plainLen(len(is))}, is...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeSetIntset)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindSet || !reflect.DeepEqual(v.Set, []string{"-1", "2", "30000"}) {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeHashListpackContainer(t *testing.T) {
	lp := buildListpack(lpEntry(1, 0x01), lpEntry(1, 0x02))
	raw := append([]byte{plainLen(len(lp))}, lp...)

	d := newTestValueDecoder(raw)
	v, err := d.Decode(TypeHashListpack)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := map[string]string{"1": "2"}
	if v.Kind != KindHash || !reflect.DeepEqual(v.Hash, want) {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeUnknownTypeFallsBackToText(t *testing.T) {
	d := newTestValueDecoder(plainString("leftover"))
	v, err := d.Decode(0x63)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind != KindStr || v.Str != "leftover" {
		t.Fatalf("got %+v, want the raw bytes read as text", v)
	}
}

func TestTypeName(t *testing.T) {
	cases := map[byte]string{
		TypeString:         "string",
		TypeListQuicklist2: "list",
		TypeSetListpack:    "set",
		TypeZSetListpack:   "zset",
		TypeHashListpack:   "hash",
		TypeStreamListpacks2: "stream",
		200:                "unknown_type_200",
	}
	for tag, want := range cases {
		if got := TypeName(tag); got != want {
			t.Errorf("TypeName(%d) = %q, want %q", tag, got, want)
		}
	}
}
