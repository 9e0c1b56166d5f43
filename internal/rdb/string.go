package rdb

import (
	"strconv"
	"unicode/utf8"
)

// maxStringLength bounds plain string reads against corrupt length
// fields. Anything past it is replaced by a placeholder rather than
// attempted, per spec.md §3's invariant on oversized lengths.
const maxStringLength = 100 * 1024 * 1024

// Decompressor expands a compressed byte slice to its known
// uncompressed size. StringCodec treats a nil Decompressor the same
// as one that always errors: the compressed-string tag degrades to a
// diagnostic placeholder instead of failing the parse.
type Decompressor interface {
	Decompress(compressed []byte, uncompressedSize int) ([]byte, error)
}

// StringCodec decodes the format's string payloads: plain strings,
// inline integers, and LZF-compressed strings, resolved via the
// shared length prefix.
type StringCodec struct {
	r       *Reader
	decomp  Decompressor
	onDiag  func(string)
}

// NewStringCodec builds a StringCodec over r. decomp may be nil, in
// which case compressed strings degrade to a placeholder. onDiag, if
// non-nil, receives a one-line message for every recoverable
// degradation (corrupt length, unknown special encoding, missing
// decompressor) so the caller can log it.
func NewStringCodec(r *Reader, decomp Decompressor, onDiag func(string)) *StringCodec {
	return &StringCodec{r: r, decomp: decomp, onDiag: onDiag}
}

func (c *StringCodec) diag(msg string) {
	if c.onDiag != nil {
		c.onDiag(msg)
	}
}

// ReadText returns a best-effort UTF-8 string: invalid sequences in a
// plain string payload are replaced with the Unicode replacement
// character rather than rejected.
func (c *StringCodec) ReadText() (string, error) {
	raw, err := c.ReadRaw()
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return toValidUTF8(raw), nil
}

func toValidUTF8(raw []byte) string {
	out := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		out = append(out, r)
		i += size
	}
	return string(out)
}

// ReadRaw returns the opaque decoded bytes: the payload of a plain
// string, the decimal rendering of an inline integer, or the
// decompressed contents of an LZF string. It never returns an error
// for an oversized length or unsupported encoding — those degrade to a
// placeholder so the outer parse can continue, per spec.md §4.3.
func (c *StringCodec) ReadRaw() ([]byte, error) {
	length, err := c.r.ReadLength()
	if err != nil {
		// A truncated length prefix is fatal: there is no way to
		// recover alignment in the stream.
		return nil, err
	}

	if length.IsEncoded {
		return c.readEncoded(length.Encoding)
	}

	if length.Value == 0 {
		return []byte{}, nil
	}
	if length.Value > maxStringLength {
		c.diag("string length " + strconv.FormatUint(length.Value, 10) + " exceeds 100MiB cap, using placeholder")
		return []byte("<oversized string>"), nil
	}

	buf, err := c.r.ReadN(int(length.Value))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *StringCodec) readEncoded(tag uint64) ([]byte, error) {
	switch tag {
	case encInt8:
		v, err := c.r.ReadInt8()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(int64(v), 10)), nil

	case encInt16:
		v, err := c.r.ReadInt16LE()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(int64(v), 10)), nil

	case encInt32:
		v, err := c.r.ReadInt32LE()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(int64(v), 10)), nil

	case encLZF:
		return c.readCompressed()

	default:
		c.diag("unknown string special encoding tag " + strconv.FormatUint(tag, 10))
		return []byte("<unsupported encoding>"), nil
	}
}

func (c *StringCodec) readCompressed() ([]byte, error) {
	compressedLen, err := c.r.ReadPlainLength()
	if err != nil {
		return nil, err
	}
	uncompressedLen, err := c.r.ReadPlainLength()
	if err != nil {
		return nil, err
	}
	if compressedLen > maxStringLength || uncompressedLen > maxStringLength {
		c.diag("compressed string declares an oversized length, using placeholder")
		return []byte("<oversized compressed string>"), nil
	}
	compressed, err := c.r.ReadN(int(compressedLen))
	if err != nil {
		return nil, err
	}

	if c.decomp == nil {
		c.diag("no decompressor registered for compressed string")
		return []byte("<compressed: " + strconv.FormatUint(compressedLen, 10) + " bytes, no decompressor available>"), nil
	}

	out, err := c.decomp.Decompress(compressed, int(uncompressedLen))
	if err != nil {
		c.diag("decompression failed: " + err.Error())
		return []byte("<compressed: " + strconv.FormatUint(compressedLen, 10) + " bytes, decompression failed>"), nil
	}
	return out, nil
}

// Special string encoding tags, from spec.md §4.3.
const (
	encInt8  = 0
	encInt16 = 1
	encInt32 = 2
	encLZF   = 3
)
