package rdb

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
)

// Reader is a forward-only cursor over the snapshot byte stream. It
// exposes the primitive reads every other layer of the decoder is
// built on: exact-length reads, little-endian integers, and the
// two double-precision encodings the format uses.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps any io.Reader for sequential decoding.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// ReadByte reads a single unsigned byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, newErr(KindTruncated, "read byte", err)
	}
	return b, nil
}

// PeekByte looks at the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	buf, err := r.r.Peek(1)
	if err != nil {
		return 0, newErr(KindTruncated, "peek byte", err)
	}
	return buf[0], nil
}

// ReadN reads exactly n bytes, failing with KindTruncated on a short
// read rather than returning a partial buffer.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, newErr(KindTruncated, "read "+strconv.Itoa(n)+" bytes", err)
	}
	return buf, nil
}

// ReadInt8 reads a signed 8-bit integer.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return b, nil
}

// ReadInt16LE reads a little-endian signed 16-bit integer.
func (r *Reader) ReadInt16LE() (int16, error) {
	buf, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(buf)), nil
}

// ReadInt32LE reads a little-endian signed 32-bit integer.
func (r *Reader) ReadInt32LE() (int32, error) {
	buf, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

// ReadUint32LE reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32LE() (uint32, error) {
	buf, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadUint32BE reads a big-endian unsigned 32-bit integer, used by the
// length codec's 32-bit length form.
func (r *Reader) ReadUint32BE() (uint32, error) {
	buf, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadInt64LE reads a little-endian signed 64-bit integer.
func (r *Reader) ReadInt64LE() (int64, error) {
	buf, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// ReadUint64LE reads a little-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64LE() (uint64, error) {
	buf, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadUint64BE reads a big-endian unsigned 64-bit integer, used by the
// length codec's 64-bit length form.
func (r *Reader) ReadUint64BE() (uint64, error) {
	buf, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// ReadBinaryDouble reads the 8-byte little-endian IEEE-754 double used
// by RDB_TYPE_ZSET_2.
func (r *Reader) ReadBinaryDouble() (float64, error) {
	buf, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// ReadCompactDouble reads the older sorted-set score encoding used by
// RDB_TYPE_ZSET: one length byte, where 253/254/255 are NaN/+Inf/-Inf
// sentinels, otherwise that many ASCII digit bytes parsed as decimal.
func (r *Reader) ReadCompactDouble() (float64, error) {
	length, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch length {
	case 255:
		return math.Inf(-1), nil
	case 254:
		return math.Inf(1), nil
	case 253:
		return math.NaN(), nil
	}
	digits, err := r.ReadN(int(length))
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(digits), 64)
	if err != nil {
		return 0, newErr(KindCorrupt, "compact double is not a valid decimal", err)
	}
	return f, nil
}
