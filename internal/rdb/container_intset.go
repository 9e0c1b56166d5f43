package rdb

import (
	"encoding/binary"
	"strconv"
)

// maxIntsetElements caps how many elements a single intset will yield,
// limiting the damage a corrupt count field can do.
const maxIntsetElements = 1_000_000

// DecodeIntset parses the intset container: a sorted array of
// fixed-width signed integers. Header is a 4-byte element size
// followed by a 4-byte count, both little-endian; elements follow in
// little-endian signed form. Returns the elements as decimal strings,
// in on-disk order.
func DecodeIntset(data []byte) ([]string, error) {
	if len(data) < 8 {
		return nil, newErr(KindCorrupt, "intset payload shorter than its header", nil)
	}

	elemSize := binary.LittleEndian.Uint32(data[0:4])
	count := binary.LittleEndian.Uint32(data[4:8])

	switch elemSize {
	case 2, 4, 8:
	default:
		return nil, newErr(KindCorrupt, "intset declares an unsupported element size", nil)
	}

	if uint64(count) > maxIntsetElements {
		count = maxIntsetElements
	}

	offset := 8
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+int(elemSize) > len(data) {
			// Declared count outran the buffer; stop, don't over-read.
			break
		}
		var v int64
		switch elemSize {
		case 2:
			v = int64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
		case 4:
			v = int64(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
		case 8:
			v = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
		}
		out = append(out, strconv.FormatInt(v, 10))
		offset += int(elemSize)
	}
	return out, nil
}
