package rdb

// Length is the result of decoding the format's self-describing
// length/encoding prefix. Exactly one of Value (when IsEncoded is
// false) or Encoding (when IsEncoded is true) is meaningful, mirroring
// the (length, is_encoded_tag, tag) return shape from spec.md §4.2.
type Length struct {
	Value     uint64
	IsEncoded bool
	Encoding  uint64
}

// ReadLength decodes one length/encoding prefix. The top two bits of
// the first byte select the mode:
//
//	00|xxxxxx            6-bit length
//	01|xxxxxx xxxxxxxx   14-bit length
//	10000000 + 4 bytes   32-bit length, big-endian payload
//	10000001 + 8 bytes   64-bit length, big-endian payload
//	11|xxxxxx            special encoding tag in the low 6 bits
//
// The 32/64-bit payloads are read big-endian: the on-disk format
// specifies big-endian length payloads, and reading them any other way
// silently truncates snapshots with very large containers.
func (r *Reader) ReadLength() (Length, error) {
	first, err := r.ReadByte()
	if err != nil {
		return Length{}, err
	}

	switch first >> 6 {
	case 0b00:
		return Length{Value: uint64(first & 0x3F)}, nil

	case 0b01:
		next, err := r.ReadByte()
		if err != nil {
			return Length{}, err
		}
		return Length{Value: (uint64(first&0x3F) << 8) | uint64(next)}, nil

	case 0b10:
		switch first {
		case 0x80:
			v, err := r.ReadUint32BE()
			if err != nil {
				return Length{}, err
			}
			return Length{Value: uint64(v)}, nil
		case 0x81:
			v, err := r.ReadUint64BE()
			if err != nil {
				return Length{}, err
			}
			return Length{Value: v}, nil
		default:
			// Reserved pattern; treat the low bits as a special tag so
			// callers can still make forward progress on a corrupt
			// stream instead of aborting outright.
			return Length{IsEncoded: true, Encoding: uint64(first & 0x3F)}, nil
		}

	default: // 0b11
		return Length{IsEncoded: true, Encoding: uint64(first & 0x3F)}, nil
	}
}

// ReadPlainLength reads a length prefix that must not be a special
// encoding (used for container counts, DB indexes, and similar
// fields that are never followed by an inline integer or compressed
// string).
func (r *Reader) ReadPlainLength() (uint64, error) {
	l, err := r.ReadLength()
	if err != nil {
		return 0, err
	}
	if l.IsEncoded {
		return 0, newErr(KindCorrupt, "expected a plain length, got a special encoding tag", nil)
	}
	return l.Value, nil
}
