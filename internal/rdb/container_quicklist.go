package rdb

// quicklistSegmentKind selects how a quicklist's segments are packed,
// determined by the outer value-type opcode that selected the
// quicklist decoder in the first place (RDB_TYPE_LIST_QUICKLIST uses
// ziplist segments; RDB_TYPE_LIST_QUICKLIST_2 uses listpack segments).
// Branching on the caller-supplied kind, rather than always assuming
// ziplist, is what makes quicklist-v2 snapshots decode correctly.
type quicklistSegmentKind int

const (
	quicklistSegmentZiplist quicklistSegmentKind = iota
	quicklistSegmentListpack
)

const (
	quicklistContainerPlain  = 1
	quicklistContainerPacked = 2
)

// decodeQuicklist reads the outer segment count, then for each
// segment either a plain raw string (v2 PLAIN container, used for
// oversized single elements) or a packed container decoded according
// to kind.
func (d *ValueDecoder) decodeQuicklist(kind quicklistSegmentKind) ([]string, error) {
	segmentCount, err := d.r.ReadPlainLength()
	if err != nil {
		return nil, err
	}

	var elements []string
	for i := uint64(0); i < segmentCount; i++ {
		container := uint64(quicklistContainerPacked)
		if kind == quicklistSegmentListpack {
			// Only quicklist-v2 segments carry an explicit container
			// tag; legacy quicklist segments are always packed
			// ziplists with no such prefix.
			container, err = d.r.ReadPlainLength()
			if err != nil {
				return nil, err
			}
		}

		raw, err := d.strings.ReadRaw()
		if err != nil {
			return nil, err
		}

		if container == quicklistContainerPlain {
			elements = append(elements, string(raw))
			continue
		}

		var entries []string
		if kind == quicklistSegmentListpack {
			entries, err = DecodeListpack(raw)
		} else {
			entries, err = DecodeZiplist(raw)
		}
		if err != nil {
			d.diag("quicklist segment " + kindLabel(kind) + " failed to decode: " + err.Error())
			continue
		}
		elements = append(elements, entries...)
	}

	return elements, nil
}

func kindLabel(kind quicklistSegmentKind) string {
	if kind == quicklistSegmentListpack {
		return "listpack"
	}
	return "ziplist"
}
