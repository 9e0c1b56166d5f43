package rdb

// decodeStreamStub reads past a stream value's listpack-backed radix
// tree without expanding its entries, returning only an element count.
// Streams are deliberately not expanded further here; doing so right
// would mean walking the radix tree, per-listpack-node master entries,
// consumer groups and their PELs — a decoder in its own right that
// this format sees little enough of to not be worth carrying (see
// spec.md §9).
func (d *ValueDecoder) decodeStreamStub() (Value, error) {
	nodeCount, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}

	for i := uint64(0); i < nodeCount; i++ {
		if _, err := d.strings.ReadRaw(); err != nil { // radix tree key
			return Value{}, err
		}
		if _, err := d.strings.ReadRaw(); err != nil { // listpack node payload
			return Value{}, err
		}
	}

	numElements, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}

	// Stream metadata: length, last ID, first ID, max deleted ID,
	// entries-added counter, then the consumer group section. None of
	// it is needed for the element count this decoder reports, but it
	// still has to be consumed so the reader lands on the next record.
	if _, err := d.r.ReadPlainLength(); err != nil { // length
		return Value{}, err
	}
	for i := 0; i < 2; i++ { // last-id: ms, seq
		if _, err := d.r.ReadPlainLength(); err != nil {
			return Value{}, err
		}
	}
	for i := 0; i < 2; i++ { // first-id: ms, seq
		if _, err := d.r.ReadPlainLength(); err != nil {
			return Value{}, err
		}
	}
	for i := 0; i < 2; i++ { // max-deleted-id: ms, seq
		if _, err := d.r.ReadPlainLength(); err != nil {
			return Value{}, err
		}
	}
	if _, err := d.r.ReadPlainLength(); err != nil { // entries-added
		return Value{}, err
	}

	groupCount, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}
	for g := uint64(0); g < groupCount; g++ {
		if err := d.skipStreamGroup(); err != nil {
			return Value{}, err
		}
	}

	return Value{Kind: KindStream, StreamElements: numElements}, nil
}

func (d *ValueDecoder) skipStreamGroup() error {
	if _, err := d.strings.ReadRaw(); err != nil { // group name
		return err
	}
	for i := 0; i < 2; i++ { // last-delivered-id: ms, seq
		if _, err := d.r.ReadPlainLength(); err != nil {
			return err
		}
	}
	if _, err := d.r.ReadPlainLength(); err != nil { // entries-read
		return err
	}

	pelSize, err := d.r.ReadPlainLength()
	if err != nil {
		return err
	}
	for i := uint64(0); i < pelSize; i++ {
		if _, err := d.r.ReadN(16); err != nil { // stream ID
			return err
		}
		if _, err := d.r.ReadUint64LE(); err != nil { // delivery time
			return err
		}
		if _, err := d.r.ReadPlainLength(); err != nil { // delivery count
			return err
		}
	}

	consumerCount, err := d.r.ReadPlainLength()
	if err != nil {
		return err
	}
	for c := uint64(0); c < consumerCount; c++ {
		if _, err := d.strings.ReadRaw(); err != nil { // consumer name
			return err
		}
		if _, err := d.r.ReadUint64LE(); err != nil { // seen time
			return err
		}
		consumerPEL, err := d.r.ReadPlainLength()
		if err != nil {
			return err
		}
		for i := uint64(0); i < consumerPEL; i++ {
			if _, err := d.r.ReadN(16); err != nil { // stream ID
				return err
			}
		}
	}

	return nil
}
