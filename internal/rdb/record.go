package rdb

import (
	"errors"
	"io"
)

// Opcodes, from spec.md §4.6.
const (
	opAux          = 0xFA
	opResizeDB     = 0xFB
	opExpireTimeMs = 0xFC
	opExpireTime   = 0xFD
	opSelectDB     = 0xFE
	opEOF          = 0xFF
	opIdle         = 0xF8
	opFreq         = 0xF9
)

const (
	magicPrefix   = "REDIS"
	versionDigits = 4
)

// Record is one key/value pair surfaced by RecordStream, carrying the
// pending metadata (expiry, idle time, access frequency) that preceded
// it in the stream.
type Record struct {
	DB       uint64
	Key      string
	Value    Value
	TypeTag  byte
	ExpireAt *int64 // Unix milliseconds, nil if the key has no TTL
	Idle     *uint64
	Freq     *uint8

	// Err is set instead of Value being meaningful when this key's
	// value failed to decode but the stream could still be kept
	// aligned (see spec.md §7's per-entry error propagation policy).
	Err string
}

// AuxField is a top-level metadata key/value pair outside any database
// (RDB_OPCODE_AUX), such as redis-ver or used-mem.
type AuxField struct {
	Key   string
	Value string
}

// RecordStream walks a snapshot body opcode by opcode, handing back one
// Record per value-type opcode and tracking the pending-metadata fields
// an expiry/idle/freq opcode sets for the very next record.
type RecordStream struct {
	r       *Reader
	strings *StringCodec
	values  *ValueDecoder
	onDiag  func(string)

	version   string
	currentDB uint64

	pendingExpire *int64
	pendingIdle   *uint64
	pendingFreq   *uint8

	aux  []AuxField
	done bool
}

// NewRecordStream validates the header and returns a stream positioned
// to read the first opcode. decomp may be nil (compressed strings then
// degrade to placeholders).
func NewRecordStream(r io.Reader, decomp Decompressor, onDiag func(string)) (*RecordStream, error) {
	reader := NewReader(r)
	version, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	strings := NewStringCodec(reader, decomp, onDiag)
	values := NewValueDecoder(reader, strings, onDiag)
	return &RecordStream{
		r:       reader,
		strings: strings,
		values:  values,
		onDiag:  onDiag,
		version: version,
	}, nil
}

func readHeader(r *Reader) (string, error) {
	magic, err := r.ReadN(len(magicPrefix))
	if err != nil {
		return "", err
	}
	if string(magic) != magicPrefix {
		return "", newErr(KindBadMagic, "missing REDIS magic", nil)
	}
	digits, err := r.ReadN(versionDigits)
	if err != nil {
		return "", err
	}
	for _, b := range digits {
		if b < '0' || b > '9' {
			return "", newErr(KindUnsupportedVersion, "version field is not numeric", nil)
		}
	}
	return string(digits), nil
}

// Version is the snapshot format version read from the header, kept as
// its original 4-digit ASCII form (e.g. "0011") rather than parsed to
// an integer, since a leading zero is part of the on-disk value.
func (s *RecordStream) Version() string { return s.version }

// AuxFields returns the aux key/value pairs seen so far. Aux opcodes
// can appear interleaved with value records, so this grows as Next is
// called; a final snapshot should read it only after Next returns
// io.EOF.
func (s *RecordStream) AuxFields() []AuxField { return s.aux }

// CurrentDB returns the most recently selected database index.
func (s *RecordStream) CurrentDB() uint64 { return s.currentDB }

func (s *RecordStream) diag(msg string) {
	if s.onDiag != nil {
		s.onDiag(msg)
	}
}

// Next advances to the next key/value record, consuming and applying
// any metadata/control opcodes along the way, and transparently
// skipping keys that decoded to one of the string codec's own
// placeholders. It returns io.EOF once the RDB_OPCODE_EOF marker is
// reached, or once the stream cannot be kept aligned after skipping an
// unreadable key (in which case everything read so far is still
// valid).
func (s *RecordStream) Next() (Record, error) {
	for {
		if s.done {
			return Record{}, io.EOF
		}

		tag, err := s.r.ReadByte()
		if err != nil {
			return Record{}, err
		}

		switch tag {
		case opEOF:
			s.done = true
			return Record{}, io.EOF

		case opSelectDB:
			db, err := s.r.ReadPlainLength()
			if err != nil {
				return Record{}, err
			}
			s.currentDB = db

		case opResizeDB:
			if _, err := s.r.ReadPlainLength(); err != nil { // hash table size
				return Record{}, err
			}
			if _, err := s.r.ReadPlainLength(); err != nil { // expires table size
				return Record{}, err
			}

		case opAux:
			key, err := s.strings.ReadText()
			if err != nil {
				return Record{}, err
			}
			val, err := s.strings.ReadText()
			if err != nil {
				return Record{}, err
			}
			s.aux = append(s.aux, AuxField{Key: key, Value: val})

		case opExpireTimeMs:
			ms, err := s.r.ReadUint64LE()
			if err != nil {
				return Record{}, err
			}
			signed := int64(ms)
			s.pendingExpire = &signed

		case opExpireTime:
			secs, err := s.r.ReadUint32LE()
			if err != nil {
				return Record{}, err
			}
			ms := int64(secs) * 1000
			s.pendingExpire = &ms

		case opIdle:
			idle, err := s.r.ReadPlainLength()
			if err != nil {
				return Record{}, err
			}
			s.pendingIdle = &idle

		case opFreq:
			freq, err := s.r.ReadByte()
			if err != nil {
				return Record{}, err
			}
			s.pendingFreq = &freq

		default:
			rec, skip, err := s.readValueRecord(tag)
			if err != nil {
				if skip {
					// Couldn't keep the stream aligned past a
					// skipped placeholder key; stop gracefully.
					s.done = true
					return Record{}, io.EOF
				}
				return Record{}, err
			}
			if skip {
				continue
			}
			return rec, nil
		}
	}
}

// readValueRecord reads one key/value pair for typeTag. skip is true
// when the key itself was an unreadable placeholder: the value was
// still consumed to keep the stream aligned, but the record is not
// meant to be emitted.
func (s *RecordStream) readValueRecord(typeTag byte) (rec Record, skip bool, err error) {
	key, err := s.strings.ReadText()
	if err != nil {
		return Record{}, false, err
	}
	skip = isPlaceholder(key)

	val, decodeErr := s.values.Decode(typeTag)
	if decodeErr != nil {
		if skip {
			return Record{}, true, decodeErr
		}
		if isFatal(decodeErr) {
			return Record{}, false, decodeErr
		}
		rec = Record{
			DB:       s.currentDB,
			Key:      key,
			TypeTag:  typeTag,
			ExpireAt: s.pendingExpire,
			Idle:     s.pendingIdle,
			Freq:     s.pendingFreq,
			Err:      decodeErr.Error(),
		}
		s.pendingExpire, s.pendingIdle, s.pendingFreq = nil, nil, nil
		return rec, false, nil
	}

	if skip {
		s.pendingExpire, s.pendingIdle, s.pendingFreq = nil, nil, nil
		return Record{}, true, nil
	}

	rec = Record{
		DB:       s.currentDB,
		Key:      key,
		Value:    val,
		TypeTag:  typeTag,
		ExpireAt: s.pendingExpire,
		Idle:     s.pendingIdle,
		Freq:     s.pendingFreq,
	}
	s.pendingExpire, s.pendingIdle, s.pendingFreq = nil, nil, nil
	return rec, false, nil
}

func isPlaceholder(key string) bool {
	return len(key) > 1 && key[0] == '<' && key[len(key)-1] == '>'
}

// isFatal reports whether err leaves the byte stream unrecoverably
// misaligned, as opposed to a contained per-entry failure.
func isFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindTruncated
	}
	return true
}
