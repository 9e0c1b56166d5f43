package rdb

import "strconv"

// ValueKind tags which variant a Value holds.
type ValueKind int

const (
	KindStr ValueKind = iota
	KindList
	KindSet
	KindZSet
	KindHash
	KindStream
)

// ZSetMember is one member/score pair of a sorted set, in on-disk
// order.
type ZSetMember struct {
	Member string
	Score  float64
}

// Value is a tagged union over the value shapes the format can carry.
// Only the field matching Kind is meaningful, with one exception: a
// legacy hash-zipmap value has Kind KindHash and an empty Hash, and
// carries a "<zipmap: N bytes>" size placeholder in Str.
type Value struct {
	Kind ValueKind

	Str string

	List []string

	// Set holds deduplicated members; order is not meaningful but is
	// stable for a given input (first occurrence wins).
	Set []string

	ZSet []ZSetMember

	Hash      map[string]string
	HashOrder []string // field insertion order, for stable JSON rendering

	// StreamElements is the element count recorded for a stream value,
	// which this decoder does not expand (see spec.md §9).
	StreamElements uint64
}

// RDB value-type tags, from spec.md §4.5.
const (
	TypeString          = 0
	TypeList             = 1
	TypeSet              = 2
	TypeZSet             = 3
	TypeHash             = 4
	TypeZSet2            = 5
	TypeModule           = 6
	TypeModule2          = 7
	TypeHashZipmap       = 9
	TypeListZiplist      = 10
	TypeSetIntset        = 11
	TypeZSetZiplist      = 12
	TypeHashZiplist      = 13
	TypeListQuicklist    = 14
	TypeStreamListpacks  = 15
	TypeHashListpack     = 16
	TypeZSetListpack     = 17
	TypeListQuicklist2   = 18
	TypeStreamListpacks2 = 19
	TypeSetListpack      = 20
	TypeStreamListpacks3 = 21
)

// TypeName returns the canonical type_name for a value-type tag, per
// spec.md §3. Unrecognised tags render as "unknown_type_<n>".
func TypeName(tag byte) string {
	switch tag {
	case TypeString:
		return "string"
	case TypeList, TypeListZiplist, TypeListQuicklist, TypeListQuicklist2:
		return "list"
	case TypeSet, TypeSetIntset, TypeSetListpack:
		return "set"
	case TypeZSet, TypeZSet2, TypeZSetZiplist, TypeZSetListpack:
		return "zset"
	case TypeHash, TypeHashZipmap, TypeHashZiplist, TypeHashListpack:
		return "hash"
	case TypeStreamListpacks, TypeStreamListpacks2, TypeStreamListpacks3:
		return "stream"
	default:
		return "unknown_type_" + strconv.Itoa(int(tag))
	}
}

// ValueDecoder dispatches on a value-type tag to decode a typed Value,
// combining primitive reads with the container decoders.
type ValueDecoder struct {
	r       *Reader
	strings *StringCodec
	onDiag  func(string)
}

// NewValueDecoder builds a ValueDecoder sharing r and strings with the
// rest of the record stream.
func NewValueDecoder(r *Reader, strings *StringCodec, onDiag func(string)) *ValueDecoder {
	return &ValueDecoder{r: r, strings: strings, onDiag: onDiag}
}

func (d *ValueDecoder) diag(msg string) {
	if d.onDiag != nil {
		d.onDiag(msg)
	}
}

// Decode reads the value payload for tag, the type-tag byte already
// consumed by the caller (RecordStream), and returns the typed Value.
func (d *ValueDecoder) Decode(tag byte) (Value, error) {
	switch tag {
	case TypeString:
		s, err := d.strings.ReadText()
		return Value{Kind: KindStr, Str: s}, err

	case TypeList:
		return d.decodeListPlain()

	case TypeSet:
		return d.decodeSetPlain()

	case TypeZSet:
		return d.decodeZSetStandard(true)

	case TypeZSet2:
		return d.decodeZSetStandard(false)

	case TypeHash:
		return d.decodeHashPlain()

	case TypeModule, TypeModule2:
		d.diag("module type is opaque, substituting placeholder")
		return Value{Kind: KindStr, Str: "<module data>"}, nil

	case TypeHashZipmap:
		raw, err := d.strings.ReadRaw()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindHash, Hash: map[string]string{}, HashOrder: nil,
			Str: zipmapPlaceholder(len(raw))}, nil

	case TypeListZiplist:
		return d.decodeContainerList(func(raw []byte) ([]string, error) { return DecodeZiplist(raw) })

	case TypeSetIntset:
		return d.decodeContainerSet(DecodeIntset)

	case TypeZSetZiplist:
		return d.decodeContainerZSet(func(raw []byte) ([]string, error) { return DecodeZiplist(raw) })

	case TypeHashZiplist:
		return d.decodeContainerHash(func(raw []byte) ([]string, error) { return DecodeZiplist(raw) })

	case TypeListQuicklist:
		entries, err := d.decodeQuicklist(quicklistSegmentZiplist)
		return Value{Kind: KindList, List: entries}, err

	case TypeListQuicklist2:
		entries, err := d.decodeQuicklist(quicklistSegmentListpack)
		return Value{Kind: KindList, List: entries}, err

	case TypeStreamListpacks, TypeStreamListpacks2, TypeStreamListpacks3:
		return d.decodeStreamStub()

	case TypeHashListpack:
		return d.decodeContainerHash(DecodeListpack)

	case TypeZSetListpack:
		return d.decodeContainerZSet(DecodeListpack)

	case TypeSetListpack:
		return d.decodeContainerSet(DecodeListpack)

	default:
		d.diag("unknown value type tag " + strconv.Itoa(int(tag)))
		s, err := d.strings.ReadText()
		if err != nil {
			return Value{Kind: KindStr, Str: "<unknown type " + strconv.Itoa(int(tag)) + ">"}, nil
		}
		return Value{Kind: KindStr, Str: s}, nil
	}
}

func zipmapPlaceholder(n int) string {
	return "<zipmap: " + strconv.Itoa(n) + " bytes>"
}

func (d *ValueDecoder) decodeListPlain() (Value, error) {
	n, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}
	list := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := d.strings.ReadText()
		if err != nil {
			return Value{}, err
		}
		list = append(list, s)
	}
	return Value{Kind: KindList, List: list}, nil
}

func (d *ValueDecoder) decodeSetPlain() (Value, error) {
	n, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}
	seen := make(map[string]struct{}, n)
	set := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := d.strings.ReadText()
		if err != nil {
			return Value{}, err
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	return Value{Kind: KindSet, Set: set}, nil
}

func (d *ValueDecoder) decodeHashPlain() (Value, error) {
	n, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}
	hash := make(map[string]string, n)
	order := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		field, err := d.strings.ReadText()
		if err != nil {
			return Value{}, err
		}
		val, err := d.strings.ReadText()
		if err != nil {
			return Value{}, err
		}
		if _, exists := hash[field]; !exists {
			order = append(order, field)
		}
		hash[field] = val
	}
	return Value{Kind: KindHash, Hash: hash, HashOrder: order}, nil
}

func (d *ValueDecoder) decodeZSetStandard(compact bool) (Value, error) {
	n, err := d.r.ReadPlainLength()
	if err != nil {
		return Value{}, err
	}
	members := make([]ZSetMember, 0, n)
	for i := uint64(0); i < n; i++ {
		member, err := d.strings.ReadText()
		if err != nil {
			return Value{}, err
		}
		var score float64
		if compact {
			score, err = d.r.ReadCompactDouble()
		} else {
			score, err = d.r.ReadBinaryDouble()
		}
		if err != nil {
			return Value{}, err
		}
		members = append(members, ZSetMember{Member: member, Score: score})
	}
	return Value{Kind: KindZSet, ZSet: members}, nil
}

func (d *ValueDecoder) decodeContainerList(decode func([]byte) ([]string, error)) (Value, error) {
	raw, err := d.strings.ReadRaw()
	if err != nil {
		return Value{}, err
	}
	entries, err := decode(raw)
	if err != nil {
		d.diag("container list failed to decode: " + err.Error())
		return Value{Kind: KindList}, nil
	}
	return Value{Kind: KindList, List: entries}, nil
}

func (d *ValueDecoder) decodeContainerSet(decode func([]byte) ([]string, error)) (Value, error) {
	raw, err := d.strings.ReadRaw()
	if err != nil {
		return Value{}, err
	}
	entries, err := decode(raw)
	if err != nil {
		d.diag("container set failed to decode: " + err.Error())
		return Value{Kind: KindSet}, nil
	}
	seen := make(map[string]struct{}, len(entries))
	set := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		set = append(set, e)
	}
	return Value{Kind: KindSet, Set: set}, nil
}

func (d *ValueDecoder) decodeContainerZSet(decode func([]byte) ([]string, error)) (Value, error) {
	raw, err := d.strings.ReadRaw()
	if err != nil {
		return Value{}, err
	}
	entries, err := decode(raw)
	if err != nil {
		d.diag("container zset failed to decode: " + err.Error())
		return Value{Kind: KindZSet}, nil
	}
	members := make([]ZSetMember, 0, len(entries)/2)
	for i := 0; i+1 < len(entries); i += 2 {
		score, perr := strconv.ParseFloat(entries[i+1], 64)
		if perr != nil {
			score = 0
		}
		members = append(members, ZSetMember{Member: entries[i], Score: score})
	}
	return Value{Kind: KindZSet, ZSet: members}, nil
}

func (d *ValueDecoder) decodeContainerHash(decode func([]byte) ([]string, error)) (Value, error) {
	raw, err := d.strings.ReadRaw()
	if err != nil {
		return Value{}, err
	}
	entries, err := decode(raw)
	if err != nil {
		d.diag("container hash failed to decode: " + err.Error())
		return Value{Kind: KindHash, Hash: map[string]string{}}, nil
	}
	hash := make(map[string]string, len(entries)/2)
	order := make([]string, 0, len(entries)/2)
	for i := 0; i+1 < len(entries); i += 2 {
		field, val := entries[i], entries[i+1]
		if _, exists := hash[field]; !exists {
			order = append(order, field)
		}
		hash[field] = val
	}
	return Value{Kind: KindHash, Hash: hash, HashOrder: order}, nil
}
