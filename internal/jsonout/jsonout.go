// Package jsonout renders a decoded snapshot as JSON, in either the
// Simple (key -> value) or Full (key -> value/type/metadata) shape.
package jsonout

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/dinofly/rdbdump/internal/rdb"
)

// RenderSimple produces the direct key->value mapping. Strings, lists,
// sets and hashes come out as the live companion export tool writes
// them; sorted sets come out as [member, score] pair lists and streams
// as an element count, where the export tool writes a member->score
// object and the stream's entries.
func RenderSimple(snap *rdb.Snapshot, pretty bool) ([]byte, error) {
	out := make(map[string]interface{}, len(snap.Keys))
	for key, e := range snap.Keys {
		if e.Err != "" {
			continue
		}
		out[key] = renderValue(e.Value)
	}
	return marshal(out, pretty)
}

// fullEntry is one key's rendering in Full mode.
type fullEntry struct {
	Value     interface{} `json:"value"`
	Type      string      `json:"type"`
	ExpireMs  int64       `json:"expiry_ms,omitempty"`
	ExpiryISO string      `json:"expiry_iso,omitempty"`
	Idle      *uint64     `json:"idle,omitempty"`
	Freq      *uint8      `json:"freq,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// fullSnapshot mirrors spec.md §6.2's Full shape: rdb_version, aux,
// db, keys.
type fullSnapshot struct {
	Version string               `json:"rdb_version"`
	Aux     map[string]string    `json:"aux"`
	DB      uint64               `json:"db"`
	Keys    map[string]fullEntry `json:"keys"`
}

// RenderFull produces {rdb_version, aux, db, keys}, per spec.md §6.2.
func RenderFull(snap *rdb.Snapshot, pretty bool) ([]byte, error) {
	out := fullSnapshot{
		Version: snap.Version,
		Aux:     snap.Aux,
		DB:      snap.DB,
		Keys:    make(map[string]fullEntry, len(snap.Keys)),
	}
	if out.Aux == nil {
		out.Aux = map[string]string{}
	}

	for key, e := range snap.Keys {
		fe := fullEntry{Type: e.TypeName, Idle: e.Idle, Freq: e.Freq}
		if e.Err != "" {
			fe.Error = e.Err
		} else {
			fe.Value = renderValue(e.Value)
		}
		if e.ExpireMs != 0 {
			fe.ExpireMs = e.ExpireMs
			fe.ExpiryISO = e.ExpiryISO
		}
		out.Keys[key] = fe
	}

	return marshal(out, pretty)
}

func renderValue(v rdb.Value) interface{} {
	switch v.Kind {
	case rdb.KindStr:
		return v.Str
	case rdb.KindList:
		if v.List == nil {
			return []string{}
		}
		return v.List
	case rdb.KindSet:
		set := append([]string(nil), v.Set...)
		sort.Strings(set)
		if set == nil {
			set = []string{}
		}
		return set
	case rdb.KindZSet:
		pairs := make([][2]interface{}, 0, len(v.ZSet))
		for _, m := range v.ZSet {
			pairs = append(pairs, [2]interface{}{m.Member, scoreJSON(m.Score)})
		}
		return pairs
	case rdb.KindHash:
		if v.Hash == nil {
			return map[string]string{}
		}
		order := v.HashOrder
		if order == nil {
			order = make([]string, 0, len(v.Hash))
			for field := range v.Hash {
				order = append(order, field)
			}
			sort.Strings(order)
		}
		return orderedHash{order: order, values: v.Hash}
	case rdb.KindStream:
		return map[string]interface{}{"elements": v.StreamElements}
	default:
		return nil
	}
}

// orderedHash renders a hash value as a JSON object whose key order
// matches decode-time field insertion order (spec.md §3: "insertion
// order preservation for test stability"), since a plain
// map[string]string would be re-sorted alphabetically by
// encoding/json.
type orderedHash struct {
	order  []string
	values map[string]string
}

func (h orderedHash) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range h.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(h.values[field])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// scoreJSON renders a sorted-set score, substituting the JSON string
// "NaN"/"Inf"/"-Inf" for the non-finite values encoding/json itself
// refuses to marshal.
func scoreJSON(score float64) interface{} {
	switch {
	case math.IsNaN(score):
		return "NaN"
	case math.IsInf(score, 1):
		return "Inf"
	case math.IsInf(score, -1):
		return "-Inf"
	default:
		return score
	}
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
