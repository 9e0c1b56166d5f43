package rdb

import (
	"io"
	"time"
)

// OutputMode selects how much of a Record's metadata SnapshotAssembler
// retains per key, per spec.md §4.7.
type OutputMode int

const (
	// ModeSimple keeps only the decoded value.
	ModeSimple OutputMode = iota
	// ModeFull keeps value, type name, and TTL/idle/freq metadata.
	ModeFull
)

// Entry is one key's assembled output.
type Entry struct {
	Value     Value
	TypeName  string
	ExpireMs  int64 // 0 means unset
	ExpiryISO string
	Idle      *uint64
	Freq      *uint8

	// Err, when non-empty, replaces Value: this key's payload could
	// not be decoded but the stream stayed aligned.
	Err string
}

// Snapshot is the fully assembled result of decoding one RDB file.
type Snapshot struct {
	Version string
	Aux     map[string]string
	DB      uint64 // last SELECTDB value seen
	Keys    map[string]Entry
}

// SnapshotAssembler drives a RecordStream to completion, collecting
// every record into a Snapshot.
type SnapshotAssembler struct {
	mode OutputMode
}

// NewSnapshotAssembler builds an assembler producing entries in mode.
func NewSnapshotAssembler(mode OutputMode) *SnapshotAssembler {
	return &SnapshotAssembler{mode: mode}
}

// Assemble reads every record from stream and returns the Snapshot
// assembled so far. On a fatal stream error, the partial Snapshot is
// still returned alongside the error, per spec.md §7's policy that an
// outer-loop failure preserves everything decoded to that point.
func (a *SnapshotAssembler) Assemble(stream *RecordStream) (*Snapshot, error) {
	snap := &Snapshot{
		Keys: make(map[string]Entry),
	}

	for {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.finish(snap, stream)
			return snap, err
		}

		entry := Entry{Value: rec.Value, Err: rec.Err}
		if a.mode == ModeFull {
			entry.TypeName = TypeName(rec.TypeTag)
			entry.Idle = rec.Idle
			entry.Freq = rec.Freq
			if rec.ExpireAt != nil {
				entry.ExpireMs = *rec.ExpireAt
				entry.ExpiryISO = time.UnixMilli(*rec.ExpireAt).UTC().Format("2006-01-02T15:04:05.000")
			}
		}

		// Latest write for a key wins, matching a live store where a
		// key is never written twice in the same snapshot pass except
		// by superseding its prior value.
		snap.Keys[rec.Key] = entry
	}

	a.finish(snap, stream)
	return snap, nil
}

func (a *SnapshotAssembler) finish(snap *Snapshot, stream *RecordStream) {
	snap.Version = stream.Version()
	snap.DB = stream.CurrentDB()
	aux := make(map[string]string, len(stream.AuxFields()))
	for _, f := range stream.AuxFields() {
		aux[f.Key] = f.Value
	}
	snap.Aux = aux
}
