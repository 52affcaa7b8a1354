// Package typetest is a generated-style per-service module: one IDL
// enum, three IDL records, a method set exercising every primitive
// category and both sequence shapes, a push channel, and in/out
// parameters — everything a code generator would emit for a service
// declared against the wire runtime in package wire, framed by
// package protocol, and driven by package client and package server.
package typetest

import (
	"fmt"

	"github.com/hujiansuntec-arch/IDL-tools/wire"
)

// ChangeEventType is a four-variant IDL enum, encoded as its ordinal.
type ChangeEventType int32

const (
	KeyAdded ChangeEventType = iota
	KeyUpdated
	KeyRemoved
	StoreCleared
)

func (t ChangeEventType) String() string {
	switch t {
	case KeyAdded:
		return "KeyAdded"
	case KeyUpdated:
		return "KeyUpdated"
	case KeyRemoved:
		return "KeyRemoved"
	case StoreCleared:
		return "StoreCleared"
	default:
		return fmt.Sprintf("ChangeEventType(%d)", int32(t))
	}
}

func encodeChangeEventType(w *wire.Writer, t ChangeEventType) {
	w.WriteInt32(int32(t))
}

func decodeChangeEventType(r *wire.Reader) (ChangeEventType, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v < int32(KeyAdded) || v > int32(StoreCleared) {
		return 0, fmt.Errorf("%w: invalid ChangeEventType ordinal %d", wire.ErrMalformedMessage, v)
	}
	return ChangeEventType(v), nil
}

// KeyChangeEvent is the record pushed over the OnKeyChanged channel.
type KeyChangeEvent struct {
	Type      ChangeEventType
	Key       string
	Old       string
	New       string
	Timestamp int64
}

func (e KeyChangeEvent) encode(w *wire.Writer) {
	encodeChangeEventType(w, e.Type)
	w.WriteString(e.Key)
	w.WriteString(e.Old)
	w.WriteString(e.New)
	w.WriteInt64(e.Timestamp)
}

func decodeKeyChangeEvent(r *wire.Reader) (KeyChangeEvent, error) {
	var e KeyChangeEvent
	var err error
	if e.Type, err = decodeChangeEventType(r); err != nil {
		return KeyChangeEvent{}, err
	}
	if e.Key, err = r.ReadString(); err != nil {
		return KeyChangeEvent{}, err
	}
	if e.Old, err = r.ReadString(); err != nil {
		return KeyChangeEvent{}, err
	}
	if e.New, err = r.ReadString(); err != nil {
		return KeyChangeEvent{}, err
	}
	if e.Timestamp, err = r.ReadInt64(); err != nil {
		return KeyChangeEvent{}, err
	}
	return e, nil
}

// DataRecord concatenates one field of every integer width, in both
// signedness, with no tags or padding — the record layout rule spec.md
// §4.2 describes, exercised on the full integer width set rather than
// a single field so field-order bugs in generated code show up
// immediately.
type DataRecord struct {
	I8  int8
	U8  uint8
	I16 int16
	U16 uint16
	I32 int32
	U32 uint32
	I64 int64
	U64 uint64
}

func (d DataRecord) encode(w *wire.Writer) {
	w.WriteInt8(d.I8)
	w.WriteUint8(d.U8)
	w.WriteInt16(d.I16)
	w.WriteUint16(d.U16)
	w.WriteInt32(d.I32)
	w.WriteUint32(d.U32)
	w.WriteInt64(d.I64)
	w.WriteUint64(d.U64)
}

func decodeDataRecord(r *wire.Reader) (DataRecord, error) {
	var d DataRecord
	var err error
	if d.I8, err = r.ReadInt8(); err != nil {
		return DataRecord{}, err
	}
	if d.U8, err = r.ReadUint8(); err != nil {
		return DataRecord{}, err
	}
	if d.I16, err = r.ReadInt16(); err != nil {
		return DataRecord{}, err
	}
	if d.U16, err = r.ReadUint16(); err != nil {
		return DataRecord{}, err
	}
	if d.I32, err = r.ReadInt32(); err != nil {
		return DataRecord{}, err
	}
	if d.U32, err = r.ReadUint32(); err != nil {
		return DataRecord{}, err
	}
	if d.I64, err = r.ReadInt64(); err != nil {
		return DataRecord{}, err
	}
	if d.U64, err = r.ReadUint64(); err != nil {
		return DataRecord{}, err
	}
	return d, nil
}

func encodeStringSeq(w *wire.Writer, seq []string) {
	wire.WriteSequence(w, seq, func(w *wire.Writer, s string) { w.WriteString(s) })
}

func decodeStringSeq(r *wire.Reader) ([]string, error) {
	return wire.ReadSequence(r, func(r *wire.Reader) (string, error) { return r.ReadString() })
}

func encodeInt32Seq(w *wire.Writer, seq []int32) {
	wire.WriteSequence(w, seq, func(w *wire.Writer, v int32) { w.WriteInt32(v) })
}

func decodeInt32Seq(r *wire.Reader) ([]int32, error) {
	return wire.ReadSequence(r, func(r *wire.Reader) (int32, error) { return r.ReadInt32() })
}

func encodeDataRecordSeq(w *wire.Writer, seq []DataRecord) {
	wire.WriteSequence(w, seq, func(w *wire.Writer, d DataRecord) { d.encode(w) })
}

func decodeDataRecordSeq(r *wire.Reader) ([]DataRecord, error) {
	return wire.ReadSequence(r, decodeDataRecord)
}

// ChangeBatch is a record with a record-valued field and a
// sequence-of-sequences field, the two record-layout shapes none of
// the seven RPC pairs above exercises on their own: a record nested
// inside a record, field by field with no framing between them, and a
// sequence whose elements are themselves sequences, count-prefixed at
// every level.
type ChangeBatch struct {
	Snapshot DataRecord
	Batches  [][]int32
}

func (b ChangeBatch) encode(w *wire.Writer) {
	b.Snapshot.encode(w)
	wire.WriteSequence(w, b.Batches, encodeInt32Seq)
}

func decodeChangeBatch(r *wire.Reader) (ChangeBatch, error) {
	var b ChangeBatch
	var err error
	if b.Snapshot, err = decodeDataRecord(r); err != nil {
		return ChangeBatch{}, err
	}
	if b.Batches, err = wire.ReadSequence(r, decodeInt32Seq); err != nil {
		return ChangeBatch{}, err
	}
	return b, nil
}
