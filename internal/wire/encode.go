// Package wire encodes finalized frames for the downstream property layer.
//
// Frames use the protobuf wire format so any protobuf reader with a matching
// message definition can consume them:
//
//	message SparseFrame {
//	  uint32 int_slots        = 1;
//	  uint32 float_slots      = 2;
//	  bytes  presence         = 3;
//	  repeated sint64 ints    = 4 [packed = true];
//	  repeated double floats  = 5 [packed = true];
//	  string payload          = 6;
//	}
//
// Zero and empty fields are omitted, matching proto3 encoders.
package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/banshee-data/sensorframe/internal/frame"
)

const (
	fieldIntSlots   protowire.Number = 1
	fieldFloatSlots protowire.Number = 2
	fieldPresence   protowire.Number = 3
	fieldInts       protowire.Number = 4
	fieldFloats     protowire.Number = 5
	fieldPayload    protowire.Number = 6
)

// Encode returns the wire encoding of f.
func Encode(f *frame.Frame) []byte {
	return Append(make([]byte, 0, Size(f)), f)
}

// Append appends the wire encoding of f to b.
func Append(b []byte, f *frame.Frame) []byte {
	schema := f.Schema()

	if schema.IntSlots != 0 {
		b = protowire.AppendTag(b, fieldIntSlots, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(schema.IntSlots))
	}
	if schema.FloatSlots != 0 {
		b = protowire.AppendTag(b, fieldFloatSlots, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(schema.FloatSlots))
	}
	if p := f.PresenceBytes(); len(p) > 0 {
		b = protowire.AppendTag(b, fieldPresence, protowire.BytesType)
		b = protowire.AppendBytes(b, p)
	}
	if ints := f.IntValues(); len(ints) > 0 {
		b = protowire.AppendTag(b, fieldInts, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(packedIntsSize(ints)))
		for _, v := range ints {
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(v))
		}
	}
	if floats := f.FloatValues(); len(floats) > 0 {
		b = protowire.AppendTag(b, fieldFloats, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(8*len(floats)))
		for _, v := range floats {
			b = protowire.AppendFixed64(b, math.Float64bits(v))
		}
	}
	if payload := f.Payload(); payload != "" {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendString(b, payload)
	}
	return b
}

// Size returns the encoded length of f in bytes.
func Size(f *frame.Frame) int {
	schema := f.Schema()
	n := 0
	if schema.IntSlots != 0 {
		n += protowire.SizeTag(fieldIntSlots) + protowire.SizeVarint(uint64(schema.IntSlots))
	}
	if schema.FloatSlots != 0 {
		n += protowire.SizeTag(fieldFloatSlots) + protowire.SizeVarint(uint64(schema.FloatSlots))
	}
	if p := f.PresenceBytes(); len(p) > 0 {
		n += protowire.SizeTag(fieldPresence) + protowire.SizeBytes(len(p))
	}
	if ints := f.IntValues(); len(ints) > 0 {
		n += protowire.SizeTag(fieldInts) + protowire.SizeBytes(packedIntsSize(ints))
	}
	if floats := f.FloatValues(); len(floats) > 0 {
		n += protowire.SizeTag(fieldFloats) + protowire.SizeBytes(8*len(floats))
	}
	if payload := f.Payload(); payload != "" {
		n += protowire.SizeTag(fieldPayload) + protowire.SizeBytes(len(payload))
	}
	return n
}

func packedIntsSize(ints []int64) int {
	n := 0
	for _, v := range ints {
		n += protowire.SizeVarint(protowire.EncodeZigZag(v))
	}
	return n
}
