// Package model holds the wire-level record/segment/field types shared by
// the issuer, holder, and verifier pipelines, and the canonical
// decomposition from those types into BN254 scalars (spec.md §3).
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MaxTruncatedBytes is the documented lossy truncation width applied to
// every field value before it is folded into a scalar (spec.md §3, §9).
const MaxTruncatedBytes = 31

// Record is one student's full credential history: an id and an ordered
// sequence of credential segments.
type Record struct {
	ID       string    `json:"id"`
	Segments []Segment `json:"segments"`
}

// FieldValue is a string, an array of strings, or null (spec.md §3).
type FieldValue struct {
	isArray bool
	isNull  bool
	str     string
	arr     []string
}

func StringValue(s string) FieldValue  { return FieldValue{str: s} }
func ArrayValue(a []string) FieldValue { return FieldValue{isArray: true, arr: a} }
func NullValue() FieldValue            { return FieldValue{isNull: true} }

func (v FieldValue) IsNull() bool    { return v.isNull }
func (v FieldValue) IsArray() bool   { return v.isArray }
func (v FieldValue) String() string  { return v.str }
func (v FieldValue) Array() []string { return v.arr }

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.isNull:
		return []byte("null"), nil
	case v.isArray:
		return json.Marshal(v.arr)
	default:
		return json.Marshal(v.str)
	}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		*v = NullValue()
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return fmt.Errorf("field value: invalid array: %w", err)
		}
		*v = ArrayValue(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field value: invalid string: %w", err)
	}
	*v = StringValue(s)
	return nil
}

// Field is one key/value pair within a Segment.
type Field struct {
	Key   string
	Value FieldValue
}

// Segment is a mapping from field name to field value, held as a slice
// ordered by ascending key so that commitment, decomposition, and
// disclosure-mask alignment all observe the same canonical order
// (spec.md §3, §9 "Canonical map ordering"). Never iterate a plain Go map
// for this purpose: map iteration order is randomized and the divergence
// would be silent.
type Segment []Field

// Keys returns the segment's field names in canonical (sorted) order.
func (s Segment) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

func (s Segment) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw map[string]FieldValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("segment: invalid object: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seg := make(Segment, 0, len(keys))
	for _, k := range keys {
		seg = append(seg, Field{Key: k, Value: raw[k]})
	}
	*s = seg
	return nil
}

// frFromBytesLE truncates b to MaxTruncatedBytes and interprets the result
// as a little-endian integer, reduced into Fr. Truncation is a documented
// lossy step: any two values agreeing on their first 31 bytes collide
// (spec.md §9).
func frFromBytesLE(b []byte) fr.Element {
	if len(b) > MaxTruncatedBytes {
		b = b[:MaxTruncatedBytes]
	}
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	bi := new(big.Int).SetBytes(be)

	var el fr.Element
	el.SetBigInt(bi)
	return el
}

// ScalarOf decomposes a single field value into its Fr contribution
// (spec.md §3): null -> 0, array -> sum of per-element truncated scalars,
// string -> one truncated scalar.
func ScalarOf(v FieldValue) fr.Element {
	switch {
	case v.IsNull():
		return fr.Element{}
	case v.IsArray():
		var sum fr.Element
		for _, elem := range v.Array() {
			s := frFromBytesLE([]byte(elem))
			sum.Add(&sum, &s)
		}
		return sum
	default:
		return frFromBytesLE([]byte(v.String()))
	}
}

// Decompose converts a segment into its ordered scalar vector, one Fr per
// field, in the segment's canonical key order (spec.md §3).
func Decompose(seg Segment) []fr.Element {
	out := make([]fr.Element, len(seg))
	for i, f := range seg {
		out[i] = ScalarOf(f.Value)
	}
	return out
}

// SegmentAt returns record r's segment at index t, erroring if the record's
// schema is shorter than t (every record must carry the same number of
// segments for column transposition to make sense).
func SegmentAt(r Record, t int) (Segment, error) {
	if t >= len(r.Segments) {
		return nil, fmt.Errorf("record %q has no segment at index %d", r.ID, t)
	}
	return r.Segments[t], nil
}
