// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Metadata value kinds in the binary encoding.
const (
	kindString uint64 = iota
	kindFloat
	kindInt
	kindBool
	kindStrings
)

// MarshalVector serializes a Vector to bytes. Metadata keys are written in
// sorted order so equal vectors encode identically.
func MarshalVector(v Vector) ([]byte, error) {
	keys := slices.Sorted(maps.Keys(v.Metadata))
	values := make([]any, len(keys))
	for i, k := range keys {
		nv, err := normalizeMetadata(v.Metadata[k])
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrSerializationFailed, k, err)
		}
		values[i] = nv
	}

	size := ord.String.Size(v.ID) + varint.Int.Size(len(v.Values))
	for _, f := range v.Values {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	size += varint.Int.Size(len(keys))
	for i, k := range keys {
		size += ord.String.Size(k) + sizeValue(values[i])
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(v.ID, buf)
	n += varint.Int.Marshal(len(v.Values), buf[n:])
	for _, f := range v.Values {
		n += varint.Uint32.Marshal(math.Float32bits(f), buf[n:])
	}
	n += varint.Int.Marshal(len(keys), buf[n:])
	for i, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += marshalValue(values[i], buf[n:])
	}
	return buf[:n], nil
}

// UnmarshalVector deserializes a Vector from bytes.
func UnmarshalVector(data []byte) (Vector, error) {
	var v Vector
	d := decoder{buf: data}

	v.ID = d.string()
	count := d.count()
	if d.err == nil {
		v.Values = make([]float32, count)
		for i := range v.Values {
			v.Values[i] = math.Float32frombits(d.uint32())
		}
	}

	entries := d.count()
	if d.err == nil {
		v.Metadata = make(map[string]any, entries)
		for i := 0; i < entries && d.err == nil; i++ {
			key := d.string()
			v.Metadata[key] = d.value()
		}
	}

	if d.err != nil {
		return Vector{}, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	return v, nil
}

// MarshalDimension serializes an index dimension.
func MarshalDimension(dim int) []byte {
	buf := make([]byte, varint.Int.Size(dim))
	varint.Int.Marshal(dim, buf)
	return buf
}

// UnmarshalDimension deserializes an index dimension.
func UnmarshalDimension(data []byte) (int, error) {
	dim, _, err := varint.Int.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return dim, nil
}

// normalizeMetadata widens numeric types so only five kinds reach the encoder.
func normalizeMetadata(value any) (any, error) {
	switch x := value.(type) {
	case string, float64, int64, bool, []string:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedMetadata)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedMetadata, value)
}

func sizeValue(value any) int {
	switch x := value.(type) {
	case string:
		return varint.Uint64.Size(kindString) + ord.String.Size(x)
	case float64:
		return varint.Uint64.Size(kindFloat) + varint.Uint64.Size(math.Float64bits(x))
	case int64:
		return varint.Uint64.Size(kindInt) + varint.Int64.Size(x)
	case bool:
		return varint.Uint64.Size(kindBool) + ord.Bool.Size(x)
	case []string:
		size := varint.Uint64.Size(kindStrings) + varint.Int.Size(len(x))
		for _, s := range x {
			size += ord.String.Size(s)
		}
		return size
	}
	return 0
}

func marshalValue(value any, buf []byte) (n int) {
	switch x := value.(type) {
	case string:
		n = varint.Uint64.Marshal(kindString, buf)
		n += ord.String.Marshal(x, buf[n:])
	case float64:
		n = varint.Uint64.Marshal(kindFloat, buf)
		n += varint.Uint64.Marshal(math.Float64bits(x), buf[n:])
	case int64:
		n = varint.Uint64.Marshal(kindInt, buf)
		n += varint.Int64.Marshal(x, buf[n:])
	case bool:
		n = varint.Uint64.Marshal(kindBool, buf)
		n += ord.Bool.Marshal(x, buf[n:])
	case []string:
		n = varint.Uint64.Marshal(kindStrings, buf)
		n += varint.Int.Marshal(len(x), buf[n:])
		for _, s := range x {
			n += ord.String.Marshal(s, buf[n:])
		}
	}
	return n
}

// decoder reads sequential fields and keeps the first error.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	s, n, err := ord.String.Unmarshal(d.buf[d.off:])
	d.off += n
	d.err = err
	return s
}

func (d *decoder) count() int {
	if d.err != nil {
		return 0
	}
	c, n, err := varint.Int.Unmarshal(d.buf[d.off:])
	d.off += n
	if err == nil && (c < 0 || c > len(d.buf)-d.off) {
		err = ErrTruncatedData
	}
	d.err = err
	return c
}

func (d *decoder) uint32() uint32 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint32.Unmarshal(d.buf[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.buf[d.off:])
	d.off += n
	d.err = err
	return v
}

func (d *decoder) value() any {
	kind := d.uint64()
	if d.err != nil {
		return nil
	}
	switch kind {
	case kindString:
		return d.string()
	case kindFloat:
		return math.Float64frombits(d.uint64())
	case kindInt:
		v, n, err := varint.Int64.Unmarshal(d.buf[d.off:])
		d.off += n
		d.err = err
		return v
	case kindBool:
		v, n, err := ord.Bool.Unmarshal(d.buf[d.off:])
		d.off += n
		d.err = err
		return v
	case kindStrings:
		count := d.count()
		out := make([]string, 0, count)
		for i := 0; i < count && d.err == nil; i++ {
			out = append(out, d.string())
		}
		return out
	}
	d.err = fmt.Errorf("%w: kind %d", ErrUnsupportedMetadata, kind)
	return nil
}
