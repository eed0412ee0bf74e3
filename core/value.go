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


package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// UnknownMarker is the literal stored in metadata for a field that was absent
// from the source or could not be parsed.
const UnknownMarker = "N/A"

// Scalar is the set of field types that can be Unknown.
type Scalar interface {
	int64 | float64 | string
}

// Value holds a field that is either a known value of type T or Unknown.
// The zero Value is Unknown, so a known zero (0, 0.0, "") and an absent field
// stay distinguishable.
type Value[T Scalar] struct {
	v     T
	known bool
}

// Known wraps a parsed value.
func Known[T Scalar](v T) Value[T] {
	return Value[T]{v: v, known: true}
}

// Unknown returns the Unknown sentinel for T.
func Unknown[T Scalar]() Value[T] {
	return Value[T]{}
}

// Get returns the value and whether it is known.
func (v Value[T]) Get() (T, bool) {
	return v.v, v.known
}

// IsKnown reports whether the value was present and parsable.
func (v Value[T]) IsKnown() bool {
	return v.known
}

// Or returns the value if known, otherwise def.
func (v Value[T]) Or(def T) T {
	if !v.known {
		return def
	}
	return v.v
}

// Metadata returns the vector-store form of the value: the value itself when
// known, UnknownMarker otherwise.
func (v Value[T]) Metadata() any {
	if !v.known {
		return UnknownMarker
	}
	return v.v
}

// String renders the value for text composition.
func (v Value[T]) String() string {
	if !v.known {
		return UnknownMarker
	}
	switch x := any(v.v).(type) {
	case float64:
		return formatFloat(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	}
	return UnknownMarker
}

// MarshalJSON encodes a known value as itself and Unknown as UnknownMarker.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Metadata())
}

// UnmarshalJSON accepts numbers, strings and null. Strings go through the
// field normalizer, so "N/A", "" and "87%" behave as they do in CSV input.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = valueFromAny[T](raw)
	return nil
}

func valueFromAny[T Scalar](raw any) Value[T] {
	var s string
	switch x := raw.(type) {
	case nil:
		return Unknown[T]()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		s = x
	case bool:
		s = strconv.FormatBool(x)
	default:
		return Unknown[T]()
	}

	var zero T
	switch any(zero).(type) {
	case int64:
		return any(ParseInt(s)).(Value[T])
	case float64:
		return any(ParsePercent(s)).(Value[T])
	default:
		return any(ParseText(s)).(Value[T])
	}
}

// formatFloat prints integral values with a trailing ".0" so summaries read
// "80.0" rather than "80".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
