// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package models

import (
	"strconv"
	"time"
)

// ValueKind discriminates the tagged union carried by a Value.
type ValueKind int

// Value kinds. Source documents have no fixed schema, so every field is one
// of these four shapes and all interpretation happens in the normalizer.
const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindTime
)

// Value is one loosely-typed field of a source document.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Time time.Time
}

// StringValue wraps a string field.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue wraps a numeric field.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// TimeValue wraps a timestamp field.
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// NullValue is the absent/null field value.
func NullValue() Value { return Value{Kind: KindNull} }

// IsNull reports whether the value carries nothing.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString renders the value as a string. Numbers are formatted with the
// shortest representation that round-trips; null renders as "".
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber returns the numeric interpretation of the value and whether one
// exists. Strings are not coerced here - price parsing has its own rules in
// the normalizer.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Num, true
	}
	return 0, false
}

// AsTime returns the timestamp interpretation and whether one exists.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind == KindTime {
		return v.Time, true
	}
	return time.Time{}, false
}

// Document is one reservation record as read from the hierarchical source
// store: an opaque id plus an open set of fields.
type Document struct {
	// ID is the source document id (idClient). It is the stable input from
	// which the target booking_id is derived.
	ID string

	Fields map[string]Value
}

// Field returns the named field, or a null value when absent.
func (d Document) Field(name string) Value {
	if v, ok := d.Fields[name]; ok {
		return v
	}
	return NullValue()
}
