// Package firestore implements the Cloud Mirror's remote document store
// client: typed-value JSON<->Firestore REST encoding, paginated reads, and
// batched writes with retry.
package firestore

import (
	"encoding/json"
	"strconv"
)

// Value is one Firestore typed field, modeling the value domain that needs
// a lossless round trip: string, integer (encoded as a decimal string by the
// wire format), double, boolean, array, map, null.
type Value struct {
	StringValue  *string          `json:"stringValue,omitempty"`
	IntegerValue *string          `json:"integerValue,omitempty"`
	DoubleValue  *float64         `json:"doubleValue,omitempty"`
	BooleanValue *bool            `json:"booleanValue,omitempty"`
	ArrayValue   *arrayValue      `json:"arrayValue,omitempty"`
	MapValue     *mapValue        `json:"mapValue,omitempty"`
	NullValue    *json.RawMessage `json:"nullValue,omitempty"`
}

type arrayValue struct {
	Values []Value `json:"values"`
}

type mapValue struct {
	Fields map[string]Value `json:"fields"`
}

var nullLiteral = json.RawMessage("null")

// Double forces Encode to emit a doubleValue, bypassing the plain-float64
// case's collapse of whole numbers into an integerValue. Wrap a field in
// this when the wire format requires a double regardless of its current
// value — order_key, for instance, is always re-ranked to dense integers
// by queue compaction but must still round-trip as a double.
type Double float64

// Encode converts a decoded JSON value (as produced by encoding/json's
// default unmarshal into `any`: string, float64/json.Number, bool,
// []any, map[string]any, nil) into its Firestore typed-field representation.
func Encode(v any) Value {
	switch value := v.(type) {
	case nil:
		return Value{NullValue: &nullLiteral}
	case string:
		return Value{StringValue: &value}
	case bool:
		return Value{BooleanValue: &value}
	case int:
		return encodeInt(int64(value))
	case int64:
		return encodeInt(value)
	case Double:
		f := float64(value)

		return Value{DoubleValue: &f}
	case float64:
		if value == float64(int64(value)) {
			return encodeInt(int64(value))
		}

		return Value{DoubleValue: &value}
	case []any:
		values := make([]Value, len(value))
		for i, item := range value {
			values[i] = Encode(item)
		}

		return Value{ArrayValue: &arrayValue{Values: values}}
	case map[string]any:
		fields := make(map[string]Value, len(value))
		for k, item := range value {
			fields[k] = Encode(item)
		}

		return Value{MapValue: &mapValue{Fields: fields}}
	default:
		// Fallback for typed structs: round-trip through JSON to the any-based
		// representation above rather than reflecting over struct fields.
		raw, err := json.Marshal(value)
		if err != nil {
			return Value{NullValue: &nullLiteral}
		}

		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return Value{NullValue: &nullLiteral}
		}

		return Encode(generic)
	}
}

func encodeInt(n int64) Value {
	s := strconv.FormatInt(n, 10)

	return Value{IntegerValue: &s}
}

// Decode converts a Firestore typed field back into a plain JSON value.
func Decode(v Value) any {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return *v.IntegerValue
		}

		return n
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.ArrayValue != nil:
		out := make([]any, len(v.ArrayValue.Values))
		for i, item := range v.ArrayValue.Values {
			out[i] = Decode(item)
		}

		return out
	case v.MapValue != nil:
		out := make(map[string]any, len(v.MapValue.Fields))
		for k, item := range v.MapValue.Fields {
			out[k] = Decode(item)
		}

		return out
	default:
		return nil
	}
}

// EncodeFields converts a flat string-keyed map into Firestore's
// {fieldName: Value} document-field representation.
func EncodeFields(fields map[string]any) map[string]Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = Encode(v)
	}

	return out
}

// DecodeFields is EncodeFields's inverse.
func DecodeFields(fields map[string]Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = Decode(v)
	}

	return out
}

