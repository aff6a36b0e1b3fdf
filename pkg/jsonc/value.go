package jsonc

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the concrete shape held by a Value.
type Kind int

const (
	// KindNull represents a JSON null.
	KindNull Kind = iota
	// KindBool represents a JSON boolean.
	KindBool
	// KindNumber represents a JSON number, kept as float64.
	KindNumber
	// KindString represents a JSON string.
	KindString
	// KindArray represents a JSON array.
	KindArray
	// KindObject represents a JSON object with insertion-ordered keys.
	KindObject
)

// Object is an insertion-ordered string-to-Value map, backing the
// object arm of Value so that re-emitted JSON preserves source order.
type Object = orderedmap.OrderedMap[string, Value]

// NewObject returns an empty, insertion-ordered Object.
func NewObject() *Object {
	return orderedmap.New[string, Value]()
}

// Value is a tagged variant over the JSONC value space:
// Null | Bool | Number | String | Array(...) | Object(ordered).
// Exactly one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Bool   bool
	Number float64
	String string
	Array  []Value
	Object *Object
}

// Null returns the null Value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, String: s} }

// Array returns an array Value.
func Array(items []Value) Value { return Value{Kind: KindArray, Array: items} }

// NewObjectValue returns an object Value wrapping obj.
func NewObjectValue(obj *Object) Value { return Value{Kind: KindObject, Object: obj} }

// IsNull reports whether v is a JSON null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString returns the string form of a scalar Value, used by the file
// copier's {{ variable }} substitution. Arrays and objects are rendered
// as their compact JSON form.
func (v Value) AsString() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindString:
		return v.String
	default:
		b, _ := v.MarshalCompact()
		return string(b)
	}
}

// Equal reports structural equality between two Values, used by the
// resolver's conflict detection — identical (key, value, provenance)
// replays must collapse rather than error.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindString:
		return a.String == b.String
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return equalObjects(a.Object, b.Object)
	default:
		return false
	}
}

// ToNative converts v into plain Go values (map[string]interface{},
// []interface{}, string, float64, bool, nil) suitable for
// encoding/json.Marshal, bridging jsonc.Value into struct-tag-based
// decoding (pkg/spacefile uses this ahead of validator.v10 checks).
func (v Value) ToNative() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.String
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.ToNative()
		}
		return out
	case KindObject:
		out := make(map[string]interface{})
		if v.Object != nil {
			for pair := v.Object.Oldest(); pair != nil; pair = pair.Next() {
				out[pair.Key] = pair.Value.ToNative()
			}
		}
		return out
	default:
		return nil
	}
}

func equalObjects(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() {
		return false
	}
	for pair := a.Oldest(); pair != nil; pair = pair.Next() {
		bv, ok := b.Get(pair.Key)
		if !ok || !Equal(pair.Value, bv) {
			return false
		}
	}
	return true
}
