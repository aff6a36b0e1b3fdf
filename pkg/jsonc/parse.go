package jsonc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/jsonc"
)

// ParseError describes a malformed JSONC document, reported with the
// byte offset at which the standard-library decoder gave up.
type ParseError struct {
	Offset int64
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Detail)
}

// Parse strips JSONC comments and trailing commas (via tidwall/jsonc)
// and decodes the result into a Value tree, preserving object key order.
func Parse(src []byte) (Value, error) {
	stripped := jsonc.ToJSON(src)

	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.UseNumber()

	val, err := decodeValue(dec)
	if err != nil {
		var offset int64
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			offset = syn.Offset
		}
		return Value{}, &ParseError{Offset: offset, Detail: err.Error()}
	}

	// A well-formed JSONC document has no trailing tokens besides EOF.
	if _, err := dec.Token(); err == nil {
		return Value{}, &ParseError{Detail: "unexpected trailing content after top-level value"}
	}

	return val, nil
}

// decodeValue consumes one JSON value from dec and returns its Value
// representation, recursing into arrays and objects.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("unexpected token %v (%T)", tok, tok)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var items []Value
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Array(items), nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return NewObjectValue(obj), nil
}
