package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

var (
	// ErrInvalidJSON is returned for text that is not a JSON value.
	ErrInvalidJSON = errors.New("bundle: invalid JSON")
	// ErrNotObject is returned when a bundle document is not a JSON object.
	ErrNotObject = errors.New("bundle: document is not an object")
)

// DecodeJSON parses a JSON value preserving object key order.
func DecodeJSON(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decodeValue(value, typ)
}

// Decode parses a serialized bundle.
func Decode(data []byte) (*Bundle, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return FromObject(obj), nil
}

func decodeValue(data []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.String:
		return jsonparser.ParseString(data)
	case jsonparser.Number:
		return json.Number(string(data)), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			v, err := decodeValue(value, vt)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return obj, nil
	case jsonparser.Array:
		arr := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if inner != nil {
				return
			}
			v, err := decodeValue(value, vt)
			if err != nil {
				inner = err
				return
			}
			arr = append(arr, v)
		})
		if inner != nil {
			return nil, inner
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value type %s", ErrInvalidJSON, typ)
	}
}

// MarshalJSON encodes the bundle compactly in insertion order without HTML escaping.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, b.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Format serializes the bundle indented by width spaces. Width 0 yields
// compact output. Numbers keep their literal text at every width.
func (b *Bundle) Format(width int) ([]byte, error) {
	return FormatValue(b.root, width)
}

// FormatValue serializes any bundle value the way Format does.
func FormatValue(v any, width int) ([]byte, error) {
	var compact bytes.Buffer
	if err := encodeValue(&compact, v); err != nil {
		return nil, err
	}
	if width <= 0 {
		return compact.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", strings.Repeat(" ", width)); err != nil {
		return nil, fmt.Errorf("failed to indent bundle: %w", err)
	}
	return out.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *Object:
		buf.WriteByte('{')
		first := true
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := encodeScalar(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return encodeScalar(buf, t)
	}
}

func encodeScalar(buf *bytes.Buffer, v any) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode bundle value: %w", err)
	}
	buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))
	return nil
}
