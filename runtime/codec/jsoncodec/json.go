// Package jsoncodec converts JSON documents to and from tree nodes, keeping
// object keys in document order.
package jsoncodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/vellum-engine/vellum/runtime/codec/tree"
)

// Decode parses a single JSON document.
func Decode(data []byte) (*tree.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode json: trailing data")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*tree.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := tree.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := tree.NewArray()
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case json.Number:
		return decodeNumber(v)
	case string:
		return tree.StringValue(v), nil
	case bool:
		return tree.BoolValue(v), nil
	case nil:
		return tree.NullValue(), nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

func decodeNumber(num json.Number) (*tree.Node, error) {
	if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		return tree.IntValue(i), nil
	}
	if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return tree.UintValue(u), nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", num, err)
	}
	return tree.FloatValue(f), nil
}

// Encode renders n as compact JSON.
func Encode(n *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeIndent renders n as indented JSON.
func EncodeIndent(n *tree.Node, prefix, indent string) ([]byte, error) {
	compact, err := Encode(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, fmt.Errorf("failed to indent json: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, n *tree.Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case tree.Null:
		buf.WriteString("null")
	case tree.Bool:
		buf.WriteString(strconv.FormatBool(n.Bool))
	case tree.Int:
		buf.WriteString(strconv.FormatInt(n.Int, 10))
	case tree.Uint:
		buf.WriteString(strconv.FormatUint(n.Uint, 10))
	case tree.Float:
		if math.IsNaN(n.Float) || math.IsInf(n.Float, 0) {
			return fmt.Errorf("unsupported float value %v", n.Float)
		}
		buf.WriteString(strconv.FormatFloat(n.Float, 'g', -1, 64))
	case tree.String:
		return writeString(buf, n.Str)
	case tree.Array:
		buf.WriteByte('[')
		for i, e := range n.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case tree.Object:
		buf.WriteByte('{')
		for i, k := range n.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, n.Vals[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node kind %s", n.Kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)
	return nil
}

// NewReader decodes data and returns a reader over it.
func NewReader(data []byte) (*tree.Reader, error) {
	n, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return tree.NewReader(n), nil
}
