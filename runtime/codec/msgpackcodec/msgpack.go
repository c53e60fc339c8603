// Package msgpackcodec converts MessagePack documents to and from tree nodes.
package msgpackcodec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/vellum-engine/vellum/runtime/codec/tree"
)

// Encode renders n as MessagePack. Object keys are written in order.
func Encode(n *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, n); err != nil {
		return nil, fmt.Errorf("failed to encode msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *msgpack.Encoder, n *tree.Node) error {
	if n == nil {
		return enc.EncodeNil()
	}

	switch n.Kind {
	case tree.Null:
		return enc.EncodeNil()
	case tree.Bool:
		return enc.EncodeBool(n.Bool)
	case tree.Int:
		return enc.EncodeInt(n.Int)
	case tree.Uint:
		return enc.EncodeUint(n.Uint)
	case tree.Float:
		return enc.EncodeFloat64(n.Float)
	case tree.String:
		return enc.EncodeString(n.Str)
	case tree.Array:
		if err := enc.EncodeArrayLen(len(n.Elems)); err != nil {
			return err
		}
		for _, e := range n.Elems {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case tree.Object:
		if err := enc.EncodeMapLen(len(n.Keys)); err != nil {
			return err
		}
		for i, k := range n.Keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encodeValue(enc, n.Vals[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown node kind %s", n.Kind)
	}
}

// Decode parses a single MessagePack document.
func Decode(data []byte) (*tree.Node, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode msgpack: trailing data")
	}
	return n, nil
}

func decodeValue(dec *msgpack.Decoder) (*tree.Node, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return nil, err
		}
		return tree.NullValue(), nil
	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return nil, err
		}
		return tree.BoolValue(b), nil
	case c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		return tree.UintValue(u), nil
	case msgpcode.IsFixedNum(c) ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return tree.IntValue(i), nil
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return nil, err
		}
		return tree.FloatValue(f), nil
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return tree.StringValue(s), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		size, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := tree.NewArray()
		for i := 0; i < size; i++ {
			e, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr.Append(e)
		}
		return arr, nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		size, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := tree.NewObject()
		for i := 0; i < size; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported msgpack code 0x%02x", c)
	}
}

// NewReader decodes data and returns a reader over it.
func NewReader(data []byte) (*tree.Reader, error) {
	n, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return tree.NewReader(n), nil
}
