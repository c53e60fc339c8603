// Package tree is an ordered in-memory document model with a reader and a
// writer over it. The concrete codecs translate bytes to and from Nodes.
package tree

import "math"

// Kind is the type of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Uint
	Float
	String
	Array
	Object
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Node is one document value. Objects keep their keys in insertion order.
type Node struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Elems []*Node
	Keys  []string
	Vals  []*Node
}

func NullValue() *Node { return &Node{Kind: Null} }
func BoolValue(b bool) *Node { return &Node{Kind: Bool, Bool: b} }
func IntValue(i int64) *Node { return &Node{Kind: Int, Int: i} }
func UintValue(u uint64) *Node { return &Node{Kind: Uint, Uint: u} }
func FloatValue(f float64) *Node { return &Node{Kind: Float, Float: f} }
func StringValue(s string) *Node { return &Node{Kind: String, Str: s} }
func NewArray(elems ...*Node) *Node { return &Node{Kind: Array, Elems: elems} }
func NewObject() *Node { return &Node{Kind: Object} }

// Set adds or replaces a member of an object node.
func (n *Node) Set(key string, v *Node) *Node {
	for i, k := range n.Keys {
		if k == key {
			n.Vals[i] = v
			return n
		}
	}
	n.Keys = append(n.Keys, key)
	n.Vals = append(n.Vals, v)
	return n
}

// Get returns a member of an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for i, k := range n.Keys {
		if k == key {
			return n.Vals[i], true
		}
	}
	return nil, false
}

// Append adds an element to an array node.
func (n *Node) Append(v *Node) *Node {
	n.Elems = append(n.Elems, v)
	return n
}

// Len is the number of members or elements; zero for scalars.
func (n *Node) Len() int {
	switch n.Kind {
	case Array:
		return len(n.Elems)
	case Object:
		return len(n.Keys)
	default:
		return 0
	}
}

// IsNumber reports whether the node holds any numeric kind.
func (n *Node) IsNumber() bool {
	return n.Kind == Int || n.Kind == Uint || n.Kind == Float
}

// AsInt returns the node as a signed integer when it holds an integral value
// that fits.
func (n *Node) AsInt() (int64, bool) {
	switch n.Kind {
	case Int:
		return n.Int, true
	case Uint:
		if n.Uint > math.MaxInt64 {
			return 0, false
		}
		return int64(n.Uint), true
	case Float:
		if n.Float != math.Trunc(n.Float) || n.Float < math.MinInt64 || n.Float >= math.MaxInt64 {
			return 0, false
		}
		return int64(n.Float), true
	default:
		return 0, false
	}
}

// AsUint returns the node as an unsigned integer when it holds a
// non-negative integral value that fits.
func (n *Node) AsUint() (uint64, bool) {
	switch n.Kind {
	case Int:
		if n.Int < 0 {
			return 0, false
		}
		return uint64(n.Int), true
	case Uint:
		return n.Uint, true
	case Float:
		if n.Float != math.Trunc(n.Float) || n.Float < 0 || n.Float >= math.MaxUint64 {
			return 0, false
		}
		return uint64(n.Float), true
	default:
		return 0, false
	}
}

// AsFloat returns any numeric node as a float64.
func (n *Node) AsFloat() (float64, bool) {
	switch n.Kind {
	case Int:
		return float64(n.Int), true
	case Uint:
		return float64(n.Uint), true
	case Float:
		return n.Float, true
	default:
		return 0, false
	}
}

// Equal reports deep equality. Numbers compare by value across kinds.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.IsNumber() && o.IsNumber() {
		a, _ := n.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case Null:
		return true
	case Bool:
		return n.Bool == o.Bool
	case String:
		return n.Str == o.Str
	case Array:
		if len(n.Elems) != len(o.Elems) {
			return false
		}
		for i := range n.Elems {
			if !n.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(n.Keys) != len(o.Keys) {
			return false
		}
		for i, k := range n.Keys {
			v, ok := o.Get(k)
			if !ok || !n.Vals[i].Equal(v) {
				return false
			}
		}
		return true
	}
	return false
}
