package tree

import "math"

// Reader walks a Node with a cursor stack. Descending into a missing member
// or element positions the cursor on a null node.
type Reader struct {
	stack []*Node
}

// NewReader creates a reader positioned on root.
func NewReader(root *Node) *Reader {
	if root == nil {
		root = NullValue()
	}
	return &Reader{stack: []*Node{root}}
}

func (r *Reader) cur() *Node { return r.stack[len(r.stack)-1] }

// Current returns the node under the cursor.
func (r *Reader) Current() *Node { return r.cur() }

func (r *Reader) IsObject() bool { return r.cur().Kind == Object }
func (r *Reader) IsArray() bool { return r.cur().Kind == Array }
func (r *Reader) IsString() bool { return r.cur().Kind == String }
func (r *Reader) IsNumber() bool { return r.cur().IsNumber() }
func (r *Reader) IsBool() bool { return r.cur().Kind == Bool }
func (r *Reader) IsNull() bool { return r.cur().Kind == Null }
func (r *Reader) IsFloat() bool { return r.cur().IsNumber() }
func (r *Reader) IsDouble() bool { return r.cur().IsNumber() }

func (r *Reader) IsInt8() bool { return r.intIn(math.MinInt8, math.MaxInt8) }
func (r *Reader) IsInt16() bool { return r.intIn(math.MinInt16, math.MaxInt16) }
func (r *Reader) IsInt32() bool { return r.intIn(math.MinInt32, math.MaxInt32) }
func (r *Reader) IsInt64() bool { return r.intIn(math.MinInt64, math.MaxInt64) }

func (r *Reader) IsUInt8() bool { return r.uintUpTo(math.MaxUint8) }
func (r *Reader) IsUInt16() bool { return r.uintUpTo(math.MaxUint16) }
func (r *Reader) IsUInt32() bool { return r.uintUpTo(math.MaxUint32) }
func (r *Reader) IsUInt64() bool { return r.uintUpTo(math.MaxUint64) }

func (r *Reader) intIn(lo, hi int64) bool {
	v, ok := r.cur().AsInt()
	return ok && v >= lo && v <= hi
}

func (r *Reader) uintUpTo(hi uint64) bool {
	v, ok := r.cur().AsUint()
	return ok && v <= hi
}

func (r *Reader) Size() int { return r.cur().Len() }

func (r *Reader) Exists(key string) bool {
	_, ok := r.cur().Get(key)
	return ok
}

// Key returns the i-th key of the current object, or "" when out of range.
func (r *Reader) Key(i int) string {
	n := r.cur()
	if n.Kind != Object || i < 0 || i >= len(n.Keys) {
		return ""
	}
	return n.Keys[i]
}

func (r *Reader) EnterElement(key string) {
	child, ok := r.cur().Get(key)
	if !ok {
		child = NullValue()
	}
	r.stack = append(r.stack, child)
}

func (r *Reader) EnterIndex(i int) {
	n := r.cur()
	child := NullValue()
	if n.Kind == Array && i >= 0 && i < len(n.Elems) {
		child = n.Elems[i]
	}
	r.stack = append(r.stack, child)
}

// ExitElement returns to the parent. The root is never popped.
func (r *Reader) ExitElement() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *Reader) EnterElementGuard(key string) func() {
	r.EnterElement(key)
	return r.ExitElement
}

func (r *Reader) EnterIndexGuard(i int) func() {
	r.EnterIndex(i)
	return r.ExitElement
}

func (r *Reader) ReadString() string { return r.cur().Str }
func (r *Reader) ReadBool() bool { return r.cur().Bool }

func (r *Reader) ReadInt8() int8 { return int8(r.readInt()) }
func (r *Reader) ReadInt16() int16 { return int16(r.readInt()) }
func (r *Reader) ReadInt32() int32 { return int32(r.readInt()) }
func (r *Reader) ReadInt64() int64 { return r.readInt() }

func (r *Reader) ReadUInt8() uint8 { return uint8(r.readUint()) }
func (r *Reader) ReadUInt16() uint16 { return uint16(r.readUint()) }
func (r *Reader) ReadUInt32() uint32 { return uint32(r.readUint()) }
func (r *Reader) ReadUInt64() uint64 { return r.readUint() }

func (r *Reader) ReadFloat() float32 { return float32(r.ReadNumber()) }
func (r *Reader) ReadDouble() float64 { return r.ReadNumber() }

func (r *Reader) ReadNumber() float64 {
	f, _ := r.cur().AsFloat()
	return f
}

func (r *Reader) readInt() int64 {
	n := r.cur()
	if v, ok := n.AsInt(); ok {
		return v
	}
	f, _ := n.AsFloat()
	return int64(f)
}

func (r *Reader) readUint() uint64 {
	n := r.cur()
	if v, ok := n.AsUint(); ok {
		return v
	}
	if v, ok := n.AsInt(); ok {
		return uint64(v)
	}
	f, _ := n.AsFloat()
	return uint64(f)
}
