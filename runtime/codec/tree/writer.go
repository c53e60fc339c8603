package tree

// Writer builds a Node from a stream of write calls.
type Writer struct {
	root  *Node
	stack []*Node
	key   string
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Root returns the written document, or nil when nothing was written.
func (w *Writer) Root() *Node { return w.root }

func (w *Writer) emit(n *Node) {
	if len(w.stack) == 0 {
		w.root = n
		return
	}
	parent := w.stack[len(w.stack)-1]
	switch parent.Kind {
	case Array:
		parent.Append(n)
	case Object:
		parent.Set(w.key, n)
		w.key = ""
	}
}

func (w *Writer) push(n *Node) {
	w.emit(n)
	w.stack = append(w.stack, n)
}

func (w *Writer) pop() {
	if len(w.stack) > 0 {
		w.stack = w.stack[:len(w.stack)-1]
	}
}

func (w *Writer) StartObject(size int) {
	n := NewObject()
	n.Keys = make([]string, 0, size)
	n.Vals = make([]*Node, 0, size)
	w.push(n)
}

func (w *Writer) EndObject() { w.pop() }

func (w *Writer) StartArray(size int) {
	w.push(&Node{Kind: Array, Elems: make([]*Node, 0, size)})
}

func (w *Writer) EndArray() { w.pop() }

func (w *Writer) WriteKey(key string) {
	w.key = key
}

func (w *Writer) WriteInt8(v int8) { w.emit(IntValue(int64(v))) }
func (w *Writer) WriteInt16(v int16) { w.emit(IntValue(int64(v))) }
func (w *Writer) WriteInt32(v int32) { w.emit(IntValue(int64(v))) }
func (w *Writer) WriteInt64(v int64) { w.emit(IntValue(v)) }
func (w *Writer) WriteUInt8(v uint8) { w.emit(UintValue(uint64(v))) }
func (w *Writer) WriteUInt16(v uint16) { w.emit(UintValue(uint64(v))) }
func (w *Writer) WriteUInt32(v uint32) { w.emit(UintValue(uint64(v))) }
func (w *Writer) WriteUInt64(v uint64) { w.emit(UintValue(v)) }
func (w *Writer) WriteFloat(v float32) { w.emit(FloatValue(float64(v))) }
func (w *Writer) WriteDouble(v float64) { w.emit(FloatValue(v)) }
func (w *Writer) WriteBool(v bool) { w.emit(BoolValue(v)) }
func (w *Writer) WriteString(v string) { w.emit(StringValue(v)) }
func (w *Writer) WriteNull() { w.emit(NullValue()) }
