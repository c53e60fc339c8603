package reflection

// Reader is the read side of a serialization codec. The cursor starts on the
// document root; EnterElement/EnterIndex descend and ExitElement returns to
// the parent.
type Reader interface {
	IsObject() bool
	IsArray() bool
	IsString() bool
	IsNumber() bool
	IsInt8() bool
	IsInt16() bool
	IsInt32() bool
	IsInt64() bool
	IsUInt8() bool
	IsUInt16() bool
	IsUInt32() bool
	IsUInt64() bool
	IsFloat() bool
	IsDouble() bool
	IsBool() bool
	IsNull() bool

	// Size is the number of members of an object or elements of an array.
	Size() int
	// Exists reports whether the current object has key.
	Exists(key string) bool
	// Key returns the i-th key of the current object in document order.
	Key(i int) string

	EnterElement(key string)
	EnterIndex(i int)
	ExitElement()
	// EnterElementGuard descends into key and returns the matching exit.
	EnterElementGuard(key string) func()
	// EnterIndexGuard descends into element i and returns the matching exit.
	EnterIndexGuard(i int) func()

	ReadString() string
	ReadInt8() int8
	ReadInt16() int16
	ReadInt32() int32
	ReadInt64() int64
	ReadUInt8() uint8
	ReadUInt16() uint16
	ReadUInt32() uint32
	ReadUInt64() uint64
	ReadFloat() float32
	ReadDouble() float64
	ReadNumber() float64
	ReadBool() bool
}

// Writer is the write side of a serialization codec.
type Writer interface {
	StartObject(size int)
	EndObject()
	StartArray(size int)
	EndArray()
	WriteKey(key string)

	WriteInt8(v int8)
	WriteInt16(v int16)
	WriteInt32(v int32)
	WriteInt64(v int64)
	WriteUInt8(v uint8)
	WriteUInt16(v uint16)
	WriteUInt32(v uint32)
	WriteUInt64(v uint64)
	WriteFloat(v float32)
	WriteDouble(v float64)
	WriteBool(v bool)
	WriteString(v string)
	WriteNull()
}

// valueCodec is implemented by everything a field can hold: builtin
// primitives, class definitions and enum definitions.
type valueCodec interface {
	Load(r Reader, object any) error
	Save(w Writer, object any)
	InstanceHash(object any, seed Hash64) Hash64
	copyValue(dst, src any)
}
