package reflection

import (
	"golang.org/x/exp/constraints"
)

// builtinDef describes a primitive: fixed load/save/hash behavior and no
// fields or functions.
func builtinDef[V any](reg *Registry, is func(Reader) bool, read func(Reader) V, write func(Writer, V), hash func(Hash64, V) Hash64) *Definition {
	ref := RefOf[V]()
	d := newDefinition(reg, ref)
	d.builtin = true
	d.version = HashName(ref.Name)
	d.construct = func() any { return new(V) }
	d.assign = func(dst, src any) { *dst.(*V) = *src.(*V) }
	d.ctors[ArgsOf0()] = &Constructor{hash: ArgsOf0(), build: func([]any) any { return new(V) }}
	d.ctorOrder = []Hash64{ArgsOf0()}

	d.load = func(r Reader, o any) error {
		p, ok := o.(*V)
		if !ok {
			capabilityPanic(ref.Name, "", "object of type %T is not *%s", o, ref.Name)
		}
		if !is(r) {
			return unexpected(ref.Name, "", ref.Name)
		}
		*p = read(r)
		return nil
	}
	d.save = func(w Writer, o any) { write(w, *o.(*V)) }
	d.instanceHash = func(o any, seed Hash64) Hash64 { return hash(seed, *o.(*V)) }
	return d
}

func hashInteger[V constraints.Integer](seed Hash64, v V) Hash64 {
	return CombineUint64(seed, uint64(v))
}

func builtinDefs(reg *Registry) []*Definition {
	return []*Definition{
		builtinDef(reg, Reader.IsBool, Reader.ReadBool, Writer.WriteBool, CombineBool),
		builtinDef(reg, Reader.IsInt8, Reader.ReadInt8, Writer.WriteInt8, hashInteger[int8]),
		builtinDef(reg, Reader.IsInt16, Reader.ReadInt16, Writer.WriteInt16, hashInteger[int16]),
		builtinDef(reg, Reader.IsInt32, Reader.ReadInt32, Writer.WriteInt32, hashInteger[int32]),
		builtinDef(reg, Reader.IsInt64, Reader.ReadInt64, Writer.WriteInt64, hashInteger[int64]),
		builtinDef(reg, Reader.IsUInt8, Reader.ReadUInt8, Writer.WriteUInt8, hashInteger[uint8]),
		builtinDef(reg, Reader.IsUInt16, Reader.ReadUInt16, Writer.WriteUInt16, hashInteger[uint16]),
		builtinDef(reg, Reader.IsUInt32, Reader.ReadUInt32, Writer.WriteUInt32, hashInteger[uint32]),
		builtinDef(reg, Reader.IsUInt64, Reader.ReadUInt64, Writer.WriteUInt64, hashInteger[uint64]),
		builtinDef(reg, Reader.IsInt64,
			func(r Reader) int { return int(r.ReadInt64()) },
			func(w Writer, v int) { w.WriteInt64(int64(v)) },
			hashInteger[int]),
		builtinDef(reg, Reader.IsUInt64,
			func(r Reader) uint { return uint(r.ReadUInt64()) },
			func(w Writer, v uint) { w.WriteUInt64(uint64(v)) },
			hashInteger[uint]),
		builtinDef(reg, Reader.IsFloat, Reader.ReadFloat, Writer.WriteFloat,
			func(seed Hash64, v float32) Hash64 { return CombineFloat64(seed, float64(v)) }),
		builtinDef(reg, Reader.IsDouble, Reader.ReadDouble, Writer.WriteDouble, CombineFloat64),
		builtinDef(reg, Reader.IsString, Reader.ReadString, Writer.WriteString, CombineString),
	}
}
