package reflection

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
)

// EnumEntry is one named value of a reflected enum.
type EnumEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// EnumDefinition describes an integer enum: its entries in declaration order
// and its attributes. Instances serialize as the entry name.
type EnumDefinition struct {
	reg     *Registry
	ref     TypeRef
	entries []EnumEntry
	byName  map[string]int
	byValue map[int64]int
	attrs   []Attribute
	version Hash64

	get func(object any) int64
	set func(object any, v int64)
}

func (e *EnumDefinition) Name() string { return e.ref.Name }
func (e *EnumDefinition) Handle() Hash64 { return e.ref.Handle }
func (e *EnumDefinition) Ref() TypeRef { return e.ref }
func (e *EnumDefinition) Version() Hash64 { return e.version }
func (e *EnumDefinition) NumEntries() int { return len(e.entries) }

func (e *EnumDefinition) EntryNameAt(i int) string { return e.entries[i].Name }
func (e *EnumDefinition) EntryValueAt(i int) int64 { return e.entries[i].Value }

// Entries returns the entries in declaration order.
func (e *EnumDefinition) Entries() []EnumEntry {
	out := make([]EnumEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// EntryName returns the name of the first entry with value.
func (e *EnumDefinition) EntryName(value int64) (string, bool) {
	i, ok := e.byValue[value]
	if !ok {
		return "", false
	}
	return e.entries[i].Name, true
}

// EntryValue returns the value of the named entry.
func (e *EnumDefinition) EntryValue(name string) (int64, bool) {
	i, ok := e.byName[name]
	if !ok {
		return 0, false
	}
	return e.entries[i].Value, true
}

func (e *EnumDefinition) Attrs() []Attribute { return copyAttrs(e.attrs) }

// Attr returns the first attribute matching attrHandle, or nil.
func (e *EnumDefinition) Attr(attrHandle Hash64) Attribute {
	var resolve attrResolver
	if e.reg != nil {
		resolve = e.reg.lookup
	}
	return findAttr(e.attrs, attrHandle, resolve)
}

func (e *EnumDefinition) HasAttr(attrHandle Hash64) bool {
	return e.Attr(attrHandle) != nil
}

// Load accepts an entry name or an integer value.
func (e *EnumDefinition) Load(r Reader, object any) error {
	switch {
	case r.IsString():
		name := r.ReadString()
		v, ok := e.EntryValue(name)
		if !ok {
			return malformed(e.ref.Name, "", fmt.Errorf("%w: unknown entry %q", ErrMalformedInput, name))
		}
		e.set(object, v)
	case r.IsNumber():
		e.set(object, r.ReadInt64())
	default:
		return unexpected(e.ref.Name, "", "enum entry name")
	}
	return nil
}

// Save writes the entry name, or the integer when no entry has the value.
func (e *EnumDefinition) Save(w Writer, object any) {
	v := e.get(object)
	if name, ok := e.EntryName(v); ok {
		w.WriteString(name)
		return
	}
	w.WriteInt64(v)
}

func (e *EnumDefinition) InstanceHash(object any, seed Hash64) Hash64 {
	return CombineUint64(seed, uint64(e.get(object)))
}

// Format renders a value as its entry name, falling back to the number.
func (e *EnumDefinition) Format(value int64) string {
	if name, ok := e.EntryName(value); ok {
		return name
	}
	return strconv.FormatInt(value, 10)
}

func (e *EnumDefinition) copyValue(dst, src any) { e.set(dst, e.get(src)) }

// EnumBuilder populates the EnumDefinition of E.
type EnumBuilder[E constraints.Integer] struct {
	reg      *Registry
	def      *EnumDefinition
	finished bool
}

// DefineEnum starts the definition of E.
func DefineEnum[E constraints.Integer](reg *Registry) *EnumBuilder[E] {
	ref := RefOf[E]()
	return &EnumBuilder[E]{reg: reg, def: &EnumDefinition{
		reg:     reg,
		ref:     ref,
		byName:  make(map[string]int),
		byValue: make(map[int64]int),
		get: func(o any) int64 {
			return int64(*enumPtr[E](ref, o))
		},
		set: func(o any, v int64) {
			*enumPtr[E](ref, o) = E(v)
		},
	}}
}

func enumPtr[E constraints.Integer](ref TypeRef, o any) *E {
	p, ok := o.(*E)
	if !ok {
		capabilityPanic(ref.Name, "", "object of type %T is not *%s", o, ref.Name)
	}
	return p
}

// Entry adds a named value. Names are unique; values may repeat, in which
// case the first entry names the value.
func (b *EnumBuilder[E]) Entry(name string, value E) *EnumBuilder[E] {
	b.check()
	d := b.def
	if _, dup := d.byName[name]; dup {
		capabilityPanic(d.ref.Name, name, "duplicate enum entry")
	}
	d.byName[name] = len(d.entries)
	if _, seen := d.byValue[int64(value)]; !seen {
		d.byValue[int64(value)] = len(d.entries)
	}
	d.entries = append(d.entries, EnumEntry{Name: name, Value: int64(value)})
	return b
}

// Attrs attaches enum attributes.
func (b *EnumBuilder[E]) Attrs(attrs ...Attribute) *EnumBuilder[E] {
	b.check()
	for _, a := range cloneAttrs(attrs) {
		requireEnumAttr(b.def.ref.Name, a).ApplyEnum(b.def)
		b.def.attrs = append(b.def.attrs, a)
	}
	return b
}

// Finish computes the version and registers the enum, returning the
// canonical definition.
func (b *EnumBuilder[E]) Finish() *EnumDefinition {
	b.check()
	b.finished = true
	b.def.version = enumVersion(b.def)
	return b.reg.RegisterEnum(b.def)
}

func (b *EnumBuilder[E]) check() {
	if b.finished {
		capabilityPanic(b.def.ref.Name, "", "enum builder used after Finish")
	}
}
