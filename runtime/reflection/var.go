package reflection

import (
	"go.uber.org/zap"
)

// Var is a type-erased accessor bound to one field of one reflected type.
// object is always a pointer to an instance of the declaring type, or of a
// type that inherited the field.
//
// Container and flag operations are only valid on the matching shape;
// calling them on any other field panics with CapabilityMismatch.
type Var interface {
	Name() string
	// Owner is the name of the type that declared the field.
	Owner() string
	// Type is the field type, or the element type for containers and the
	// naming enum for flags.
	Type() TypeRef

	// Data returns a pointer to the field. Properties return a pointer to a
	// fresh copy; fixed arrays return a slice over the array.
	Data(object any) any
	SetData(object any, value any)
	// SetDataMove assigns from a pointer and zeroes the source.
	SetDataMove(object any, value any)

	IsReadOnly() bool
	SetReadOnly(readOnly bool)
	CanSerialize() bool
	SetNoSerialize(noSerialize bool)
	IsOptional() bool
	SetOptional(optional bool)
	IsNoCopy() bool
	SetNoCopy(noCopy bool)
	IsEnum() bool

	IsFixedArray() bool
	IsVector() bool
	IsMap() bool
	IsFlags() bool
	IsContainer() bool

	KeyType() TypeRef
	Size(object any) int
	Element(object any, index int) any
	SetElement(object any, index int, value any)
	Resize(object any, size int)
	Remove(object any, index int)
	Swap(object any, a, b int)
	FlagValue(object any, bit int) bool
	SetFlagValue(object any, bit int, value bool)

	Load(r Reader, object any) error
	Save(w Writer, object any)
	InstanceHash(object any, seed Hash64) Hash64
	CopyTo(dst, src any)

	common() *varBase
	rebase(cast func(any) any) Var
}

type varFlags uint8

const (
	flagReadOnly varFlags = 1 << iota
	flagNoSerialize
	flagOptional
	flagNoCopy
)

// VarSpec is a field accessor waiting to be added to a Builder[T].
type VarSpec[T any] struct {
	build func() Var
}

type varBase struct {
	name       string
	owner      string
	elem       TypeRef
	flags      varFlags
	reg        *Registry
	validators []Validator
}

func (v *varBase) common() *varBase { return v }

func (v *varBase) bind(owner, name string, reg *Registry) {
	v.owner = owner
	v.name = name
	v.reg = reg
}

func (v *varBase) Name() string { return v.name }
func (v *varBase) Owner() string { return v.owner }
func (v *varBase) Type() TypeRef { return v.elem }
func (v *varBase) KeyType() TypeRef { return TypeRef{} }

func (v *varBase) IsReadOnly() bool { return v.flags&flagReadOnly != 0 }
func (v *varBase) CanSerialize() bool { return v.flags&flagNoSerialize == 0 }
func (v *varBase) IsOptional() bool { return v.flags&flagOptional != 0 }
func (v *varBase) IsNoCopy() bool { return v.flags&flagNoCopy != 0 }

func (v *varBase) SetReadOnly(on bool) { v.setFlag(flagReadOnly, on) }
func (v *varBase) SetNoSerialize(on bool) { v.setFlag(flagNoSerialize, on) }
func (v *varBase) SetOptional(on bool) { v.setFlag(flagOptional, on) }
func (v *varBase) SetNoCopy(on bool) { v.setFlag(flagNoCopy, on) }

func (v *varBase) setFlag(f varFlags, on bool) {
	if on {
		v.flags |= f
	} else {
		v.flags &^= f
	}
}

func (v *varBase) IsEnum() bool {
	if v.reg == nil {
		return false
	}
	_, ok := v.reg.Enum(v.elem.Handle)
	return ok
}

func (v *varBase) IsFixedArray() bool { return false }
func (v *varBase) IsVector() bool { return false }
func (v *varBase) IsMap() bool { return false }
func (v *varBase) IsFlags() bool { return false }
func (v *varBase) IsContainer() bool { return false }

func (v *varBase) Size(any) int {
	v.notContainer("Size")
	return 0
}

func (v *varBase) Element(any, int) any {
	v.notContainer("Element")
	return nil
}

func (v *varBase) SetElement(any, int, any) { v.notContainer("SetElement") }
func (v *varBase) Resize(any, int) { v.notContainer("Resize") }
func (v *varBase) Remove(any, int) { v.notContainer("Remove") }
func (v *varBase) Swap(any, int, int) { v.notContainer("Swap") }

func (v *varBase) FlagValue(any, int) bool {
	capabilityPanic(v.owner, v.name, "FlagValue: not a flags field")
	return false
}

func (v *varBase) SetFlagValue(any, int, bool) {
	capabilityPanic(v.owner, v.name, "SetFlagValue: not a flags field")
}

func (v *varBase) notContainer(op string) {
	capabilityPanic(v.owner, v.name, "%s: not a container", op)
}

func (v *varBase) checkIndex(i, n int) {
	if i < 0 || i >= n {
		capabilityPanic(v.owner, v.name, "index %d out of range [0, %d)", i, n)
	}
}

// readOnlyWrite logs and reports whether a write must be ignored.
func (v *varBase) readOnlyWrite() bool {
	if !v.IsReadOnly() {
		return false
	}
	if v.reg != nil {
		v.reg.logger.Warn("write to read-only field ignored",
			zap.String("type", v.owner),
			zap.String("field", v.name))
	}
	return true
}

func (v *varBase) codecFor(ref TypeRef) (valueCodec, error) {
	if v.reg != nil {
		if c, ok := v.reg.codec(ref.Handle); ok {
			return c, nil
		}
	}
	return nil, &Error{
		Kind:   LookupMiss,
		Type:   v.owner,
		Member: v.name,
		Err:    unregistered(ref),
	}
}

func (v *varBase) mustCodec(ref TypeRef) valueCodec {
	c, err := v.codecFor(ref)
	if err != nil {
		panic(err)
	}
	return c
}

// loadValue reads one element into ptr and runs the field validators.
func (v *varBase) loadValue(r Reader, ptr any) error {
	c, err := v.codecFor(v.elem)
	if err != nil {
		return err
	}
	if err := c.Load(r, ptr); err != nil {
		return err
	}
	return v.validate(ptr)
}

func (v *varBase) validate(ptr any) error {
	for _, val := range v.validators {
		if err := val.Validate(ptr); err != nil {
			return malformed(v.owner, v.name, err)
		}
	}
	return nil
}

func copyElem[V any](v *varBase, dst, src *V) {
	if c, err := v.codecFor(v.elem); err == nil {
		c.copyValue(dst, src)
		return
	}
	*dst = *src
}

func valueOf[V any](v *varBase, x any) V {
	switch t := x.(type) {
	case V:
		return t
	case *V:
		return *t
	}
	capabilityPanic(v.owner, v.name, "value of type %T does not match %s", x, TypeName[V]())
	var zero V
	return zero
}

func moveValue[V any](v *varBase, x any) V {
	if p, ok := x.(*V); ok {
		out := *p
		var zero V
		*p = zero
		return out
	}
	return valueOf[V](v, x)
}

func objectPtr[T any](o any) *T {
	p, ok := o.(*T)
	if !ok {
		capabilityPanic(TypeName[T](), "", "object of type %T is not *%s", o, TypeName[T]())
	}
	return p
}

// GetData returns a pointer to the field, asserting that V is its Go type.
// A fixed array field is read as a slice: V is []E and the returned slice
// aliases the array's storage.
func GetData[V any](v Var, object any) *V {
	if !v.IsContainer() && !v.IsFlags() {
		checkVarType[V](v)
	}
	data := v.Data(object)
	if v.IsFixedArray() {
		if s, ok := data.(V); ok {
			return &s
		}
	}
	p, ok := data.(*V)
	if !ok {
		capabilityPanic(v.Owner(), v.Name(), "accessed as %s but reflected as %s", TypeName[V](), v.Type().Name)
	}
	return p
}

// SetData assigns value to a scalar field, asserting that V is its type.
func SetData[V any](v Var, object any, value V) {
	checkVarType[V](v)
	v.SetData(object, value)
}

// GetElement returns a pointer to element i of a container field.
func GetElement[V any](v Var, object any, i int) *V {
	checkVarType[V](v)
	return v.Element(object, i).(*V)
}

// SetElement assigns element i of a container field.
func SetElement[V any](v Var, object any, i int, value V) {
	checkVarType[V](v)
	v.SetElement(object, i, value)
}

func checkVarType[V any](v Var) {
	want := RefOf[V]()
	if v.IsFlags() || v.Type().Handle != want.Handle {
		capabilityPanic(v.Owner(), v.Name(), "accessed as %s but reflected as %s", want.Name, v.Type().Name)
	}
}
