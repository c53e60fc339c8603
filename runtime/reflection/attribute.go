package reflection

import (
	"fmt"
	"reflect"
)

// Attribute is a small object attached to a class, field, function or enum.
// What it may decorate is declared by implementing VarAttribute,
// FuncAttribute, ClassAttribute or EnumAttribute; the optional hooks below
// are discovered by interface assertion.
type Attribute interface {
	Clone() Attribute
}

// VarAttribute decorates fields. ApplyVar runs once when the field is added.
type VarAttribute interface {
	Attribute
	ApplyVar(v Var)
}

// FuncAttribute decorates member and static functions.
type FuncAttribute interface {
	Attribute
	ApplyFunc(f *Function)
}

// ClassAttribute decorates a type.
type ClassAttribute interface {
	Attribute
	ApplyClass(d *Definition)
}

// EnumAttribute decorates an enum.
type EnumAttribute interface {
	Attribute
	ApplyEnum(e *EnumDefinition)
}

// Finisher runs once the owning definition is complete.
type Finisher interface {
	Finish(d *Definition)
}

// Instantiator runs every time an instance of the decorated type is created.
type Instantiator interface {
	Instantiated(object any, d *Definition)
}

// Versioner contributes to the structural version beyond the attribute's type.
type Versioner interface {
	ApplyVersioning(h Hash64) Hash64
}

// Inheritable reports whether derived types receive the attribute.
// Attributes that do not implement it are inherited.
type Inheritable interface {
	CanInherit() bool
}

// Validator checks a field after it is loaded. value is a pointer to the
// field.
type Validator interface {
	Validate(value any) error
}

// AttrRef returns the ref of an attribute's Go type. Pointer attributes name
// their element type.
func AttrRef(a Attribute) TypeRef {
	t := reflect.TypeOf(a)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return refOfType(t)
}

func canInherit(a Attribute) bool {
	if in, ok := a.(Inheritable); ok {
		return in.CanInherit()
	}
	return true
}

func foldAttrs(h Hash64, attrs []Attribute) Hash64 {
	for _, a := range attrs {
		h = CombineHash(h, AttrRef(a).Handle)
		if v, ok := a.(Versioner); ok {
			h = v.ApplyVersioning(h)
		}
	}
	return h
}

func cloneAttrs(attrs []Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Clone())
	}
	return out
}

func inheritedAttrs(attrs []Attribute) []Attribute {
	var out []Attribute
	for _, a := range attrs {
		if canInherit(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func requireVarAttr(owner, member string, a Attribute) VarAttribute {
	va, ok := a.(VarAttribute)
	if !ok {
		capabilityPanic(owner, member, "attribute %s cannot decorate a field", AttrRef(a).Name)
	}
	return va
}

func requireFuncAttr(owner, member string, a Attribute) FuncAttribute {
	fa, ok := a.(FuncAttribute)
	if !ok {
		capabilityPanic(owner, member, "attribute %s cannot decorate a function", AttrRef(a).Name)
	}
	return fa
}

func requireClassAttr(owner string, a Attribute) ClassAttribute {
	ca, ok := a.(ClassAttribute)
	if !ok {
		capabilityPanic(owner, "", "attribute %s cannot decorate a type", AttrRef(a).Name)
	}
	return ca
}

func requireEnumAttr(owner string, a Attribute) EnumAttribute {
	ea, ok := a.(EnumAttribute)
	if !ok {
		capabilityPanic(owner, "", "attribute %s cannot decorate an enum", AttrRef(a).Name)
	}
	return ea
}

// ReadOnly makes a field ignore writes through its accessor.
type ReadOnly struct{}

func (ReadOnly) Clone() Attribute { return ReadOnly{} }
func (ReadOnly) ApplyVar(v Var) { v.SetReadOnly(true) }

// NoSerialize excludes a field from load, save and instance hashing.
type NoSerialize struct{}

func (NoSerialize) Clone() Attribute { return NoSerialize{} }
func (NoSerialize) ApplyVar(v Var) { v.SetNoSerialize(true) }

// Optional lets a field be absent from a loaded document.
type Optional struct{}

func (Optional) Clone() Attribute { return Optional{} }
func (Optional) ApplyVar(v Var) { v.SetOptional(true) }

// NoCopy excludes a field from Duplicate.
type NoCopy struct{}

func (NoCopy) Clone() Attribute { return NoCopy{} }
func (NoCopy) ApplyVar(v Var) { v.SetNoCopy(true) }

// Range rejects loaded numeric values outside [Min, Max].
type Range struct {
	Min float64
	Max float64
}

func (r Range) Clone() Attribute { return r }
func (Range) ApplyVar(Var) {}

func (r Range) ApplyVersioning(h Hash64) Hash64 {
	return CombineFloat64(CombineFloat64(h, r.Min), r.Max)
}

func (r Range) Validate(value any) error {
	f, ok := numericValue(value)
	if !ok {
		return fmt.Errorf("%w: range applied to non-numeric %T", ErrValidation, value)
	}
	if f < r.Min || f > r.Max {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrValidation, f, r.Min, r.Max)
	}
	return nil
}

// DisplayName is editor metadata usable in any context.
type DisplayName struct {
	Name string
}

func (d DisplayName) Clone() Attribute { return d }
func (DisplayName) ApplyVar(Var) {}
func (DisplayName) ApplyFunc(*Function) {}
func (DisplayName) ApplyClass(*Definition) {}
func (DisplayName) ApplyEnum(*EnumDefinition) {}
func (d DisplayName) ApplyVersioning(h Hash64) Hash64 { return CombineString(h, d.Name) }

// Hidden hides a member or type from editors. Derived types do not inherit it.
type Hidden struct{}

func (Hidden) Clone() Attribute { return Hidden{} }
func (Hidden) ApplyVar(Var) {}
func (Hidden) ApplyFunc(*Function) {}
func (Hidden) ApplyClass(*Definition) {}
func (Hidden) CanInherit() bool { return false }

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case *int:
		return float64(*v), true
	case *int8:
		return float64(*v), true
	case *int16:
		return float64(*v), true
	case *int32:
		return float64(*v), true
	case *int64:
		return float64(*v), true
	case *uint:
		return float64(*v), true
	case *uint8:
		return float64(*v), true
	case *uint16:
		return float64(*v), true
	case *uint32:
		return float64(*v), true
	case *uint64:
		return float64(*v), true
	case *float32:
		return float64(*v), true
	case *float64:
		return *v, true
	default:
		return 0, false
	}
}
