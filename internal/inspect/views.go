// Package inspect renders a reflection registry as JSON views and serves
// them over a read-only HTTP API.
package inspect

import (
	"reflect"
	"strings"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// TypeSummary is one row of a type listing.
type TypeSummary struct {
	Name        string   `json:"name"`
	Handle      string   `json:"handle"`
	Version     string   `json:"version"`
	UserVersion uint32   `json:"user_version"`
	Interface   bool     `json:"interface"`
	Vars        int      `json:"vars"`
	Funcs       int      `json:"funcs"`
	Bases       []string `json:"bases,omitempty"`
}

// TypeView is the full description of a type.
type TypeView struct {
	TypeSummary
	Attributes   []AttributeView `json:"attributes,omitempty"`
	Constructors []string        `json:"constructors,omitempty"`
	Fields       []VarView       `json:"fields"`
	Methods      []FuncView      `json:"methods"`
	Statics      []FuncView      `json:"statics,omitempty"`
}

// VarView describes one field.
type VarView struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Shape       string          `json:"shape"`
	Key         string          `json:"key,omitempty"`
	Owner       string          `json:"owner"`
	ReadOnly    bool            `json:"read_only,omitempty"`
	Optional    bool            `json:"optional,omitempty"`
	NoSerialize bool            `json:"no_serialize,omitempty"`
	NoCopy      bool            `json:"no_copy,omitempty"`
	Attributes  []AttributeView `json:"attributes,omitempty"`
}

// FuncView describes one function overload.
type FuncView struct {
	Name       string          `json:"name"`
	Signature  string          `json:"signature"`
	Owner      string          `json:"owner"`
	Const      bool            `json:"const,omitempty"`
	Attributes []AttributeView `json:"attributes,omitempty"`
}

// AttributeView names an attribute and, when it has fields, its value.
type AttributeView struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

// EnumView describes an enum and its entries in declaration order.
type EnumView struct {
	Name       string                 `json:"name"`
	Handle     string                 `json:"handle"`
	Version    string                 `json:"version"`
	Entries    []reflection.EnumEntry `json:"entries"`
	Attributes []AttributeView        `json:"attributes,omitempty"`
}

// BucketView lists the types implementing an interface.
type BucketView struct {
	Interface string        `json:"interface"`
	Types     []TypeSummary `json:"types"`
}

// Summarize builds the listing row for d.
func Summarize(d *reflection.Definition) TypeSummary {
	s := TypeSummary{
		Name:        d.Name(),
		Handle:      d.Handle().String(),
		Version:     d.Version().String(),
		UserVersion: d.UserVersion(),
		Interface:   d.IsInterface(),
		Vars:        d.NumVars(),
	}
	for i := 0; i < d.NumFuncs(); i++ {
		s.Funcs += d.NumFuncOverloads(i)
	}
	for _, b := range d.Bases() {
		s.Bases = append(s.Bases, b.Name)
	}
	return s
}

// Summaries builds listing rows for defs.
func Summaries(defs []*reflection.Definition) []TypeSummary {
	out := make([]TypeSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, Summarize(d))
	}
	return out
}

// Describe builds the full view of d.
func Describe(d *reflection.Definition) TypeView {
	v := TypeView{
		TypeSummary: Summarize(d),
		Attributes:  Attributes(d.ClassAttrs()),
		Fields:      make([]VarView, 0, d.NumVars()),
		Methods:     []FuncView{},
	}

	for _, c := range d.Constructors() {
		v.Constructors = append(v.Constructors, argList(c.Args()))
	}

	for i := 0; i < d.NumVars(); i++ {
		field := d.VarAt(i)
		v.Fields = append(v.Fields, VarView{
			Name:        field.Name(),
			Type:        field.Type().Name,
			Shape:       Shape(field),
			Key:         keyName(field),
			Owner:       field.Owner(),
			ReadOnly:    field.IsReadOnly(),
			Optional:    field.IsOptional(),
			NoSerialize: !field.CanSerialize(),
			NoCopy:      field.IsNoCopy(),
			Attributes:  Attributes(d.VarAttrs(reflection.HashName(field.Name()))),
		})
	}

	for i := 0; i < d.NumFuncs(); i++ {
		for j := 0; j < d.NumFuncOverloads(i); j++ {
			v.Methods = append(v.Methods, describeFunc(d.FuncAt(i, j)))
		}
	}
	for i := 0; i < d.NumStaticFuncs(); i++ {
		for j := 0; j < d.NumStaticFuncOverloads(i); j++ {
			v.Statics = append(v.Statics, describeFunc(d.StaticFuncAt(i, j)))
		}
	}
	return v
}

func describeFunc(f *reflection.Function) FuncView {
	return FuncView{
		Name:       f.Name(),
		Signature:  f.Signature(),
		Owner:      f.Owner(),
		Const:      f.IsConst(),
		Attributes: Attributes(f.Attrs()),
	}
}

func argList(args []reflection.TypeRef) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// Shape names the accessor shape of a field.
func Shape(v reflection.Var) string {
	switch {
	case v.IsFixedArray():
		return "array"
	case v.IsVector():
		return "vector"
	case v.IsMap():
		return "map"
	case v.IsFlags():
		return "flags"
	case v.IsEnum():
		return "enum"
	default:
		return "value"
	}
}

func keyName(v reflection.Var) string {
	if !v.IsMap() {
		return ""
	}
	return v.KeyType().Name
}

// Attributes renders attrs in declaration order.
func Attributes(attrs []reflection.Attribute) []AttributeView {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]AttributeView, 0, len(attrs))
	for _, a := range attrs {
		view := AttributeView{Name: reflection.AttrRef(a).Name}
		if hasFields(a) {
			view.Value = a
		}
		out = append(out, view)
	}
	return out
}

func hasFields(a reflection.Attribute) bool {
	t := reflect.TypeOf(a)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t.NumField() > 0
}

// DescribeEnum builds the view of e.
func DescribeEnum(e *reflection.EnumDefinition) EnumView {
	return EnumView{
		Name:       e.Name(),
		Handle:     e.Handle().String(),
		Version:    e.Version().String(),
		Entries:    e.Entries(),
		Attributes: Attributes(e.Attrs()),
	}
}

// DescribeEnums builds views for every enum.
func DescribeEnums(enums []*reflection.EnumDefinition) []EnumView {
	out := make([]EnumView, 0, len(enums))
	for _, e := range enums {
		out = append(out, DescribeEnum(e))
	}
	return out
}
