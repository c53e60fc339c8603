package engine

import (
	"github.com/vellum-engine/vellum/runtime/reflection"
)

// Component marks a type that can be attached to a scene entity.
type Component struct{}

func (Component) Clone() reflection.Attribute { return Component{} }
func (Component) ApplyClass(*reflection.Definition) {}

// Category groups types and members in editor palettes.
type Category struct {
	Name string
}

func (c Category) Clone() reflection.Attribute { return c }
func (Category) ApplyClass(*reflection.Definition) {}
func (Category) ApplyVar(reflection.Var) {}
func (c Category) ApplyVersioning(h reflection.Hash64) reflection.Hash64 {
	return reflection.CombineString(h, c.Name)
}

// Tooltip is help text shown next to a field or function.
type Tooltip struct {
	Text string
}

func (t Tooltip) Clone() reflection.Attribute { return t }
func (Tooltip) ApplyVar(reflection.Var) {}
func (Tooltip) ApplyFunc(*reflection.Function) {}

// Unique limits an entity to one instance of a component. Derived types may
// be attached alongside their base, so it is not inherited.
type Unique struct{}

func (Unique) Clone() reflection.Attribute { return Unique{} }
func (Unique) ApplyClass(*reflection.Definition) {}
func (Unique) CanInherit() bool { return false }
