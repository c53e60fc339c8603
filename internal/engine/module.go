// Package engine is the built-in reflection module: the math types, render
// components, enums and attributes every tool in this repository can rely on
// being registered.
package engine

import (
	"github.com/vellum-engine/vellum/runtime/reflection"
)

// ModuleName is the name the engine module registers under.
const ModuleName = "engine"

// Module registers the engine types. The zero value is ready to use.
type Module struct{}

// Name implements reflection.Module.
func (Module) Name() string { return ModuleName }

// InitReflectionEnums registers Layer, BlendMode and Anchor.
func (Module) InitReflectionEnums(r *reflection.Registry) {
	reflection.DefineEnum[Layer](r).
		Entry("background", LayerBackground).
		Entry("world", LayerWorld).
		Entry("effects", LayerEffects).
		Entry("ui", LayerUI).
		Attrs(reflection.DisplayName{Name: "Render Layer"}).
		Finish()

	reflection.DefineEnum[BlendMode](r).
		Entry("opaque", BlendOpaque).
		Entry("alpha", BlendAlpha).
		Entry("additive", BlendAdditive).
		Entry("multiply", BlendMultiply).
		Finish()

	reflection.DefineEnum[Anchor](r).
		Entry("top_left", AnchorTopLeft).
		Entry("center", AnchorCenter).
		Entry("bottom_right", AnchorBottomRight).
		Finish()
}

// InitReflectionAttributes creates the buckets engine tools query: every
// Renderable and every type marked as a Component.
func (Module) InitReflectionAttributes(r *reflection.Registry) {
	r.RegisterTypeBucket(reflection.HandleOf[Renderable]())
	r.RegisterAttributeBucket(reflection.HandleOf[Component]())
}

// InitReflectionClasses registers the engine types. Value types come first
// since components embed them.
func (Module) InitReflectionClasses(r *reflection.Registry) {
	defineVec2(r)
	defineRect(r)
	defineRGBA(r)
	defineTransform(r)
	defineRenderable(r)
	defineSprite(r)
	defineLabel(r)
	defineCamera(r)
	defineScene(r)
}

// Load loads the engine module into r.
func Load(r *reflection.Registry) (reflection.ModuleInfo, error) {
	return r.LoadModule(Module{})
}
