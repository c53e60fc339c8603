package engine

import (
	"fmt"
	"math"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// Vec2 is a 2D vector.
type Vec2 struct {
	X float32
	Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }
func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }
func (v Vec2) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }

func defineVec2(r *reflection.Registry) {
	reflection.Define[Vec2](r).
		Ctor(reflection.Ctor2(func(x, y float32) *Vec2 { return &Vec2{x, y} })).
		Var("x", reflection.Field(func(v *Vec2) *float32 { return &v.X })).
		Var("y", reflection.Field(func(v *Vec2) *float32 { return &v.Y })).
		Func("Dot", reflection.ConstMethod1(Vec2.Dot)).
		Func("Length", reflection.ConstMethod0(Vec2.Length)).
		Func("Scale", reflection.ConstMethod1(Vec2.Scale), Tooltip{Text: "Multiply both components by a scalar"}).
		StaticFunc("Zero", reflection.Static0[Vec2](func() Vec2 { return Vec2{} })).
		StaticFunc("One", reflection.Static0[Vec2](func() Vec2 { return Vec2{1, 1} })).
		OpBinary(reflection.OpAdd, Vec2.Add).
		OpBinary(reflection.OpSub, Vec2.Sub).
		OpBinary(reflection.OpMul, Vec2.Mul).
		OpUnary(reflection.OpMinus, Vec2.Neg).
		OpEquality(func(a, b Vec2) bool { return a == b }).
		Op(reflection.OpToString, reflection.StringerOp[Vec2]()).
		Finish()
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Vec2
	Max Vec2
}

// RectFromSize builds a rectangle from its top-left corner and size.
func RectFromSize(origin, size Vec2) Rect {
	return Rect{Min: origin, Max: origin.Add(size)}
}

func (r Rect) Width() float32 { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func defineRect(r *reflection.Registry) {
	reflection.Define[Rect](r).
		Var("min", reflection.Field(func(r *Rect) *Vec2 { return &r.Min })).
		Var("max", reflection.Field(func(r *Rect) *Vec2 { return &r.Max })).
		Func("Width", reflection.ConstMethod0(Rect.Width)).
		Func("Height", reflection.ConstMethod0(Rect.Height)).
		Func("Contains", reflection.ConstMethod1(Rect.Contains)).
		StaticFunc("FromSize", reflection.Static2[Rect](RectFromSize)).
		OpEquality(func(a, b Rect) bool { return a == b }).
		Finish()
}

// RGBA is an 8-bit per channel color.
type RGBA struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// White is the default tint.
var White = RGBA{255, 255, 255, 255}

// Packed returns the color as 0xRRGGBBAA.
func (c RGBA) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Unpack is the inverse of Packed.
func Unpack(v uint32) RGBA {
	return RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

func defineRGBA(r *reflection.Registry) {
	reflection.Define[RGBA](r).
		Var("r", reflection.Field(func(c *RGBA) *uint8 { return &c.R })).
		Var("g", reflection.Field(func(c *RGBA) *uint8 { return &c.G })).
		Var("b", reflection.Field(func(c *RGBA) *uint8 { return &c.B })).
		Var("a", reflection.Field(func(c *RGBA) *uint8 { return &c.A }), reflection.Optional{}).
		Func("Packed", reflection.ConstMethod0(RGBA.Packed)).
		StaticFunc("Unpack", reflection.Static1[RGBA](Unpack)).
		OpEquality(func(a, b RGBA) bool { return a == b }).
		Finish()
}

// Transform places an object in its parent space.
type Transform struct {
	Position Vec2
	Rotation float32
	Scale    Vec2
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Scale: Vec2{1, 1}}

// Apply maps a local point into parent space: scale, rotate, then translate.
func (t Transform) Apply(p Vec2) Vec2 {
	p = p.Mul(t.Scale)
	if t.Rotation != 0 {
		s, c := math.Sincos(float64(t.Rotation))
		p = Vec2{
			X: p.X*float32(c) - p.Y*float32(s),
			Y: p.X*float32(s) + p.Y*float32(c),
		}
	}
	return p.Add(t.Position)
}

func defineTransform(r *reflection.Registry) {
	reflection.Define[Transform](r).
		Ctor(reflection.Ctor0(func() *Transform { return &Transform{Scale: Vec2{1, 1}} })).
		Var("position", reflection.Field(func(t *Transform) *Vec2 { return &t.Position }), reflection.Optional{}).
		Var("rotation", reflection.Field(func(t *Transform) *float32 { return &t.Rotation }),
			reflection.Optional{}, Tooltip{Text: "Radians, counter-clockwise"}).
		Var("scale", reflection.Field(func(t *Transform) *Vec2 { return &t.Scale }), reflection.Optional{}).
		Func("Apply", reflection.ConstMethod1(Transform.Apply)).
		Finish()
}
