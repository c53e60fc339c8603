package engine

import (
	"math"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// Renderable is implemented by every component the renderer draws.
type Renderable interface {
	Bounds() Rect
	IsVisible() bool
	LayerMask() uint32
}

func defineRenderable(r *reflection.Registry) {
	reflection.Define[Renderable](r).
		Func("Bounds", reflection.ConstMethod0(Renderable.Bounds)).
		Func("IsVisible", reflection.ConstMethod0(Renderable.IsVisible)).
		Func("LayerMask", reflection.ConstMethod0(Renderable.LayerMask)).
		Finish()
}

// Sprite draws a texture region.
type Sprite struct {
	Texture   string
	Transform Transform
	Size      Vec2
	Tint      RGBA
	Blend     BlendMode
	Layers    uint32
	Visible   bool
	Frames    [4]uint16
	Tags      []string

	// Dirty is set when the sprite changed since it was last uploaded.
	Dirty bool
}

// NewSprite returns a visible, untinted sprite on the world layer.
func NewSprite(texture string) *Sprite {
	return &Sprite{
		Texture:   texture,
		Transform: Identity,
		Size:      Vec2{1, 1},
		Tint:      White,
		Blend:     BlendAlpha,
		Layers:    LayerWorld.Mask(),
		Visible:   true,
	}
}

func (s *Sprite) Bounds() Rect {
	size := s.Size.Mul(s.Transform.Scale)
	return RectFromSize(s.Transform.Position, size)
}

func (s *Sprite) IsVisible() bool { return s.Visible }
func (s *Sprite) LayerMask() uint32 { return s.Layers }

// Move translates the sprite and marks it dirty.
func (s *Sprite) Move(delta Vec2) {
	s.Transform.Position = s.Transform.Position.Add(delta)
	s.Dirty = true
}

func defineSprite(r *reflection.Registry) {
	reflection.Define[Sprite](r).
		Base(reflection.BaseOf(func(s *Sprite) Renderable { return s })).
		Ctor(reflection.Ctor0(func() *Sprite { return NewSprite("") })).
		Ctor(reflection.Ctor1(NewSprite)).
		ClassAttrs(Component{}, Category{Name: "Rendering"}).
		Var("texture", reflection.Field(func(s *Sprite) *string { return &s.Texture }),
			Tooltip{Text: "Texture asset path"}).
		Var("transform", reflection.Field(func(s *Sprite) *Transform { return &s.Transform }), reflection.Optional{}).
		Var("size", reflection.Field(func(s *Sprite) *Vec2 { return &s.Size }), reflection.Optional{}).
		Var("tint", reflection.Field(func(s *Sprite) *RGBA { return &s.Tint }), reflection.Optional{}).
		Var("blend", reflection.Field(func(s *Sprite) *BlendMode { return &s.Blend }), reflection.Optional{}).
		Var("layers", reflection.Flags[Sprite, uint32, Layer](func(s *Sprite) *uint32 { return &s.Layers }),
			reflection.Optional{}).
		Var("visible", reflection.Field(func(s *Sprite) *bool { return &s.Visible }), reflection.Optional{}).
		Var("frames", reflection.Array(func(s *Sprite) []uint16 { return s.Frames[:] }), reflection.Optional{}).
		Var("tags", reflection.Vector(func(s *Sprite) *[]string { return &s.Tags }), reflection.Optional{}).
		Var("dirty", reflection.Field(func(s *Sprite) *bool { return &s.Dirty }),
			reflection.NoSerialize{}, reflection.NoCopy{}, reflection.Hidden{}).
		Func("Move", reflection.Action1(func(s *Sprite, delta Vec2) { s.Move(delta) })).
		Finish()
}

// Label draws a line of text.
type Label struct {
	Text      string
	Font      string
	FontSize  float32
	Anchor    Anchor
	Color     RGBA
	Transform Transform
	Visible   bool
}

// NewLabel returns a visible label on the UI layer.
func NewLabel(text string) *Label {
	return &Label{
		Text:      text,
		Font:      "default",
		FontSize:  16,
		Color:     White,
		Transform: Identity,
		Visible:   true,
	}
}

// Bounds estimates the text box from an average glyph width of half the
// font size.
func (l *Label) Bounds() Rect {
	w := float32(len(l.Text)) * l.FontSize * 0.5
	size := Vec2{w, l.FontSize}.Mul(l.Transform.Scale)
	origin := l.Transform.Position
	switch l.Anchor {
	case AnchorCenter:
		origin = origin.Sub(size.Scale(0.5))
	case AnchorBottomRight:
		origin = origin.Sub(size)
	}
	return RectFromSize(origin, size)
}

func (l *Label) IsVisible() bool { return l.Visible }
func (l *Label) LayerMask() uint32 { return LayerUI.Mask() }

func defineLabel(r *reflection.Registry) {
	reflection.Define[Label](r).
		Base(reflection.BaseOf(func(l *Label) Renderable { return l })).
		Ctor(reflection.Ctor0(func() *Label { return NewLabel("") })).
		Ctor(reflection.Ctor1(NewLabel)).
		ClassAttrs(Component{}, Category{Name: "Rendering"}).
		Var("text", reflection.Field(func(l *Label) *string { return &l.Text })).
		Var("font", reflection.Field(func(l *Label) *string { return &l.Font }), reflection.Optional{}).
		Var("font_size", reflection.Field(func(l *Label) *float32 { return &l.FontSize }),
			reflection.Optional{}, reflection.Range{Min: 1, Max: 512}).
		Var("anchor", reflection.Field(func(l *Label) *Anchor { return &l.Anchor }), reflection.Optional{}).
		Var("color", reflection.Field(func(l *Label) *RGBA { return &l.Color }), reflection.Optional{}).
		Var("transform", reflection.Field(func(l *Label) *Transform { return &l.Transform }), reflection.Optional{}).
		Var("visible", reflection.Field(func(l *Label) *bool { return &l.Visible }), reflection.Optional{}).
		Finish()
}

// Camera defines the visible region of a scene.
type Camera struct {
	Transform Transform
	Viewport  Rect
	Layers    uint32
	zoom      float32
}

const (
	minZoom = 0.1
	maxZoom = 10
)

// NewCamera returns a camera seeing every layer at zoom 1.
func NewCamera() *Camera {
	return &Camera{
		Transform: Identity,
		Viewport:  Rect{Max: Vec2{1280, 720}},
		Layers:    math.MaxUint32,
		zoom:      1,
	}
}

func (c *Camera) Zoom() float32 { return c.zoom }

// SetZoom clamps z into the supported zoom range.
func (c *Camera) SetZoom(z float32) {
	c.zoom = min(max(z, minZoom), maxZoom)
}

// Sees reports whether the camera renders r.
func (c *Camera) Sees(r Renderable) bool {
	return r.IsVisible() && c.Layers&r.LayerMask() != 0
}

func defineCamera(r *reflection.Registry) {
	reflection.Define[Camera](r).
		Ctor(reflection.Ctor0(NewCamera)).
		ClassAttrs(Component{}, Unique{}, Category{Name: "Rendering"}).
		Var("transform", reflection.Field(func(c *Camera) *Transform { return &c.Transform }), reflection.Optional{}).
		Var("viewport", reflection.Field(func(c *Camera) *Rect { return &c.Viewport }), reflection.Optional{}).
		Var("layers", reflection.Flags[Camera, uint32, Layer](func(c *Camera) *uint32 { return &c.Layers }),
			reflection.Optional{}).
		Var("zoom", reflection.Property((*Camera).Zoom, (*Camera).SetZoom),
			reflection.Optional{}, Tooltip{Text: "Clamped to [0.1, 10]"}).
		Func("Sees", reflection.ConstMethod1(func(c Camera, r Renderable) bool { return c.Sees(r) })).
		Finish()
}

// Scene is a named collection of entities with spawn points.
type Scene struct {
	Name     string
	Entities []string
	Spawns   map[string]Vec2
	Order    map[int32]string
	Ambient  RGBA
}

func defineScene(r *reflection.Registry) {
	reflection.Define[Scene](r).
		Ctor(reflection.Ctor1(func(name string) *Scene { return &Scene{Name: name} })).
		Var("name", reflection.Field(func(s *Scene) *string { return &s.Name })).
		Var("entities", reflection.Vector(func(s *Scene) *[]string { return &s.Entities }), reflection.Optional{}).
		Var("spawns", reflection.StringMap(func(s *Scene) *map[string]Vec2 { return &s.Spawns }), reflection.Optional{}).
		Var("order", reflection.Map(func(s *Scene) *map[int32]string { return &s.Order }), reflection.Optional{}).
		Var("ambient", reflection.Field(func(s *Scene) *RGBA { return &s.Ambient }), reflection.Optional{}).
		Func("AddEntity", reflection.Action1(func(s *Scene, name string) { s.Entities = append(s.Entities, name) })).
		Func("NumEntities", reflection.ConstMethod0(func(s Scene) int { return len(s.Entities) })).
		Finish()
}
