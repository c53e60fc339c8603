package reflection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/runtime/codec/jsoncodec"
	"github.com/vellum-engine/vellum/runtime/codec/tree"
)

type Point struct {
	X int32
	Y int32
}

type Drawable interface {
	Draw() string
}

type Sprite struct {
	Name  string
	Pos   Point
	Layer uint8
	Tags  []string
}

func (s *Sprite) Draw() string { return "sprite:" + s.Name }

type Color int32

const (
	Red Color = iota
	Green
	Blue
)

func definePoint(reg *Registry) *Definition {
	return Define[Point](reg).
		Var("x", Field(func(p *Point) *int32 { return &p.X })).
		Var("y", Field(func(p *Point) *int32 { return &p.Y })).
		Finish()
}

func defineDrawable(reg *Registry) *Definition {
	return Define[Drawable](reg).
		Func("Draw", ConstMethod0(func(d Drawable) string { return d.Draw() })).
		Finish()
}

// defineSprite registers Sprite, and Point first when the test has not.
func defineSprite(reg *Registry) *Definition {
	if _, ok := reg.Reflection(HandleOf[Point]()); !ok {
		definePoint(reg)
	}
	return Define[Sprite](reg).
		Base(BaseOf(func(s *Sprite) Drawable { return s })).
		Ctor(Ctor1(func(name string) *Sprite { return &Sprite{Name: name} })).
		Var("name", Field(func(s *Sprite) *string { return &s.Name })).
		Var("pos", Field(func(s *Sprite) *Point { return &s.Pos })).
		Var("layer", Field(func(s *Sprite) *uint8 { return &s.Layer }), Range{Min: 0, Max: 10}).
		Var("tags", Vector(func(s *Sprite) *[]string { return &s.Tags }), Optional{}).
		Finish()
}

func defineColor(reg *Registry) *EnumDefinition {
	return DefineEnum[Color](reg).
		Entry("red", Red).
		Entry("green", Green).
		Entry("blue", Blue).
		Finish()
}

// saveJSON saves object through d and returns the encoded document.
func saveJSON(t *testing.T, d interface {
	Save(Writer, any)
}, object any) string {
	t.Helper()
	w := tree.NewWriter()
	d.Save(w, object)
	data, err := jsoncodec.Encode(w.Root())
	require.NoError(t, err)
	return string(data)
}

// loadJSON loads a document into object through d.
func loadJSON(t *testing.T, d interface {
	Load(Reader, any) error
}, doc string, object any) error {
	t.Helper()
	r, err := jsoncodec.NewReader([]byte(doc))
	require.NoError(t, err)
	return d.Load(r, object)
}

// requirePanicKind runs fn and asserts it panics with an *Error of kind.
func requirePanicKind(t *testing.T, kind ErrorKind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(*Error)
		require.True(t, ok, "panic value %T is not *Error", r)
		require.Equal(t, kind, err.Kind, err.Error())
	}()
	fn()
}
