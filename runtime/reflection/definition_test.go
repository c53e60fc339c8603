package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/runtime/codec/msgpackcodec"
	"github.com/vellum-engine/vellum/runtime/codec/tree"
)

type Base struct {
	A int32
}

type Base2 struct {
	B float32
}

type Derived struct {
	Base
	Base2
	c int32
}

func defineHierarchy(reg *Registry) (*Definition, *Definition, *Definition) {
	base := Define[Base](reg).
		Var("a", Field(func(b *Base) *int32 { return &b.A })).
		Func("Twice", ConstMethod0(func(b Base) int32 { return b.A * 2 })).
		ClassAttrs(DisplayName{Name: "Base"}, Hidden{}).
		Finish()
	base2 := Define[Base2](reg).
		Var("b", Field(func(b *Base2) *float32 { return &b.B })).
		Finish()
	derived := Define[Derived](reg).
		Base(BaseOf(func(d *Derived) *Base { return &d.Base })).
		Base(BaseOf(func(d *Derived) *Base2 { return &d.Base2 })).
		Var("c", Property(
			func(d *Derived) int32 { return d.c },
			func(d *Derived, v int32) { d.c = v },
		)).
		Finish()
	return base, base2, derived
}

func TestInheritance(t *testing.T) {
	reg := NewRegistry()
	base, base2, derived := defineHierarchy(reg)

	require.Equal(t, 3, derived.NumVars())
	assert.Equal(t, "a", derived.VarName(0))
	assert.Equal(t, "b", derived.VarName(1))
	assert.Equal(t, "c", derived.VarName(2))
	assert.Equal(t, base.Name(), derived.VarAt(0).Owner())

	var d Derived
	derived.VarByName("a").SetData(&d, int32(9))
	derived.VarByName("b").SetData(&d, float32(1.5))
	derived.VarByName("c").SetData(&d, int32(4))
	assert.Equal(t, int32(9), d.A)
	assert.Equal(t, float32(1.5), d.B)
	assert.Equal(t, int32(4), d.c)

	twice := derived.FuncByName("Twice", SignatureOf0[int32]())
	require.NotNil(t, twice)
	assert.Equal(t, int32(18), twice.CallConst(&d))

	assert.True(t, derived.HasInterface(base.Handle()))
	assert.True(t, derived.HasInterface(base2.Handle()))
	assert.True(t, derived.HasInterface(derived.Handle()))
	assert.False(t, base.HasInterface(derived.Handle()))
	assert.Equal(t, []TypeRef{base.Ref(), base2.Ref()}, derived.Bases())

	b, ok := Interface[*Base](derived, &d)
	require.True(t, ok)
	assert.Same(t, &d.Base, b)
	assert.Nil(t, base.Interface(derived.Handle(), &Base{}))

	assert.True(t, derived.HasClassAttr(HandleOf[DisplayName]()))
	assert.False(t, derived.HasClassAttr(HandleOf[Hidden]()))
	assert.True(t, base.HasClassAttr(HandleOf[Hidden]()))
}

type Root struct {
	ID int32
}

type Mid struct {
	Root
	Depth int32
}

type Leaf struct {
	Mid
}

func TestTransitiveAncestors(t *testing.T) {
	reg := NewRegistry()
	root := Define[Root](reg).
		Var("id", Field(func(r *Root) *int32 { return &r.ID })).
		Finish()
	Define[Mid](reg).
		Base(BaseOf(func(m *Mid) *Root { return &m.Root })).
		Var("depth", Field(func(m *Mid) *int32 { return &m.Depth })).
		Finish()
	leaf := Define[Leaf](reg).
		Base(BaseOf(func(l *Leaf) *Mid { return &l.Mid })).
		Finish()

	assert.True(t, leaf.HasInterface(root.Handle()))
	assert.Equal(t, 2, leaf.NumVars())

	var l Leaf
	leaf.VarByName("id").SetData(&l, int32(11))
	assert.Equal(t, int32(11), l.ID)

	r, ok := Interface[*Root](leaf, &l)
	require.True(t, ok)
	assert.Same(t, &l.Root, r)

	reg.RegisterTypeBucket(root.Handle())
	bucket, _ := reg.TypeBucket(root.Handle())
	assert.Len(t, bucket, 2)
}

func TestRedeclaredFieldReplacesInherited(t *testing.T) {
	reg := NewRegistry()
	Define[Root](reg).
		Var("id", Field(func(r *Root) *int32 { return &r.ID })).
		Finish()
	mid := Define[Mid](reg).
		Base(BaseOf(func(m *Mid) *Root { return &m.Root })).
		Var("id", Field(func(m *Mid) *int32 { return &m.Depth })).
		Finish()

	require.Equal(t, 1, mid.NumVars())
	assert.Equal(t, mid.Name(), mid.VarAt(0).Owner())

	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Leaf](NewRegistry()).
			Var("x", Field(func(l *Leaf) *int32 { return &l.ID })).
			Var("x", Field(func(l *Leaf) *int32 { return &l.Depth }))
	})
}

func TestCreateAndAllocator(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	sprite := defineSprite(reg)
	alloc := NewTrackingAllocator()

	assert.Equal(t, 2, sprite.NumConstructors())

	obj, ok := Create[Sprite](sprite, alloc, ArgsOf1[string](), "hero")
	require.True(t, ok)
	assert.Equal(t, "hero", obj.Name)
	assert.Equal(t, 1, alloc.Live(sprite.Name()))

	dflt := sprite.CreateDefault(alloc)
	assert.IsType(t, &Sprite{}, dflt)
	assert.Equal(t, 2, alloc.Live(sprite.Name()))

	assert.Nil(t, sprite.Create(ArgsOf1[int32](), alloc, int32(1)))
	requirePanicKind(t, CapabilityMismatch, func() { sprite.Create(ArgsOf1[string](), alloc) })

	d, ok := CreateAs[Drawable](sprite, alloc)
	require.True(t, ok)
	assert.Equal(t, "sprite:", d.Draw())

	sprite.Free(obj, alloc)
	sprite.Free(dflt, alloc)
	assert.Equal(t, 1, alloc.Live(sprite.Name()))
	assert.Equal(t, 3, alloc.Total(sprite.Name()))
}

func TestInterfaceHasNoFactory(t *testing.T) {
	reg := NewRegistry()
	drawable := defineDrawable(reg)

	assert.True(t, drawable.IsInterface())
	assert.Equal(t, 0, drawable.NumConstructors())
	assert.Nil(t, drawable.CreateDefault(nil))
	assert.Nil(t, drawable.Duplicate(&Sprite{}, nil))
}

type Entity struct {
	ID   int32
	Name string
	Tags []string
}

func TestDuplicateSkipsNoCopy(t *testing.T) {
	reg := NewRegistry()
	def := Define[Entity](reg).
		Var("id", Field(func(e *Entity) *int32 { return &e.ID }), NoCopy{}).
		Var("name", Field(func(e *Entity) *string { return &e.Name })).
		Var("tags", Vector(func(e *Entity) *[]string { return &e.Tags })).
		Finish()

	src := &Entity{ID: 42, Name: "orc", Tags: []string{"hostile"}}
	dup := def.Duplicate(src, nil).(*Entity)

	assert.Equal(t, int32(0), dup.ID)
	assert.Equal(t, "orc", dup.Name)
	assert.Equal(t, []string{"hostile"}, dup.Tags)

	dup.Tags[0] = "friendly"
	assert.Equal(t, "hostile", src.Tags[0], "containers are copied")
}

func TestDestructor(t *testing.T) {
	reg := NewRegistry()
	var destroyed []string
	def := Define[Entity](reg).
		Var("name", Field(func(e *Entity) *string { return &e.Name })).
		Destructor(func(e *Entity) { destroyed = append(destroyed, e.Name) }).
		Finish()

	def.Free(&Entity{Name: "a"}, nil)
	def.DestroyInstance(&Entity{Name: "b"})
	assert.Equal(t, []string{"a", "b"}, destroyed)
}

func TestLoadErrors(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	definePoint(reg)
	sprite := defineSprite(reg)

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"not an object", `[1,2]`, ErrMalformedInput},
		{"missing field", `{"name":"a","layer":1}`, ErrMissingField},
		{"wrong type", `{"name":5,"pos":{"x":0,"y":0},"layer":1}`, ErrMalformedInput},
		{"nested wrong type", `{"name":"a","pos":{"x":"left","y":0},"layer":1}`, ErrMalformedInput},
		{"out of range", `{"name":"a","pos":{"x":0,"y":0},"layer":42}`, ErrValidation},
		{"too large for field", `{"name":"a","pos":{"x":0,"y":0},"layer":300}`, ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Sprite
			err := loadJSON(t, sprite, tt.doc, &s)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsKind(err, MalformedInput))
		})
	}
}

func TestOptionalAndNoSerialize(t *testing.T) {
	reg := NewRegistry()
	def := Define[Entity](reg).
		Var("id", Field(func(e *Entity) *int32 { return &e.ID }), NoSerialize{}).
		Var("name", Field(func(e *Entity) *string { return &e.Name })).
		Var("tags", Vector(func(e *Entity) *[]string { return &e.Tags }), Optional{}).
		Finish()

	e := Entity{ID: 7, Name: "orc"}
	assert.JSONEq(t, `{"name":"orc","tags":[]}`, saveJSON(t, def, &e))

	var back Entity
	require.NoError(t, loadJSON(t, def, `{"name":"goblin","id":99}`, &back))
	assert.Equal(t, Entity{Name: "goblin"}, back)

	other := Entity{ID: 1, Name: "orc"}
	assert.Equal(t, def.InstanceHash(&e, InitHash), def.InstanceHash(&other, InitHash))
}

func TestInstanceHashSurvivesRoundTrip(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	definePoint(reg)
	sprite := defineSprite(reg)

	in := &Sprite{Name: "hero", Pos: Point{X: -3, Y: 12}, Layer: 4, Tags: []string{"player", "blue"}}

	t.Run("json", func(t *testing.T) {
		var out Sprite
		require.NoError(t, loadJSON(t, sprite, saveJSON(t, sprite, in), &out))
		assert.Equal(t, *in, out)
		assert.Equal(t, sprite.InstanceHash(in, InitHash), sprite.InstanceHash(&out, InitHash))
	})

	t.Run("msgpack", func(t *testing.T) {
		w := tree.NewWriter()
		sprite.Save(w, in)
		data, err := msgpackcodec.Encode(w.Root())
		require.NoError(t, err)
		r, err := msgpackcodec.NewReader(data)
		require.NoError(t, err)

		var out Sprite
		require.NoError(t, sprite.Load(r, &out))
		assert.Equal(t, sprite.InstanceHash(in, InitHash), sprite.InstanceHash(&out, InitHash))
	})

	changed := *in
	changed.Layer = 5
	assert.NotEqual(t, sprite.InstanceHash(in, InitHash), sprite.InstanceHash(&changed, InitHash))
	assert.NotEqual(t, sprite.InstanceHash(in, InitHash), sprite.InstanceHash(in, HashName("seed")))
}

func TestCustomSerialization(t *testing.T) {
	reg := NewRegistry()
	def := Define[Point](reg).
		Var("x", Field(func(p *Point) *int32 { return &p.X })).
		Var("y", Field(func(p *Point) *int32 { return &p.Y })).
		Serialize(
			func(r Reader, p *Point) error {
				if !r.IsArray() || r.Size() != 2 {
					return ErrMalformedInput
				}
				r.EnterIndex(0)
				p.X = r.ReadInt32()
				r.ExitElement()
				r.EnterIndex(1)
				p.Y = r.ReadInt32()
				r.ExitElement()
				return nil
			},
			func(w Writer, p *Point) {
				w.StartArray(2)
				w.WriteInt32(p.X)
				w.WriteInt32(p.Y)
				w.EndArray()
			},
		).
		InstanceHash(func(p *Point, seed Hash64) Hash64 {
			return CombineUint64(seed, uint64(uint32(p.X))<<32|uint64(uint32(p.Y)))
		}).
		Finish()

	p := Point{X: 1, Y: 2}
	assert.Equal(t, `[1,2]`, saveJSON(t, def, &p))

	var q Point
	require.NoError(t, loadJSON(t, def, `[3,4]`, &q))
	assert.Equal(t, Point{X: 3, Y: 4}, q)
	assert.Equal(t, CombineUint64(InitHash, 1<<32|2), def.InstanceHash(&p, InitHash))
}

type instanceCounter struct {
	n *int
}

func (c instanceCounter) Clone() Attribute { return c }
func (instanceCounter) ApplyClass(*Definition) {}
func (c instanceCounter) Instantiated(any, *Definition) { *c.n++ }

type finishMark struct {
	done *[]string
}

func (m finishMark) Clone() Attribute { return m }
func (finishMark) ApplyVar(Var) {}
func (m finishMark) Finish(d *Definition) { *m.done = append(*m.done, d.Name()) }

func TestAttributeHooks(t *testing.T) {
	reg := NewRegistry()
	count := 0
	var finished []string

	def := Define[Entity](reg).
		Var("name", Field(func(e *Entity) *string { return &e.Name }), finishMark{done: &finished}).
		ClassAttrs(instanceCounter{n: &count}).
		Finish()

	assert.Equal(t, []string{def.Name()}, finished)

	def.CreateDefault(nil)
	def.Duplicate(&Entity{}, nil)
	assert.Equal(t, 2, count)
}

func TestAttributeContextMismatch(t *testing.T) {
	reg := NewRegistry()

	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Entity](reg).ClassAttrs(NoCopy{})
	})
	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Entity](reg).Func("f", ConstMethod0(func(Entity) int32 { return 0 }), Range{})
	})
	requirePanicKind(t, CapabilityMismatch, func() {
		DefineEnum[Color](reg).Attrs(Hidden{})
	})
}

func TestBuilderSealedAfterFinish(t *testing.T) {
	reg := NewRegistry()
	b := Define[Point](reg).
		Var("x", Field(func(p *Point) *int32 { return &p.X }))
	b.Finish()

	requirePanicKind(t, CapabilityMismatch, func() {
		b.Var("y", Field(func(p *Point) *int32 { return &p.Y }))
	})
}

func TestAttributeLookup(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	sprite := defineSprite(reg)

	attr := sprite.VarAttr(HashName("layer"), HandleOf[Range]())
	require.NotNil(t, attr)
	assert.Equal(t, Range{Min: 0, Max: 10}, attr)
	assert.Len(t, sprite.VarAttrs(HashName("tags")), 1)
	assert.Nil(t, sprite.VarAttr(HashName("name"), HandleOf[Range]()))
	assert.True(t, sprite.HasVarAttr(HandleOf[Optional]()))
	assert.False(t, sprite.HasFuncAttr(HandleOf[Optional]()))
}

func TestFinishRejectsUnregisteredFieldType(t *testing.T) {
	type Opaque struct{ Z int }
	type Holder struct {
		Data Opaque
		Tags []Opaque
		Hide Opaque
	}

	requirePanicKind(t, LookupMiss, func() {
		Define[Holder](NewRegistry()).
			Var("data", Field(func(h *Holder) *Opaque { return &h.Data })).
			Finish()
	})
	requirePanicKind(t, LookupMiss, func() {
		Define[Holder](NewRegistry()).
			Var("tags", Vector(func(h *Holder) *[]Opaque { return &h.Tags })).
			Finish()
	})

	reg := NewRegistry()
	hidden := Define[Holder](reg).
		Var("hide", Field(func(h *Holder) *Opaque { return &h.Hide }), NoSerialize{}).
		Finish()
	assert.Equal(t, `{}`, saveJSON(t, hidden, &Holder{}))
	assert.Equal(t, InitHash, hidden.InstanceHash(&Holder{}, InitHash))

	custom := Define[Holder](NewRegistry()).
		Var("data", Field(func(h *Holder) *Opaque { return &h.Data })).
		Serialize(
			func(r Reader, h *Holder) error { return nil },
			func(w Writer, h *Holder) { w.WriteInt64(int64(h.Data.Z)) },
		).
		InstanceHash(func(h *Holder, seed Hash64) Hash64 { return CombineUint64(seed, uint64(h.Data.Z)) }).
		Finish()
	assert.Equal(t, `7`, saveJSON(t, custom, &Holder{Data: Opaque{Z: 7}}))
}
