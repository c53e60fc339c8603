package reflection

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type Label struct {
	Text string
}

func (l *Label) Draw() string { return "label:" + l.Text }

func defineLabel(reg *Registry) *Definition {
	return Define[Label](reg).
		Base(BaseOf(func(l *Label) Drawable { return l })).
		Var("text", Field(func(l *Label) *string { return &l.Text })).
		Finish()
}

func containsDef(bucket []*Definition, d *Definition) bool {
	return slices.Contains(bucket, d)
}

func TestPointRoundTrip(t *testing.T) {
	reg := NewRegistry()
	def := definePoint(reg)

	assert.Equal(t, 2, def.NumVars())
	assert.Equal(t, "x", def.VarName(0))
	assert.Equal(t, "y", def.VarName(1))

	var p Point
	def.Var(HashName("x")).SetData(&p, int32(5))
	SetData(def.VarByName("y"), &p, int32(7))
	assert.Equal(t, Point{X: 5, Y: 7}, p)

	assert.JSONEq(t, `{"x":5,"y":7}`, saveJSON(t, def, &p))

	var q Point
	require.NoError(t, loadJSON(t, def, `{"x":5,"y":7}`, &q))
	assert.Equal(t, p, q)
}

func TestRegisterIdenticalCopyReturnsExisting(t *testing.T) {
	reg := NewRegistry()
	first := definePoint(reg)
	second := definePoint(reg)

	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.Len())
}

func TestRegisterShapeMismatchPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	reg := NewRegistry(WithLogger(zap.New(core)))
	definePoint(reg)

	requirePanicKind(t, SchemaDrift, func() {
		Define[Point](reg).
			Var("x", Field(func(p *Point) *int32 { return &p.X })).
			Finish()
	})
	assert.Equal(t, 1, logs.FilterMessage("structural version mismatch").Len())
}

func TestVersionChangesWithShape(t *testing.T) {
	a := definePoint(NewRegistry())
	b := Define[Point](NewRegistry()).
		Var("x", Field(func(p *Point) *int32 { return &p.X })).
		Var("y", Field(func(p *Point) *int32 { return &p.Y }), Optional{}).
		Finish()
	c := Define[Point](NewRegistry()).
		Var("x", Field(func(p *Point) *int32 { return &p.X })).
		Var("y", Field(func(p *Point) *int32 { return &p.Y })).
		Version(2).
		Finish()

	assert.Equal(t, a.Version(), definePoint(NewRegistry()).Version())
	assert.NotEqual(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
	assert.Equal(t, uint32(2), c.UserVersion())
}

func TestBuiltinsResolveButAreNotListed(t *testing.T) {
	reg := NewRegistry()

	d, ok := reg.Reflection(HandleOf[int32]())
	require.True(t, ok)
	assert.True(t, d.IsBuiltIn())
	assert.Empty(t, reg.All())
	assert.Equal(t, 0, reg.Len())

	_, ok = reg.Reflection(HashName("no.such.Type"))
	assert.False(t, ok)
}

func TestDrawableBucket(t *testing.T) {
	reg := NewRegistry()
	drawable := defineDrawable(reg)
	reg.RegisterTypeBucket(drawable.Handle())

	bucket, ok := reg.TypeBucket(drawable.Handle())
	require.True(t, ok)
	assert.Empty(t, bucket)

	sprite := defineSprite(reg)
	bucket, _ = reg.TypeBucket(drawable.Handle())
	assert.Equal(t, []*Definition{sprite}, bucket)

	unbucketed, _ := reg.TypeBucket(UnbucketedBucket)
	assert.True(t, containsDef(unbucketed, drawable))
	assert.False(t, containsDef(unbucketed, sprite))

	s := &Sprite{Name: "hero"}
	draw := sprite.FuncByName("Draw", SignatureOf0[string]())
	require.NotNil(t, draw)
	assert.Equal(t, "sprite:hero", draw.CallConst(s))
}

func TestBucketCreatedLateScansExistingTypes(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	sprite := defineSprite(reg)

	unbucketed, _ := reg.TypeBucket(UnbucketedBucket)
	require.True(t, containsDef(unbucketed, sprite))

	reg.RegisterTypeBucket(HandleOf[Drawable]())
	reg.RegisterTypeBucket(HandleOf[Drawable]())

	bucket, _ := reg.TypeBucket(HandleOf[Drawable]())
	assert.Equal(t, []*Definition{sprite}, bucket)
	unbucketed, _ = reg.TypeBucket(UnbucketedBucket)
	assert.False(t, containsDef(unbucketed, sprite))
	assert.Equal(t, []Hash64{HandleOf[Drawable]()}, reg.TypeBuckets())
}

func TestBucketsAgreeWithHasInterface(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	reg.RegisterTypeBucket(HandleOf[Drawable]())
	reg.RegisterTypeBucket(HandleOf[Point]())
	definePoint(reg)
	defineSprite(reg)
	defineLabel(reg)

	all := reg.All()
	require.Len(t, all, 4)
	assert.True(t, slices.IsSortedFunc(all, compareHandles))

	everything, _ := reg.TypeBucket(AllTypesBucket)
	assert.Equal(t, all, everything)

	for _, key := range reg.TypeBuckets() {
		bucket, ok := reg.TypeBucket(key)
		require.True(t, ok)
		assert.True(t, slices.IsSortedFunc(bucket, compareHandles))
		for _, d := range all {
			want := d.Handle() != key && d.HasInterface(key)
			assert.Equal(t, want, containsDef(bucket, d), "%s in bucket %s", d.Name(), key)
		}
	}

	unbucketed, _ := reg.TypeBucket(UnbucketedBucket)
	for _, d := range all {
		inSome := false
		for _, key := range reg.TypeBuckets() {
			bucket, _ := reg.TypeBucket(key)
			inSome = inSome || containsDef(bucket, d)
		}
		assert.Equal(t, !inSome, containsDef(unbucketed, d), d.Name())
	}
}

func TestTypeBucketMissing(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.TypeBucket(HandleOf[Drawable]())
	assert.False(t, ok)
	assert.False(t, reg.HasTypeBucket(HandleOf[Drawable]()))
	assert.True(t, reg.HasTypeBucket(AllTypesBucket))
}

func TestAttributeBuckets(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	sprite := defineSprite(reg)
	point := definePoint(reg)

	reg.RegisterAttributeBucket(HandleOf[Range]())
	bucket, ok := reg.AttributeBucket(HandleOf[Range]())
	require.True(t, ok)
	assert.Equal(t, []*Definition{sprite}, bucket)

	type Gauge struct{ Level float32 }
	gauge := Define[Gauge](reg).
		Var("level", Field(func(g *Gauge) *float32 { return &g.Level }), Range{Min: 0, Max: 1}).
		Finish()
	bucket, _ = reg.AttributeBucket(HandleOf[Range]())
	assert.True(t, containsDef(bucket, gauge))
	assert.False(t, containsDef(bucket, point))
	assert.ElementsMatch(t, bucket, reg.ReflectionWithAttribute(HandleOf[Range]()))

	_, ok = reg.AttributeBucket(HandleOf[Optional]())
	assert.False(t, ok)
	assert.Equal(t, []*Definition{sprite}, reg.ReflectionWithAttribute(HandleOf[Optional]()))
}

type Marker interface {
	Attribute
	IsMarker()
}

type EditorOnly struct{}

func (EditorOnly) Clone() Attribute { return EditorOnly{} }
func (EditorOnly) ApplyClass(*Definition) {}
func (EditorOnly) IsMarker() {}

type Tool struct {
	Name string
}

func TestAttributeMatchesThroughAncestor(t *testing.T) {
	reg := NewRegistry()
	Define[Marker](reg).Finish()
	Define[EditorOnly](reg).
		Base(BaseOf(func(e *EditorOnly) Marker { return e })).
		Finish()
	tool := Define[Tool](reg).
		ClassAttrs(EditorOnly{}).
		Finish()

	assert.True(t, tool.HasClassAttr(HandleOf[EditorOnly]()))
	assert.True(t, tool.HasClassAttr(HandleOf[Marker]()))
	assert.IsType(t, EditorOnly{}, tool.ClassAttr(HandleOf[Marker]()))

	reg.RegisterAttributeBucket(HandleOf[Marker]())
	bucket, _ := reg.AttributeBucket(HandleOf[Marker]())
	assert.Equal(t, []*Definition{tool}, bucket)
}

func TestDestroyKeepsBuiltins(t *testing.T) {
	reg := NewRegistry()
	definePoint(reg)
	defineColor(reg)
	reg.RegisterTypeBucket(HandleOf[Drawable]())

	reg.Destroy()

	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Enums())
	assert.False(t, reg.HasTypeBucket(HandleOf[Drawable]()))
	_, ok := reg.Reflection(HandleOf[string]())
	assert.True(t, ok)

	definePoint(reg)
	assert.Equal(t, 1, reg.Len())
}

func TestReflectionByName(t *testing.T) {
	reg := NewRegistry()
	point := definePoint(reg)

	d, ok := reg.ReflectionByName(TypeName[Point]())
	require.True(t, ok)
	assert.Same(t, point, d)

	_, ok = reg.ReflectionByName("Point")
	assert.False(t, ok)
}

func TestReflectionWithInterfaceLeavesBucketsAlone(t *testing.T) {
	reg := NewRegistry()
	defineDrawable(reg)
	sprite := defineSprite(reg)
	label := defineLabel(reg)

	want := []*Definition{sprite, label}
	slices.SortFunc(want, compareHandles)

	assert.Equal(t, want, reg.ReflectionWithInterface(HandleOf[Drawable]()))
	assert.False(t, reg.HasTypeBucket(HandleOf[Drawable]()))
	assert.Empty(t, reg.ReflectionWithInterface(HandleOf[Point]()))

	reg.RegisterTypeBucket(HandleOf[Drawable]())
	bucket, _ := reg.TypeBucket(HandleOf[Drawable]())
	assert.Equal(t, bucket, reg.ReflectionWithInterface(HandleOf[Drawable]()))
}
