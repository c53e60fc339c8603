package reflection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Calc struct {
	Acc int32
}

func defineCalc(reg *Registry) *Definition {
	return Define[Calc](reg).
		Func("add", ConstMethod1(func(c Calc, v int32) int32 { return c.Acc + v })).
		Func("add", ConstMethod1(func(c Calc, v float64) float64 { return float64(c.Acc) + v })).
		Func("accumulate", Action1(func(c *Calc, v int32) { c.Acc += v })).
		Func("reset", Method0(func(c *Calc) int32 { old := c.Acc; c.Acc = 0; return old })).
		StaticFunc("make", Static1[Calc](func(v int32) Calc { return Calc{Acc: v} })).
		StaticFunc("zero", Static0[Calc](func() Calc { return Calc{} })).
		Finish()
}

func TestOverloadResolution(t *testing.T) {
	reg := NewRegistry()
	def := defineCalc(reg)
	c := &Calc{Acc: 10}

	addInt := def.FuncByName("add", SignatureOf1[int32, int32]())
	addFloat := def.FuncByName("add", SignatureOf1[float64, float64]())
	require.NotNil(t, addInt)
	require.NotNil(t, addFloat)
	assert.NotEqual(t, addInt.Hash(), addFloat.Hash())

	assert.Equal(t, int32(15), addInt.CallConst(c, int32(5)))
	assert.Equal(t, 10.5, addFloat.CallConst(c, 0.5))

	assert.Nil(t, def.FuncByName("add", SignatureOf1[string, string]()))
	assert.Nil(t, def.FuncByName("sub", SignatureOf1[int32, int32]()))
	assert.Same(t, addInt, def.Func(HashName("add"), SignatureOf1[int32, int32]()))

	require.Equal(t, 3, def.NumFuncs())
	assert.Equal(t, "add", def.FuncName(0))
	assert.Equal(t, 2, def.NumFuncOverloads(0))
	assert.Same(t, addInt, def.FuncAt(0, 0))
	assert.Same(t, addFloat, def.FuncAt(0, 1))
}

func TestOverloadLookupIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		def := defineCalc(NewRegistry())
		f := def.FuncByName("add", SignatureOf1[float64, float64]())
		require.NotNil(t, f)
		assert.Equal(t, "(float64) float64", f.Signature())
	}
}

func TestMemberAndConstCalls(t *testing.T) {
	reg := NewRegistry()
	def := defineCalc(reg)
	c := &Calc{Acc: 1}

	acc := def.FuncByName("accumulate", SignatureOf1[Void, int32]())
	require.NotNil(t, acc)
	assert.Nil(t, acc.Call(c, int32(4)))
	assert.Equal(t, int32(5), c.Acc)
	assert.False(t, acc.IsConst())

	reset := def.FuncByName("reset", SignatureOf0[int32]())
	require.NotNil(t, reset)
	requirePanicKind(t, CapabilityMismatch, func() { reset.CallConst(c) })
	assert.Equal(t, int32(5), reset.Call(c))
	assert.Equal(t, int32(0), c.Acc)

	add := def.FuncByName("add", SignatureOf1[int32, int32]())
	requirePanicKind(t, CapabilityMismatch, func() { add.Call(c) })
	requirePanicKind(t, CapabilityMismatch, func() { add.Call(c, "x") })
	assert.Equal(t, int32(0), add.Call(c, nil), "nil argument is the zero value")
}

func TestStaticFunctions(t *testing.T) {
	reg := NewRegistry()
	def := defineCalc(reg)

	mk := def.StaticFuncByName("make", SignatureOf1[Calc, int32]())
	require.NotNil(t, mk)
	assert.True(t, mk.IsStatic())
	assert.Equal(t, Calc{Acc: 3}, mk.Call(nil, int32(3)))
	assert.Equal(t, Calc{Acc: 3}, mk.CallConst(nil, int32(3)))

	assert.Equal(t, 2, def.NumStaticFuncs())
	assert.Nil(t, def.FuncByName("make", SignatureOf1[Calc, int32]()))

	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Calc](NewRegistry()).Func("make", Static0[Calc](func() Calc { return Calc{} }))
	})
	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Calc](NewRegistry()).StaticFunc("get", ConstMethod0(func(c Calc) int32 { return c.Acc }))
	})
}

func TestDuplicateOverloadPanics(t *testing.T) {
	requirePanicKind(t, CapabilityMismatch, func() {
		Define[Calc](NewRegistry()).
			Func("get", ConstMethod0(func(c Calc) int32 { return c.Acc })).
			Func("get", ConstMethod0(func(c Calc) int32 { return -c.Acc }))
	})
}

func TestTypedFunc(t *testing.T) {
	reg := NewRegistry()
	def := defineCalc(reg)

	f := def.FuncByName("add", SignatureOf1[int32, int32]())
	fn, ok := TypedFunc[func(Calc, int32) int32](f)
	require.True(t, ok)
	assert.Equal(t, int32(7), fn(Calc{Acc: 3}, 4))

	_, ok = TypedFunc[func(Calc) int32](f)
	assert.False(t, ok)
}

func TestFunctionMetadata(t *testing.T) {
	reg := NewRegistry()
	def := Define[Calc](reg).
		Func("scale", ConstMethod2(func(c Calc, by int32, clamp bool) int32 { return c.Acc * by }),
			DisplayName{Name: "Scale"}).
		Finish()

	f := def.FuncByName("scale", SignatureOf2[int32, int32, bool]())
	require.NotNil(t, f)
	assert.Equal(t, "scale", f.Name())
	assert.Equal(t, def.Name(), f.Owner())
	assert.Equal(t, 2, f.NumArgs())
	assert.Equal(t, []TypeRef{RefOf[int32](), RefOf[bool]()}, f.Args())
	assert.Equal(t, RefOf[int32](), f.Result())
	assert.Equal(t, "(int32, bool) int32", f.Signature())
	assert.Len(t, f.Attrs(), 1)
	assert.True(t, def.HasFuncAttr(HandleOf[DisplayName]()))
}

type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }

func TestOperators(t *testing.T) {
	reg := NewRegistry()
	def := Define[Vec2](reg).
		OpBinary(OpAdd, func(a, b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }).
		OpUnary(OpMinus, func(a Vec2) Vec2 { return Vec2{-a.X, -a.Y} }).
		OpEquality(func(a, b Vec2) bool { return a == b }).
		OpComparison(func(a, b Vec2) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			default:
				return 0
			}
		}).
		OpIncrement(func(v *Vec2) { v.X++ }).
		Op(OpToString, StringerOp[Vec2]()).
		Finish()

	a := Vec2{1, 2}
	b := Vec2{3, 4}

	add := def.FuncByName(OpAdd, SignatureOf1[Vec2, Vec2]())
	require.NotNil(t, add)
	assert.Equal(t, Vec2{4, 6}, add.CallConst(&a, b))

	neg := def.FuncByName(OpMinus, SignatureOf0[Vec2]())
	assert.Equal(t, Vec2{-1, -2}, neg.CallConst(a))

	eq, ok := Equal(def, &a, Vec2{1, 2})
	require.True(t, ok)
	assert.True(t, eq)
	eq, _ = Equal(def, &a, b)
	assert.False(t, eq)

	less := def.FuncByName(OpLess, SignatureOf1[bool, Vec2]())
	assert.Equal(t, true, less.CallConst(&a, b))

	post := def.FuncByName(OpPostInc, SignatureOf0[Vec2]())
	assert.Equal(t, Vec2{1, 2}, post.Call(&a))
	assert.Equal(t, Vec2{2, 2}, a)

	s, ok := ToString(def, &a)
	require.True(t, ok)
	assert.Equal(t, "(2, 2)", s)

	_, ok = ToString(definePoint(reg), &Point{})
	assert.False(t, ok)
}

func TestEqualityFromComparable(t *testing.T) {
	reg := NewRegistry()
	def := Define[Point](reg).
		Var("x", Field(func(p *Point) *int32 { return &p.X })).
		Func(OpEqual, EqualOp[Point]()).
		Func(OpNotEqual, NotEqualOp[Point]()).
		Finish()

	eq, ok := Equal(def, &Point{1, 2}, Point{1, 2})
	require.True(t, ok)
	assert.True(t, eq)

	ne := def.FuncByName(OpNotEqual, SignatureOf1[bool, Point]())
	assert.Equal(t, true, ne.CallConst(Point{1, 2}, Point{2, 1}))
}

type Score int32

func TestCompareOpForOrderedTypes(t *testing.T) {
	reg := NewRegistry()
	def := Define[Score](reg).
		Op(OpCompare, CompareOp[Score]()).
		Finish()

	cmpFn := def.FuncByName(OpCompare, SignatureOf1[int, Score]())
	require.NotNil(t, cmpFn)
	assert.Equal(t, -1, cmpFn.CallConst(Score(1), Score(2)))
	assert.Equal(t, 0, cmpFn.CallConst(Score(2), Score(2)))
	assert.Equal(t, 1, cmpFn.CallConst(Score(3), Score(2)))
}
