package reflection

import (
	"cmp"
	"fmt"
)

// Reflected operator names. Operators are registered as ordinary functions
// under these names so generic code can invoke them through Func.
const (
	OpAdd       = "__add"
	OpSub       = "__sub"
	OpMul       = "__mul"
	OpDiv       = "__div"
	OpMod       = "__mod"
	OpBitAnd    = "__band"
	OpBitOr     = "__bor"
	OpBitXor    = "__bxor"
	OpBitNot    = "__bnot"
	OpShiftL    = "__shl"
	OpShiftR    = "__shr"
	OpAnd       = "__and"
	OpOr        = "__or"
	OpEqual     = "__eq"
	OpNotEqual  = "__neq"
	OpLess      = "__lt"
	OpGreater   = "__gt"
	OpLessEq    = "__le"
	OpGreaterEq = "__ge"
	OpMinus     = "__unm"
	OpPlus      = "__unp"
	OpCall      = "__call"
	OpIndex     = "__idx"
	OpToString  = "__tostring"
	OpCompare   = "__comp"
	OpPreInc    = "__preinc"
	OpPostInc   = "__postinc"
	OpPreDec    = "__predec"
	OpPostDec   = "__postdec"

	OpAssign       = "__assign"
	OpAddAssign    = "__add_assign"
	OpSubAssign    = "__sub_assign"
	OpMulAssign    = "__mul_assign"
	OpDivAssign    = "__div_assign"
	OpModAssign    = "__mod_assign"
	OpBitAndAssign = "__band_assign"
	OpBitOrAssign  = "__bor_assign"
	OpBitXorAssign = "__bxor_assign"
	OpShiftLAssign = "__shl_assign"
	OpShiftRAssign = "__shr_assign"
)

// EqualOp reflects == for a comparable T.
func EqualOp[T comparable]() FuncSpec[T] {
	return ConstMethod1(func(a T, b T) bool { return a == b })
}

// NotEqualOp reflects != for a comparable T.
func NotEqualOp[T comparable]() FuncSpec[T] {
	return ConstMethod1(func(a T, b T) bool { return a != b })
}

// CompareOp reflects a three-way comparison for an ordered T, suitable for
// Op(OpCompare, ...).
func CompareOp[T cmp.Ordered]() FuncSpec[T] {
	return ConstMethod1(func(a T, b T) int { return cmp.Compare(a, b) })
}

// StringerOp reflects fmt.Stringer as the to-string operator.
func StringerOp[T fmt.Stringer]() FuncSpec[T] {
	return ConstMethod0(func(t T) string { return t.String() })
}

// Op registers a reflected operator under one of the Op* names.
func (b *Builder[T]) Op(name string, spec FuncSpec[T], attrs ...Attribute) *Builder[T] {
	return b.Func(name, spec, attrs...)
}

// OpBinary registers a const binary operator such as OpAdd or OpMul.
func (b *Builder[T]) OpBinary(name string, fn func(a, b T) T) *Builder[T] {
	return b.Func(name, ConstMethod1(fn))
}

// OpUnary registers a const unary operator such as OpMinus.
func (b *Builder[T]) OpUnary(name string, fn func(T) T) *Builder[T] {
	return b.Func(name, ConstMethod0(fn))
}

// OpComparison registers OpCompare and the four ordering operators from a
// three-way comparison.
func (b *Builder[T]) OpComparison(compare func(a, b T) int) *Builder[T] {
	return b.
		Func(OpCompare, ConstMethod1(compare)).
		Func(OpLess, ConstMethod1(func(x, y T) bool { return compare(x, y) < 0 })).
		Func(OpGreater, ConstMethod1(func(x, y T) bool { return compare(x, y) > 0 })).
		Func(OpLessEq, ConstMethod1(func(x, y T) bool { return compare(x, y) <= 0 })).
		Func(OpGreaterEq, ConstMethod1(func(x, y T) bool { return compare(x, y) >= 0 }))
}

// OpEquality registers OpEqual and OpNotEqual from an equality function.
func (b *Builder[T]) OpEquality(equal func(a, b T) bool) *Builder[T] {
	return b.
		Func(OpEqual, ConstMethod1(equal)).
		Func(OpNotEqual, ConstMethod1(func(x, y T) bool { return !equal(x, y) }))
}

// OpToString registers the to-string operator.
func (b *Builder[T]) OpToString(fn func(T) string) *Builder[T] {
	return b.Func(OpToString, ConstMethod0(fn))
}

// OpIndexOf builds an index operator for Op(OpIndex, ...).
func OpIndexOf[T, K, V any](fn func(T, K) V) FuncSpec[T] {
	return ConstMethod1(fn)
}

// OpIncrement registers the pre- and post-increment operators from a
// mutating step.
func (b *Builder[T]) OpIncrement(step func(*T)) *Builder[T] {
	return b.
		Func(OpPreInc, Method0(func(t *T) T { step(t); return *t })).
		Func(OpPostInc, Method0(func(t *T) T { old := *t; step(t); return old }))
}

// OpDecrement registers the pre- and post-decrement operators.
func (b *Builder[T]) OpDecrement(step func(*T)) *Builder[T] {
	return b.
		Func(OpPreDec, Method0(func(t *T) T { step(t); return *t })).
		Func(OpPostDec, Method0(func(t *T) T { old := *t; step(t); return old }))
}

// Equal invokes the reflected equality operator of d. b must be a value of
// the type, not a pointer.
func Equal(d *Definition, a, b any) (bool, bool) {
	f := d.FuncByName(OpEqual, ArgHash(RefOf[bool](), d.Ref()))
	if f == nil {
		return false, false
	}
	eq, ok := f.CallConst(a, b).(bool)
	return eq, ok
}

// ToString invokes the reflected to-string operator of d.
func ToString(d *Definition, object any) (string, bool) {
	f := d.FuncByName(OpToString, SignatureOf0[string]())
	if f == nil {
		return "", false
	}
	s, ok := f.CallConst(object).(string)
	return s, ok
}
