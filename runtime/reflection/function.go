package reflection

import (
	"strings"
)

// Function is one reflected overload of a member or static function.
type Function struct {
	name     string
	owner    string
	hash     Hash64
	result   TypeRef
	args     []TypeRef
	isConst  bool
	isStatic bool
	call     func(f *Function, object any, args []any) any
	fn       any
	attrs    []Attribute
}

// FuncSpec is a function waiting to be added to a Builder[T].
type FuncSpec[T any] struct {
	build func() *Function
}

func (f *Function) Name() string { return f.name }
func (f *Function) Owner() string { return f.owner }

// Hash is the overload key: ArgHash(result, args...).
func (f *Function) Hash() Hash64 { return f.hash }
func (f *Function) Result() TypeRef { return f.result }
func (f *Function) NumArgs() int { return len(f.args) }
func (f *Function) IsConst() bool { return f.isConst }
func (f *Function) IsStatic() bool { return f.isStatic }

// Args returns the argument types in order.
func (f *Function) Args() []TypeRef {
	out := make([]TypeRef, len(f.args))
	copy(out, f.args)
	return out
}

// Attrs returns the attributes attached to this overload.
func (f *Function) Attrs() []Attribute {
	out := make([]Attribute, len(f.attrs))
	copy(out, f.attrs)
	return out
}

// Signature renders the overload as "(A, B) R".
func (f *Function) Signature() string {
	var b strings.Builder
	b.WriteString("(")
	for i, a := range f.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name)
	}
	b.WriteString(") ")
	b.WriteString(f.result.Name)
	return b.String()
}

// Call invokes the overload. object is ignored for static functions. The
// result is nil for functions without one.
func (f *Function) Call(object any, args ...any) any {
	if len(args) != len(f.args) {
		capabilityPanic(f.owner, f.name, "called with %d arguments, want %d", len(args), len(f.args))
	}
	return f.call(f, object, args)
}

// CallConst invokes a const overload; calling a mutating overload through it
// panics.
func (f *Function) CallConst(object any, args ...any) any {
	if !f.isConst && !f.isStatic {
		capabilityPanic(f.owner, f.name, "non-const function called through const path")
	}
	return f.Call(object, args...)
}

func (f *Function) rebase(cast func(any) any) *Function {
	cp := *f
	call := f.call
	cp.call = func(self *Function, o any, args []any) any { return call(self, cast(o), args) }
	cp.attrs = inheritedAttrs(f.attrs)
	return &cp
}

// TypedFunc returns the Go function behind an overload.
func TypedFunc[F any](f *Function) (F, bool) {
	fn, ok := f.fn.(F)
	return fn, ok
}

func newFunction(fn any, result TypeRef, args ...TypeRef) *Function {
	sig := make([]TypeRef, 0, len(args)+1)
	sig = append(sig, result)
	sig = append(sig, args...)
	return &Function{
		hash:   ArgHash(sig...),
		result: result,
		args:   args,
		fn:     fn,
	}
}

// argAt converts argument i. A nil argument yields the zero value of A.
func argAt[A any](f *Function, args []any, i int) A {
	if args[i] == nil {
		var zero A
		return zero
	}
	a, ok := args[i].(A)
	if !ok {
		capabilityPanic(f.owner, f.name, "argument %d is %T, want %s", i, args[i], TypeName[A]())
	}
	return a
}

func objectValue[T any](o any) T {
	switch v := o.(type) {
	case *T:
		return *v
	case T:
		return v
	}
	capabilityPanic(TypeName[T](), "", "object of type %T is not %s", o, TypeName[T]())
	var zero T
	return zero
}

func method[T any](fn any, isConst bool, call func(f *Function, o any, args []any) any, result TypeRef, args ...TypeRef) FuncSpec[T] {
	return FuncSpec[T]{build: func() *Function {
		f := newFunction(fn, result, args...)
		f.isConst = isConst
		f.call = call
		return f
	}}
}

func static[T any](fn any, call func(f *Function, args []any) any, result TypeRef, args ...TypeRef) FuncSpec[T] {
	return FuncSpec[T]{build: func() *Function {
		f := newFunction(fn, result, args...)
		f.isStatic = true
		f.call = func(self *Function, _ any, a []any) any { return call(self, a) }
		return f
	}}
}

// Method0 reflects func(*T) R.
func Method0[T, R any](fn func(*T) R) FuncSpec[T] {
	return method[T](fn, false, func(_ *Function, o any, _ []any) any {
		return fn(objectPtr[T](o))
	}, RefOf[R]())
}

// Method1 reflects func(*T, A) R.
func Method1[T, R, A any](fn func(*T, A) R) FuncSpec[T] {
	return method[T](fn, false, func(f *Function, o any, args []any) any {
		return fn(objectPtr[T](o), argAt[A](f, args, 0))
	}, RefOf[R](), RefOf[A]())
}

// Method2 reflects func(*T, A, B) R.
func Method2[T, R, A, B any](fn func(*T, A, B) R) FuncSpec[T] {
	return method[T](fn, false, func(f *Function, o any, args []any) any {
		return fn(objectPtr[T](o), argAt[A](f, args, 0), argAt[B](f, args, 1))
	}, RefOf[R](), RefOf[A](), RefOf[B]())
}

// Method3 reflects func(*T, A, B, C) R.
func Method3[T, R, A, B, C any](fn func(*T, A, B, C) R) FuncSpec[T] {
	return method[T](fn, false, func(f *Function, o any, args []any) any {
		return fn(objectPtr[T](o), argAt[A](f, args, 0), argAt[B](f, args, 1), argAt[C](f, args, 2))
	}, RefOf[R](), RefOf[A](), RefOf[B](), RefOf[C]())
}

// ConstMethod0 reflects func(T) R. The object may be T or *T.
func ConstMethod0[T, R any](fn func(T) R) FuncSpec[T] {
	return method[T](fn, true, func(_ *Function, o any, _ []any) any {
		return fn(objectValue[T](o))
	}, RefOf[R]())
}

// ConstMethod1 reflects func(T, A) R.
func ConstMethod1[T, R, A any](fn func(T, A) R) FuncSpec[T] {
	return method[T](fn, true, func(f *Function, o any, args []any) any {
		return fn(objectValue[T](o), argAt[A](f, args, 0))
	}, RefOf[R](), RefOf[A]())
}

// ConstMethod2 reflects func(T, A, B) R.
func ConstMethod2[T, R, A, B any](fn func(T, A, B) R) FuncSpec[T] {
	return method[T](fn, true, func(f *Function, o any, args []any) any {
		return fn(objectValue[T](o), argAt[A](f, args, 0), argAt[B](f, args, 1))
	}, RefOf[R](), RefOf[A](), RefOf[B]())
}

// ConstMethod3 reflects func(T, A, B, C) R.
func ConstMethod3[T, R, A, B, C any](fn func(T, A, B, C) R) FuncSpec[T] {
	return method[T](fn, true, func(f *Function, o any, args []any) any {
		return fn(objectValue[T](o), argAt[A](f, args, 0), argAt[B](f, args, 1), argAt[C](f, args, 2))
	}, RefOf[R](), RefOf[A](), RefOf[B](), RefOf[C]())
}

// Action0 reflects func(*T).
func Action0[T any](fn func(*T)) FuncSpec[T] {
	return method[T](fn, false, func(_ *Function, o any, _ []any) any {
		fn(objectPtr[T](o))
		return nil
	}, RefOf[Void]())
}

// Action1 reflects func(*T, A).
func Action1[T, A any](fn func(*T, A)) FuncSpec[T] {
	return method[T](fn, false, func(f *Function, o any, args []any) any {
		fn(objectPtr[T](o), argAt[A](f, args, 0))
		return nil
	}, RefOf[Void](), RefOf[A]())
}

// Action2 reflects func(*T, A, B).
func Action2[T, A, B any](fn func(*T, A, B)) FuncSpec[T] {
	return method[T](fn, false, func(f *Function, o any, args []any) any {
		fn(objectPtr[T](o), argAt[A](f, args, 0), argAt[B](f, args, 1))
		return nil
	}, RefOf[Void](), RefOf[A](), RefOf[B]())
}

// Static0 reflects a static func() R on T.
func Static0[T, R any](fn func() R) FuncSpec[T] {
	return static[T](fn, func(*Function, []any) any { return fn() }, RefOf[R]())
}

// Static1 reflects a static func(A) R on T.
func Static1[T, R, A any](fn func(A) R) FuncSpec[T] {
	return static[T](fn, func(f *Function, args []any) any {
		return fn(argAt[A](f, args, 0))
	}, RefOf[R](), RefOf[A]())
}

// Static2 reflects a static func(A, B) R on T.
func Static2[T, R, A, B any](fn func(A, B) R) FuncSpec[T] {
	return static[T](fn, func(f *Function, args []any) any {
		return fn(argAt[A](f, args, 0), argAt[B](f, args, 1))
	}, RefOf[R](), RefOf[A](), RefOf[B]())
}

// Static3 reflects a static func(A, B, C) R on T.
func Static3[T, R, A, B, C any](fn func(A, B, C) R) FuncSpec[T] {
	return static[T](fn, func(f *Function, args []any) any {
		return fn(argAt[A](f, args, 0), argAt[B](f, args, 1), argAt[C](f, args, 2))
	}, RefOf[R](), RefOf[A](), RefOf[B](), RefOf[C]())
}

// StaticAction0 reflects a static func() on T.
func StaticAction0[T any](fn func()) FuncSpec[T] {
	return static[T](fn, func(*Function, []any) any {
		fn()
		return nil
	}, RefOf[Void]())
}

// StaticAction1 reflects a static func(A) on T.
func StaticAction1[T, A any](fn func(A)) FuncSpec[T] {
	return static[T](fn, func(f *Function, args []any) any {
		fn(argAt[A](f, args, 0))
		return nil
	}, RefOf[Void](), RefOf[A]())
}
