package reflection

import (
	"reflect"
)

// Builder populates the Definition of T. It is used once per type during
// single-threaded initialization and is sealed by Finish.
//
//	reflection.Define[Point](reg).
//		Var("x", reflection.Field(func(p *Point) *int32 { return &p.X })).
//		Var("y", reflection.Field(func(p *Point) *int32 { return &p.Y })).
//		Finish()
type Builder[T any] struct {
	reg      *Registry
	def      *Definition
	finished bool
}

// BaseSpec is an ancestor of T together with its upcast.
type BaseSpec[T any] struct {
	ref  TypeRef
	cast func(any) any
}

// CtorSpec is a factory for T.
type CtorSpec[T any] struct {
	args  []TypeRef
	build func(args []any) any
	fn    any
}

// Define starts the definition of T. Types without an explicit Ctor get an
// argument-less factory producing the zero value; interface types get none.
func Define[T any](reg *Registry) *Builder[T] {
	d := newDefinition(reg, RefOf[T]())
	d.isInterface = reflect.TypeFor[T]().Kind() == reflect.Interface

	if !d.isInterface {
		d.construct = func() any { return new(T) }
		d.assign = func(dst, src any) { *objectPtr[T](dst) = *objectPtr[T](src) }
		d.ctors[ArgsOf0()] = &Constructor{
			hash:  ArgsOf0(),
			build: func([]any) any { return new(T) },
		}
		d.ctorOrder = append(d.ctorOrder, ArgsOf0())
	}

	return &Builder[T]{reg: reg, def: d}
}

// BaseOf records B as an ancestor of T reachable through cast. B is either a
// pointer to an embedded struct or an interface T implements.
func BaseOf[T, B any](cast func(*T) B) BaseSpec[T] {
	return BaseSpec[T]{
		ref:  baseRefOf[B](),
		cast: func(o any) any { return cast(objectPtr[T](o)) },
	}
}

// Ctor0 registers fn as the argument-less factory.
func Ctor0[T any](fn func() *T) CtorSpec[T] {
	return CtorSpec[T]{fn: fn, build: func([]any) any { return fn() }}
}

// Ctor1 registers a factory taking (A).
func Ctor1[T, A any](fn func(A) *T) CtorSpec[T] {
	return CtorSpec[T]{
		fn:    fn,
		args:  []TypeRef{RefOf[A]()},
		build: func(args []any) any { return fn(ctorArg[A](args, 0)) },
	}
}

// Ctor2 registers a factory taking (A, B).
func Ctor2[T, A, B any](fn func(A, B) *T) CtorSpec[T] {
	return CtorSpec[T]{
		fn:   fn,
		args: []TypeRef{RefOf[A](), RefOf[B]()},
		build: func(args []any) any {
			return fn(ctorArg[A](args, 0), ctorArg[B](args, 1))
		},
	}
}

// Ctor3 registers a factory taking (A, B, C).
func Ctor3[T, A, B, C any](fn func(A, B, C) *T) CtorSpec[T] {
	return CtorSpec[T]{
		fn:   fn,
		args: []TypeRef{RefOf[A](), RefOf[B](), RefOf[C]()},
		build: func(args []any) any {
			return fn(ctorArg[A](args, 0), ctorArg[B](args, 1), ctorArg[C](args, 2))
		},
	}
}

func ctorArg[A any](args []any, i int) A {
	if args[i] == nil {
		var zero A
		return zero
	}
	a, ok := args[i].(A)
	if !ok {
		capabilityPanic("", "", "constructor argument %d is %T, want %s", i, args[i], TypeName[A]())
	}
	return a
}

func (b *Builder[T]) check() {
	if b.finished {
		capabilityPanic(b.def.ref.Name, "", "builder used after Finish")
	}
}

// Base records an ancestor. When the ancestor is already registered its
// fields, functions, ancestors and inheritable class attributes are pulled
// into T, reached through the upcast.
func (b *Builder[T]) Base(spec BaseSpec[T]) *Builder[T] {
	b.check()
	d := b.def
	if _, dup := d.bases[spec.ref.Handle]; dup {
		return b
	}
	d.bases[spec.ref.Handle] = spec.cast
	d.baseOrder = append(d.baseOrder, spec.ref)

	base, ok := b.reg.Reflection(spec.ref.Handle)
	if !ok {
		return b
	}

	cast := spec.cast
	for _, ref := range base.baseOrder {
		if _, dup := d.bases[ref.Handle]; dup {
			continue
		}
		upper := base.bases[ref.Handle]
		d.bases[ref.Handle] = func(o any) any { return upper(cast(o)) }
		d.baseOrder = append(d.baseOrder, ref)
	}

	for _, e := range base.vars {
		h := HashName(e.v.Name())
		if _, dup := d.varIndex[h]; dup {
			continue
		}
		d.varIndex[h] = len(d.vars)
		d.vars = append(d.vars, varEntry{v: e.v.rebase(cast), attrs: inheritedAttrs(e.attrs)})
	}

	inheritFuncs(&d.funcs, &base.funcs, cast)
	inheritFuncs(&d.staticFuncs, &base.staticFuncs, nil)
	d.attrs = append(d.attrs, inheritedAttrs(base.attrs)...)
	return b
}

func inheritFuncs(dst, src *overloadTable, cast func(any) any) {
	for _, s := range src.sets {
		for _, f := range s.order {
			if dst.has(s.name, f.hash) {
				continue
			}
			if cast != nil {
				dst.add(s.name, f.rebase(cast))
			} else {
				cp := *f
				cp.attrs = inheritedAttrs(f.attrs)
				dst.add(s.name, &cp)
			}
		}
	}
}

// Ctor registers a factory keyed by the hash of its argument types.
func (b *Builder[T]) Ctor(spec CtorSpec[T]) *Builder[T] {
	b.check()
	d := b.def
	h := ArgHash(spec.args...)
	if _, exists := d.ctors[h]; !exists {
		d.ctorOrder = append(d.ctorOrder, h)
	}
	d.ctors[h] = &Constructor{hash: h, args: spec.args, build: spec.build}
	return b
}

// Var adds a field. Names are unique per type; a field inherited from a base
// is replaced by a redeclaration.
func (b *Builder[T]) Var(name string, spec VarSpec[T], attrs ...Attribute) *Builder[T] {
	b.check()
	d := b.def
	v := spec.build()
	v.common().bind(d.ref.Name, name, b.reg)

	owned := cloneAttrs(attrs)
	for _, a := range owned {
		requireVarAttr(d.ref.Name, name, a).ApplyVar(v)
		if val, ok := a.(Validator); ok {
			v.common().validators = append(v.common().validators, val)
		}
	}

	h := HashName(name)
	if i, ok := d.varIndex[h]; ok {
		if d.vars[i].v.Owner() == d.ref.Name {
			capabilityPanic(d.ref.Name, name, "duplicate field")
		}
		d.vars[i] = varEntry{v: v, attrs: owned}
		return b
	}
	d.varIndex[h] = len(d.vars)
	d.vars = append(d.vars, varEntry{v: v, attrs: owned})
	return b
}

// Func adds a member function overload.
func (b *Builder[T]) Func(name string, spec FuncSpec[T], attrs ...Attribute) *Builder[T] {
	b.check()
	f := b.function(name, spec, attrs)
	if f.isStatic {
		capabilityPanic(b.def.ref.Name, name, "static function registered as member")
	}
	b.addOverload(&b.def.funcs, name, f)
	return b
}

// StaticFunc adds a static function overload.
func (b *Builder[T]) StaticFunc(name string, spec FuncSpec[T], attrs ...Attribute) *Builder[T] {
	b.check()
	f := b.function(name, spec, attrs)
	if !f.isStatic {
		capabilityPanic(b.def.ref.Name, name, "member function registered as static")
	}
	b.addOverload(&b.def.staticFuncs, name, f)
	return b
}

func (b *Builder[T]) function(name string, spec FuncSpec[T], attrs []Attribute) *Function {
	f := spec.build()
	f.name = name
	f.owner = b.def.ref.Name
	f.attrs = cloneAttrs(attrs)
	for _, a := range f.attrs {
		requireFuncAttr(f.owner, name, a).ApplyFunc(f)
	}
	return f
}

func (b *Builder[T]) addOverload(t *overloadTable, name string, f *Function) {
	s := t.set(name)
	if existing, ok := s.byHash[f.hash]; ok {
		if existing.owner == f.owner {
			capabilityPanic(f.owner, name, "duplicate overload %s", f.Signature())
		}
		for i, o := range s.order {
			if o == existing {
				s.order[i] = f
			}
		}
		s.byHash[f.hash] = f
		return
	}
	t.add(name, f)
}

// ClassAttrs attaches type-level attributes.
func (b *Builder[T]) ClassAttrs(attrs ...Attribute) *Builder[T] {
	b.check()
	for _, a := range cloneAttrs(attrs) {
		requireClassAttr(b.def.ref.Name, a).ApplyClass(b.def)
		b.def.attrs = append(b.def.attrs, a)
	}
	return b
}

// Version sets the user version folded into the structural version.
func (b *Builder[T]) Version(n uint32) *Builder[T] {
	b.check()
	b.def.userVersion = n
	return b
}

// Serialize replaces the default field-by-field load and save.
func (b *Builder[T]) Serialize(load func(Reader, *T) error, save func(Writer, *T)) *Builder[T] {
	b.check()
	if load != nil {
		b.def.load = func(r Reader, o any) error { return load(r, objectPtr[T](o)) }
	}
	if save != nil {
		b.def.save = func(w Writer, o any) { save(w, objectPtr[T](o)) }
	}
	return b
}

// InstanceHash replaces the default content hash.
func (b *Builder[T]) InstanceHash(fn func(*T, Hash64) Hash64) *Builder[T] {
	b.check()
	b.def.instanceHash = func(o any, seed Hash64) Hash64 { return fn(objectPtr[T](o), seed) }
	return b
}

// Destructor installs the hook run by DestroyInstance.
func (b *Builder[T]) Destructor(fn func(*T)) *Builder[T] {
	b.check()
	b.def.destructor = func(o any) { fn(objectPtr[T](o)) }
	return b
}

// Finish runs the Finisher attributes, computes the structural version and
// registers the definition. It returns the registry's canonical definition,
// which is an earlier one when an identical copy of T was already registered.
func (b *Builder[T]) Finish() *Definition {
	b.check()
	b.finished = true
	d := b.def
	b.checkFieldTypes()

	for _, f := range collectFinishers(d) {
		f.Finish(d)
	}
	d.version = structuralVersion(d)
	return b.reg.Register(d)
}

// checkFieldTypes panics when a serializable field holds a type the registry
// cannot save or hash. Types with their own save and instance hash hooks are
// exempt, as is a field of the type being defined.
func (b *Builder[T]) checkFieldTypes() {
	d := b.def
	if d.save != nil && d.instanceHash != nil {
		return
	}
	for _, e := range d.vars {
		v := e.v
		if !v.CanSerialize() || v.IsFlags() {
			continue
		}
		for _, ref := range []TypeRef{v.Type(), v.KeyType()} {
			if ref.Handle == 0 || ref.Handle == d.Handle() {
				continue
			}
			if _, ok := b.reg.codec(ref.Handle); !ok {
				panic(&Error{
					Kind:   LookupMiss,
					Type:   d.Name(),
					Member: v.Name(),
					Err:    unregistered(ref),
				})
			}
		}
	}
}

func collectFinishers(d *Definition) []Finisher {
	var out []Finisher
	add := func(attrs []Attribute) {
		for _, a := range attrs {
			if f, ok := a.(Finisher); ok {
				out = append(out, f)
			}
		}
	}
	add(d.attrs)
	for _, e := range d.vars {
		add(e.attrs)
	}
	for _, t := range []*overloadTable{&d.funcs, &d.staticFuncs} {
		for _, s := range t.sets {
			for _, f := range s.order {
				add(f.attrs)
			}
		}
	}
	return out
}
