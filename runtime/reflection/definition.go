package reflection

// Definition is the runtime description of one reflected type: its fields in
// declaration order, overloaded member and static functions, constructors,
// ancestors and attributes, plus the hooks that load, save, hash and destroy
// instances. Definitions are created by Builder.Finish and owned by the
// Registry.
type Definition struct {
	reg         *Registry
	ref         TypeRef
	builtin     bool
	isInterface bool

	vars     []varEntry
	varIndex map[Hash64]int

	funcs       overloadTable
	staticFuncs overloadTable

	ctors     map[Hash64]*Constructor
	ctorOrder []Hash64

	bases     map[Hash64]func(any) any
	baseOrder []TypeRef

	attrs []Attribute

	version     Hash64
	userVersion uint32

	construct    func() any
	assign       func(dst, src any)
	load         func(r Reader, object any) error
	save         func(w Writer, object any)
	instanceHash func(object any, seed Hash64) Hash64
	destructor   func(object any)
}

type varEntry struct {
	v     Var
	attrs []Attribute
}

// Constructor is a factory keyed by the hash of its argument types.
type Constructor struct {
	hash  Hash64
	args  []TypeRef
	build func(args []any) any
}

func (c *Constructor) Hash() Hash64 { return c.hash }

// Args returns the argument types in order.
func (c *Constructor) Args() []TypeRef {
	out := make([]TypeRef, len(c.args))
	copy(out, c.args)
	return out
}

type overloadSet struct {
	name   string
	order  []*Function
	byHash map[Hash64]*Function
}

type overloadTable struct {
	sets  []*overloadSet
	index map[Hash64]int
}

func (t *overloadTable) set(name string) *overloadSet {
	h := HashName(name)
	if t.index == nil {
		t.index = make(map[Hash64]int)
	}
	if i, ok := t.index[h]; ok {
		return t.sets[i]
	}
	s := &overloadSet{name: name, byHash: make(map[Hash64]*Function)}
	t.index[h] = len(t.sets)
	t.sets = append(t.sets, s)
	return s
}

func (t *overloadTable) lookup(nameHash, argHash Hash64) *Function {
	i, ok := t.index[nameHash]
	if !ok {
		return nil
	}
	return t.sets[i].byHash[argHash]
}

func (t *overloadTable) has(name string, argHash Hash64) bool {
	return t.lookup(HashName(name), argHash) != nil
}

func (t *overloadTable) add(name string, f *Function) bool {
	s := t.set(name)
	if _, dup := s.byHash[f.hash]; dup {
		return false
	}
	s.byHash[f.hash] = f
	s.order = append(s.order, f)
	return true
}

func newDefinition(reg *Registry, ref TypeRef) *Definition {
	return &Definition{
		reg:      reg,
		ref:      ref,
		varIndex: make(map[Hash64]int),
		ctors:    make(map[Hash64]*Constructor),
		bases:    make(map[Hash64]func(any) any),
	}
}

// Name is the type's fully qualified name.
func (d *Definition) Name() string { return d.ref.Name }

// Handle is the hash of Name.
func (d *Definition) Handle() Hash64 { return d.ref.Handle }

// Ref returns the name and handle pair.
func (d *Definition) Ref() TypeRef { return d.ref }

// IsBuiltIn reports whether the registry seeded the type itself.
func (d *Definition) IsBuiltIn() bool { return d.builtin }

// IsInterface reports whether the type is a Go interface.
func (d *Definition) IsInterface() bool { return d.isInterface }

// UserVersion is the number set with Builder.Version, or 0.
func (d *Definition) UserVersion() uint32 { return d.userVersion }

// Version is the structural version: a fold of every ancestor, field,
// function, constructor and attribute declared for the type.
func (d *Definition) Version() Hash64 { return d.version }

// NumVars returns the number of fields, inherited ones included.
func (d *Definition) NumVars() int { return len(d.vars) }

// VarName returns the name of field i in declaration order.
func (d *Definition) VarName(i int) string { return d.vars[i].v.Name() }

// VarAt returns field i in declaration order.
func (d *Definition) VarAt(i int) Var { return d.vars[i].v }

// Var returns the field whose name hashes to nameHash, or nil.
func (d *Definition) Var(nameHash Hash64) Var {
	if i, ok := d.varIndex[nameHash]; ok {
		return d.vars[i].v
	}
	return nil
}

// VarByName returns the named field, or nil.
func (d *Definition) VarByName(name string) Var {
	return d.Var(HashName(name))
}

// VarAttrs returns the attributes of a field.
func (d *Definition) VarAttrs(nameHash Hash64) []Attribute {
	i, ok := d.varIndex[nameHash]
	if !ok {
		return nil
	}
	return copyAttrs(d.vars[i].attrs)
}

// VarAttr returns the first attribute of a field matching attrHandle, or nil.
func (d *Definition) VarAttr(nameHash, attrHandle Hash64) Attribute {
	i, ok := d.varIndex[nameHash]
	if !ok {
		return nil
	}
	return findAttr(d.vars[i].attrs, attrHandle, d.resolver())
}

// NumFuncs is the number of distinct method names.
func (d *Definition) NumFuncs() int { return len(d.funcs.sets) }

// FuncName returns the i-th method name in declaration order.
func (d *Definition) FuncName(i int) string { return d.funcs.sets[i].name }

// NumFuncOverloads is the number of overloads sharing the i-th name.
func (d *Definition) NumFuncOverloads(i int) int { return len(d.funcs.sets[i].order) }

// FuncAt returns an overload of the i-th method name.
func (d *Definition) FuncAt(i, overload int) *Function { return d.funcs.sets[i].order[overload] }

// Func resolves an overload by name hash and ArgHash(result, args...), or
// returns nil.
func (d *Definition) Func(nameHash, argHash Hash64) *Function {
	return d.funcs.lookup(nameHash, argHash)
}

// FuncByName resolves an overload by name.
func (d *Definition) FuncByName(name string, argHash Hash64) *Function {
	return d.Func(HashName(name), argHash)
}

// NumStaticFuncs is the number of distinct static function names.
func (d *Definition) NumStaticFuncs() int { return len(d.staticFuncs.sets) }

// StaticFuncName returns the i-th static function name.
func (d *Definition) StaticFuncName(i int) string { return d.staticFuncs.sets[i].name }

// NumStaticFuncOverloads is the number of overloads sharing the i-th name.
func (d *Definition) NumStaticFuncOverloads(i int) int { return len(d.staticFuncs.sets[i].order) }

// StaticFuncAt returns an overload of the i-th static function name.
func (d *Definition) StaticFuncAt(i, overload int) *Function {
	return d.staticFuncs.sets[i].order[overload]
}

// StaticFunc resolves a static overload, or returns nil.
func (d *Definition) StaticFunc(nameHash, argHash Hash64) *Function {
	return d.staticFuncs.lookup(nameHash, argHash)
}

// StaticFuncByName resolves a static overload by name.
func (d *Definition) StaticFuncByName(name string, argHash Hash64) *Function {
	return d.StaticFunc(HashName(name), argHash)
}

// NumConstructors is the number of registered factories.
func (d *Definition) NumConstructors() int { return len(d.ctorOrder) }

// Constructor returns the factory registered for argHash, or nil.
func (d *Definition) Constructor(argHash Hash64) *Constructor {
	return d.ctors[argHash]
}

// Constructors returns every factory in registration order.
func (d *Definition) Constructors() []*Constructor {
	out := make([]*Constructor, 0, len(d.ctorOrder))
	for _, h := range d.ctorOrder {
		out = append(out, d.ctors[h])
	}
	return out
}

// Bases returns every ancestor, direct and inherited, in the order recorded.
func (d *Definition) Bases() []TypeRef {
	out := make([]TypeRef, len(d.baseOrder))
	copy(out, d.baseOrder)
	return out
}

// HasInterface reports whether the type is h or has h as an ancestor.
func (d *Definition) HasInterface(h Hash64) bool {
	if h == d.ref.Handle {
		return true
	}
	_, ok := d.bases[h]
	return ok
}

// Interface upcasts object to ancestor h, or returns nil when h is not an
// ancestor.
func (d *Definition) Interface(h Hash64, object any) any {
	if h == d.ref.Handle {
		return object
	}
	if cast, ok := d.bases[h]; ok {
		return cast(object)
	}
	return nil
}

// ClassAttrs returns the type-level attributes.
func (d *Definition) ClassAttrs() []Attribute { return copyAttrs(d.attrs) }

// ClassAttr returns the first class attribute matching attrHandle, or nil.
func (d *Definition) ClassAttr(attrHandle Hash64) Attribute {
	return findAttr(d.attrs, attrHandle, d.resolver())
}

// HasClassAttr reports whether a class attribute matches attrHandle.
func (d *Definition) HasClassAttr(attrHandle Hash64) bool {
	return d.ClassAttr(attrHandle) != nil
}

// HasVarAttr reports whether any field carries a matching attribute.
func (d *Definition) HasVarAttr(attrHandle Hash64) bool {
	return d.varsHaveAttr(attrHandle, d.resolver())
}

// HasFuncAttr reports whether any member function carries a matching attribute.
func (d *Definition) HasFuncAttr(attrHandle Hash64) bool {
	return d.funcs.hasAttr(attrHandle, d.resolver())
}

// HasStaticFuncAttr reports whether any static function carries a matching
// attribute.
func (d *Definition) HasStaticFuncAttr(attrHandle Hash64) bool {
	return d.staticFuncs.hasAttr(attrHandle, d.resolver())
}

func (d *Definition) varsHaveAttr(attrHandle Hash64, resolve attrResolver) bool {
	for _, e := range d.vars {
		if findAttr(e.attrs, attrHandle, resolve) != nil {
			return true
		}
	}
	return false
}

func (t *overloadTable) hasAttr(attrHandle Hash64, resolve attrResolver) bool {
	for _, s := range t.sets {
		for _, f := range s.order {
			if findAttr(f.attrs, attrHandle, resolve) != nil {
				return true
			}
		}
	}
	return false
}

// carriesAttr reports whether the type carries a matching attribute anywhere.
func (d *Definition) carriesAttr(attrHandle Hash64, resolve attrResolver) bool {
	return findAttr(d.attrs, attrHandle, resolve) != nil ||
		d.varsHaveAttr(attrHandle, resolve) ||
		d.funcs.hasAttr(attrHandle, resolve) ||
		d.staticFuncs.hasAttr(attrHandle, resolve)
}

func (d *Definition) resolver() attrResolver {
	if d.reg == nil {
		return nil
	}
	return d.reg.lookup
}

// attrResolver finds the reflected definition of an attribute type.
type attrResolver func(h Hash64) *Definition

// matchAttr reports whether a is of type h or, when its type is reflected,
// has h as an ancestor.
func matchAttr(a Attribute, h Hash64, resolve attrResolver) bool {
	ref := AttrRef(a)
	if ref.Handle == h {
		return true
	}
	if resolve == nil {
		return false
	}
	if def := resolve(ref.Handle); def != nil {
		return def.HasInterface(h)
	}
	return false
}

func findAttr(attrs []Attribute, h Hash64, resolve attrResolver) Attribute {
	for _, a := range attrs {
		if matchAttr(a, h, resolve) {
			return a
		}
	}
	return nil
}

// Create resolves the factory for ctorHash, builds the object through alloc
// and runs every Instantiator attribute. It returns nil when no factory
// matches.
func (d *Definition) Create(ctorHash Hash64, alloc Allocator, args ...any) any {
	c, ok := d.ctors[ctorHash]
	if !ok {
		return nil
	}
	if len(args) != len(c.args) {
		capabilityPanic(d.ref.Name, "", "constructor called with %d arguments, want %d", len(args), len(c.args))
	}

	object := allocatorOrDefault(alloc).New(d.ref, func() any { return c.build(args) })
	d.instantiated(object)
	return object
}

// CreateDefault creates an object with the argument-less factory.
func (d *Definition) CreateDefault(alloc Allocator) any {
	return d.Create(ArgsOf0(), alloc)
}

func (d *Definition) instantiated(object any) {
	for _, a := range d.attrs {
		if in, ok := a.(Instantiator); ok {
			in.Instantiated(object, d)
		}
	}
	for _, e := range d.vars {
		for _, a := range e.attrs {
			if in, ok := a.(Instantiator); ok {
				in.Instantiated(object, d)
			}
		}
	}
}

// Duplicate allocates a new object and copies every reflected field of
// object into it, skipping NoCopy fields.
func (d *Definition) Duplicate(object any, alloc Allocator) any {
	if d.construct == nil {
		return nil
	}
	dup := allocatorOrDefault(alloc).New(d.ref, d.construct)
	d.copyValue(dup, object)
	d.instantiated(dup)
	return dup
}

func (d *Definition) copyValue(dst, src any) {
	if d.assign != nil {
		d.assign(dst, src)
	}
	var zero any
	for _, e := range d.vars {
		if e.v.IsNoCopy() {
			if zero == nil {
				zero = d.construct()
			}
			e.v.CopyTo(dst, zero)
			continue
		}
		e.v.CopyTo(dst, src)
	}
}

// DestroyInstance runs the type's destructor, if any.
func (d *Definition) DestroyInstance(object any) {
	if d.destructor != nil {
		d.destructor(object)
	}
}

// Free destroys object and returns it to alloc.
func (d *Definition) Free(object any, alloc Allocator) {
	d.DestroyInstance(object)
	allocatorOrDefault(alloc).Free(d.ref, object)
}

// Load reads object from r. The default reads an object document field by
// field in declaration order, skipping NoSerialize fields; a missing field is
// an error unless it is Optional. On error object may be partially written.
func (d *Definition) Load(r Reader, object any) error {
	if d.load != nil {
		return d.load(r, object)
	}
	if !r.IsObject() {
		return unexpected(d.ref.Name, "", "object")
	}

	for _, e := range d.vars {
		v := e.v
		if !v.CanSerialize() {
			continue
		}
		if !r.Exists(v.Name()) {
			if v.IsOptional() {
				continue
			}
			return malformed(d.ref.Name, v.Name(), ErrMissingField)
		}
		if err := loadKey(r, v.Name(), func() error { return v.Load(r, object) }); err != nil {
			return err
		}
	}
	return nil
}

// Save writes object to w as an object document of its serializable fields.
func (d *Definition) Save(w Writer, object any) {
	if d.save != nil {
		d.save(w, object)
		return
	}

	n := 0
	for _, e := range d.vars {
		if e.v.CanSerialize() {
			n++
		}
	}

	w.StartObject(n)
	for _, e := range d.vars {
		if !e.v.CanSerialize() {
			continue
		}
		w.WriteKey(e.v.Name())
		e.v.Save(w, object)
	}
	w.EndObject()
}

// InstanceHash folds the content of every serializable field into seed.
func (d *Definition) InstanceHash(object any, seed Hash64) Hash64 {
	if d.instanceHash != nil {
		return d.instanceHash(object, seed)
	}
	h := seed
	for _, e := range d.vars {
		if e.v.CanSerialize() {
			h = e.v.InstanceHash(object, h)
		}
	}
	return h
}

func copyAttrs(attrs []Attribute) []Attribute {
	out := make([]Attribute, len(attrs))
	copy(out, attrs)
	return out
}

// Create builds a T through the factory registered for ctorHash.
func Create[T any](d *Definition, alloc Allocator, ctorHash Hash64, args ...any) (*T, bool) {
	object := d.Create(ctorHash, alloc, args...)
	if object == nil {
		return nil, false
	}
	t, ok := object.(*T)
	return t, ok
}

// CreateAs builds an object with the default factory and upcasts it to I.
func CreateAs[I any](d *Definition, alloc Allocator) (I, bool) {
	var zero I
	object := d.CreateDefault(alloc)
	if object == nil {
		return zero, false
	}
	return Interface[I](d, object)
}

// Interface upcasts object to the ancestor I.
func Interface[I any](d *Definition, object any) (I, bool) {
	var zero I
	base := d.Interface(baseRefOf[I]().Handle, object)
	if base == nil {
		return zero, false
	}
	i, ok := base.(I)
	return i, ok
}
