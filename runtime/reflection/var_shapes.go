package reflection

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Field reflects a plain member through an accessor returning its address.
func Field[T, V any](get func(*T) *V) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &fieldVar[V]{ptr: func(o any) *V { return get(objectPtr[T](o)) }}
		v.elem = RefOf[V]()
		return v
	}}
}

// Property reflects a computed member through a getter and setter. A nil
// setter makes the property read-only.
func Property[T, V any](get func(*T) V, set func(*T, V)) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &propertyVar[V]{get: func(o any) V { return get(objectPtr[T](o)) }}
		if set != nil {
			v.set = func(o any, x V) { set(objectPtr[T](o), x) }
		} else {
			v.SetReadOnly(true)
		}
		v.elem = RefOf[V]()
		return v
	}}
}

// Array reflects a fixed-length array member. get returns a slice over the
// array, e.g. func(t *T) []float32 { return t.Pos[:] }.
func Array[T, V any](get func(*T) []V) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &arrayVar[V]{slice: func(o any) []V { return get(objectPtr[T](o)) }}
		v.elem = RefOf[V]()
		return v
	}}
}

// Vector reflects a growable slice member.
func Vector[T, V any](get func(*T) *[]V) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &vectorVar[V]{ptr: func(o any) *[]V { return get(objectPtr[T](o)) }}
		v.elem = RefOf[V]()
		return v
	}}
}

// Map reflects a map member. Entries are ordered by key and serialized as an
// array of {"key", "value"} objects.
func Map[T any, K constraints.Ordered, V any](get func(*T) *map[K]V) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &mapVar[K, V]{ptr: func(o any) *map[K]V { return get(objectPtr[T](o)) }}
		v.elem = RefOf[V]()
		v.key = RefOf[K]()
		return v
	}}
}

// StringMap reflects a map with string keys, serialized as an object.
func StringMap[T any, K ~string, V any](get func(*T) *map[K]V) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &mapVar[K, V]{ptr: func(o any) *map[K]V { return get(objectPtr[T](o)) }}
		v.elem = RefOf[V]()
		v.key = RefOf[K]()
		v.keyString = func(k K) string { return string(k) }
		v.parseKey = func(s string) K { return K(s) }
		return v
	}}
}

// Flags reflects an unsigned bitmask whose bit indices are named by the
// entries of enum E.
func Flags[T any, F constraints.Unsigned, E constraints.Integer](get func(*T) *F) VarSpec[T] {
	return VarSpec[T]{build: func() Var {
		v := &flagsVar[F]{ptr: func(o any) *F { return get(objectPtr[T](o)) }}
		v.elem = RefOf[E]()
		v.mask = RefOf[F]()
		return v
	}}
}

type fieldVar[V any] struct {
	varBase
	ptr func(object any) *V
}

func (v *fieldVar[V]) Data(o any) any { return v.ptr(o) }

func (v *fieldVar[V]) SetData(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = valueOf[V](&v.varBase, value)
}

func (v *fieldVar[V]) SetDataMove(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = moveValue[V](&v.varBase, value)
}

func (v *fieldVar[V]) Load(r Reader, o any) error { return v.loadValue(r, v.ptr(o)) }

func (v *fieldVar[V]) Save(w Writer, o any) { v.mustCodec(v.elem).Save(w, v.ptr(o)) }

func (v *fieldVar[V]) InstanceHash(o any, seed Hash64) Hash64 {
	return v.mustCodec(v.elem).InstanceHash(v.ptr(o), seed)
}

func (v *fieldVar[V]) CopyTo(dst, src any) { copyElem(&v.varBase, v.ptr(dst), v.ptr(src)) }

func (v *fieldVar[V]) rebase(cast func(any) any) Var {
	cp := *v
	ptr := v.ptr
	cp.ptr = func(o any) *V { return ptr(cast(o)) }
	return &cp
}

type propertyVar[V any] struct {
	varBase
	get func(object any) V
	set func(object any, value V)
}

func (v *propertyVar[V]) Data(o any) any {
	x := v.get(o)
	return &x
}

func (v *propertyVar[V]) SetData(o, value any) {
	if v.readOnlyWrite() || v.set == nil {
		return
	}
	v.set(o, valueOf[V](&v.varBase, value))
}

func (v *propertyVar[V]) SetDataMove(o, value any) {
	if v.readOnlyWrite() || v.set == nil {
		return
	}
	v.set(o, moveValue[V](&v.varBase, value))
}

func (v *propertyVar[V]) Load(r Reader, o any) error {
	var x V
	if err := v.loadValue(r, &x); err != nil {
		return err
	}
	if v.set != nil {
		v.set(o, x)
	}
	return nil
}

func (v *propertyVar[V]) Save(w Writer, o any) {
	x := v.get(o)
	v.mustCodec(v.elem).Save(w, &x)
}

func (v *propertyVar[V]) InstanceHash(o any, seed Hash64) Hash64 {
	x := v.get(o)
	return v.mustCodec(v.elem).InstanceHash(&x, seed)
}

func (v *propertyVar[V]) CopyTo(dst, src any) {
	if v.set != nil {
		v.set(dst, v.get(src))
	}
}

func (v *propertyVar[V]) rebase(cast func(any) any) Var {
	cp := *v
	get, set := v.get, v.set
	cp.get = func(o any) V { return get(cast(o)) }
	if set != nil {
		cp.set = func(o any, x V) { set(cast(o), x) }
	}
	return &cp
}

type arrayVar[V any] struct {
	varBase
	slice func(object any) []V
}

func (v *arrayVar[V]) IsFixedArray() bool { return true }
func (v *arrayVar[V]) IsContainer() bool { return true }

func (v *arrayVar[V]) Data(o any) any { return v.slice(o) }

func (v *arrayVar[V]) SetData(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	dst := v.slice(o)
	src := valueOf[[]V](&v.varBase, value)
	if len(src) != len(dst) {
		capabilityPanic(v.owner, v.name, "fixed array of %d elements assigned %d", len(dst), len(src))
	}
	copy(dst, src)
}

func (v *arrayVar[V]) SetDataMove(o, value any) { v.SetData(o, value) }

func (v *arrayVar[V]) Size(o any) int { return len(v.slice(o)) }

func (v *arrayVar[V]) Element(o any, i int) any {
	s := v.slice(o)
	v.checkIndex(i, len(s))
	return &s[i]
}

func (v *arrayVar[V]) SetElement(o any, i int, value any) {
	if v.readOnlyWrite() {
		return
	}
	s := v.slice(o)
	v.checkIndex(i, len(s))
	s[i] = valueOf[V](&v.varBase, value)
}

func (v *arrayVar[V]) Resize(any, int) {
	capabilityPanic(v.owner, v.name, "Resize: fixed array cannot change size")
}

func (v *arrayVar[V]) Remove(any, int) {
	capabilityPanic(v.owner, v.name, "Remove: fixed array cannot change size")
}

func (v *arrayVar[V]) Swap(o any, a, b int) {
	s := v.slice(o)
	v.checkIndex(a, len(s))
	v.checkIndex(b, len(s))
	s[a], s[b] = s[b], s[a]
}

func (v *arrayVar[V]) Load(r Reader, o any) error {
	if !r.IsArray() {
		return unexpected(v.owner, v.name, "array")
	}
	s := v.slice(o)
	if n := r.Size(); n != len(s) {
		return malformed(v.owner, v.name, fmt.Errorf("%w: expected %d elements, got %d", ErrMalformedInput, len(s), n))
	}
	for i := range s {
		if err := loadIndex(r, i, func() error { return v.loadValue(r, &s[i]) }); err != nil {
			return err
		}
	}
	return nil
}

func (v *arrayVar[V]) Save(w Writer, o any) {
	saveSlice(w, v.mustCodec(v.elem), v.slice(o))
}

func (v *arrayVar[V]) InstanceHash(o any, seed Hash64) Hash64 {
	return hashSlice(v.mustCodec(v.elem), v.slice(o), seed)
}

func (v *arrayVar[V]) CopyTo(dst, src any) {
	d, s := v.slice(dst), v.slice(src)
	for i := range d {
		copyElem(&v.varBase, &d[i], &s[i])
	}
}

func (v *arrayVar[V]) rebase(cast func(any) any) Var {
	cp := *v
	slice := v.slice
	cp.slice = func(o any) []V { return slice(cast(o)) }
	return &cp
}

type vectorVar[V any] struct {
	varBase
	ptr func(object any) *[]V
}

func (v *vectorVar[V]) IsVector() bool { return true }
func (v *vectorVar[V]) IsContainer() bool { return true }

func (v *vectorVar[V]) Data(o any) any { return v.ptr(o) }

func (v *vectorVar[V]) SetData(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = slices.Clone(valueOf[[]V](&v.varBase, value))
}

func (v *vectorVar[V]) SetDataMove(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = moveValue[[]V](&v.varBase, value)
}

func (v *vectorVar[V]) Size(o any) int { return len(*v.ptr(o)) }

func (v *vectorVar[V]) Element(o any, i int) any {
	s := *v.ptr(o)
	v.checkIndex(i, len(s))
	return &s[i]
}

func (v *vectorVar[V]) SetElement(o any, i int, value any) {
	if v.readOnlyWrite() {
		return
	}
	s := *v.ptr(o)
	v.checkIndex(i, len(s))
	s[i] = valueOf[V](&v.varBase, value)
}

func (v *vectorVar[V]) Resize(o any, n int) {
	if v.readOnlyWrite() {
		return
	}
	if n < 0 {
		capabilityPanic(v.owner, v.name, "Resize: negative size %d", n)
	}
	p := v.ptr(o)
	s := *p
	if n <= len(s) {
		var zero V
		for i := n; i < len(s); i++ {
			s[i] = zero
		}
		*p = s[:n]
		return
	}
	*p = append(s, make([]V, n-len(s))...)
}

func (v *vectorVar[V]) Remove(o any, i int) {
	if v.readOnlyWrite() {
		return
	}
	p := v.ptr(o)
	v.checkIndex(i, len(*p))
	*p = slices.Delete(*p, i, i+1)
}

func (v *vectorVar[V]) Swap(o any, a, b int) {
	s := *v.ptr(o)
	v.checkIndex(a, len(s))
	v.checkIndex(b, len(s))
	s[a], s[b] = s[b], s[a]
}

func (v *vectorVar[V]) Load(r Reader, o any) error {
	if !r.IsArray() {
		return unexpected(v.owner, v.name, "array")
	}
	s := make([]V, r.Size())
	*v.ptr(o) = s
	for i := range s {
		if err := loadIndex(r, i, func() error { return v.loadValue(r, &s[i]) }); err != nil {
			return err
		}
	}
	return nil
}

func (v *vectorVar[V]) Save(w Writer, o any) {
	saveSlice(w, v.mustCodec(v.elem), *v.ptr(o))
}

func (v *vectorVar[V]) InstanceHash(o any, seed Hash64) Hash64 {
	return hashSlice(v.mustCodec(v.elem), *v.ptr(o), seed)
}

func (v *vectorVar[V]) CopyTo(dst, src any) {
	s := *v.ptr(src)
	d := make([]V, len(s))
	for i := range s {
		copyElem(&v.varBase, &d[i], &s[i])
	}
	*v.ptr(dst) = d
}

func (v *vectorVar[V]) rebase(cast func(any) any) Var {
	cp := *v
	ptr := v.ptr
	cp.ptr = func(o any) *[]V { return ptr(cast(o)) }
	return &cp
}

// MapVar is implemented by map-shaped fields and adds key-based access.
type MapVar interface {
	Var
	Keys(object any) []any
	Lookup(object any, key any) (any, bool)
	Insert(object any, key, value any)
	Delete(object any, key any)
}

type mapVar[K constraints.Ordered, V any] struct {
	varBase
	key       TypeRef
	ptr       func(object any) *map[K]V
	keyString func(K) string
	parseKey  func(string) K
}

func (v *mapVar[K, V]) IsMap() bool { return true }
func (v *mapVar[K, V]) IsContainer() bool { return true }
func (v *mapVar[K, V]) KeyType() TypeRef { return v.key }

func (v *mapVar[K, V]) sortedKeys(m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func (v *mapVar[K, V]) Data(o any) any { return v.ptr(o) }

func (v *mapVar[K, V]) SetData(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = maps.Clone(valueOf[map[K]V](&v.varBase, value))
}

func (v *mapVar[K, V]) SetDataMove(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = moveValue[map[K]V](&v.varBase, value)
}

func (v *mapVar[K, V]) Size(o any) int { return len(*v.ptr(o)) }

func (v *mapVar[K, V]) keyAt(m map[K]V, i int) K {
	keys := v.sortedKeys(m)
	v.checkIndex(i, len(keys))
	return keys[i]
}

func (v *mapVar[K, V]) Element(o any, i int) any {
	m := *v.ptr(o)
	x := m[v.keyAt(m, i)]
	return &x
}

func (v *mapVar[K, V]) SetElement(o any, i int, value any) {
	if v.readOnlyWrite() {
		return
	}
	m := *v.ptr(o)
	m[v.keyAt(m, i)] = valueOf[V](&v.varBase, value)
}

func (v *mapVar[K, V]) Resize(any, int) {
	capabilityPanic(v.owner, v.name, "Resize: map size follows its keys")
}

func (v *mapVar[K, V]) Remove(o any, i int) {
	if v.readOnlyWrite() {
		return
	}
	m := *v.ptr(o)
	delete(m, v.keyAt(m, i))
}

func (v *mapVar[K, V]) Swap(o any, a, b int) {
	m := *v.ptr(o)
	ka, kb := v.keyAt(m, a), v.keyAt(m, b)
	m[ka], m[kb] = m[kb], m[ka]
}

func (v *mapVar[K, V]) Keys(o any) []any {
	keys := v.sortedKeys(*v.ptr(o))
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func (v *mapVar[K, V]) Lookup(o any, key any) (any, bool) {
	x, ok := (*v.ptr(o))[valueOf[K](&v.varBase, key)]
	if !ok {
		return nil, false
	}
	return &x, true
}

func (v *mapVar[K, V]) Insert(o any, key, value any) {
	if v.readOnlyWrite() {
		return
	}
	p := v.ptr(o)
	if *p == nil {
		*p = make(map[K]V)
	}
	(*p)[valueOf[K](&v.varBase, key)] = valueOf[V](&v.varBase, value)
}

func (v *mapVar[K, V]) Delete(o any, key any) {
	if v.readOnlyWrite() {
		return
	}
	delete(*v.ptr(o), valueOf[K](&v.varBase, key))
}

func (v *mapVar[K, V]) Load(r Reader, o any) error {
	if v.keyString != nil {
		return v.loadObject(r, o)
	}
	if !r.IsArray() {
		return unexpected(v.owner, v.name, "array of key/value pairs")
	}
	kc, err := v.codecFor(v.key)
	if err != nil {
		return err
	}

	n := r.Size()
	m := make(map[K]V, n)
	*v.ptr(o) = m
	for i := 0; i < n; i++ {
		var k K
		var x V
		err := loadIndex(r, i, func() error {
			if !r.IsObject() || !r.Exists("key") || !r.Exists("value") {
				return unexpected(v.owner, v.name, "{key, value} object")
			}
			if err := loadKey(r, "key", func() error { return kc.Load(r, &k) }); err != nil {
				return err
			}
			return loadKey(r, "value", func() error { return v.loadValue(r, &x) })
		})
		if err != nil {
			return err
		}
		m[k] = x
	}
	return nil
}

func (v *mapVar[K, V]) loadObject(r Reader, o any) error {
	if !r.IsObject() {
		return unexpected(v.owner, v.name, "object")
	}
	n := r.Size()
	m := make(map[K]V, n)
	*v.ptr(o) = m
	for i := 0; i < n; i++ {
		key := r.Key(i)
		var x V
		if err := loadKey(r, key, func() error { return v.loadValue(r, &x) }); err != nil {
			return err
		}
		m[v.parseKey(key)] = x
	}
	return nil
}

func (v *mapVar[K, V]) Save(w Writer, o any) {
	m := *v.ptr(o)
	keys := v.sortedKeys(m)
	vc := v.mustCodec(v.elem)

	if v.keyString != nil {
		w.StartObject(len(keys))
		for _, k := range keys {
			x := m[k]
			w.WriteKey(v.keyString(k))
			vc.Save(w, &x)
		}
		w.EndObject()
		return
	}

	kc := v.mustCodec(v.key)
	w.StartArray(len(keys))
	for _, k := range keys {
		x := m[k]
		w.StartObject(2)
		w.WriteKey("key")
		kc.Save(w, &k)
		w.WriteKey("value")
		vc.Save(w, &x)
		w.EndObject()
	}
	w.EndArray()
}

func (v *mapVar[K, V]) InstanceHash(o any, seed Hash64) Hash64 {
	m := *v.ptr(o)
	kc, vc := v.mustCodec(v.key), v.mustCodec(v.elem)
	h := CombineUint64(seed, uint64(len(m)))
	for _, k := range v.sortedKeys(m) {
		x := m[k]
		h = kc.InstanceHash(&k, h)
		h = vc.InstanceHash(&x, h)
	}
	return h
}

func (v *mapVar[K, V]) CopyTo(dst, src any) {
	s := *v.ptr(src)
	if s == nil {
		*v.ptr(dst) = nil
		return
	}
	d := make(map[K]V, len(s))
	for k, x := range s {
		var y V
		copyElem(&v.varBase, &y, &x)
		d[k] = y
	}
	*v.ptr(dst) = d
}

func (v *mapVar[K, V]) rebase(cast func(any) any) Var {
	cp := *v
	ptr := v.ptr
	cp.ptr = func(o any) *map[K]V { return ptr(cast(o)) }
	return &cp
}

type flagsVar[F constraints.Unsigned] struct {
	varBase
	mask TypeRef
	ptr  func(object any) *F
}

func (v *flagsVar[F]) IsFlags() bool { return true }

func (v *flagsVar[F]) Data(o any) any { return v.ptr(o) }

func (v *flagsVar[F]) SetData(o, value any) {
	if v.readOnlyWrite() {
		return
	}
	*v.ptr(o) = valueOf[F](&v.varBase, value)
}

func (v *flagsVar[F]) SetDataMove(o, value any) { v.SetData(o, value) }

func (v *flagsVar[F]) checkBit(bit int) {
	var zero F
	if bit < 0 || bit >= bitsOf(zero) {
		capabilityPanic(v.owner, v.name, "flag bit %d out of range", bit)
	}
}

func (v *flagsVar[F]) FlagValue(o any, bit int) bool {
	v.checkBit(bit)
	return *v.ptr(o)&(F(1)<<bit) != 0
}

func (v *flagsVar[F]) SetFlagValue(o any, bit int, on bool) {
	if v.readOnlyWrite() {
		return
	}
	v.checkBit(bit)
	p := v.ptr(o)
	if on {
		*p |= F(1) << bit
	} else {
		*p &^= F(1) << bit
	}
}

func (v *flagsVar[F]) enum() *EnumDefinition {
	if v.reg == nil {
		return nil
	}
	e, _ := v.reg.Enum(v.elem.Handle)
	return e
}

// Load accepts a raw number or an array of entry names and bit indices.
func (v *flagsVar[F]) Load(r Reader, o any) error {
	p := v.ptr(o)
	if r.IsNumber() {
		raw := r.ReadUInt64()
		if raw != uint64(F(raw)) {
			return malformed(v.owner, v.name, fmt.Errorf("%w: flags value %d exceeds %d bits", ErrMalformedInput, raw, bitsOf(*p)))
		}
		*p = F(raw)
		return nil
	}
	if !r.IsArray() {
		return unexpected(v.owner, v.name, "array of flag names")
	}

	e := v.enum()
	var mask F
	for i := 0; i < r.Size(); i++ {
		err := loadIndex(r, i, func() error {
			var bit int64
			switch {
			case r.IsString():
				name := r.ReadString()
				val, ok := int64(0), false
				if e != nil {
					val, ok = e.EntryValue(name)
				}
				if !ok {
					return malformed(v.owner, v.name, fmt.Errorf("%w: unknown flag %q", ErrMalformedInput, name))
				}
				bit = val
			case r.IsNumber():
				bit = r.ReadInt64()
			default:
				return unexpected(v.owner, v.name, "flag name")
			}
			var zero F
			if bit < 0 || bit >= int64(bitsOf(zero)) {
				return malformed(v.owner, v.name, fmt.Errorf("%w: flag bit %d out of range", ErrMalformedInput, bit))
			}
			mask |= F(1) << bit
			return nil
		})
		if err != nil {
			return err
		}
	}
	*p = mask
	return nil
}

func (v *flagsVar[F]) Save(w Writer, o any) {
	mask := *v.ptr(o)
	e := v.enum()

	var bits []int
	for bit := 0; bit < bitsOf(mask); bit++ {
		if mask&(F(1)<<bit) != 0 {
			bits = append(bits, bit)
		}
	}

	w.StartArray(len(bits))
	for _, bit := range bits {
		if e != nil {
			if name, ok := e.EntryName(int64(bit)); ok {
				w.WriteString(name)
				continue
			}
		}
		w.WriteInt32(int32(bit))
	}
	w.EndArray()
}

func (v *flagsVar[F]) InstanceHash(o any, seed Hash64) Hash64 {
	return CombineUint64(seed, uint64(*v.ptr(o)))
}

func (v *flagsVar[F]) CopyTo(dst, src any) { *v.ptr(dst) = *v.ptr(src) }

func (v *flagsVar[F]) rebase(cast func(any) any) Var {
	cp := *v
	ptr := v.ptr
	cp.ptr = func(o any) *F { return ptr(cast(o)) }
	return &cp
}

func bitsOf[F constraints.Unsigned](F) int {
	n := 0
	for f := ^F(0); f != 0; f >>= 1 {
		n++
	}
	return n
}

func saveSlice[V any](w Writer, c valueCodec, s []V) {
	w.StartArray(len(s))
	for i := range s {
		c.Save(w, &s[i])
	}
	w.EndArray()
}

func hashSlice[V any](c valueCodec, s []V, seed Hash64) Hash64 {
	h := CombineUint64(seed, uint64(len(s)))
	for i := range s {
		h = c.InstanceHash(&s[i], h)
	}
	return h
}

func loadIndex(r Reader, i int, load func() error) error {
	exit := r.EnterIndexGuard(i)
	defer exit()
	return load()
}

func loadKey(r Reader, key string, load func() error) error {
	exit := r.EnterElementGuard(key)
	defer exit()
	return load()
}
