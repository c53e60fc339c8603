package reflection

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Reserved bucket keys. Every registered type is in AllTypesBucket; types
// that match no interface bucket are in UnbucketedBucket.
var (
	AllTypesBucket   = HashName("*")
	UnbucketedBucket = HashName("**")
)

// Registry is the process-wide store of reflected types and enums plus the
// derived indexes ("buckets") over them. Construct one per process and pass
// it to everything that registers or queries types.
//
// Registration is expected during single-threaded initialization; lookups
// are safe from any goroutine afterwards.
type Registry struct {
	mu     sync.RWMutex
	logger *zap.Logger

	defs     map[Hash64]*Definition
	builtins map[Hash64]*Definition
	enums    map[Hash64]*EnumDefinition
	names    map[string]Hash64

	// Buckets are kept sorted by handle.
	typeBuckets map[Hash64][]*Definition
	attrBuckets map[Hash64][]*Definition

	modules       map[string]*moduleOwner
	currentModule string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry holding only the builtin primitives and the
// "*" and "**" buckets.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	for _, d := range builtinDefs(r) {
		r.builtins[d.Handle()] = d
	}
	return r
}

func (r *Registry) reset() {
	r.defs = make(map[Hash64]*Definition)
	r.enums = make(map[Hash64]*EnumDefinition)
	r.names = make(map[string]Hash64)
	r.typeBuckets = map[Hash64][]*Definition{
		AllTypesBucket:   nil,
		UnbucketedBucket: nil,
	}
	r.attrBuckets = make(map[Hash64][]*Definition)
	r.modules = make(map[string]*moduleOwner)
	r.currentModule = ""
	if r.builtins == nil {
		r.builtins = make(map[Hash64]*Definition)
	}
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger { return r.logger }

// Register inserts a finished definition and adds it to every existing
// bucket it matches. Registering a handle that is already present returns
// the existing definition when the structural versions agree and panics with
// SchemaDrift when they do not.
func (r *Registry) Register(d *Definition) *Definition {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := d.Handle()
	if existing, ok := r.defs[h]; ok {
		r.checkDrift(d.Name(), existing.version, d.version)
		r.logger.Debug("type already registered",
			zap.String("type", d.Name()),
			zap.String("version", d.version.String()))
		if r.currentModule != "" {
			r.ownLocked(h, r.currentModule)
		}
		return existing
	}

	r.defs[h] = d
	r.names[d.Name()] = h
	r.addToTypeBuckets(d)
	r.addToAttributeBuckets(d)
	if r.currentModule != "" {
		r.ownLocked(h, r.currentModule)
	}

	r.logger.Debug("registered type",
		zap.String("type", d.Name()),
		zap.String("handle", h.String()),
		zap.String("version", d.version.String()),
		zap.Int("vars", d.NumVars()))
	return d
}

// RegisterEnum inserts a finished enum definition with the same duplicate
// semantics as Register.
func (r *Registry) RegisterEnum(e *EnumDefinition) *EnumDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := e.Handle()
	if existing, ok := r.enums[h]; ok {
		r.checkDrift(e.Name(), existing.version, e.version)
		if r.currentModule != "" {
			r.ownEnumLocked(h, r.currentModule)
		}
		return existing
	}

	r.enums[h] = e
	r.names[e.Name()] = h
	if r.currentModule != "" {
		r.ownEnumLocked(h, r.currentModule)
	}

	r.logger.Debug("registered enum",
		zap.String("enum", e.Name()),
		zap.Int("entries", e.NumEntries()))
	return e
}

func (r *Registry) checkDrift(name string, registered, incoming Hash64) {
	if registered == incoming {
		return
	}
	r.logger.Error("structural version mismatch",
		zap.String("type", name),
		zap.String("registered", registered.String()),
		zap.String("incoming", incoming.String()))
	panic(&Error{
		Kind: SchemaDrift,
		Type: name,
		Message: fmt.Sprintf("two copies of the type disagree on shape (registered %s, incoming %s)",
			registered, incoming),
	})
}

// Reflection returns the definition for h. Builtin primitives resolve too,
// although they are never listed in buckets.
func (r *Registry) Reflection(h Hash64) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.defs[h]; ok {
		return d, true
	}
	d, ok := r.builtins[h]
	return d, ok
}

// ReflectionByName returns the definition of the named type.
func (r *Registry) ReflectionByName(name string) (*Definition, bool) {
	return r.Reflection(HashName(name))
}

// Enum returns the enum definition for h.
func (r *Registry) Enum(h Hash64) (*EnumDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[h]
	return e, ok
}

// EnumByName returns the named enum definition.
func (r *Registry) EnumByName(name string) (*EnumDefinition, bool) {
	return r.Enum(HashName(name))
}

// Enums returns every enum sorted by name.
func (r *Registry) Enums() []*EnumDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*EnumDefinition, 0, len(r.enums))
	for _, e := range r.enums {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *EnumDefinition) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// All returns every registered type sorted by handle.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.typeBuckets[AllTypesBucket])
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

func (r *Registry) lookup(h Hash64) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[h]
}

func (r *Registry) lookupLocked(h Hash64) *Definition {
	return r.defs[h]
}

// codec resolves the value codec for a field type.
func (r *Registry) codec(h Hash64) (valueCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.defs[h]; ok {
		return d, true
	}
	if d, ok := r.builtins[h]; ok {
		return d, true
	}
	if e, ok := r.enums[h]; ok {
		return e, true
	}
	return nil, false
}

func matchesInterface(d *Definition, h Hash64) bool {
	return d.Handle() != h && d.HasInterface(h)
}

func isReservedBucket(h Hash64) bool {
	return h == AllTypesBucket || h == UnbucketedBucket
}

func compareHandles(a, b *Definition) int {
	return cmp.Compare(a.Handle(), b.Handle())
}

func insertSorted(bucket []*Definition, d *Definition) []*Definition {
	i, found := slices.BinarySearchFunc(bucket, d.Handle(), func(e *Definition, h Hash64) int {
		return cmp.Compare(e.Handle(), h)
	})
	if found {
		return bucket
	}
	return slices.Insert(bucket, i, d)
}

func removeSorted(bucket []*Definition, h Hash64) []*Definition {
	i, found := slices.BinarySearchFunc(bucket, h, func(e *Definition, h Hash64) int {
		return cmp.Compare(e.Handle(), h)
	})
	if !found {
		return bucket
	}
	return slices.Delete(bucket, i, i+1)
}

func containsSorted(bucket []*Definition, h Hash64) bool {
	_, found := slices.BinarySearchFunc(bucket, h, func(e *Definition, h Hash64) int {
		return cmp.Compare(e.Handle(), h)
	})
	return found
}

func (r *Registry) addToTypeBuckets(d *Definition) {
	r.typeBuckets[AllTypesBucket] = insertSorted(r.typeBuckets[AllTypesBucket], d)

	matched := false
	for h, bucket := range r.typeBuckets {
		if isReservedBucket(h) || !matchesInterface(d, h) {
			continue
		}
		r.typeBuckets[h] = insertSorted(bucket, d)
		matched = true
	}
	if !matched {
		r.typeBuckets[UnbucketedBucket] = insertSorted(r.typeBuckets[UnbucketedBucket], d)
	}
}

func (r *Registry) addToAttributeBuckets(d *Definition) {
	for h, bucket := range r.attrBuckets {
		if d.carriesAttr(h, r.lookupLocked) {
			r.attrBuckets[h] = insertSorted(bucket, d)
		}
	}
}

// RegisterTypeBucket creates the bucket of all types implementing interface
// h. The first call scans every registered type once and moves matches out
// of the unbucketed set; types registered afterwards are added as they
// arrive. Further calls are no-ops.
func (r *Registry) RegisterTypeBucket(h Hash64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.typeBuckets[h]; exists {
		r.logger.Debug("type bucket already registered", zap.String("bucket", h.String()))
		return
	}

	var bucket []*Definition
	for _, d := range r.typeBuckets[AllTypesBucket] {
		if !matchesInterface(d, h) {
			continue
		}
		bucket = append(bucket, d)
		r.typeBuckets[UnbucketedBucket] = removeSorted(r.typeBuckets[UnbucketedBucket], d.Handle())
	}
	r.typeBuckets[h] = bucket

	for _, owner := range r.modules {
		owner.addTypeBucket(h, bucket)
	}

	r.logger.Debug("registered type bucket",
		zap.String("bucket", r.nameOfLocked(h)),
		zap.Int("scanned", len(r.defs)),
		zap.Int("matched", len(bucket)))
}

// HasTypeBucket reports whether a bucket exists for h.
func (r *Registry) HasTypeBucket(h Hash64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.typeBuckets[h]
	return ok
}

// TypeBucket returns the types implementing h, sorted by handle. ok is false
// when no bucket was registered for h.
func (r *Registry) TypeBucket(h Hash64) ([]*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket, ok := r.typeBuckets[h]
	if !ok {
		return nil, false
	}
	return slices.Clone(bucket), true
}

// TypeBuckets returns the keys of every registered interface bucket, reserved
// buckets excluded.
func (r *Registry) TypeBuckets() []Hash64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Hash64
	for h := range r.typeBuckets {
		if !isReservedBucket(h) {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}

// RegisterAttributeBucket creates the bucket of all types carrying attribute
// h on the class or any member. Further calls are no-ops.
func (r *Registry) RegisterAttributeBucket(h Hash64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attrBuckets[h]; exists {
		r.logger.Debug("attribute bucket already registered", zap.String("bucket", h.String()))
		return
	}

	var bucket []*Definition
	for _, d := range r.typeBuckets[AllTypesBucket] {
		if d.carriesAttr(h, r.lookupLocked) {
			bucket = append(bucket, d)
		}
	}
	r.attrBuckets[h] = bucket

	for _, owner := range r.modules {
		owner.addAttrBucket(h, bucket)
	}

	r.logger.Debug("registered attribute bucket",
		zap.String("bucket", r.nameOfLocked(h)),
		zap.Int("scanned", len(r.defs)),
		zap.Int("matched", len(bucket)))
}

// AttributeBucket returns the types carrying attribute h, sorted by handle.
// ok is false when no bucket was registered for h.
func (r *Registry) AttributeBucket(h Hash64) ([]*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket, ok := r.attrBuckets[h]
	if !ok {
		return nil, false
	}
	return slices.Clone(bucket), true
}

// ReflectionWithAttribute returns the types carrying attribute h, using the
// attribute bucket when one exists and scanning every type otherwise.
func (r *Registry) ReflectionWithAttribute(h Hash64) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bucket, ok := r.attrBuckets[h]; ok {
		return slices.Clone(bucket)
	}
	return scanForAttr(r.typeBuckets[AllTypesBucket], h, r.lookupLocked)
}

// ReflectionWithInterface returns the types implementing interface h, using
// the type bucket when one exists and scanning every type otherwise. It never
// creates a bucket.
func (r *Registry) ReflectionWithInterface(h Hash64) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bucket, ok := r.typeBuckets[h]; ok && !isReservedBucket(h) {
		return slices.Clone(bucket)
	}
	var out []*Definition
	for _, d := range r.typeBuckets[AllTypesBucket] {
		if matchesInterface(d, h) {
			out = append(out, d)
		}
	}
	return out
}

func scanForAttr(defs []*Definition, h Hash64, resolve attrResolver) []*Definition {
	var out []*Definition
	for _, d := range defs {
		if d.carriesAttr(h, resolve) {
			out = append(out, d)
		}
	}
	return out
}

// nameOfLocked returns the registered name for h, or its hex form.
func (r *Registry) nameOfLocked(h Hash64) string {
	if d, ok := r.defs[h]; ok {
		return d.Name()
	}
	if e, ok := r.enums[h]; ok {
		return e.Name()
	}
	return h.String()
}

// Destroy drops every registered type, enum, bucket and module. Builtin
// primitives survive.
func (r *Registry) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	r.logger.Debug("registry destroyed")
}
