package reflection

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Module is a unit that contributes reflected types. Its entry points run in
// a fixed order: enums, then attributes, then classes, since attribute and
// class registration may reference enums already registered.
type Module interface {
	Name() string
	InitReflectionEnums(r *Registry)
	InitReflectionAttributes(r *Registry)
	InitReflectionClasses(r *Registry)
}

// ModuleInfo summarizes a loaded module.
type ModuleInfo struct {
	Name     string    `json:"name"`
	LoadID   string    `json:"load_id"`
	LoadedAt time.Time `json:"loaded_at"`
	Types    []string  `json:"types"`
	Enums    []string  `json:"enums"`
}

// moduleOwner holds a module's private copies of the types it contributed and
// of the buckets containing them, so the module can be unloaded cleanly.
type moduleOwner struct {
	name        string
	loadID      uuid.UUID
	loadedAt    time.Time
	types       map[Hash64]*Definition
	enums       map[Hash64]*EnumDefinition
	typeBuckets map[Hash64][]*Definition
	attrBuckets map[Hash64][]*Definition
}

func newModuleOwner(name string) *moduleOwner {
	return &moduleOwner{
		name:        name,
		loadID:      uuid.New(),
		loadedAt:    time.Now(),
		types:       make(map[Hash64]*Definition),
		enums:       make(map[Hash64]*EnumDefinition),
		typeBuckets: make(map[Hash64][]*Definition),
		attrBuckets: make(map[Hash64][]*Definition),
	}
}

func (m *moduleOwner) addTypeBucket(h Hash64, global []*Definition) {
	var bucket []*Definition
	for _, d := range global {
		if _, owned := m.types[d.Handle()]; owned {
			bucket = append(bucket, d)
		}
	}
	m.typeBuckets[h] = bucket
	for _, d := range bucket {
		m.typeBuckets[UnbucketedBucket] = removeSorted(m.typeBuckets[UnbucketedBucket], d.Handle())
	}
}

func (m *moduleOwner) addAttrBucket(h Hash64, global []*Definition) {
	var bucket []*Definition
	for _, d := range global {
		if _, owned := m.types[d.Handle()]; owned {
			bucket = append(bucket, d)
		}
	}
	m.attrBuckets[h] = bucket
}

func (m *moduleOwner) info() ModuleInfo {
	info := ModuleInfo{
		Name:     m.name,
		LoadID:   m.loadID.String(),
		LoadedAt: m.loadedAt,
	}
	for _, d := range m.types {
		info.Types = append(info.Types, d.Name())
	}
	for _, e := range m.enums {
		info.Enums = append(info.Enums, e.Name())
	}
	slices.Sort(info.Types)
	slices.Sort(info.Enums)
	return info
}

func (r *Registry) owner(module string) *moduleOwner {
	m, ok := r.modules[module]
	if !ok {
		m = newModuleOwner(module)
		r.modules[module] = m
	}
	return m
}

// RegisterOwningModule records module as an owner of type h and copies the
// type into the module's view of every bucket that contains it.
func (r *Registry) RegisterOwningModule(h Hash64, module string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownLocked(h, module)
}

// RegisterEnumOwningModule records module as an owner of enum h.
func (r *Registry) RegisterEnumOwningModule(h Hash64, module string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownEnumLocked(h, module)
}

func (r *Registry) ownLocked(h Hash64, module string) bool {
	d, ok := r.defs[h]
	if !ok {
		return false
	}
	m := r.owner(module)
	m.types[h] = d
	for key, bucket := range r.typeBuckets {
		if containsSorted(bucket, h) {
			m.typeBuckets[key] = insertSorted(m.typeBuckets[key], d)
		}
	}
	for key, bucket := range r.attrBuckets {
		if containsSorted(bucket, h) {
			m.attrBuckets[key] = insertSorted(m.attrBuckets[key], d)
		}
	}
	return true
}

func (r *Registry) ownEnumLocked(h Hash64, module string) bool {
	e, ok := r.enums[h]
	if !ok {
		return false
	}
	r.owner(module).enums[h] = e
	return true
}

// ModuleTypeBucket returns the module's view of type bucket h.
func (r *Registry) ModuleTypeBucket(module string, h Hash64) ([]*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	if _, exists := r.typeBuckets[h]; !exists {
		return nil, false
	}
	return slices.Clone(m.typeBuckets[h]), true
}

// ModuleAttributeBucket returns the module's view of attribute bucket h.
func (r *Registry) ModuleAttributeBucket(module string, h Hash64) ([]*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	if _, exists := r.attrBuckets[h]; !exists {
		return nil, false
	}
	return slices.Clone(m.attrBuckets[h]), true
}

// ModuleReflectionWithAttribute returns the module's types carrying
// attribute h, scanning when no attribute bucket exists.
func (r *Registry) ModuleReflectionWithAttribute(module string, h Hash64) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[module]
	if !ok {
		return nil
	}
	if _, exists := r.attrBuckets[h]; exists {
		return slices.Clone(m.attrBuckets[h])
	}
	owned := make([]*Definition, 0, len(m.types))
	for _, d := range m.types {
		owned = insertSorted(owned, d)
	}
	return scanForAttr(owned, h, r.lookupLocked)
}

// Modules returns every module with registered ownership, sorted by name.
func (r *Registry) Modules() []ModuleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModuleInfo, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.info())
	}
	slices.SortFunc(out, func(a, b ModuleInfo) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// ModuleInfo returns the summary of one module.
func (r *Registry) ModuleInfo(name string) (ModuleInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	if !ok {
		return ModuleInfo{}, false
	}
	return m.info(), true
}

// LoadModule runs the module's entry points in order and records it as the
// owner of everything they register. Loading a module that is already
// loaded is an error; unload it first.
func (r *Registry) LoadModule(m Module) (ModuleInfo, error) {
	name := m.Name()

	r.mu.Lock()
	if _, loaded := r.modules[name]; loaded {
		r.mu.Unlock()
		return ModuleInfo{}, fmt.Errorf("module already loaded: %s", name)
	}
	if r.currentModule != "" {
		current := r.currentModule
		r.mu.Unlock()
		return ModuleInfo{}, fmt.Errorf("module %s is loading while %s loads", name, current)
	}
	r.owner(name)
	r.currentModule = name
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.currentModule = ""
		r.mu.Unlock()

		// A panicking init leaves no owner behind, so the name can load again.
		if p := recover(); p != nil {
			_ = r.UnloadModule(name)
			r.logger.Error("module init panicked",
				zap.String("module", name),
				zap.Any("panic", p))
			panic(p)
		}
	}()

	m.InitReflectionEnums(r)
	m.InitReflectionAttributes(r)
	m.InitReflectionClasses(r)

	info, _ := r.ModuleInfo(name)
	r.logger.Info("loaded module",
		zap.String("module", name),
		zap.String("load_id", info.LoadID),
		zap.Int("types", len(info.Types)),
		zap.Int("enums", len(info.Enums)))
	return info, nil
}

// UnloadModule removes the module and every type and enum no other module
// owns, from the type map and from every bucket.
func (r *Registry) UnloadModule(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.modules[name]
	if !ok {
		return fmt.Errorf("module not loaded: %s", name)
	}
	delete(r.modules, name)

	removed := 0
	for h, d := range m.types {
		if r.ownedElsewhere(h) {
			continue
		}
		delete(r.defs, h)
		delete(r.names, d.Name())
		for key, bucket := range r.typeBuckets {
			r.typeBuckets[key] = removeSorted(bucket, h)
		}
		for key, bucket := range r.attrBuckets {
			r.attrBuckets[key] = removeSorted(bucket, h)
		}
		removed++
	}

	for h, e := range m.enums {
		if r.enumOwnedElsewhere(h) {
			continue
		}
		delete(r.enums, h)
		delete(r.names, e.Name())
	}

	r.logger.Info("unloaded module",
		zap.String("module", name),
		zap.Int("removed_types", removed))
	return nil
}

func (r *Registry) ownedElsewhere(h Hash64) bool {
	for _, other := range r.modules {
		if _, ok := other.types[h]; ok {
			return true
		}
	}
	return false
}

func (r *Registry) enumOwnedElsewhere(h Hash64) bool {
	for _, other := range r.modules {
		if _, ok := other.enums[h]; ok {
			return true
		}
	}
	return false
}
