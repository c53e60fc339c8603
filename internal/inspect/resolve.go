package inspect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

var (
	// ErrNotFound is returned when no type, enum or attribute matches a name.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a short name matches several candidates.
	ErrAmbiguous = errors.New("ambiguous name")
)

// matchName picks the candidate equal to name, or the single candidate whose
// qualified name ends in "/name" or ".name". Candidates must be sorted.
func matchName(kind, name string, candidates []string) (string, error) {
	var matches []string
	for _, c := range candidates {
		if c == name {
			return c, nil
		}
		if strings.HasSuffix(c, "."+name) || strings.HasSuffix(c, "/"+name) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s %q matches %s: %w", kind, name, strings.Join(matches, ", "), ErrAmbiguous)
	}
}

// FindType resolves a full or short type name. Builtin primitives resolve by
// their exact name.
func FindType(reg *reflection.Registry, name string) (*reflection.Definition, error) {
	if d, ok := reg.ReflectionByName(name); ok {
		return d, nil
	}
	if d, ok := reg.Reflection(reflection.HashName(name)); ok {
		return d, nil
	}

	all := reg.All()
	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name())
	}
	sort.Strings(names)

	full, err := matchName("type", name, names)
	if err != nil {
		return nil, err
	}
	d, _ := reg.ReflectionByName(full)
	return d, nil
}

// FindEnum resolves a full or short enum name.
func FindEnum(reg *reflection.Registry, name string) (*reflection.EnumDefinition, error) {
	if e, ok := reg.EnumByName(name); ok {
		return e, nil
	}

	enums := reg.Enums()
	names := make([]string, 0, len(enums))
	for _, e := range enums {
		names = append(names, e.Name())
	}

	full, err := matchName("enum", name, names)
	if err != nil {
		return nil, err
	}
	e, _ := reg.EnumByName(full)
	return e, nil
}

// KnownAttributes returns the names of every attribute attached to a
// registered type, field or function, sorted.
func KnownAttributes(reg *reflection.Registry) []string {
	seen := make(map[string]struct{})
	add := func(attrs []reflection.Attribute) {
		for _, a := range attrs {
			seen[reflection.AttrRef(a).Name] = struct{}{}
		}
	}

	for _, d := range reg.All() {
		add(d.ClassAttrs())
		for i := 0; i < d.NumVars(); i++ {
			add(d.VarAttrs(reflection.HashName(d.VarName(i))))
		}
		for i := 0; i < d.NumFuncs(); i++ {
			for j := 0; j < d.NumFuncOverloads(i); j++ {
				add(d.FuncAt(i, j).Attrs())
			}
		}
		for i := 0; i < d.NumStaticFuncs(); i++ {
			for j := 0; j < d.NumStaticFuncOverloads(i); j++ {
				add(d.StaticFuncAt(i, j).Attrs())
			}
		}
	}
	for _, e := range reg.Enums() {
		add(e.Attrs())
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FindAttribute resolves a full or short attribute name to its handle.
func FindAttribute(reg *reflection.Registry, name string) (string, reflection.Hash64, error) {
	full, err := matchName("attribute", name, KnownAttributes(reg))
	if err != nil {
		return "", 0, err
	}
	return full, reflection.HashName(full), nil
}

// TypesWithAttribute lists the types carrying the named attribute, through
// the attribute bucket when one exists.
func TypesWithAttribute(reg *reflection.Registry, name string) (string, []*reflection.Definition, error) {
	full, h, err := FindAttribute(reg, name)
	if err != nil {
		return "", nil, err
	}
	if bucket, ok := reg.AttributeBucket(h); ok {
		return full, bucket, nil
	}
	return full, reg.ReflectionWithAttribute(h), nil
}

// Bucket returns the types implementing the named interface. A registered
// bucket is read as is; otherwise the registered types are scanned and the
// registry is left unchanged.
func Bucket(reg *reflection.Registry, name string) (BucketView, error) {
	d, err := FindType(reg, name)
	if err != nil {
		return BucketView{}, err
	}
	defs := reg.ReflectionWithInterface(d.Handle())
	return BucketView{Interface: d.Name(), Types: Summaries(defs)}, nil
}

// ListTypes lists registered types, optionally restricted to one interface
// bucket and one module.
func ListTypes(reg *reflection.Registry, bucket, module string) ([]TypeSummary, error) {
	defs := reg.All()

	if bucket != "" {
		view, err := Bucket(reg, bucket)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(view.Types))
		for _, t := range view.Types {
			keep[t.Name] = true
		}
		defs = filter(defs, func(d *reflection.Definition) bool { return keep[d.Name()] })
	}

	if module != "" {
		info, ok := reg.ModuleInfo(module)
		if !ok {
			return nil, fmt.Errorf("module %q: %w", module, ErrNotFound)
		}
		keep := make(map[string]bool, len(info.Types))
		for _, name := range info.Types {
			keep[name] = true
		}
		defs = filter(defs, func(d *reflection.Definition) bool { return keep[d.Name()] })
	}

	return Summaries(defs), nil
}

func filter(defs []*reflection.Definition, keep func(*reflection.Definition) bool) []*reflection.Definition {
	out := defs[:0]
	for _, d := range defs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
