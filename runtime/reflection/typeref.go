package reflection

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeRef names a reflected type by its canonical name and handle.
type TypeRef struct {
	Name   string `json:"name"`
	Handle Hash64 `json:"handle"`
}

// IsZero reports whether the ref names no type.
func (r TypeRef) IsZero() bool {
	return r.Name == "" && r.Handle == 0
}

func (r TypeRef) String() string {
	return r.Name
}

// Void stands in for "no result" in function signatures.
type Void struct{}

// typeRefs caches the canonical ref of every Go type that has been named.
var typeRefs sync.Map // reflect.Type -> TypeRef

// RefOf returns the canonical ref of T.
func RefOf[T any]() TypeRef {
	return refOfType(reflect.TypeFor[T]())
}

// TypeName returns the canonical name of T: the Go name for builtins,
// pkgpath.Name for named types and a structural name for composites.
func TypeName[T any]() string {
	return RefOf[T]().Name
}

// HandleOf returns the handle of T.
func HandleOf[T any]() Hash64 {
	return RefOf[T]().Handle
}

func refOfType(t reflect.Type) TypeRef {
	if cached, ok := typeRefs.Load(t); ok {
		return cached.(TypeRef)
	}

	name := canonicalName(t)
	ref := TypeRef{Name: name, Handle: HashName(name)}
	typeRefs.Store(t, ref)
	return ref
}

// baseRefOf returns the ref used for an upcast target: pointer targets name
// their element type.
func baseRefOf[B any]() TypeRef {
	t := reflect.TypeFor[B]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return refOfType(t)
}

func canonicalName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + canonicalName(t.Elem())
	case reflect.Slice:
		return "[]" + canonicalName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), canonicalName(t.Elem()))
	case reflect.Map:
		return "map[" + canonicalName(t.Key()) + "]" + canonicalName(t.Elem())
	default:
		return t.String()
	}
}

// ArgHash hashes an ordered list of types. Function overloads are keyed by
// ArgHash(result, args...), constructors by ArgHash(args...).
func ArgHash(refs ...TypeRef) Hash64 {
	h := InitHash
	for _, r := range refs {
		h = CombineHash(h, r.Handle)
	}
	return h
}

// ArgsOf0 is the constructor key of a constructor without arguments.
func ArgsOf0() Hash64 { return ArgHash() }

// ArgsOf1 is the constructor key for (A).
func ArgsOf1[A any]() Hash64 { return ArgHash(RefOf[A]()) }

// ArgsOf2 is the constructor key for (A, B).
func ArgsOf2[A, B any]() Hash64 { return ArgHash(RefOf[A](), RefOf[B]()) }

// ArgsOf3 is the constructor key for (A, B, C).
func ArgsOf3[A, B, C any]() Hash64 {
	return ArgHash(RefOf[A](), RefOf[B](), RefOf[C]())
}

// SignatureOf0 is the overload key of a function returning R with no arguments.
func SignatureOf0[R any]() Hash64 { return ArgHash(RefOf[R]()) }

// SignatureOf1 is the overload key of func(A) R.
func SignatureOf1[R, A any]() Hash64 { return ArgHash(RefOf[R](), RefOf[A]()) }

// SignatureOf2 is the overload key of func(A, B) R.
func SignatureOf2[R, A, B any]() Hash64 {
	return ArgHash(RefOf[R](), RefOf[A](), RefOf[B]())
}

// SignatureOf3 is the overload key of func(A, B, C) R.
func SignatureOf3[R, A, B, C any]() Hash64 {
	return ArgHash(RefOf[R](), RefOf[A](), RefOf[B](), RefOf[C]())
}
