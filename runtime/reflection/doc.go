// Package reflection provides runtime-queryable descriptions of registered
// Go types: their fields, overloaded functions, constructors, ancestors and
// attributes, plus serialization and structural versioning.
//
// # Overview
//
// Every reflected type is described by a Definition, built once with a
// fluent Builder and owned by a Registry. Generic code (serializers, editors,
// scripting bridges) walks Definitions and their Var accessors instead of
// the concrete Go types.
//
// # Core Structures
//
//   - Registry: the single store of Definitions and EnumDefinitions, with
//     type buckets (all types implementing an interface) and attribute
//     buckets (all types carrying an attribute), partitioned per module.
//   - Definition: fields in declaration order, overload tables keyed by
//     argument-type hash, constructors, upcasts to ancestors, attributes and
//     load/save/hash hooks.
//   - Var: a type-erased accessor for one field. Shapes are plain fields,
//     properties, fixed arrays, vectors, maps and flag sets.
//   - Attribute: metadata attached to a type, field, function or enum. The
//     contexts an attribute may decorate are declared by the interfaces it
//     implements.
//
// # Example Usage
//
// Registering and serializing a type:
//
//	type Point struct{ X, Y int32 }
//
//	reg := reflection.NewRegistry(reflection.WithLogger(logger))
//	def := reflection.Define[Point](reg).
//		Var("x", reflection.Field(func(p *Point) *int32 { return &p.X })).
//		Var("y", reflection.Field(func(p *Point) *int32 { return &p.Y })).
//		Finish()
//
//	w := tree.NewWriter()
//	def.Save(w, &Point{X: 5, Y: 7})
//	data, _ := jsoncodec.Encode(w.Root()) // {"x":5,"y":7}
//
// Finding every type that implements an interface:
//
//	reg.RegisterTypeBucket(reflection.HandleOf[Drawable]())
//	drawables, _ := reg.TypeBucket(reflection.HandleOf[Drawable]())
//
// # Failure Policy
//
// Lookups return nil or false on a miss. Capability mismatches (a container
// operation on a scalar field, a mutating call through the const path) and
// schema drift (two registrations of a type with different shapes) panic
// with *Error. Malformed documents make Load return an error and may leave
// the destination partially written.
package reflection
