package reflection

// structuralVersion folds, in declaration order, the type name, ancestors,
// fields with their shapes and attributes, function signatures, constructors,
// class attributes and the user version.
func structuralVersion(d *Definition) Hash64 {
	h := CombineString(InitHash, d.ref.Name)

	for _, base := range d.baseOrder {
		h = CombineString(h, base.Name)
	}

	for _, e := range d.vars {
		v := e.v
		h = CombineString(h, v.Name())
		h = CombineString(h, v.Type().Name)
		h = CombineString(h, shapeOf(v))
		if v.IsMap() {
			h = CombineString(h, v.KeyType().Name)
		}
		h = foldAttrs(h, e.attrs)
	}

	h = foldFuncs(h, &d.funcs)
	h = foldFuncs(h, &d.staticFuncs)

	for _, c := range d.ctorOrder {
		h = CombineHash(h, c)
	}

	h = foldAttrs(h, d.attrs)
	return CombineUint64(h, uint64(d.userVersion))
}

func foldFuncs(h Hash64, t *overloadTable) Hash64 {
	for _, s := range t.sets {
		h = CombineString(h, s.name)
		for _, f := range s.order {
			h = CombineHash(h, f.hash)
			h = CombineBool(h, f.isConst)
			h = foldAttrs(h, f.attrs)
		}
	}
	return h
}

func shapeOf(v Var) string {
	switch {
	case v.IsFixedArray():
		return "array"
	case v.IsVector():
		return "vector"
	case v.IsMap():
		return "map"
	case v.IsFlags():
		return "flags"
	default:
		return "scalar"
	}
}

// enumVersion folds the enum name, its entries and attributes.
func enumVersion(e *EnumDefinition) Hash64 {
	h := CombineString(InitHash, e.ref.Name)
	for _, entry := range e.entries {
		h = CombineString(h, entry.Name)
		h = CombineUint64(h, uint64(entry.Value))
	}
	return foldAttrs(h, e.attrs)
}
