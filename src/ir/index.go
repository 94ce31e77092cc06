package ir

// resolveIndex resolves the type of a possibly partial indexing expression. The chain of Index nodes is walked
// from the outermost to the innermost level counting the applied index levels (rhsDim). At the base the declared
// dimension count (lhsDim) is read from the variable, the function return type or the array construction. The
// result is the scalar element type when all dimensions are consumed and an array of the remaining dimensions
// otherwise.
func resolveIndex(env *Env, n *Index) (Type, Expr, error) {
	var chain []*Index
	var base Expr = n
	for {
		idx, ok := Unwrap(base).(*Index)
		if !ok {
			break
		}
		chain = append(chain, idx)
		base = idx.X
	}
	rhsDim := len(chain)

	// Check index expressions outermost first.
	indices := make([]Expr, rhsDim)
	for i1, e1 := range chain {
		t, x, err := inferExpr(env, e1.Index)
		if err != nil {
			return Error, nil, err
		}
		if t.Kind != KindInt {
			return Error, nil, newError(OnlyIntegerIndicesAllowed, e1.Index.Position(), "array index must be int, got %s", t)
		}
		indices[i1] = x
	}

	var bt Type
	var bx Expr
	var err error
	switch b := Unwrap(base).(type) {
	case *Ident:
		bt, bx, err = inferExpr(env, b)
	case *Call:
		bt, bx, err = inferCall(env, b)
	case *NewArray:
		bt, bx, err = resolveNew(env, b)
	default:
		return Error, nil, newError(IndexingOfNonArrayType, base.Position(), "expression cannot be indexed")
	}
	if err != nil {
		return Error, nil, err
	}
	lhsDim := bt.Dims
	if rhsDim > lhsDim {
		return Error, nil, newError(InvalidIndexDepth, n.Pos, "cannot index %s with %d indices", bt, rhsDim)
	}

	// Rebuild the chain innermost first, annotating every level with its own type.
	cur := bx
	for i1 := rhsDim - 1; i1 >= 0; i1-- {
		level := rhsDim - i1
		t := ArrayOf(bt.Scalar(), lhsDim-level)
		cur = &Typed{X: &Index{Pos: chain[i1].Pos, X: cur, Index: indices[i1]}, Typ: t}
	}
	return TypeOf(cur), cur, nil
}

// resolveNew resolves the type of an array construction new T[e1]...[eN]. The constructed array has the
// dimensions of T, if T is itself an array, plus N.
func resolveNew(env *Env, n *NewArray) (Type, Expr, error) {
	if len(n.Sizes) == 0 {
		return Error, nil, newError(InvalidIndexDepth, n.Pos, "array construction requires at least one size")
	}
	switch n.Elem.Scalar().Kind {
	case KindInt, KindDouble, KindBool:
	default:
		return Error, nil, newError(InvalidOperandType, n.Pos, "cannot construct array of %s", n.Elem)
	}
	sizes := make([]Expr, len(n.Sizes))
	for i1, e1 := range n.Sizes {
		t, x, err := inferExpr(env, e1)
		if err != nil {
			return Error, nil, err
		}
		if t.Kind != KindInt {
			return Error, nil, newError(OnlyIntegerIndicesAllowed, e1.Position(), "array size must be int, got %s", t)
		}
		sizes[i1] = x
	}
	return typed(&NewArray{Pos: n.Pos, Elem: n.Elem, Sizes: sizes}, ArrayOf(n.Elem, len(n.Sizes)))
}
