package types

import "slices"

// SubtypeOf implements spec §4.A's subtype_of: nominal class subtyping
// plus exact generic arguments, Nil as a subtype of any class-typed slot,
// and primitives as subtypes only of themselves. IntPtr is never
// implicitly convertible to or from anything, including itself across a
// differently-kinded slot (it only matches IntPtr exactly, handled by the
// equality fast path below).
func (in *Interner) SubtypeOf(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, ok := in.Lookup(a)
	if !ok {
		return false
	}
	tb, ok := in.Lookup(b)
	if !ok {
		return false
	}

	if ta.Kind == KindNil && (tb.Kind == KindClass || tb.Kind == KindGenericInstance) {
		return true
	}

	if ta.Kind.IsPrimitive() || tb.Kind.IsPrimitive() {
		return false // primitives are not subtypes of anything but themselves
	}

	switch ta.Kind {
	case KindClass:
		if tb.Kind != KindClass {
			return false
		}
		return in.IsSubclass(a, b)
	case KindGenericInstance:
		infoA, ok := in.GenericInstanceInfo(a)
		if !ok {
			return false
		}
		switch tb.Kind {
		case KindGenericInstance:
			infoB, ok := in.GenericInstanceInfo(b)
			if !ok {
				return false
			}
			if !slices.Equal(infoA.Args, infoB.Args) {
				return false // exact generic arguments required
			}
			return in.IsSubclass(infoA.Class, infoB.Class)
		case KindClass:
			return in.IsSubclass(infoA.Class, b)
		default:
			return false
		}
	case KindArray:
		return tb.Kind == KindArray && ta.Count == tb.Count && in.sameOrSubtypeElem(ta.Elem, tb.Elem)
	case KindTuple:
		if tb.Kind != KindTuple {
			return false
		}
		elemsA, _ := in.TupleInfo(a)
		elemsB, _ := in.TupleInfo(b)
		if len(elemsA) != len(elemsB) {
			return false
		}
		for i := range elemsA {
			if !in.SubtypeOf(elemsA[i], elemsB[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (in *Interner) sameOrSubtypeElem(a, b TypeID) bool {
	return a == b
}

// CommonSuper returns the nearest common ancestor class of a and b, or
// NoTypeID if they share none (spec §4.A common_super). Non-class types
// have a common super only with themselves.
func (in *Interner) CommonSuper(a, b TypeID) TypeID {
	if a == b {
		return a
	}
	ta, ok := in.Lookup(a)
	if !ok {
		return NoTypeID
	}
	tb, ok := in.Lookup(b)
	if !ok {
		return NoTypeID
	}
	if ta.Kind != KindClass || tb.Kind != KindClass {
		return NoTypeID
	}
	ancestorsA := in.ancestorChain(a)
	seen := make(map[TypeID]struct{}, len(ancestorsA))
	for _, c := range ancestorsA {
		seen[c] = struct{}{}
	}
	for _, c := range in.ancestorChain(b) {
		if _, ok := seen[c]; ok {
			return c
		}
	}
	return NoTypeID
}

func (in *Interner) ancestorChain(classID TypeID) []TypeID {
	var chain []TypeID
	for cur := classID; cur != NoTypeID; {
		chain = append(chain, cur)
		info := in.classInfo(cur)
		if info == nil {
			break
		}
		cur = info.Parent
	}
	return chain
}
