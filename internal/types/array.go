package types

// ArrayDynamicLength marks an Array(Type) whose length is unknown at
// compile time (a slice-like array rather than a fixed-size one).
const ArrayDynamicLength = ^uint32(0)

// RegisterArray interns Array(elem) with the given fixed length, or
// ArrayDynamicLength for an open-ended array. Array, Channel, Future and
// Hash are structural types: two registrations with the same shape intern
// to the same TypeID, unlike nominal Class types.
func (in *Interner) RegisterArray(elem TypeID, length uint32) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: length})
}

// ArrayInfo reports the element type and length of an Array(Type).
func (in *Interner) ArrayInfo(id TypeID) (elem TypeID, length uint32, ok bool) {
	t, found := in.Lookup(id)
	if !found || t.Kind != KindArray {
		return NoTypeID, 0, false
	}
	return t.Elem, t.Count, true
}

// RegisterHash interns Hash(key, value). The value TypeID is packed into
// the Count field since Hash has no structural element list of its own.
func (in *Interner) RegisterHash(key, value TypeID) TypeID {
	return in.Intern(Type{Kind: KindHash, Elem: key, Count: uint32(value)})
}

// HashInfo reports the key/value types of a Hash(Type,Type).
func (in *Interner) HashInfo(id TypeID) (key, value TypeID, ok bool) {
	t, found := in.Lookup(id)
	if !found || t.Kind != KindHash {
		return NoTypeID, NoTypeID, false
	}
	return t.Elem, TypeID(t.Count), true
}

// RegisterRange interns the Range type (elementless per spec §3).
func (in *Interner) RegisterRange() TypeID {
	return in.Intern(Type{Kind: KindRange})
}

// RegisterChannel interns Channel(elem).
func (in *Interner) RegisterChannel(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindChannel, Elem: elem})
}

// ChannelElem reports the element type of a Channel(Type).
func (in *Interner) ChannelElem(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindChannel {
		return NoTypeID, false
	}
	return t.Elem, true
}

// RegisterFuture interns Future(elem).
func (in *Interner) RegisterFuture(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindFuture, Elem: elem})
}

// FutureElem reports the element type of a Future(Type).
func (in *Interner) FutureElem(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFuture {
		return NoTypeID, false
	}
	return t.Elem, true
}
