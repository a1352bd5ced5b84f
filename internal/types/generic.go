package types

import "slices"

// GenericInstanceInfo records the class and type arguments of a
// GenericInstance(class_id, [Type]). Per spec §4.D, generics are
// type-erased: every instantiation of the same generic class shares the
// class's single layout. This side table exists only so static sites
// (load_erased reinterpret sites) can recover the argument type they
// should reinterpret a pointer-sized slot as — it is never used to
// select or generate a distinct function body or layout.
type GenericInstanceInfo struct {
	Class TypeID
	Args  []TypeID
}

// RegisterGenericInstance interns GenericInstance(class, args),
// deduplicating by structural equality of (class, args).
func (in *Interner) RegisterGenericInstance(class TypeID, args []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		t := in.types[id]
		if t.Kind != KindGenericInstance || int(t.Payload) >= len(in.instances) {
			continue
		}
		info := in.instances[t.Payload]
		if info.Class == class && slices.Equal(info.Args, args) {
			return id
		}
	}
	slot := nextSlot(len(in.instances), "generic-instance")
	in.instances = append(in.instances, GenericInstanceInfo{Class: class, Args: cloneTypeIDs(args)})
	return in.internRaw(Type{Kind: KindGenericInstance, Payload: slot})
}

// GenericInstanceInfo retrieves the (class, args) pair for a
// GenericInstance type.
func (in *Interner) GenericInstanceInfo(id TypeID) (GenericInstanceInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindGenericInstance || int(t.Payload) >= len(in.instances) {
		return GenericInstanceInfo{}, false
	}
	info := in.instances[t.Payload]
	return GenericInstanceInfo{Class: info.Class, Args: cloneTypeIDs(info.Args)}, true
}

// ErasedClass returns the underlying (erased) class a type reduces to
// for layout purposes: a GenericInstance erases to its Class; every
// other kind is its own erased form.
func (in *Interner) ErasedClass(id TypeID) TypeID {
	if info, ok := in.GenericInstanceInfo(id); ok {
		return info.Class
	}
	return id
}
