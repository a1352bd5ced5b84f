package source

import (
	"fmt"

	"fortio.org/safecast"
)

// StringID is a handle into the Interner's string pool. Equal strings
// intern to equal handles.
type StringID uint32

// NoStringID marks the absence of an interned string.
const NoStringID StringID = 0

// Interner deduplicates strings (identifiers, literal text, JSON field
// names) into stable handles.
type Interner struct {
	strs  []string
	index map[string]StringID
}

// NewInterner constructs an empty interner with slot 0 reserved as the
// "no string" sentinel.
func NewInterner() *Interner {
	in := &Interner{index: make(map[string]StringID, 256)}
	in.strs = append(in.strs, "")
	return in
}

// Intern returns the stable handle for s, allocating one if this is the
// first occurrence.
func (in *Interner) Intern(s string) StringID {
	if in == nil {
		return NoStringID
	}
	if id, ok := in.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.strs))
	if err != nil {
		panic(fmt.Errorf("source: string pool overflow: %w", err))
	}
	id := StringID(n)
	in.strs = append(in.strs, s)
	in.index[s] = id
	return id
}

// Lookup returns the string for id, or "" and false if id is invalid.
func (in *Interner) Lookup(id StringID) (string, bool) {
	if in == nil || id == NoStringID || int(id) >= len(in.strs) {
		return "", false
	}
	return in.strs[id], true
}

// MustLookup panics on an invalid handle; used where the handle is known
// to originate from this interner.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("source: invalid StringID")
	}
	return s
}

// Len reports the number of distinct interned strings, including the
// reserved sentinel slot.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.strs)
}
