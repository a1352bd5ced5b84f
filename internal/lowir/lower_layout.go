package lowir

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"ember/internal/diag"
	"ember/internal/erasure"
	"ember/internal/source"
	"ember/internal/types"
)

// materializeLayouts computes and caches the byte layout of every class
// in the Type Context before any function body is translated, so
// InstrLoadField/InstrStoreField can resolve byte offsets and
// InstrGCAlloc can resolve object sizes by simple lookup (spec §4.E:
// "materialize the byte layout of every class used by the program").
//
// internal/layout's cache guards its map with a mutex, so concurrent
// LayoutOf calls are safe. To keep two goroutines from computing the
// same class layout twice (two classes that embed one another as
// fields), this partitions the class set into connected components of
// the "embeds a class-typed field" relation first — a cheap, cache-free
// graph walk — then runs one golang.org/x/sync/errgroup goroutine per
// component: independent, unrelated classes lay out in parallel, while
// classes that reference each other stay on one goroutine together.
func (l *Lowerer) materializeLayouts() {
	classes := l.collectClassIDs()
	if len(classes) == 0 {
		return
	}
	components := groupByDependency(l.types, classes)

	g := new(errgroup.Group)
	errs := make([]error, len(components))
	for i, comp := range components {
		i, comp := i, comp
		g.Go(func() error {
			for _, classID := range comp {
				if _, err := l.layout.LayoutOf(classID); err != nil {
					errs[i] = fmt.Errorf("class %d: %w", classID, err)
					return nil // collected in errs; other components keep going
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			l.fatal(diag.InternalTypeMismatch, source.Span{}, "layout materialization failed: "+err.Error())
		}
	}

	l.checkErasureInvariant()
}

// collectClassIDs walks every interned TypeID looking for KindClass
// entries. internal/types has no dedicated class iterator (ClassInfo
// lookups are by ID, not enumerable), so this does the same linear scan
// internal/erasure's caller is expected to do for GenericInstance IDs.
func (l *Lowerer) collectClassIDs() []types.TypeID {
	var out []types.TypeID
	for id := types.TypeID(1); int(id) < l.types.Len(); id++ {
		t, ok := l.types.Lookup(id)
		if ok && t.Kind == types.KindClass {
			out = append(out, id)
		}
	}
	return out
}

// collectGenericInstanceIDs mirrors collectClassIDs for GenericInstance
// entries, feeding erasure.CheckLayoutIdentity's diagnostic pass.
func (l *Lowerer) collectGenericInstanceIDs() []types.TypeID {
	var out []types.TypeID
	for id := types.TypeID(1); int(id) < l.types.Len(); id++ {
		t, ok := l.types.Lookup(id)
		if ok && t.Kind == types.KindGenericInstance {
			out = append(out, id)
		}
	}
	return out
}

// groupByDependency partitions classes into connected components of the
// "references a class-typed field (directly, or through a parent)"
// relation, using a simple union-find over the class set.
func groupByDependency(ti *types.Interner, classes []types.TypeID) [][]types.TypeID {
	parent := make(map[types.TypeID]types.TypeID, len(classes))
	for _, c := range classes {
		parent[c] = c
	}
	var find func(types.TypeID) types.TypeID
	find = func(x types.TypeID) types.TypeID {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b types.TypeID) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, c := range classes {
		info, ok := ti.ClassInfo(c)
		if !ok {
			continue
		}
		if info.Parent != types.NoTypeID {
			if _, known := parent[ti.ErasedClass(info.Parent)]; known {
				union(c, ti.ErasedClass(info.Parent))
			}
		}
		for _, f := range info.Fields {
			erased := ti.ErasedClass(f.Type)
			if _, known := parent[erased]; known {
				union(c, erased)
			}
		}
	}

	byRoot := make(map[types.TypeID][]types.TypeID, len(classes))
	for _, c := range classes {
		root := find(c)
		byRoot[root] = append(byRoot[root], c)
	}
	out := make([][]types.TypeID, 0, len(byRoot))
	for _, comp := range byRoot {
		out = append(out, comp)
	}
	return out
}

func (l *Lowerer) checkErasureInvariant() {
	instances := l.collectGenericInstanceIDs()
	if len(instances) == 0 {
		return
	}
	if err := erasure.CheckLayoutIdentity(l.layout, l.types, instances); err != nil {
		l.fatal(diag.InternalTypeMismatch, source.Span{}, "erasure invariant violated: "+err.Error())
	}
}
