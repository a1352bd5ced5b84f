package erasure

import (
	"fmt"

	"ember/internal/layout"
	"ember/internal/types"
)

// CheckLayoutIdentity checks spec §8.4 ("Generic erasure: for two
// instantiations of the same generic class with different type
// arguments, the emitted class layouts are byte-identical") for each
// class with at least two of the given instances, by comparing the
// size and alignment of each instance's erased-class layout against
// the generic class's own layout; field offsets are not compared.
// It is a diagnostic double-check, not part of the lowering contract
// itself: erasure guarantees this by construction (every instance of a
// class shares the class's own Fields/VTable), so a violation here
// indicates a bug elsewhere in the middle end, not a legitimate design
// choice to react to at runtime.
func CheckLayoutIdentity(eng *layout.Engine, typesIn *types.Interner, instances []types.TypeID) error {
	byClass := make(map[types.TypeID][]types.TypeID, len(instances))
	for _, inst := range instances {
		info, ok := typesIn.GenericInstanceInfo(inst)
		if !ok {
			continue
		}
		byClass[info.Class] = append(byClass[info.Class], inst)
	}

	for class, insts := range byClass {
		if len(insts) < 2 {
			continue
		}
		first, err := eng.LayoutOf(class)
		if err != nil {
			return fmt.Errorf("erasure invariant: class %d has no layout: %w", class, err)
		}
		for _, other := range insts[1:] {
			otherLayout, err := eng.LayoutOf(typesIn.ErasedClass(other))
			if err != nil {
				return fmt.Errorf("erasure invariant: instance %d has no layout: %w", other, err)
			}
			if otherLayout.Size != first.Size || otherLayout.Align != first.Align {
				return fmt.Errorf("erasure invariant violated: class %d instantiations do not share one layout", class)
			}
		}
	}
	return nil
}
