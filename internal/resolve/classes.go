package resolve

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/types"
)

func (r *Resolver) internStrings(names []string) []source.StringID {
	out := make([]source.StringID, len(names))
	for i, n := range names {
		out[i] = r.strings.Intern(n)
	}
	return out
}

func (r *Resolver) registerClasses(classes []*ast.ClassDecl) {
	for _, cd := range classes {
		id := r.types.RegisterClass(r.strings.Intern(cd.Name), cd.Span, cd.Layout)
		r.classByName[cd.Name] = id
		if len(cd.GenericParams) > 0 {
			r.types.SetGenericParams(id, r.internStrings(cd.GenericParams))
		}
		if cd.NativeLibrary {
			r.types.SetFFIBinding(id, cd.LibraryPaths)
		}
		if cd.Serializable == types.SerializationJSON {
			jsonNames := make(map[source.StringID]source.StringID, len(cd.JSONNames))
			for field, override := range cd.JSONNames {
				jsonNames[r.strings.Intern(field)] = r.strings.Intern(override)
			}
			r.types.SetSerializationPolicy(id, types.SerializationJSON, jsonNames)
		}
	}
}

func (r *Resolver) linkParents(classes []*ast.ClassDecl) {
	for _, cd := range classes {
		if cd.ParentName == "" {
			continue
		}
		parentID, ok := r.classByName[cd.ParentName]
		if !ok {
			r.fatal(diag.ContractBadClassHierarchy, cd.Span,
				fmt.Sprintf("class %q extends unknown class %q", cd.Name, cd.ParentName))
			continue
		}
		r.types.SetParent(r.classByName[cd.Name], parentID)
	}
}

// resolveFields validates and installs each class's field list. Spec
// §4.B fatal condition: duplicate field name.
func (r *Resolver) resolveFields(classes []*ast.ClassDecl) {
	for _, cd := range classes {
		classID := r.classByName[cd.Name]
		seen := make(map[string]struct{}, len(cd.Fields))
		fields := make([]types.FieldSlot, 0, len(cd.Fields))
		for _, f := range cd.Fields {
			if _, dup := seen[f.Name]; dup {
				r.fatal(diag.ContractDuplicateField, f.Span,
					fmt.Sprintf("class %q declares field %q more than once", cd.Name, f.Name))
				continue
			}
			seen[f.Name] = struct{}{}
			fields = append(fields, types.FieldSlot{Name: r.strings.Intern(f.Name), Type: f.Type, Offset: -1})
		}
		r.types.SetFields(classID, fields)
	}
}

// resolveMethodTables installs each class's own (non-inherited) methods
// into its method table, checking override compatibility against the
// parent. Spec §4.B fatal condition: incompatible override signature.
func (r *Resolver) resolveMethodTables(classes []*ast.ClassDecl) {
	for _, cd := range classes {
		classID := r.classByName[cd.Name]
		for _, m := range cd.Methods {
			handle := types.MethodHandle{
				Owner:     classID,
				Name:      r.strings.Intern(m.Name),
				Params:    paramTypes(m.Params),
				Result:    m.Result,
				Dispatch:  dispatchModeOf(m),
				ThrowsSet: m.ThrowsSet,
				Arity:     len(m.Params),
			}
			if parent := r.parentOf(classID); parent != types.NoTypeID {
				if base, ok := r.types.LookupMethod(r.erasedOrSelf(parent), handle.Name, handle.Arity); ok {
					if !signaturesCompatible(base, handle) {
						r.fatal(diag.ContractIncompatibleOverride, m.Span,
							fmt.Sprintf("%s.%s has a signature incompatible with its override in a parent class", cd.Name, m.Name))
						continue
					}
				}
			}
			r.types.AddMethod(classID, handle)
			r.ownMethods[classID] = append(r.ownMethods[classID], handle)
		}
	}
}

func (r *Resolver) erasedOrSelf(id types.TypeID) types.TypeID {
	if r.types == nil {
		return id
	}
	return r.types.ErasedClass(id)
}

func (r *Resolver) parentOf(classID types.TypeID) types.TypeID {
	info, ok := r.types.ClassInfo(classID)
	if !ok {
		return types.NoTypeID
	}
	return info.Parent
}

func paramTypes(params []ast.ParamDecl) []types.TypeID {
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func dispatchModeOf(m *ast.FuncDecl) types.DispatchMode {
	switch {
	case m.IsNative():
		return types.DispatchNative
	case m.IsGenerator():
		return types.DispatchGenerator
	case m.IsAsync():
		return types.DispatchAsync
	case m.ReceiverClass != "":
		return types.DispatchVirtual
	default:
		return types.DispatchStatic
	}
}

func signaturesCompatible(base, override types.MethodHandle) bool {
	if len(base.Params) != len(override.Params) {
		return false
	}
	for i := range base.Params {
		if base.Params[i] != override.Params[i] {
			return false
		}
	}
	return base.Result == override.Result
}
