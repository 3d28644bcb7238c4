package analyze

import (
	"go/types"
	"strings"

	"binding-generator/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "binding-generator/examples/contacts"
	Name    string // e.g., "Person"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// ShortString returns "pkgname.Type" using the last path element.
func (t TypeID) ShortString() string {
	if t.PkgPath == "" {
		return t.Name
	}

	if idx := strings.LastIndex(t.PkgPath, "/"); idx >= 0 {
		return t.PkgPath[idx+1:] + "." + t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindBasic              // int, string, bool, etc.
	TypeKindStruct             // struct type
	TypeKindPointer            // pointer to another type
	TypeKindSlice              // slice of another type
	TypeKindFunc               // function type
	TypeKindInterface          // interface type
	TypeKindAlias              // named type wrapping another
	TypeKindExternal           // external/opaque type (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindFunc:
		return "func"
	case TypeKindInterface:
		return "interface"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID       // Unique identifier (empty for unnamed types like *T)
	Kind       TypeKind     // Kind of type
	Basic      string       // For basic kinds, the type name ("string", "int")
	Underlying *TypeInfo    // For aliases, the underlying type
	ElemType   *TypeInfo    // For pointers and slices, the element type
	Fields     []FieldInfo  // For structs, the list of fields
	Methods    []MethodInfo // Pointer method set, promoted methods included
	GoType     types.Type   // The original go/types.Type (nil for hand-built graphs)
}

// TypeString renders a canonical fully-qualified type expression, used for
// plan signatures and error messages.
func (t *TypeInfo) TypeString() string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeKindBasic:
		return t.Basic
	case TypeKindPointer:
		return "*" + t.ElemType.TypeString()
	case TypeKindSlice:
		return "[]" + t.ElemType.TypeString()
	case TypeKindFunc:
		return "func"
	case TypeKindInterface:
		if t.IsNamed() {
			return t.ID.String()
		}

		return "interface"
	default:
		if t.IsNamed() {
			return t.ID.String()
		}

		return t.Kind.String()
	}
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// IsPointerToStruct reports whether this is *T for a struct T.
func (t *TypeInfo) IsPointerToStruct() bool {
	return t.Kind == TypeKindPointer && t.ElemType != nil && t.ElemType.Kind == TypeKindStruct
}

// Method returns the named method from the pointer method set.
func (t *TypeInfo) Method(name string) (MethodInfo, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}

	return MethodInfo{}, false
}

// Field returns the named struct field.
func (t *TypeInfo) Field(name string) (FieldInfo, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldInfo{}, false
}

// Bases returns the named types embedded in this struct.
func (t *TypeInfo) Bases() []*TypeInfo {
	var bases []*TypeInfo

	for _, f := range t.Fields {
		if !f.Embedded || f.Type == nil {
			continue
		}

		base := f.Type
		if base.Kind == TypeKindPointer && base.ElemType != nil {
			base = base.ElemType
		}

		if base.IsNamed() {
			bases = append(bases, base)
		}
	}

	return bases
}

// Embeds reports whether this struct embeds the given type, directly or
// through a chain of embedded structs.
func (t *TypeInfo) Embeds(id TypeID) bool {
	for _, base := range t.Bases() {
		if base.ID == id || base.Embeds(id) {
			return true
		}
	}

	return false
}

// Property resolves a getter/setter convention member: Name() T plus an
// optional SetName(T). Returns false when no conforming getter exists.
func (t *TypeInfo) Property(name string) (PropertyInfo, bool) {
	getter, ok := t.Method(name)
	if !ok || len(getter.Params) != 0 || len(getter.Results) != 1 {
		return PropertyInfo{}, false
	}

	prop := PropertyInfo{
		Name: name,
		Type: getter.Results[0],
	}

	setter, ok := t.Method("Set" + name)
	if ok && len(setter.Params) == 1 && len(setter.Results) == 0 {
		prop.HasSetter = true
	}

	return prop, true
}

// PropertyNames returns the names of all getter-shaped methods, for
// suggestion in diagnostics.
func (t *TypeInfo) PropertyNames() []string {
	var names []string

	for _, m := range t.Methods {
		if len(m.Params) == 0 && len(m.Results) == 1 {
			names = append(names, m.Name)
		}
	}

	return names
}

// PropertyInfo describes an accessor-convention member of a struct.
type PropertyInfo struct {
	Name      string
	Type      *TypeInfo // getter result type
	HasSetter bool
}

// MethodInfo describes one method of a type's pointer method set.
type MethodInfo struct {
	Name    string
	Params  []*TypeInfo
	Results []*TypeInfo
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string    // Go field name
	Exported bool      // Whether the field is exported
	Type     *TypeInfo // Field type
	Embedded bool      // Whether the field is embedded (anonymous)
	Index    int       // Field index in the struct
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// FindType locates a named type by "pkgname.Type" shorthand, matching the
// last element of the package path. Returns nil if absent or ambiguous.
func (g *TypeGraph) FindType(pkg, name string) *TypeInfo {
	var found *TypeInfo

	for id, info := range g.Types {
		if id.Name != name {
			continue
		}

		if id.PkgPath == pkg || strings.HasSuffix(id.PkgPath, "/"+pkg) {
			if found != nil {
				return nil
			}

			found = info
		}
	}

	return found
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
