// Package observe implements the property-path observation engine: it
// decomposes property-access expressions into ordered chains, classifies the
// change-notification mechanism of each type along the chain, and builds
// switch-latest subscription pipelines that follow the chain through
// intermediate receiver replacement.
package observe

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeRef identifies a type by package path and name. Pointer types carry a
// "*" prefix on the name. Basic types have an empty package path.
type TypeRef struct {
	PkgPath string
	Name    string
}

// String returns "pkgpath.Name" or just the name for basic types.
func (r TypeRef) String() string {
	if r.PkgPath == "" {
		return r.Name
	}

	stars := 0
	for stars < len(r.Name) && r.Name[stars] == '*' {
		stars++
	}

	return r.Name[:stars] + r.PkgPath + "." + r.Name[stars:]
}

// IsZero reports whether the reference is empty.
func (r TypeRef) IsZero() bool {
	return r.PkgPath == "" && r.Name == ""
}

// typeRefOf builds a TypeRef from a reflect.Type, prefixing "*" per pointer
// level.
func typeRefOf(t reflect.Type) TypeRef {
	prefix := ""
	for t.Kind() == reflect.Ptr {
		prefix += "*"
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		// Unnamed composite; fall back to the reflect rendering.
		name = t.String()
	}

	return TypeRef{
		PkgPath: t.PkgPath(),
		Name:    prefix + name,
	}
}

// PathSegment is one step of a property-access chain: the property name, its
// declared type, and the type that declares it. Segments are value-equal.
type PathSegment struct {
	Name          string
	PropertyType  TypeRef
	DeclaringType TypeRef
}

// PropertyPath is an ordered root-to-leaf sequence of segments. A valid path
// has length >= 1 and type-checks: segment i's property type is segment
// i+1's receiver type.
type PropertyPath []PathSegment

// String renders the path as "Root.Name1.Name2".
func (p PropertyPath) String() string {
	names := make([]string, len(p))
	for i, seg := range p {
		names[i] = seg.Name
	}

	return strings.Join(names, ".")
}

// Equal reports value equality of two paths.
func (p PropertyPath) Equal(other PropertyPath) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// Leaf returns the terminal segment. Panics on an empty path, which cannot
// be produced by the decomposer.
func (p PropertyPath) Leaf() PathSegment {
	return p[len(p)-1]
}

// Signature returns a canonical structural rendering of the path used for
// memoization keys: every segment with its declaring and property types.
func (p PropertyPath) Signature() string {
	var sb strings.Builder

	for i, seg := range p {
		if i > 0 {
			sb.WriteByte('|')
		}

		fmt.Fprintf(&sb, "%s:%s->%s", seg.DeclaringType, seg.Name, seg.PropertyType)
	}

	return sb.String()
}
