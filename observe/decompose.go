package observe

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/muir/reflectutils"

	"binding-generator/notify"
)

// ParseChain decomposes a property-access expression into an ordered list of
// segment names. The expression is relative to an implicit root, so
// "Address.City" names the City property of the root's Address property.
//
// Decomposition is purely syntactic: it walks the expression from the
// outermost member access inward, accumulating segments outer-to-inner, then
// reverses to root-to-leaf order. Indexers, calls, and any non-selector
// syntax fail fast with an UnsupportedSegmentError and no partial path.
// Unexported segment names are legal but surface a PrivateMemberAccess
// finding, since generated code cannot reference them.
func ParseChain(expr string) ([]string, []Finding, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid chain expression %q: %w", expr, err)
	}

	var names []string

	for {
		switch n := node.(type) {
		case *ast.SelectorExpr:
			names = append(names, n.Sel.Name)
			node = n.X

		case *ast.Ident:
			names = append(names, n.Name)
			return finishChain(expr, names)

		case *ast.ParenExpr:
			node = n.X

		case *ast.IndexExpr:
			return nil, nil, &UnsupportedSegmentError{
				Kind:    SegmentIndexer,
				Segment: segmentLabel(n.X),
				Expr:    expr,
			}

		case *ast.IndexListExpr:
			return nil, nil, &UnsupportedSegmentError{
				Kind:    SegmentIndexer,
				Segment: segmentLabel(n.X),
				Expr:    expr,
			}

		case *ast.CallExpr:
			return nil, nil, &UnsupportedSegmentError{
				Kind:    SegmentMethodCall,
				Segment: segmentLabel(n.Fun),
				Expr:    expr,
			}

		default:
			return nil, nil, fmt.Errorf("invalid chain expression %q: unsupported syntax", expr)
		}
	}
}

// finishChain reverses the accumulated outer-to-inner names and collects
// visibility findings.
func finishChain(expr string, names []string) ([]string, []Finding, error) {
	if len(names) == 0 {
		return nil, nil, ErrEmptyPath
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	var findings []Finding

	for _, name := range names {
		if !isExported(name) {
			findings = append(findings, Finding{
				Class:   PrivateMemberAccess,
				Segment: name,
				Message: fmt.Sprintf("segment %q of %q is not exported; generated code cannot reference it", name, expr),
			})
		}
	}

	return names, findings, nil
}

// segmentLabel extracts a best-effort segment name from an expression node
// for error reporting.
func segmentLabel(node ast.Expr) string {
	switch n := node.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.SelectorExpr:
		return n.Sel.Name
	case *ast.ParenExpr:
		return segmentLabel(n.X)
	case *ast.IndexExpr:
		return segmentLabel(n.X)
	case *ast.CallExpr:
		return segmentLabel(n.Fun)
	default:
		return token.ILLEGAL.String()
	}
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// resolvedSegment binds one PathSegment to its runtime accessors.
type resolvedSegment struct {
	seg       PathSegment
	declaring reflect.Type   // receiver type (pointer to struct)
	getter    reflect.Method // Name() T
	setter    reflect.Method // SetName(T); zero Method when absent
	hasSetter bool
}

// ResolvedPath is a PropertyPath bound to concrete runtime types and
// accessor methods, ready for subscription or for feeding the code emitter.
type ResolvedPath struct {
	root     reflect.Type
	segments []resolvedSegment
}

// Root returns the root receiver type the path was resolved against.
func (p *ResolvedPath) Root() reflect.Type { return p.root }

// Len returns the number of segments.
func (p *ResolvedPath) Len() int { return len(p.segments) }

// Path returns the value-comparable PropertyPath.
func (p *ResolvedPath) Path() PropertyPath {
	out := make(PropertyPath, len(p.segments))
	for i, rs := range p.segments {
		out[i] = rs.seg
	}

	return out
}

// CanWriteLeaf reports whether the terminal property has a setter.
func (p *ResolvedPath) CanWriteLeaf() bool {
	return p.segments[len(p.segments)-1].hasSetter
}

// walk follows the intermediate getters from root and returns the receiver
// of the terminal segment, or false if any intermediate is nil.
func (p *ResolvedPath) walk(root any) (any, bool) {
	receiver := root

	for i := 0; i < len(p.segments)-1; i++ {
		if isNilValue(receiver) {
			return nil, false
		}

		out := p.segments[i].getter.Func.Call([]reflect.Value{reflect.ValueOf(receiver)})
		receiver = out[0].Interface()
	}

	if isNilValue(receiver) {
		return nil, false
	}

	return receiver, true
}

// ReadLeaf evaluates the terminal property against root. The bool is false
// when an intermediate receiver is nil.
func (p *ResolvedPath) ReadLeaf(root any) (any, bool) {
	receiver, ok := p.walk(root)
	if !ok {
		return nil, false
	}

	out := p.segments[len(p.segments)-1].getter.Func.Call([]reflect.Value{reflect.ValueOf(receiver)})

	return out[0].Interface(), true
}

// WriteLeaf assigns value to the terminal property. Returns false when an
// intermediate receiver is nil (the write is skipped) and an error when the
// leaf has no setter or the value is not assignable.
func (p *ResolvedPath) WriteLeaf(root any, value any) (bool, error) {
	last := len(p.segments) - 1

	if !p.segments[last].hasSetter {
		return false, fmt.Errorf("property %q of %s has no setter",
			p.segments[last].seg.Name, p.segments[last].seg.DeclaringType)
	}

	receiver, ok := p.walk(root)
	if !ok {
		return false, nil
	}

	argType := p.segments[last].setter.Type.In(1)

	var arg reflect.Value

	if value == nil {
		arg = reflect.Zero(argType)
	} else {
		arg = reflect.ValueOf(value)
		if !arg.Type().AssignableTo(argType) {
			if !arg.Type().ConvertibleTo(argType) {
				return false, fmt.Errorf("cannot assign %s to property %q of type %s",
					reflectutils.TypeName(arg.Type()), p.segments[last].seg.Name, reflectutils.TypeName(argType))
			}

			arg = arg.Convert(argType)
		}
	}

	p.segments[last].setter.Func.Call([]reflect.Value{reflect.ValueOf(receiver), arg})

	return true, nil
}

// Resolve binds segment names to accessor methods starting from the root
// type, which must be a pointer to struct. Properties follow the accessor
// convention: getter "Name() T", optional setter "SetName(T)". A name that
// matches only a plain struct field fails with SegmentField: raw fields
// carry no change notification. The chain must type-check: every
// intermediate property must itself be a pointer to struct.
func Resolve(root reflect.Type, names []string) (*ResolvedPath, []Finding, error) {
	if len(names) == 0 {
		return nil, nil, ErrEmptyPath
	}

	if root == nil {
		return nil, nil, fmt.Errorf("root type is nil")
	}

	if root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("root type %s is not a pointer to struct", reflectutils.TypeName(root))
	}

	var findings []Finding

	if root.Implements(errorNotifierType) {
		findings = append(findings, Finding{
			Class:   ValidationMechanismMismatch,
			Segment: names[0],
			Message: fmt.Sprintf("%s exposes validation errors; generated observers cannot honor them", reflectutils.TypeName(root)),
		})
	}

	rp := &ResolvedPath{root: root}
	cur := root

	for i, name := range names {
		if !isExported(name) {
			return nil, findings, fmt.Errorf("segment %q: unexported accessors cannot be observed through reflection", name)
		}

		m, ok := cur.MethodByName(name)
		if !ok {
			if _, isField := cur.Elem().FieldByName(name); isField {
				return nil, findings, &UnsupportedSegmentError{Kind: SegmentField, Segment: name}
			}

			return nil, findings, fmt.Errorf("type %s has no property %q", reflectutils.TypeName(cur), name)
		}

		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			return nil, findings, &UnsupportedSegmentError{Kind: SegmentMethodCall, Segment: name}
		}

		propType := m.Type.Out(0)

		rs := resolvedSegment{
			seg: PathSegment{
				Name:          name,
				PropertyType:  typeRefOf(propType),
				DeclaringType: typeRefOf(cur),
			},
			declaring: cur,
			getter:    m,
		}

		if sm, ok := cur.MethodByName("Set" + name); ok &&
			sm.Type.NumIn() == 2 && sm.Type.NumOut() == 0 && sm.Type.In(1) == propType {
			rs.setter = sm
			rs.hasSetter = true
		}

		rp.segments = append(rp.segments, rs)

		if i < len(names)-1 {
			if propType.Kind() != reflect.Ptr || propType.Elem().Kind() != reflect.Struct {
				return nil, findings, fmt.Errorf(
					"segment %q has type %s and cannot be traversed further",
					name, reflectutils.TypeName(propType))
			}

			cur = propType
		}
	}

	return rp, findings, nil
}

// ResolveExpr parses and resolves a chain expression in one step.
func ResolveExpr(root reflect.Type, expr string) (*ResolvedPath, []Finding, error) {
	names, findings, err := ParseChain(expr)
	if err != nil {
		return nil, findings, err
	}

	rp, more, err := Resolve(root, names)

	return rp, append(findings, more...), err
}

var errorNotifierType = reflect.TypeOf((*notify.ErrorNotifier)(nil)).Elem()
