package analyze

import (
	"errors"
	"fmt"
	"strings"

	"binding-generator/internal/diagnostic"
	"binding-generator/internal/manifest"
	"binding-generator/internal/match"
	"binding-generator/observe"
)

// CallPlan is one fully resolved observation call site: the root type, the
// chain with its per-level mechanism, and the subscription options. It
// carries everything the code emitter needs.
type CallPlan struct {
	Name        string // binding name from the manifest
	Root        *TypeInfo
	Expr        string // original path expression
	Segments    []SegmentPlan
	Mode        observe.Mode
	Distinct    bool
	EmitInitial bool
}

// SegmentPlan is one chain level of a CallPlan.
type SegmentPlan struct {
	Name      string
	Declaring *TypeInfo // struct type the accessor is declared on
	Property  PropertyInfo
	Mechanism StaticDescriptor
	Terminal  bool
}

// Signature returns a canonical string identifying the plan's structure:
// root, per-segment declaring type, property type and mechanism, plus the
// subscription options. Plans with equal signatures generate identical
// observer bodies.
func (p *CallPlan) Signature() string {
	var sb strings.Builder

	sb.WriteString(p.Root.ID.String())

	for _, s := range p.Segments {
		fmt.Fprintf(&sb, "|%s:%s:%s:%d",
			s.Name, s.Property.Type.TypeString(), s.Mechanism.Kind, boolBit(s.Property.HasSetter))
	}

	fmt.Fprintf(&sb, "|mode=%s|distinct=%d|init=%d",
		p.Mode, boolBit(p.Distinct), boolBit(p.EmitInitial))

	return sb.String()
}

func boolBit(b bool) int {
	if b {
		return 1
	}

	return 0
}

// Terminal returns the leaf segment plan.
func (p *CallPlan) Terminal() SegmentPlan {
	return p.Segments[len(p.Segments)-1]
}

// ResolveChain statically resolves one manifest binding against the type
// graph, mirroring the runtime resolver's rules. A nil plan with no error
// findings means the call site needs the reflection engine instead of
// generated code (private members).
func ResolveChain(graph *TypeGraph, b manifest.Binding) (*CallPlan, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	name := b.DisplayName()

	pkg, typ, err := b.RootParts()
	if err != nil {
		diags.AddError(diagnostic.CodeUnknownType, err.Error(), name, b.Path)
		return nil, diags
	}

	root := graph.FindType(pkg, typ)
	if root == nil {
		diags.AddError(diagnostic.CodeUnknownType,
			fmt.Sprintf("type %s not found in loaded packages", b.Root), name, b.Path)
		return nil, diags
	}

	if root.Kind != TypeKindStruct {
		diags.AddError(diagnostic.CodeUnknownType,
			fmt.Sprintf("type %s is not a struct (kind: %s)", root.ID, root.Kind), name, b.Path)
		return nil, diags
	}

	names, findings, err := observe.ParseChain(b.Path)
	if err != nil {
		diags.AddError(diagnostic.CodeUnsupportedSegment, err.Error(), name, b.Path)
		return nil, diags
	}

	for _, f := range findings {
		if f.Class == observe.PrivateMemberAccess {
			diags.AddWarning(diagnostic.CodePrivateMember,
				fmt.Sprintf("segment %q is unexported; call site needs the reflection engine", f.Segment),
				name, b.Path)
		}
	}

	// Unexported accessors cannot be referenced from the generated package.
	if diags.HasErrors() || len(diags.Warnings) > 0 {
		return nil, diags
	}

	mode := observe.AfterChange
	if b.EffectiveMode() == manifest.ModeBefore {
		mode = observe.BeforeChange
	}

	plan := &CallPlan{
		Name:        b.Name,
		Root:        root,
		Expr:        b.Path,
		Mode:        mode,
		Distinct:    b.Distinct,
		EmitInitial: b.EmitInitial,
	}

	current := root

	for i, segName := range names {
		terminal := i == len(names)-1

		prop, ok := current.Property(segName)
		if !ok {
			if _, isField := current.Field(segName); isField {
				diags.AddError(diagnostic.CodeUnsupportedSegment,
					fmt.Sprintf("%s.%s is a raw struct field; observation requires %s() accessors",
						current.ID, segName, segName),
					name, b.Path)
			} else {
				msg := fmt.Sprintf("%s has no accessor %s()", current.ID, segName)
				if hint := match.Closest(segName, current.PropertyNames()); hint != "" {
					msg += fmt.Sprintf("; did you mean %s?", hint)
				}

				diags.AddError(diagnostic.CodeUnsupportedSegment, msg, name, b.Path)
			}

			return nil, diags
		}

		desc := Classify(current)
		if !desc.Supported() {
			diags.AddError(diagnostic.CodeNoNotification,
				fmt.Sprintf("%s exposes no change-notification mechanism", current.ID), name, b.Path)
			return nil, diags
		}

		if terminal && mode == observe.BeforeChange && !desc.SupportsBeforeChange {
			diags.AddError(diagnostic.CodeNoNotification,
				fmt.Sprintf("%s (%s) cannot deliver before-change notifications", current.ID, desc.Kind),
				name, b.Path)
			return nil, diags
		}

		if i == 0 && desc.HasValidation {
			diags.AddInfo(diagnostic.CodeValidationMismatch,
				fmt.Sprintf("%s exposes validation errors that generated observers do not surface", current.ID),
				name, b.Path)
		}

		plan.Segments = append(plan.Segments, SegmentPlan{
			Name:      segName,
			Declaring: current,
			Property:  prop,
			Mechanism: desc,
			Terminal:  terminal,
		})

		if terminal {
			if !prop.HasSetter {
				diags.AddInfo(diagnostic.CodeUnwritableLeaf,
					fmt.Sprintf("%s.%s has no setter; usable as a binding source only", current.ID, segName),
					name, b.Path)
			}

			break
		}

		if !prop.Type.IsPointerToStruct() || !prop.Type.ElemType.IsNamed() {
			diags.AddError(diagnostic.CodeUnsupportedSegment,
				fmt.Sprintf("intermediate %s.%s is %s; chains descend through pointers to named structs",
					current.ID, segName, prop.Type.TypeString()),
				name, b.Path)
			return nil, diags
		}

		current = prop.Type.ElemType
	}

	return plan, diags
}

// ResolveManifest resolves every binding in the manifest, collecting plans
// for generatable call sites and merging all diagnostics. Plans come back
// in manifest order.
func ResolveManifest(graph *TypeGraph, f *manifest.File) ([]*CallPlan, diagnostic.Diagnostics) {
	var (
		plans []*CallPlan
		diags diagnostic.Diagnostics
	)

	for _, b := range f.Bindings {
		plan, d := ResolveChain(graph, b)
		diags.Merge(d)

		if plan != nil {
			plans = append(plans, plan)
		}
	}

	return plans, diags
}

// ErrNoPlans is returned by generators given an empty plan set.
var ErrNoPlans = errors.New("no generatable bindings")
