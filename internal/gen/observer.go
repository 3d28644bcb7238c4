package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"binding-generator/internal/analyze"
	"binding-generator/internal/common"
	"binding-generator/observe"
)

// Packages the generated code wires against.
const (
	notifyPkgPath  = "binding-generator/notify"
	observePkgPath = "binding-generator/observe"
)

// Config holds configuration for observer generation.
type Config struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		PackageName: "bindings",
		OutputDir:   "./bindings",
	}
}

// Generator renders typed, reflection-free observer functions from resolved
// call plans. Plans with structurally equal signatures share one emitted
// body; later ones become aliases.
type Generator struct {
	config Config
	graph  *analyze.TypeGraph

	// memo maps a plan signature hash to the emitted function name.
	memo map[uint64]string
	used map[string]bool
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "contacts_observers.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate renders observer functions for the given plans, one file per
// observed root package. Returns a list of generated files.
func (g *Generator) Generate(graph *analyze.TypeGraph, plans []*analyze.CallPlan) ([]GeneratedFile, error) {
	if len(plans) == 0 {
		return nil, analyze.ErrNoPlans
	}

	g.graph = graph
	g.memo = make(map[uint64]string)
	g.used = make(map[string]bool)

	// Group by root package, preserving plan order within each group.
	groups := make(map[string][]*analyze.CallPlan)

	var order []string

	for _, p := range plans {
		key := p.Root.ID.PkgPath
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], p)
	}

	var files []GeneratedFile

	for _, pkgPath := range order {
		file, err := g.generateFile(pkgPath, groups[pkgPath])
		if err != nil {
			return nil, fmt.Errorf("generating observers for %s: %w", pkgPath, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// fileData holds all data needed for the observer file template.
type fileData struct {
	PackageName string
	Imports     []importSpec
	Functions   []string
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// generateFile renders one file of observers for plans sharing a root package.
func (g *Generator) generateFile(pkgPath string, plans []*analyze.CallPlan) (*GeneratedFile, error) {
	filename := common.PkgAlias(pkgPath) + "_observers.go"

	data := &fileData{PackageName: g.config.PackageName}
	imports := make(map[string]importSpec)

	for _, p := range plans {
		fn, err := g.renderObserver(p, imports)
		if err != nil {
			return nil, err
		}

		data.Functions = append(data.Functions, fn)
	}

	for _, imp := range imports {
		data.Imports = append(data.Imports, imp)
	}

	sort.Slice(data.Imports, func(i, j int) bool {
		return data.Imports[i].Path < data.Imports[j].Path
	})

	var buf bytes.Buffer
	if err := observerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, filename, buf.Bytes())
		}
		// Return unformatted code for debugging
		return &GeneratedFile{
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: filename,
		Content:  formatted,
	}, nil
}

// renderObserver renders one observer function, or an alias when an
// identical body was already emitted for another binding.
func (g *Generator) renderObserver(p *analyze.CallPlan, imports map[string]importSpec) (string, error) {
	name := g.functionName(p)
	if g.used[name] {
		return "", fmt.Errorf("duplicate observer name %s", name)
	}

	g.used[name] = true

	hash, err := signatureHash(p.Signature())
	if err != nil {
		return "", fmt.Errorf("hashing plan signature: %w", err)
	}

	if prior, ok := g.memo[hash]; ok {
		return fmt.Sprintf("// %s shares the memoized body of %s.\nvar %s = %s\n", name, prior, name, prior), nil
	}

	g.memo[hash] = name

	g.addImport(imports, notifyPkgPath)

	n := len(p.Segments)
	rootType := "*" + g.qualified(p.Root.ID, imports)
	termType := g.typeExpr(p.Terminal().Property.Type, imports)

	var b strings.Builder

	fmt.Fprintf(&b, "// %s observes %s on %s (%s).\n", name, p.Expr, rootType, p.Mode)
	b.WriteString("// The returned stop function is idempotent.\n")
	fmt.Fprintf(&b, "func %s(root %s, on func(%s)) func() {\n", name, rootType, termType)
	fmt.Fprintf(&b, "\tvar removes [%d]func()\n\n", n)

	b.WriteString("\tdetach := func(level int) {\n")
	fmt.Fprintf(&b, "\t\tfor i := %d; i >= level; i-- {\n", n-1)
	b.WriteString("\t\t\tif removes[i] != nil {\n")
	b.WriteString("\t\t\t\tremoves[i]()\n")
	b.WriteString("\t\t\t\tremoves[i] = nil\n")
	b.WriteString("\t\t\t}\n\t\t}\n\t}\n\n")

	g.renderEmit(&b, p, termType, imports)

	for i := n - 1; i >= 0; i-- {
		g.renderWire(&b, p, i, rootType, termType, imports)
	}

	fmt.Fprintf(&b, "\twire0(root, %t)\n\n", p.EmitInitial)
	b.WriteString("\treturn func() { detach(0) }\n")
	b.WriteString("}\n")

	return b.String(), nil
}

// renderEmit renders the terminal delivery func, with the distinct guard
// inlined when requested.
func (g *Generator) renderEmit(b *strings.Builder, p *analyze.CallPlan, termType string, imports map[string]importSpec) {
	if !p.Distinct {
		b.WriteString("\temit := on\n\n")
		return
	}

	equal := "last == v"
	if !comparableType(p.Terminal().Property.Type) {
		g.addImport(imports, observePkgPath)

		equal = "observe.ValuesEqual(last, v)"
	}

	b.WriteString("\tvar (\n\t\tseen bool\n")
	fmt.Fprintf(b, "\t\tlast %s\n\t)\n\n", termType)
	fmt.Fprintf(b, "\temit := func(v %s) {\n", termType)
	fmt.Fprintf(b, "\t\tif seen && %s {\n\t\t\treturn\n\t\t}\n", equal)
	b.WriteString("\t\tseen = true\n\t\tlast = v\n\t\ton(v)\n\t}\n\n")
}

// renderWire renders the per-level wiring func. Levels are emitted deepest
// first so each one can call the next.
func (g *Generator) renderWire(b *strings.Builder, p *analyze.CallPlan, i int, rootType, termType string, imports map[string]importSpec) {
	seg := p.Segments[i]

	recvType := rootType
	if i > 0 {
		recvType = "*" + g.qualified(seg.Declaring.ID, imports)
	}

	fmt.Fprintf(b, "\twire%d := func(recv %s, seed bool) {\n", i, recvType)
	fmt.Fprintf(b, "\t\tdetach(%d)\n", i)
	b.WriteString("\t\tif recv == nil {\n\t\t\treturn\n\t\t}\n\n")

	before := seg.Terminal && p.Mode == observe.BeforeChange

	fmt.Fprintf(b, "\t\tremoves[%d] = %sfunc(ev notify.ChangeEvent) {\n", i, registerCall(seg, before))
	fmt.Fprintf(b, "\t\t\tif ev.Member != %q {\n\t\t\t\treturn\n\t\t\t}\n", seg.Name)

	if seg.Terminal {
		if termType == "any" {
			b.WriteString("\t\t\temit(ev.Value)\n")
		} else {
			fmt.Fprintf(b, "\t\t\tv, _ := ev.Value.(%s)\n", termType)
			b.WriteString("\t\t\temit(v)\n")
		}
	} else {
		nextType := g.typeExpr(seg.Property.Type, imports)
		fmt.Fprintf(b, "\t\t\tnext, _ := ev.Value.(%s)\n", nextType)
		fmt.Fprintf(b, "\t\t\twire%d(next, true)\n", i+1)
	}

	b.WriteString("\t\t})\n")

	if seg.Terminal {
		fmt.Fprintf(b, "\t\tif seed {\n\t\t\temit(recv.%s())\n\t\t}\n", seg.Name)
	} else {
		fmt.Fprintf(b, "\t\twire%d(recv.%s(), seed)\n", i+1, seg.Name)
	}

	b.WriteString("\t}\n\n")
}

// registerCall picks the subscription call for a level's mechanism. The
// returned string opens the argument list; the caller appends the listener
// literal and closes it.
func registerCall(seg analyze.SegmentPlan, before bool) string {
	switch seg.Mechanism.Kind {
	case observe.InterfaceBeforeAndAfter:
		if before {
			return "recv.OnChanging("
		}

		return "recv.OnChanged("

	case observe.InterfaceAfterChange:
		if before {
			// Before-change capability on this kind comes from an embedded
			// KVO base (hybrid types), so registration routes through it.
			return "recv.ObserveKV(true, "
		}

		return "recv.OnChanged("

	case observe.PlatformBeforeAndAfter:
		return fmt.Sprintf("recv.ObserveKV(%t, ", before)

	case observe.PlatformAfterOnly:
		return "recv.ObserveWidget("

	default:
		return "recv.OnChanged("
	}
}

// functionName derives the generated function name from the binding name,
// or from the root type and segments when the binding is unnamed.
func (g *Generator) functionName(p *analyze.CallPlan) string {
	if p.Name != "" {
		return "Observe" + capitalize(p.Name)
	}

	var sb strings.Builder

	sb.WriteString("Observe")
	sb.WriteString(p.Root.ID.Name)

	for _, s := range p.Segments {
		sb.WriteString(s.Name)
	}

	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// comparableType reports whether == is valid for the terminal type; chains
// that cannot use it compare through observe.ValuesEqual.
func comparableType(t *analyze.TypeInfo) bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case analyze.TypeKindBasic, analyze.TypeKindPointer:
		return true
	case analyze.TypeKindAlias:
		return comparableType(t.Underlying)
	case analyze.TypeKindStruct, analyze.TypeKindExternal:
		// Named structs may hold non-comparable fields; stay conservative.
		return false
	default:
		return false
	}
}

// typeExpr renders a type expression, registering package imports.
func (g *Generator) typeExpr(t *analyze.TypeInfo, imports map[string]importSpec) string {
	if t == nil {
		return "any"
	}

	switch t.Kind {
	case analyze.TypeKindBasic:
		return t.Basic

	case analyze.TypeKindPointer:
		return "*" + g.typeExpr(t.ElemType, imports)

	case analyze.TypeKindSlice:
		return "[]" + g.typeExpr(t.ElemType, imports)

	case analyze.TypeKindStruct, analyze.TypeKindExternal, analyze.TypeKindAlias:
		if t.IsNamed() {
			return g.qualified(t.ID, imports)
		}

		return "any"

	case analyze.TypeKindInterface:
		if t.IsNamed() {
			return g.qualified(t.ID, imports)
		}

		return "any"

	default:
		return "any"
	}
}

// qualified renders "pkg.Name" and records the import.
func (g *Generator) qualified(id analyze.TypeID, imports map[string]importSpec) string {
	if id.PkgPath == "" {
		return id.Name
	}

	g.addImport(imports, id.PkgPath)

	return g.pkgName(id.PkgPath) + "." + id.Name
}

// pkgName returns the package name for a given package path, preferring the
// loaded graph over the path-base fallback.
func (g *Generator) pkgName(pkgPath string) string {
	if g.graph != nil {
		if info, ok := g.graph.Packages[pkgPath]; ok {
			return info.Name
		}
	}

	return common.PkgAlias(pkgPath)
}

func (g *Generator) addImport(imports map[string]importSpec, pkgPath string) {
	if pkgPath == "" {
		return
	}

	imports[pkgPath] = importSpec{
		Alias: g.pkgName(pkgPath),
		Path:  pkgPath,
	}
}

// Template for the observer file.

var observerTemplate = template.Must(template.New("observers").Parse(`// Code generated by binding-generator. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}

{{range .Functions}}
{{.}}
{{end}}
`))
