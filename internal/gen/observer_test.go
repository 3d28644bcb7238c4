package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binding-generator/internal/analyze"
	"binding-generator/internal/manifest"
)

const contactsPkg = "binding-generator/examples/contacts"

var (
	stringT = &analyze.TypeInfo{Kind: analyze.TypeKindBasic, Basic: "string"}
	intT    = &analyze.TypeInfo{Kind: analyze.TypeKindBasic, Basic: "int"}
	funcT   = &analyze.TypeInfo{Kind: analyze.TypeKindFunc}
)

func hooks(names ...string) []analyze.MethodInfo {
	var methods []analyze.MethodInfo
	for _, n := range names {
		methods = append(methods, analyze.MethodInfo{
			Name:    n,
			Params:  []*analyze.TypeInfo{funcT},
			Results: []*analyze.TypeInfo{funcT},
		})
	}

	return methods
}

func accessor(name string, typ *analyze.TypeInfo, withSetter bool) []analyze.MethodInfo {
	methods := []analyze.MethodInfo{
		{Name: name, Results: []*analyze.TypeInfo{typ}},
	}

	if withSetter {
		methods = append(methods, analyze.MethodInfo{Name: "Set" + name, Params: []*analyze.TypeInfo{typ}})
	}

	return methods
}

func newGraph() *analyze.TypeGraph {
	g := analyze.NewTypeGraph()

	address := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: contactsPkg, Name: "Address"},
		Kind: analyze.TypeKindStruct,
	}
	address.Methods = append(address.Methods, hooks("OnChanged")...)
	address.Methods = append(address.Methods, accessor("City", stringT, true)...)

	addressPtr := &analyze.TypeInfo{Kind: analyze.TypeKindPointer, ElemType: address}

	person := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: contactsPkg, Name: "Person"},
		Kind: analyze.TypeKindStruct,
	}
	person.Methods = append(person.Methods, hooks("OnChanged")...)
	person.Methods = append(person.Methods, accessor("Name", stringT, true)...)
	person.Methods = append(person.Methods, accessor("Address", addressPtr, true)...)

	legacy := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: contactsPkg, Name: "LegacyProfile"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{{
			Name:     "KVOBase",
			Embedded: true,
			Type: &analyze.TypeInfo{
				Kind: analyze.TypeKindStruct,
				ID:   analyze.TypeID{PkgPath: analyze.NotifyPkgPath, Name: "KVOBase"},
			},
		}},
	}
	legacy.Methods = accessor("Title", stringT, true)

	gauge := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: contactsPkg, Name: "Gauge"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{{
			Name:     "WidgetBase",
			Embedded: true,
			Type: &analyze.TypeInfo{
				Kind: analyze.TypeKindStruct,
				ID:   analyze.TypeID{PkgPath: analyze.NotifyPkgPath, Name: "WidgetBase"},
			},
		}},
	}
	gauge.Methods = accessor("Value", intT, false)

	hybrid := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: contactsPkg, Name: "HybridControl"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{{
			Name:     "KVOBase",
			Embedded: true,
			Type: &analyze.TypeInfo{
				Kind: analyze.TypeKindStruct,
				ID:   analyze.TypeID{PkgPath: analyze.NotifyPkgPath, Name: "KVOBase"},
			},
		}},
	}
	hybrid.Methods = append(hybrid.Methods, hooks("OnChanged")...)
	hybrid.Methods = append(hybrid.Methods, accessor("Label", stringT, true)...)

	for _, t := range []*analyze.TypeInfo{person, address, legacy, gauge, hybrid} {
		g.Types[t.ID] = t
	}

	g.Packages[contactsPkg] = &analyze.PackageInfo{Path: contactsPkg, Name: "contacts"}

	return g
}

func resolve(t *testing.T, g *analyze.TypeGraph, b manifest.Binding) *analyze.CallPlan {
	t.Helper()

	plan, diags := analyze.ResolveChain(g, b)
	require.False(t, diags.HasErrors(), "%v", diags.Error())
	require.NotNil(t, plan)

	return plan
}

func TestGenerateDeepChainObserver(t *testing.T) {
	g := newGraph()

	plan := resolve(t, g, manifest.Binding{
		Root:        "contacts.Person",
		Path:        "Address.City",
		EmitInitial: true,
	})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, []*analyze.CallPlan{plan})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "contacts_observers.go", files[0].Filename)

	src := string(files[0].Content)
	assert.Contains(t, src, "// Code generated by binding-generator. DO NOT EDIT.")
	assert.Contains(t, src, "package contactsbind")
	assert.Contains(t, src, `contacts "binding-generator/examples/contacts"`)
	assert.Contains(t, src, `notify "binding-generator/notify"`)
	assert.Contains(t, src, "func ObservePersonAddressCity(root *contacts.Person, on func(string)) func()")
	assert.Contains(t, src, "var removes [2]func()")
	assert.Contains(t, src, `if ev.Member != "Address"`)
	assert.Contains(t, src, `if ev.Member != "City"`)
	assert.Contains(t, src, "next, _ := ev.Value.(*contacts.Address)")
	assert.Contains(t, src, "wire1(recv.Address(), seed)")
	assert.Contains(t, src, "wire0(root, true)")
	// No distinct guard requested.
	assert.NotContains(t, src, "last")
}

func TestGenerateDistinctGuard(t *testing.T) {
	g := newGraph()

	plan := resolve(t, g, manifest.Binding{
		Root:     "contacts.Person",
		Path:     "Name",
		Distinct: true,
	})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, []*analyze.CallPlan{plan})
	require.NoError(t, err)

	src := string(files[0].Content)
	assert.Contains(t, src, "last string")
	assert.Contains(t, src, "if seen && last == v")
	assert.Contains(t, src, "wire0(root, false)")
}

func TestGeneratePlatformMechanisms(t *testing.T) {
	g := newGraph()

	before := manifest.Binding{Root: "contacts.LegacyProfile", Path: "Title"}
	before.Mode = manifest.ModeBefore

	plans := []*analyze.CallPlan{
		resolve(t, g, before),
		resolve(t, g, manifest.Binding{Root: "contacts.Gauge", Path: "Value"}),
	}

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, plans)
	require.NoError(t, err)
	require.Len(t, files, 1)

	src := string(files[0].Content)
	assert.Contains(t, src, "recv.ObserveKV(true, func(ev notify.ChangeEvent)")
	assert.Contains(t, src, "recv.ObserveWidget(func(ev notify.ChangeEvent)")
	assert.Contains(t, src, "on func(int)")
}

func TestGenerateHybridBeforeChangeRoutesThroughBase(t *testing.T) {
	g := newGraph()

	after := resolve(t, g, manifest.Binding{Name: "labelAfter", Root: "contacts.HybridControl", Path: "Label"})

	before := manifest.Binding{Name: "labelBefore", Root: "contacts.HybridControl", Path: "Label"}
	before.Mode = manifest.ModeBefore

	plans := []*analyze.CallPlan{after, resolve(t, g, before)}

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, plans)
	require.NoError(t, err)

	src := string(files[0].Content)
	// After-change uses the interface; before-change has no OnChanging here,
	// so it registers on the embedded KVO base.
	assert.Contains(t, src, "recv.OnChanged(func(ev notify.ChangeEvent)")
	assert.Contains(t, src, "recv.ObserveKV(true, func(ev notify.ChangeEvent)")
}

func TestGenerateMemoizesEqualPlans(t *testing.T) {
	g := newGraph()

	first := resolve(t, g, manifest.Binding{Name: "cityA", Root: "contacts.Person", Path: "Address.City"})
	second := resolve(t, g, manifest.Binding{Name: "cityB", Root: "contacts.Person", Path: "Address.City"})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, []*analyze.CallPlan{first, second})
	require.NoError(t, err)

	src := string(files[0].Content)
	assert.Contains(t, src, "func ObserveCityA(")
	assert.Contains(t, src, "var ObserveCityB = ObserveCityA")
	assert.Contains(t, src, "shares the memoized body")
}

func TestGenerateDistinctOptionsNotMemoized(t *testing.T) {
	g := newGraph()

	plain := resolve(t, g, manifest.Binding{Name: "a", Root: "contacts.Person", Path: "Name"})

	distinct := resolve(t, g, manifest.Binding{Name: "b", Root: "contacts.Person", Path: "Name", Distinct: true})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, []*analyze.CallPlan{plain, distinct})
	require.NoError(t, err)

	src := string(files[0].Content)
	assert.Contains(t, src, "func ObserveA(")
	assert.Contains(t, src, "func ObserveB(")
	assert.NotContains(t, src, "memoized")
}

func TestGenerateRejectsDuplicateNames(t *testing.T) {
	g := newGraph()

	a := resolve(t, g, manifest.Binding{Name: "same", Root: "contacts.Person", Path: "Name"})
	b := resolve(t, g, manifest.Binding{Name: "same", Root: "contacts.Person", Path: "Address.City"})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	_, err := gen.Generate(g, []*analyze.CallPlan{a, b})
	assert.ErrorContains(t, err, "duplicate observer name")
}

func TestGenerateNoPlans(t *testing.T) {
	gen := NewGenerator(DefaultConfig())

	_, err := gen.Generate(newGraph(), nil)
	assert.ErrorIs(t, err, analyze.ErrNoPlans)
}

func TestWriteFiles(t *testing.T) {
	g := newGraph()

	plan := resolve(t, g, manifest.Binding{Root: "contacts.Person", Path: "Name"})

	gen := NewGenerator(Config{PackageName: "contactsbind"})

	files, err := gen.Generate(g, []*analyze.CallPlan{plan})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteFiles(files, dir))

	data, err := os.ReadFile(filepath.Join(dir, "contacts_observers.go"))
	require.NoError(t, err)
	assert.Equal(t, files[0].Content, data)
}
