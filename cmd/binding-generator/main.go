// Package main provides the CLI entrypoint for binding-generator.
//
// binding-generator is a codegen tool for reactive data binding that:
//   - Parses Go packages (AST + go/types) to build a type graph
//   - Classifies each type's change-notification mechanism
//   - Statically resolves the property chains listed in a YAML manifest
//   - Generates typed, reflection-free observer functions per call site
//
// Call sites the static side cannot serve (private members, unsupported
// segments) fall back to the reflection engine in the observe package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"binding-generator/internal/analyze"
	"binding-generator/internal/diagnostic"
	"binding-generator/internal/gen"
	"binding-generator/internal/manifest"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	manifestPath := fs.String("manifest", "bindings.yaml", "path to the binding manifest")
	dump := fs.Bool("dump", false, "dump the resolved call plans")

	switch cmd {
	case "check", "gen":
		_ = fs.Parse(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err := run(cmd, *manifestPath, *dump); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("binding-generator - compile-time observer generation for reactive data binding")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  binding-generator check [-manifest bindings.yaml] [-dump]")
	fmt.Println("  binding-generator gen   [-manifest bindings.yaml] [-dump]")
	fmt.Println()
	fmt.Println("check analyzes the manifest and prints findings; gen also emits observer code.")
}

func run(cmd, manifestPath string, dump bool) error {
	mf, err := manifest.LoadFile(manifestPath)
	if err != nil {
		return err
	}

	diags := manifest.Validate(mf)
	if diags.HasErrors() {
		printFindings(&diags)
		return diags.Error()
	}

	analyzer := analyze.NewAnalyzer()

	graph, err := analyzer.LoadPackages(mf.Packages...)
	if err != nil {
		return err
	}

	plans, resolved := analyze.ResolveManifest(graph, mf)
	diags.Merge(resolved)

	printFindings(&diags)

	if dump {
		spew.Fdump(os.Stderr, plans)
	}

	if diags.HasErrors() {
		return diags.Error()
	}

	fmt.Printf("%d of %d bindings generatable\n", len(plans), len(mf.Bindings))

	if cmd == "check" {
		return nil
	}

	if len(plans) == 0 {
		fmt.Println("nothing to generate; all bindings need the reflection engine")
		return nil
	}

	generator := gen.NewGenerator(gen.Config{
		PackageName: mf.Output.Package,
		OutputDir:   mf.Output.Dir,
	})

	files, err := generator.Generate(graph, plans)
	if err != nil {
		return err
	}

	if err := gen.WriteFiles(files, mf.Output.Dir); err != nil {
		return err
	}

	importPath, err := gen.OutputImportPath(".", mf.Output.Dir)
	if err != nil {
		// The output still landed; the import path is informational.
		importPath = mf.Output.Dir
	}

	for _, f := range files {
		fmt.Printf("wrote %s/%s\n", mf.Output.Dir, f.Filename)
	}

	fmt.Printf("generated package %s\n", importPath)

	return nil
}

func printFindings(diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d)
	}
}
