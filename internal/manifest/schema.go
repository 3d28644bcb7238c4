// Package manifest defines the YAML binding manifest: which packages to
// analyze, which property chains to observe, and where the generated
// observers go. The manifest is the human-reviewed input of the generator.
package manifest

import (
	"fmt"
	"strings"
)

// File is the root of a YAML binding manifest.
type File struct {
	// Version of the manifest schema.
	Version string `yaml:"version,omitempty"`

	// Packages lists Go package patterns to load (e.g. "./examples/...").
	Packages []string `yaml:"packages"`

	// Output configures where generated observers are written.
	Output Output `yaml:"output"`

	// Bindings lists the property chains to generate observers for.
	Bindings []Binding `yaml:"bindings"`
}

// Output configures the generated package.
type Output struct {
	// Dir is the directory generated files are written to.
	Dir string `yaml:"dir"`

	// Package is the package name of the generated files.
	Package string `yaml:"package"`
}

// Binding describes one observation call site to specialize.
type Binding struct {
	// Name is an optional identifier used in the generated function
	// name. Derived from root and path when empty.
	Name string `yaml:"name,omitempty"`

	// Root is the observed type as "package.Type" (e.g.
	// "contacts.Person"), matched against the loaded packages.
	Root string `yaml:"root"`

	// Path is the property chain expression (e.g. "Address.City").
	Path string `yaml:"path"`

	// Mode is "after" (default) or "before".
	Mode string `yaml:"mode,omitempty"`

	// Distinct coalesces consecutive equal terminal values.
	Distinct bool `yaml:"distinct,omitempty"`

	// EmitInitial delivers the current terminal value on subscribe.
	EmitInitial bool `yaml:"emitInitial,omitempty"`
}

// Binding modes.
const (
	ModeAfter  = "after"
	ModeBefore = "before"
)

// EffectiveMode returns the mode with the default applied.
func (b Binding) EffectiveMode() string {
	if b.Mode == "" {
		return ModeAfter
	}

	return b.Mode
}

// DisplayName returns the binding's name or a derived "Root.Path" label.
func (b Binding) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}

	return b.Root + "." + b.Path
}

// RootParts splits the root into package name and type name.
func (b Binding) RootParts() (pkg, typ string, err error) {
	idx := strings.LastIndex(b.Root, ".")
	if idx <= 0 || idx == len(b.Root)-1 {
		return "", "", fmt.Errorf("invalid root %q: want \"package.Type\"", b.Root)
	}

	return b.Root[:idx], b.Root[idx+1:], nil
}
