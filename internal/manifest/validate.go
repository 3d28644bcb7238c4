package manifest

import (
	"fmt"

	"binding-generator/internal/common"
	"binding-generator/internal/diagnostic"
)

// Validate checks structural manifest problems that do not require type
// information: missing fields, bad modes, duplicate binding names. Type
// level checks happen in the analyzer once packages are loaded.
func Validate(f *File) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	if common.IsEmpty(f.Packages) {
		diags.AddError(diagnostic.CodeUnknownType,
			"manifest lists no packages to analyze", "", "")
	}

	if common.IsEmpty(f.Bindings) {
		diags.AddWarning(diagnostic.CodeUnknownType,
			"manifest lists no bindings; nothing to generate", "", "")
	}

	seen := make(map[string]bool, len(f.Bindings))

	for i := range f.Bindings {
		b := &f.Bindings[i]
		name := b.DisplayName()

		if b.Root == "" {
			diags.AddError(diagnostic.CodeUnknownType,
				"binding has no root type", name, b.Path)
		} else if _, _, err := b.RootParts(); err != nil {
			diags.AddError(diagnostic.CodeUnknownType, err.Error(), name, b.Path)
		}

		if b.Path == "" {
			diags.AddError(diagnostic.CodeUnsupportedSegment,
				"binding has no property path", name, "")
		}

		if m := b.EffectiveMode(); m != ModeAfter && m != ModeBefore {
			diags.AddError(diagnostic.CodeNoNotification,
				fmt.Sprintf("invalid mode %q: want %q or %q", b.Mode, ModeAfter, ModeBefore),
				name, b.Path)
		}

		if seen[name] {
			diags.AddError(diagnostic.CodeUnknownType,
				"duplicate binding name", name, b.Path)
		}

		seen[name] = true
	}

	return diags
}
