package gen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// OutputImportPath resolves the import path of the generated package: the
// enclosing module's path joined with the output directory relative to the
// module root. Walks up from dir to the nearest go.mod.
func OutputImportPath(dir, outputDir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	modDir := abs
	for {
		if _, err := os.Stat(filepath.Join(modDir, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(modDir)
		if parent == modDir {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}

		modDir = parent
	}

	data, err := os.ReadFile(filepath.Join(modDir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}

	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", fmt.Errorf("no module path in %s", filepath.Join(modDir, "go.mod"))
	}

	outAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(modDir, outAbs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output directory %s is outside module %s", outputDir, modulePath)
	}

	if rel == "." {
		return modulePath, nil
	}

	return path.Join(modulePath, filepath.ToSlash(rel)), nil
}
