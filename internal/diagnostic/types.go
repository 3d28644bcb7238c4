package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"binding-generator/internal/common"
)

// Diagnostic codes emitted by the analyzer.
const (
	// CodeUnsupportedSegment marks an indexer, call, or raw-field segment.
	CodeUnsupportedSegment = "BG001"
	// CodePrivateMember marks an unexported accessor; the call site must
	// use the reflection engine instead of generated code.
	CodePrivateMember = "BG002"
	// CodeNoNotification marks a type with no classifiable mechanism.
	CodeNoNotification = "BG003"
	// CodeValidationMismatch marks a bound type exposing validation
	// errors that generated observers cannot honor.
	CodeValidationMismatch = "BG004"
	// CodeUnknownType marks a manifest root that is not in the loaded
	// packages.
	CodeUnknownType = "BG005"
	// CodeUnwritableLeaf marks a terminal property without a setter in a
	// context that needs to assign it.
	CodeUnwritableLeaf = "BG006"
)

// Diagnostics collects the findings of one analysis pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is one finding, keyed to the binding and chain segment it
// concerns. Position carries a source location when the analyzer has one;
// the observation engine itself never does.
type Diagnostic struct {
	Severity Severity
	// Code is a stable identifier for this class of finding.
	Code string
	// Message is the human-readable description.
	Message string
	// Binding names the manifest binding this relates to (if any).
	Binding string
	// Path is the property chain or segment this relates to (if any).
	Path string
	// Position is a "file:line:col" location (if known).
	Position string
}

// Severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError records an error-severity finding.
func (d *Diagnostics) AddError(code, message, binding, path string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Binding:  binding,
		Path:     path,
	})
}

// AddWarning records a warning-severity finding.
func (d *Diagnostics) AddWarning(code, message, binding, path string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Binding:  binding,
		Path:     path,
	})
}

// AddInfo records an info-severity finding.
func (d *Diagnostics) AddInfo(code, message, binding, path string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Binding:  binding,
		Path:     path,
	})
}

// HasErrors reports whether any error-severity finding was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends another collection into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns every finding, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)
	out = append(out, d.Infos...)

	return out
}

// Error returns a combined error from all error findings, or nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String renders one finding for CLI output.
func (d Diagnostic) String() string {
	var prefix []string

	if d.Position != "" {
		prefix = append(prefix, d.Position)
	}

	if d.Binding != "" {
		prefix = append(prefix, "["+d.Binding+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
