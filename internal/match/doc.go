// Package match provides fuzzy name matching for diagnostics.
//
// When a manifest path segment names a property that does not exist on the
// resolved type, the analyzer uses this package to suggest the closest
// declared property in the finding message.
package match
