// Package diagnostic provides structured findings for the binding analyzer.
//
// Findings come in three severities: errors block generation, warnings mark
// call sites that fall back to the reflection engine, and infos surface
// capability gaps (validation hooks, read-only leaves) without affecting
// generation.
package diagnostic
