// Package gen provides deterministic Go code generation for property-chain
// observer functions.
//
// Generation approach uses text/template + go/format for readable,
// allocation-light Go code.
//
// Codegen patterns:
//   - One wiring func per chain level, deepest first (switch-latest without
//     reflection)
//   - Direct getter calls and typed event assertions
//   - Mechanism-specific listener registration (interfaces, KVO, widget)
//   - Inline distinct guard and initial emission
//   - Structural memoization: plans with equal signatures share one body
package gen
