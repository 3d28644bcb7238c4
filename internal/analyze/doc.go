// Package analyze provides package loading, type graph extraction, and
// static resolution of binding chains.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to build a
// canonical in-memory model of structs, their accessor properties, and
// their methods. On top of the graph it classifies each type's
// change-notification mechanism by declaration shape and resolves manifest
// bindings into CallPlans for the code emitter.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - StaticDescriptor: a type's notification mechanism and capabilities
//   - CallPlan: one fully resolved observation call site
package analyze
