// Package capability implements the delegate registry that lets the
// orchestrator dispatch model-selected work to named capabilities with schema
// described arguments, consistent error handling and metadata for LLM
// guidance.
//
// A capability couples a Spec (name, description, parameter schema,
// idempotency declaration) with a Binding (the callable owned by the
// delegate). Bindings are registered during startup composition; the registry
// is frozen before the first routing call and is safe for concurrent lookups
// afterwards.
package capability
