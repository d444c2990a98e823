// Package core provides the foundational domain types used by Switchboard.
// It defines the core abstractions for:
//
//   - Turns (immutable records of one conversational step)
//   - Sessions (stateful conversational containers with turn history)
//   - Outcomes (terminal values of a routing cycle: final answer or failure)
//   - The SessionStore contract for pluggable session backends
//
// The package intentionally keeps implementation concerns (storage backends,
// orchestration, model transports) out of scope, exposing small interfaces so
// higher layers can be composed and tested independently.
package core
