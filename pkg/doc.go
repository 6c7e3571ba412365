// Package pkg provides the core libraries for the flightdeck panel service.
//
// # Overview
//
// Flightdeck drives a cockpit instrument dashboard: pilots adjust the
// panel with natural language, a model agent proposes changes, and a
// deterministic layout engine places the instruments. The pkg directory
// is organized into these areas:
//
//  1. [panel] - Domain model (instruments, panel state, merge and safety rules)
//  2. [panel/layout] - Deterministic zone layout engine (grid, flow, alignment)
//  3. [agent] - Model agent client (prompting, extraction, safety enforcement)
//  4. [telemetry] - Simulated flight data feed
//  5. [cache], [httputil], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Pilot Command
//	         ↓
//	agent (model call, verdict extraction)
//	         ↓
//	panel (merge, safety validation)
//	         ↓
//	panel/layout (zone placement)
//	         ↓
//	Frontend rendering
//
// The HTTP surface and CLI wiring live under internal/.
package pkg
