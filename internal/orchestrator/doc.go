// Package orchestrator implements the multi-agent task engine: it triages
// incoming requests, optionally decomposes them into dependency-annotated
// plans, fans sub-tasks out to tiered workers, and aggregates the settled
// results into a single response.
//
// The Coordinator is the only entry point. Callers hand it an agent.Factory
// and interact through Triage, Delegate, Run, Start, and the lifecycle
// helpers (WaitForContext, InterruptContext, GetContext). Progress is
// observable through the EventHub.
package orchestrator
