// Package sim provides the per-window congestion simulator for HCIS.
//
// # Reading Guide
//
// Start with these files to understand the simulation core:
//   - metrics.go: WindowMetrics, the per-window simulator output
//   - simulator.go: the backlog fold that turns annotated feature
//     records into metrics, one window at a time
//   - scenario.go: running several independent scenarios concurrently
//
// The rule engine lives in sim/policy: it evaluates the declarative
// rule table over each feature record and aggregates fired rules into
// mitigation actions. sim/workload loads the feature streams the
// upstream extraction stage produced.
//
// The simulator is strictly sequential within a scenario (each window
// consumes the previous window's backlog) while scenarios are fully
// independent and run in parallel, each owning its own State.
package sim
