// Package diag defines the diagnostic model shared by all resolution phases.
//
// A Diagnostic is a structured fact: a Code, a Severity, the offending node
// and its span, and the context parameters (Args) that describe the problem.
// Nothing in this package renders text beyond the short Message a producer
// supplies; presentation belongs to the CLI and to downstream tooling.
//
// Phases emit through a Reporter. During analysis the reporter is backed by
// the attribute store, so diagnostics produced inside a speculative
// (temporary) store disappear together with the rest of that store when it
// is discarded. Bag and DedupReporter are light-weight helpers for tests and
// the driver.
package diag
