// Package preflight provides readiness checks for the paths and external
// services a run depends on.
//
// The "mikanto status" command renders RunAll as a table. Individual checks
// are exported so a run can verify a single dependency (for example
// CheckAria2 before dispatching) without the rest. Optional features that
// are not configured are reported as skipped rather than failed.
package preflight
