// Package history persists the bounded, newest-first log of item titles that
// have already been processed. The log doubles as the dedup set for a run.
package history
