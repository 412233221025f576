// Package main hosts the mikanto CLI entrypoint and command graph.
//
// The Cobra command tree loads the TOML settings once, then hands off to the
// internal packages: "run" polls every subscription, "subs" lists and edits
// the subscription file, "history" prints recent titles, and "status" runs
// the preflight checks. Logic lives in internal/; commands only wire
// collaborators together and render output.
package main
