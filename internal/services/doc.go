// Package services defines shared utilities consumed by the pipeline and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, subscription titles, and step names
//     for logging.
//   - Structured error markers plus the Wrap helper. Configuration errors are
//     fatal (IsFatal); feed, artifact, dispatch, and sync failures are
//     transient and are turned into skips at the step that produced them.
//
// Client packages for the download agent and the chat-completion endpoint
// live in the subpackages.
package services
