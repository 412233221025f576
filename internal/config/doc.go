// Package config loads, normalizes, and validates mikanto configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays the MTA_* environment variables
// the tool has always honoured (MTA_CONFIGPATH, MTA_HISTORY_FILE,
// MTA_TORRENTS_DIR, MTA_MAX_HISTORY, MTA_ARIA2_*, HTTP_PROXY, ...).
//
// The subscription list itself is not part of this package; it is a JSON
// document owned by internal/subscriptions and located through
// Paths.SubscriptionsFile.
package config
