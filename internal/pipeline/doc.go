// Package pipeline runs one polling pass over the subscription list.
//
// Processor handles a single subscription: it fetches and parses the feed,
// filters entries by the optional rule, skips titles already recorded, saves
// each new torrent locally, and optionally hands it to the download agent.
// Coordinator drives every enabled subscription in list order, records the
// discovered titles in the history file, mirrors the artifact tree to the
// remote target, and sends a notification.
package pipeline
