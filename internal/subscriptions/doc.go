// Package subscriptions reads and writes the JSON subscription list
// ({"mikan": [...], "proxy": {...}, "aria2": {...}}) and merges edits
// extracted from natural-language requests into it.
//
// Keys the package does not model are carried through a load/save cycle
// unchanged, both at the top level and on individual subscriptions.
package subscriptions
