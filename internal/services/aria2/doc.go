// Package aria2 is a small aria2 JSON-RPC client covering the calls mikanto
// makes: reading the global download directory and queueing torrents either
// as uploaded files or as URIs.
package aria2
