// Package feed turns Mikan RSS and Atom documents into the entries the pipeline needs.
package feed

import (
	"bytes"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"

	"mikanto/internal/services"
)

// TorrentMediaType marks an enclosure as a BitTorrent descriptor.
const TorrentMediaType = "application/x-bittorrent"

// Item is one feed entry.
type Item struct {
	Title string
	// TorrentURL is the first enclosure (RSS) or link (Atom) typed as a
	// torrent; empty when the entry has none.
	TorrentURL string
}

// Feed is a parsed channel.
type Feed struct {
	Title string
	Items []Item
}

// Parse decodes an RSS, Atom, or JSON feed document.
func Parse(data []byte) (*Feed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "feed", "parse", "", err)
	}
	entries := atomEntries(parsed, data)
	out := &Feed{Title: parsed.Title, Items: make([]Item, 0, len(parsed.Items))}
	for i, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		var link string
		if entries != nil {
			link = atomTorrentLink(entries[i])
		} else {
			link = torrentLink(entry)
		}
		out.Items = append(out.Items, Item{
			Title:      strings.TrimSpace(entry.Title),
			TorrentURL: link,
		})
	}
	return out, nil
}

// atomEntries re-reads an Atom document so link types survive; the generic
// item keeps a type only for rel="enclosure" links. It returns nil for other
// feed types or when the entries do not line up with the generic items.
func atomEntries(parsed *gofeed.Feed, data []byte) []*atom.Entry {
	if parsed.FeedType != "atom" {
		return nil
	}
	doc, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
	if err != nil || len(doc.Entries) != len(parsed.Items) {
		return nil
	}
	return doc.Entries
}

func atomTorrentLink(entry *atom.Entry) string {
	if entry == nil {
		return ""
	}
	for _, link := range entry.Links {
		if link != nil && isTorrentType(link.Type) && link.Href != "" {
			return link.Href
		}
	}
	return ""
}

func torrentLink(entry *gofeed.Item) string {
	for _, enclosure := range entry.Enclosures {
		if enclosure == nil {
			continue
		}
		if isTorrentType(enclosure.Type) && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}

func isTorrentType(mediaType string) bool {
	return strings.EqualFold(strings.TrimSpace(mediaType), TorrentMediaType)
}
