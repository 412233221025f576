package feed_test

import (
	"errors"
	"testing"

	"mikanto/internal/feed"
	"mikanto/internal/services"
)

const sampleRSS = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0">
  <channel>
    <title>Mikan Project - Example Show</title>
    <link>http://mikanani.me/RSS/Bangumi?bangumiId=1</link>
    <item>
      <title>  [Group] Example Show - 02 [1080p]  </title>
      <link>https://mikanani.me/Home/Episode/2</link>
      <enclosure type="text/html" length="1" url="https://mikanani.me/Home/Episode/2" />
      <enclosure type="application/x-bittorrent" length="1024" url="https://mikanani.me/Download/2.torrent" />
    </item>
    <item>
      <title>[Group] Example Show - 01 [1080p]</title>
      <link>https://mikanani.me/Home/Episode/1</link>
    </item>
  </channel>
</rss>`

func TestParseExtractsTitlesAndTorrentLinks(t *testing.T) {
	parsed, err := feed.Parse([]byte(sampleRSS))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Title != "Mikan Project - Example Show" {
		t.Fatalf("unexpected channel title %q", parsed.Title)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(parsed.Items))
	}
	first := parsed.Items[0]
	if first.Title != "[Group] Example Show - 02 [1080p]" {
		t.Fatalf("expected trimmed title, got %q", first.Title)
	}
	if first.TorrentURL != "https://mikanani.me/Download/2.torrent" {
		t.Fatalf("unexpected torrent url %q", first.TorrentURL)
	}
	if parsed.Items[1].TorrentURL != "" {
		t.Fatalf("expected no descriptor for second item, got %q", parsed.Items[1].TorrentURL)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := feed.Parse([]byte("definitely not a feed"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient parse error, got %v", err)
	}
}

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Mikan Project - Atom Show</title>
  <id>urn:mikan:atom-show</id>
  <updated>2024-04-01T09:00:00Z</updated>
  <entry>
    <title>Ep2</title>
    <id>urn:mikan:ep2</id>
    <updated>2024-04-08T09:00:00Z</updated>
    <link rel="alternate" type="text/html" href="https://mikanani.me/Home/Episode/2"/>
    <link rel="alternate" type="application/x-bittorrent" href="https://mikanani.me/Download/ep2.torrent"/>
  </entry>
  <entry>
    <title>Ep1</title>
    <id>urn:mikan:ep1</id>
    <updated>2024-04-01T09:00:00Z</updated>
    <link rel="enclosure" type="application/x-bittorrent" href="https://mikanani.me/Download/ep1.torrent"/>
  </entry>
  <entry>
    <title>Preview</title>
    <id>urn:mikan:preview</id>
    <updated>2024-03-25T09:00:00Z</updated>
    <link href="https://mikanani.me/Home/Episode/0"/>
  </entry>
</feed>`

func TestParseAtomTypedLinks(t *testing.T) {
	parsed, err := feed.Parse([]byte(sampleAtom))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Title != "Mikan Project - Atom Show" {
		t.Fatalf("unexpected feed title %q", parsed.Title)
	}
	want := []feed.Item{
		{Title: "Ep2", TorrentURL: "https://mikanani.me/Download/ep2.torrent"},
		{Title: "Ep1", TorrentURL: "https://mikanani.me/Download/ep1.torrent"},
		{Title: "Preview"},
	}
	if len(parsed.Items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), parsed.Items)
	}
	for i, item := range want {
		if parsed.Items[i] != item {
			t.Fatalf("item %d: got %+v, want %+v", i, parsed.Items[i], item)
		}
	}
}
