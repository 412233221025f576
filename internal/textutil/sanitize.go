package textutil

import "strings"

// feedTitlePrefix is prepended by Mikan to every RSS channel title.
const feedTitlePrefix = "Mikan Project - "

var fileNameReplacer = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFileName replaces each of \ / * ? : " < > | with an underscore.
// Nothing else is touched, so the mapping is stable for history lookups.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}

// SaveDirFromFeedTitle derives a save directory from a feed channel title by
// removing every "Mikan Project - " occurrence and surrounding whitespace.
func SaveDirFromFeedTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, feedTitlePrefix, ""))
}
