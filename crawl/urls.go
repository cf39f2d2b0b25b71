package crawl

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the forum root used when a crawler is configured without one.
const DefaultBaseURL = "https://forums.dansdeals.com"

// BoardPageURL builds the URL of a board index page at the given offset.
// SMF encodes pagination as "board=<id>.<offset>".
func BoardPageURL(base, boardID string, offset int) string {
	return fmt.Sprintf("%s/index.php?board=%s.%d", strings.TrimSuffix(base, "/"), boardID, offset)
}

// TopicPageURL builds the URL of a topic page at the given offset.
func TopicPageURL(base, topicID string, offset int) string {
	return fmt.Sprintf("%s/index.php?topic=%s.%d", strings.TrimSuffix(base, "/"), topicID, offset)
}

// nextOffset returns the smallest pagination offset greater than current,
// or false when current is the last page.
func nextOffset(offsets []int, current int) (int, bool) {
	next, ok := 0, false
	for _, n := range offsets {
		if n > current && (!ok || n < next) {
			next, ok = n, true
		}
	}
	return next, ok
}
