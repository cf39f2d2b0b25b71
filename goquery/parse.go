// Package goquery provides CSS-selector based extractors for SMF-style
// forum pages: board topic listings and per-topic post pages.
package goquery

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	digitsRe = regexp.MustCompile(`\d+`)
	numberRe = regexp.MustCompile(`\d[\d,]*`)
)

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// parseInt extracts the first integer from text like "1,234 Posts".
// Returns nil when the text carries no digits.
func parseInt(s string) *int {
	digits := digitsRe.FindAllString(strings.ReplaceAll(s, ",", ""), -1)
	if len(digits) == 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.Join(digits, ""))
	if err != nil {
		return nil
	}
	return &n
}

// parseNumbers extracts all integers from text like "12 Replies 3,456 Views".
func parseNumbers(s string) []int {
	var nums []int
	for _, m := range numberRe.FindAllString(s, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// queryParam reads a query parameter from an SMF URL. SMF uses semicolons
// as additional parameter separators, which net/url refuses to parse, so the
// raw query is split by hand.
func queryParam(u *url.URL, key string) string {
	for _, part := range strings.FieldsFunc(u.RawQuery, func(r rune) bool { return r == '&' || r == ';' }) {
		if k, v, ok := strings.Cut(part, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// parseTopicID extracts the topic id from an SMF topic URL such as
// index.php?topic=12345.0 or index.php?topic=12345.msg678;topicseen.
func parseTopicID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	value := queryParam(u, "topic")
	if value == "" {
		return ""
	}
	return strings.SplitN(value, ".", 2)[0]
}

// collectOffsets gathers pagination offsets from the page's navigation links
// for the given query parameter ("board" or "topic") and identifier. SMF
// encodes pagination as <param>=<ident>.<offset>. Offset 0 is always
// included. The result is sorted ascending.
func collectOffsets(doc *goquery.Document, param, ident string) []int {
	seen := map[int]bool{0: true}
	doc.Find("div.pagelinks a.navPages").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		entry := queryParam(u, param)
		if entry == "" {
			return
		}
		curIdent, offset, ok := strings.Cut(entry, ".")
		if !ok || curIdent != ident {
			return
		}
		offset = strings.SplitN(offset, "#", 2)[0]
		if m := digitsRe.FindString(offset); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				seen[n] = true
			}
		}
	})

	offsets := make([]int, 0, len(seen))
	for n := range seen {
		offsets = append(offsets, n)
	}
	sort.Ints(offsets)
	return offsets
}

// smfDateLayouts are the absolute date formats SMF renders.
var smfDateLayouts = []string{
	"January 2, 2006, 3:04:05 PM",
	"January 02, 2006, 03:04:05 PM",
	"2006-01-02, 15:04:05",
}

// parseForumTime parses an SMF-rendered timestamp, resolving the relative
// "Today at" and "Yesterday at" forms against now. Returns the zero time
// when the text does not parse; callers keep the raw text alongside.
func parseForumTime(s string, now time.Time) time.Time {
	s = normalizeSpace(s)
	if s == "" {
		return time.Time{}
	}

	lower := strings.ToLower(s)
	for prefix, dayDelta := range map[string]int{"today at ": 0, "yesterday at ": -1} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		clock, err := time.Parse("3:04:05 PM", s[len(prefix):])
		if err != nil {
			clock, err = time.Parse("15:04:05", s[len(prefix):])
			if err != nil {
				return time.Time{}
			}
		}
		day := now.AddDate(0, 0, dayDelta)
		return time.Date(day.Year(), day.Month(), day.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, now.Location())
	}

	for _, layout := range smfDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		}
	}
	return time.Time{}
}

// blockText renders a selection's text content with newlines at block
// element boundaries, approximating how the post reads in a browser.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		writeBlockText(&b, node)
	}
	lines := strings.Split(b.String(), "\n")
	var out []string
	for _, line := range lines {
		if trimmed := normalizeSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

func writeBlockText(b *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
	case html.ElementNode:
		switch node.Data {
		case "br":
			b.WriteString("\n")
		case "p", "div", "li", "tr", "blockquote":
			b.WriteString("\n")
			defer b.WriteString("\n")
		case "script", "style":
			return
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(b, c)
	}
}

// innerHTML returns the selection's inner HTML, empty on error.
func innerHTML(sel *goquery.Selection) string {
	h, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}
