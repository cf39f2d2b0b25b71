package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boardarch"
	"golang.org/x/net/html"
)

// Ensure BoardExtractor implements boardarch.BoardExtractor at compile time.
var _ boardarch.BoardExtractor = (*BoardExtractor)(nil)

// BoardExtractor extracts board metadata and topic summary rows from an SMF
// board listing page (index.php?board=<id>.<offset>).
type BoardExtractor struct {
	now func() time.Time
}

// Option configures an extractor.
type Option func(*BoardExtractor)

// WithClock overrides the clock used to resolve relative forum dates
// ("Today at ..."). Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *BoardExtractor) {
		e.now = now
	}
}

// NewBoardExtractor creates a new BoardExtractor.
func NewBoardExtractor(opts ...Option) *BoardExtractor {
	e := &BoardExtractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractBoardPage parses one board listing page. A page without the topic
// listing table is an extraction failure (likely a challenge or error page),
// not an empty board.
func (e *BoardExtractor) ExtractBoardPage(boardID, pageURL, rawHTML string, offset int) (*boardarch.BoardPage, error) {
	if rawHTML == "" {
		return nil, boardarch.Errorf(boardarch.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, boardarch.Errorf(boardarch.EINVALID, "failed to parse HTML: %v", err)
	}

	rows := doc.Find("div#messageindex table.table_grid tbody tr")
	if rows.Length() == 0 {
		return nil, boardarch.Errorf(boardarch.EUNAVAILABLE, "no topic listing found on %s", pageURL)
	}

	now := e.now()
	page := &boardarch.BoardPage{
		Info:    e.extractInfo(doc, boardID, pageURL, now),
		Offsets: collectOffsets(doc, "board", boardID),
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if summary, ok := e.extractSummary(row, boardID, pageURL, offset, now); ok {
			page.Topics = append(page.Topics, summary)
		}
	})

	return page, nil
}

func (e *BoardExtractor) extractInfo(doc *goquery.Document, boardID, pageURL string, now time.Time) *boardarch.Board {
	name := strings.TrimSpace(doc.Find("div.navigate_section li.last span").First().Text())
	if name == "" {
		name = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if name == "" {
		name = "Board " + boardID
	}

	description := normalizeSpace(doc.Find("div#main_content_section > p.description").First().Text())

	var statsParts []string
	doc.Find("div#main_content_section div.titlebg span.smalltext").Each(func(_ int, sel *goquery.Selection) {
		statsParts = append(statsParts, normalizeSpace(sel.Text()))
	})
	var posts *int
	if len(statsParts) > 0 {
		posts = parseInt(strings.Join(statsParts, " "))
	}

	return &boardarch.Board{
		ID:          boardID,
		Name:        name,
		Description: description,
		Posts:       posts,
		URL:         pageURL,
		FetchedAt:   now,
	}
}

func (e *BoardExtractor) extractSummary(row *goquery.Selection, boardID, pageURL string, offset int, now time.Time) (boardarch.TopicSummary, bool) {
	subjectLink := row.Find("td.subject span[id^='msg_'] > a").First()
	if subjectLink.Length() == 0 {
		return boardarch.TopicSummary{}, false
	}
	topicURL, _ := subjectLink.Attr("href")
	topicID := parseTopicID(topicURL)
	if topicID == "" {
		return boardarch.TopicSummary{}, false
	}

	summary := boardarch.TopicSummary{
		BoardID:     boardID,
		BoardOffset: offset,
		ID:          topicID,
		Subject:     strings.TrimSpace(subjectLink.Text()),
		Starter:     strings.TrimSpace(row.Find("td.subject p a[href*='profile;u=']").First().Text()),
		URL:         topicURL,
		PageURL:     pageURL,
		FetchedAt:   now,
	}

	nums := parseNumbers(normalizeSpace(row.Find("td.stats").First().Text()))
	if len(nums) > 0 {
		summary.Replies = &nums[0]
	}
	if len(nums) > 1 {
		summary.Views = &nums[1]
	}

	lastPost := row.Find("td.lastpost").First()
	if lastPost.Length() > 0 {
		summary.LastPostAuthor = strings.TrimSpace(lastPost.Find("a[href*='profile;u=']").First().Text())
		if link, ok := lastPost.Find("a[href*='topic=']").First().Attr("href"); ok {
			summary.LastPostLink = link
		}
		summary.LastPostTime = lastPostTime(lastPost)
		summary.LastPostAt = parseForumTime(summary.LastPostTime, now)
	}

	return summary, true
}

// lastPostTime reads the timestamp from the last-post cell. SMF renders it
// as a <strong> date followed by loose text up to a <br>; when that shape is
// missing the whole cell text is the best available signal.
func lastPostTime(cell *goquery.Selection) string {
	strong := cell.Find("strong").First()
	if strong.Length() == 0 {
		return normalizeSpace(cell.Text())
	}

	parts := []string{strings.TrimSpace(strong.Text())}
	for node := strong.Nodes[0].NextSibling; node != nil; node = node.NextSibling {
		if node.Type == html.ElementNode && node.Data == "br" {
			break
		}
		var text string
		if node.Type == html.TextNode {
			text = strings.TrimSpace(node.Data)
		} else {
			text = strings.TrimSpace(goquery.NewDocumentFromNode(node).Text())
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	if joined := normalizeSpace(strings.Join(parts, " ")); joined != "" {
		return joined
	}
	return normalizeSpace(cell.Text())
}
