package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boardarch"
)

// Ensure TopicExtractor implements boardarch.TopicExtractor at compile time.
var _ boardarch.TopicExtractor = (*TopicExtractor)(nil)

// TopicExtractor extracts posts from an SMF topic page
// (index.php?topic=<id>.<offset>). Plain-text extraction of post bodies is
// delegated to a TextExtractor; when it fails or returns nothing the
// normalized block text of the content is used instead.
type TopicExtractor struct {
	text boardarch.TextExtractor
	now  func() time.Time
}

// TopicOption configures a TopicExtractor.
type TopicOption func(*TopicExtractor)

// WithTopicClock overrides the clock used for fetched-at stamps.
// Intended for tests.
func WithTopicClock(now func() time.Time) TopicOption {
	return func(e *TopicExtractor) {
		e.now = now
	}
}

// NewTopicExtractor creates a new TopicExtractor.
// The text extractor may be nil, in which case block text is always used.
func NewTopicExtractor(text boardarch.TextExtractor, opts ...TopicOption) *TopicExtractor {
	e := &TopicExtractor{text: text, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractTopicPage parses one page of a topic. A page without post wrappers
// is an extraction failure (likely a challenge or error page), not a topic
// with zero posts.
func (e *TopicExtractor) ExtractTopicPage(boardID, topicID, pageURL, rawHTML string, offset int) (*boardarch.TopicPage, error) {
	if rawHTML == "" {
		return nil, boardarch.Errorf(boardarch.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, boardarch.Errorf(boardarch.EINVALID, "failed to parse HTML: %v", err)
	}

	wrappers := doc.Find("div#forumposts div.post_wrapper")
	if wrappers.Length() == 0 {
		return nil, boardarch.Errorf(boardarch.EUNAVAILABLE, "no posts found on %s", pageURL)
	}

	now := e.now()
	page := &boardarch.TopicPage{
		Offsets: collectOffsets(doc, "topic", topicID),
	}

	wrappers.Each(func(idx int, wrapper *goquery.Selection) {
		if post, ok := e.extractPost(wrapper, boardID, topicID, pageURL, offset, idx, now); ok {
			page.Posts = append(page.Posts, post)
		}
	})

	return page, nil
}

func (e *TopicExtractor) extractPost(wrapper *goquery.Selection, boardID, topicID, pageURL string, offset, idx int, now time.Time) (boardarch.Post, bool) {
	content := wrapper.Find("div.post div.inner").First()
	if content.Length() == 0 {
		return boardarch.Post{}, false
	}
	postIDAttr, _ := content.Attr("id")
	if !strings.HasPrefix(postIDAttr, "msg_") {
		return boardarch.Post{}, false
	}
	postID := strings.TrimPrefix(postIDAttr, "msg_")

	post := boardarch.Post{
		BoardID:   boardID,
		TopicID:   topicID,
		ID:        postID,
		Position:  offset + idx + 1,
		PageURL:   pageURL,
		FetchedAt: now,
	}

	poster := wrapper.Find("div.poster h4 a").First()
	post.AuthorName = strings.TrimSpace(poster.Text())
	post.AuthorProfile, _ = poster.Attr("href")

	extraInfo := wrapper.Find("ul#msg_" + postID + "_extra_info").First()
	extraInfo.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := normalizeSpace(li.Text()); text != "" {
			post.AuthorDetails = append(post.AuthorDetails, text)
		}
	})
	post.AuthorTitle = normalizeSpace(extraInfo.Find("li.membergroup").First().Text())

	subject := wrapper.Find("h5#subject_" + postID + " a").First()
	post.Subject = strings.TrimSpace(subject.Text())
	post.Permalink, _ = subject.Attr("href")

	post.PostedAt = normalizeSpace(wrapper.Find("div.keyinfo div.smalltext").First().Text())

	post.ContentHTML = innerHTML(content)
	post.ContentText = blockText(content)
	post.ExtractedText = e.extractText(post.ContentHTML, post.ContentText)

	signature := wrapper.Find("div.signature").First()
	if signature.Length() > 0 {
		post.SignatureHTML = innerHTML(signature)
		post.SignatureText = normalizeSpace(signature.Text())
	}

	post.Edited = normalizeSpace(wrapper.Find("div.moderatorbar div.modified").First().Text())
	post.Likes = parseInt(wrapper.Find("div.like_post_box span").First().Text())

	wrapper.Find("div.attachments li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		post.Attachments = append(post.Attachments, boardarch.Attachment{
			Name:    strings.TrimSpace(link.Text()),
			URL:     href,
			Details: normalizeSpace(li.Text()),
		})
	})

	return post, true
}

// extractText runs the text extractor over the content HTML, falling back to
// the already computed block text when extraction fails or comes back empty.
func (e *TopicExtractor) extractText(contentHTML, contentText string) string {
	if e.text == nil {
		return normalizeSpace(contentText)
	}
	text, err := e.text.ExtractText(contentHTML)
	if err != nil || strings.TrimSpace(text) == "" {
		return normalizeSpace(contentText)
	}
	return text
}
